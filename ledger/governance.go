// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// On-chain governance. A proposal is discussion-only until its voting
// window opens and collects votes until the window closes. Votes carry
// only a choice while the window is open; weights are resolved by the
// block that ends the window, so recasting a vote simply replaces the
// earlier choice.

type ProposalStatus string

const (
	ProposalActive       ProposalStatus = "active"
	ProposalPassed       ProposalStatus = "passed"
	ProposalRejected     ProposalStatus = "rejected"
	ProposalQuorumFailed ProposalStatus = "quorum_failed"
)

// ProposalRecord is one proposal. The proposal id is the txid of its
// submission envelope. The power fields are zero until the tally writes
// them.
type ProposalRecord struct {
	Proposer    bsp.Address       `json:"proposer"`
	Type        wire.ProposalType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Deposit     uint64            `json:"deposit"`
	Submitted   bsp.Height        `json:"submitted"`
	VotingStart bsp.Height        `json:"voting_start"`
	VotingEnd   bsp.Height        `json:"voting_end"`
	Executable  bsp.Height        `json:"executable,omitempty"`
	Status      ProposalStatus    `json:"status"`

	YesPower     uint64 `json:"yes_power"`
	NoPower      uint64 `json:"no_power"`
	AbstainPower uint64 `json:"abstain_power"`

	// QuorumBase is the total voting power across all addresses at the
	// tally, the denominator of the quorum check.
	QuorumBase uint64 `json:"quorum_base,omitempty"`
}

// VoteRecord is one address's current choice on a proposal. A recast
// overwrites it; the weight is not fixed until the tally.
type VoteRecord struct {
	Choice wire.VoteChoice `json:"choice"`
	Height bsp.Height      `json:"height"`
}

func applyPropose(t *Tx, env *Envelope, p wire.Propose) error {
	if env.Value < GovDepositZat {
		return reject("propose", fmt.Errorf("%w: deposit %d below %d", ErrThresholdNotMet, env.Value, GovDepositZat))
	}
	if p.Title == "" {
		return reject("propose", fmt.Errorf("proposal without title"))
	}
	id := string(env.TxID)
	if ok, err := t.Has(keyProposal(id)); err != nil {
		return err
	} else if ok {
		return reject("propose", fmt.Errorf("%w: proposal %s", ErrDuplicate, id))
	}

	start := env.Height + GovDiscussionBlocks
	rec := ProposalRecord{
		Proposer:    env.From,
		Type:        p.ProposalType,
		Title:       p.Title,
		Description: p.Description,
		Deposit:     env.Value,
		Submitted:   env.Height,
		VotingStart: start,
		VotingEnd:   start + GovVotingBlocks,
		Status:      ProposalActive,
	}
	if err := t.Set(keyProposal(id), rec); err != nil {
		return err
	}
	return t.Set(keyGovDeadline(rec.VotingEnd, id), struct{}{})
}

func applyVote(t *Tx, env *Envelope, v wire.Vote) error {
	if !v.Choice.Defined() {
		return reject("vote", fmt.Errorf("undefined vote choice %d", v.Choice))
	}
	var rec ProposalRecord
	ok, err := t.Get(keyProposal(v.Proposal), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return reject("vote", fmt.Errorf("%w: proposal %s", ErrUnknownID, v.Proposal))
	}
	if rec.Status != ProposalActive {
		return reject("vote", fmt.Errorf("%w: proposal is %s", ErrBadTransition, rec.Status))
	}
	if env.Height < rec.VotingStart || env.Height >= rec.VotingEnd {
		return reject("vote", fmt.Errorf("%w: voting window [%d,%d)", ErrWindowClosed, rec.VotingStart, rec.VotingEnd))
	}

	// a recast replaces the earlier choice; the tally reads only the
	// final record per voter
	return t.Set(keyGovVote(v.Proposal, env.From), VoteRecord{
		Choice: v.Choice,
		Height: env.Height,
	})
}

// votingPower is the quadratic weight of one address: the integer square
// roots of its karma and of its observed balance, read when votes are
// counted rather than when they are cast.
func votingPower(t *Tx, a bsp.Address) (uint64, error) {
	var karma, bal uint64
	if _, err := t.Get(keyKarma(a), &karma); err != nil {
		return 0, err
	}
	if _, err := t.Get(keyBalance(a), &bal); err != nil {
		return 0, err
	}
	return isqrt(karma) + isqrt(bal), nil
}

// totalVotingPower sums every address's weight, the quorum base. Power
// splits into per-table square root sums, so the karma and balance
// tables are each walked once.
func totalVotingPower(t *Tx) (uint64, error) {
	var total uint64
	for _, prefix := range []string{kpKarma, kpBalance} {
		err := t.Iterate([]byte(prefix), func(_, raw []byte) (bool, error) {
			var n uint64
			if err := json.Unmarshal(raw, &n); err != nil {
				return false, err
			}
			total += isqrt(n)
			return false, nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// isqrt returns floor(sqrt(n)).
func isqrt(n uint64) uint64 {
	if n < 2 {
		return n
	}
	x := n
	y := x/2 + 1
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// tallyDueProposals settles every proposal whose voting window ends at h.
// Runs inside the block transaction, so a reorg through h re-tallies with
// the surviving chain's votes.
func tallyDueProposals(t *Tx, h bsp.Height) error {
	prefix := prefixGovDeadline(h)
	var ids []string
	err := t.Iterate(prefix, func(k, _ []byte) (bool, error) {
		ids = append(ids, string(k[len(prefix):]))
		return false, nil
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := tallyProposal(t, h, id); err != nil {
			return err
		}
	}
	return nil
}

func tallyProposal(t *Tx, h bsp.Height, id string) error {
	var rec ProposalRecord
	ok, err := t.Get(keyProposal(id), &rec)
	if err != nil {
		return err
	}
	if ok && rec.Status == ProposalActive {
		// collect the final choices first, then weigh them at current
		// karma and balance
		type ballot struct {
			voter  bsp.Address
			choice wire.VoteChoice
		}
		prefix := prefixGovVote(id)
		var ballots []ballot
		err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
			var v VoteRecord
			if err := json.Unmarshal(raw, &v); err != nil {
				return false, err
			}
			ballots = append(ballots, ballot{
				voter:  bsp.Address(k[len(prefix):]),
				choice: v.Choice,
			})
			return false, nil
		})
		if err != nil {
			return err
		}

		for _, b := range ballots {
			power, err := votingPower(t, b.voter)
			if err != nil {
				return err
			}
			switch b.choice {
			case wire.VoteYes:
				rec.YesPower += power
			case wire.VoteNo:
				rec.NoPower += power
			case wire.VoteAbstain:
				rec.AbstainPower += power
			}
		}

		base, err := totalVotingPower(t)
		if err != nil {
			return err
		}
		rec.QuorumBase = base

		turnout := rec.YesPower + rec.NoPower + rec.AbstainPower
		switch {
		case turnout*100 < base*GovQuorumPercent:
			rec.Status = ProposalQuorumFailed
		case rec.YesPower+rec.NoPower == 0:
			rec.Status = ProposalRejected
		case rec.YesPower*100 >= (rec.YesPower+rec.NoPower)*GovApprovalPercent:
			rec.Status = ProposalPassed
			rec.Executable = rec.VotingEnd + GovExecutionDelay
		default:
			rec.Status = ProposalRejected
		}

		if err := t.Set(keyProposal(id), rec); err != nil {
			return err
		}
	}
	return t.Delete(keyGovDeadline(h, id))
}
