// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

const (
	dave = bsp.Address("B1dave")
	eve  = bsp.Address("B1eve")
)

// seedPowers gives alice, bob and carol karma 400, 2500 and 900 (voting
// weight 20, 50 and 30) by having dave upvote one post of each. Dave's
// 3800 zatoshi of upvote spend is his observed balance.
func seedPowers(t *testing.T, l *Ledger) {
	t.Helper()
	applyBlock(t, l, 1,
		mkEnv(1, "p-a", alice, 0, wire.Post{Content: "a"}),
		mkEnv(1, "p-b", bob, 0, wire.Post{Content: "b"}),
		mkEnv(1, "p-c", carol, 0, wire.Post{Content: "c"}),
	)
	res := applyBlock(t, l, 2,
		mkEnv(2, "u-a", dave, 400, wire.Upvote{Target: "p-a"}),
		mkEnv(2, "u-b", dave, 2_500, wire.Upvote{Target: "p-b"}),
		mkEnv(2, "u-c", dave, 900, wire.Upvote{Target: "p-c"}),
	)
	for _, err := range res {
		require.NoError(t, err)
	}
}

func getProposal(t *testing.T, l *Ledger, id string) ProposalRecord {
	t.Helper()
	var rec ProposalRecord
	err := l.View(func(tx *Tx) error {
		ok, err := tx.Get(keyProposal(id), &rec)
		require.True(t, ok, "proposal %s not found", id)
		return err
	})
	require.NoError(t, err)
	return rec
}

func TestProposalLifecycle(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)
	seedPowers(t, l)

	res := applyBlock(t, l, 3,
		mkEnv(3, "prop-quiet", dave, GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalParameter, Title: "quiet one",
		}),
		mkEnv(3, "prop-pass", dave, GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalParameter, Title: "raise rate", Description: "to 85",
		}),
		mkEnv(3, "prop-fail", dave, GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalText, Title: "manifesto",
		}),
		mkEnv(3, "prop-poor", dave, 5, wire.Propose{
			ProposalType: wire.ProposalText, Title: "underfunded",
		}),
	)
	r.NoError(res[0])
	r.NoError(res[1])
	r.NoError(res[2])
	r.ErrorIs(res[3], ErrThresholdNotMet)

	// the phases stack: discussion, then the voting window, and a passed
	// proposal waits the execution delay after the window closes
	p := getProposal(t, l, "prop-pass")
	r.Equal(ProposalActive, p.Status)
	r.EqualValues(3+GovDiscussionBlocks, p.VotingStart)
	r.EqualValues(3+GovDiscussionBlocks+GovVotingBlocks, p.VotingEnd)
	r.Zero(p.Executable)

	// discussion phase: votes bounce
	res = applyBlock(t, l, 4, mkEnv(4, "v-early", bob, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteYes}))
	r.ErrorIs(res[0], ErrWindowClosed)

	start := bsp.Height(3 + GovDiscussionBlocks)
	skipTo(t, l, start)
	res = applyBlock(t, l, start+1,
		// prop-quiet: only alice turns out
		mkEnv(0, "v-q1", alice, 0, wire.Vote{Proposal: "prop-quiet", Choice: wire.VoteYes}),

		// prop-pass: carol's yes is recast to no in the next block; eve
		// has neither karma nor balance, her vote weighs nothing
		mkEnv(0, "v-p1", alice, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteYes}),
		mkEnv(0, "v-p2", bob, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteYes}),
		mkEnv(0, "v-p3", carol, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteYes}),
		mkEnv(0, "v-p4", dave, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteAbstain}),
		mkEnv(0, "v-p5", eve, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteYes}),

		// prop-fail: 50 yes vs 50 no by weight, below the 66% bar
		mkEnv(0, "v-f1", alice, 0, wire.Vote{Proposal: "prop-fail", Choice: wire.VoteYes}),
		mkEnv(0, "v-f2", carol, 0, wire.Vote{Proposal: "prop-fail", Choice: wire.VoteYes}),
		mkEnv(0, "v-f3", bob, 0, wire.Vote{Proposal: "prop-fail", Choice: wire.VoteNo}),
		mkEnv(0, "v-f4", dave, 0, wire.Vote{Proposal: "prop-fail", Choice: wire.VoteAbstain}),

		mkEnv(0, "v-gone", alice, 0, wire.Vote{Proposal: "missing", Choice: wire.VoteYes}),
	)
	for i := 0; i < 10; i++ {
		r.NoError(res[i], "vote %d", i)
	}
	r.ErrorIs(res[10], ErrUnknownID)

	// a recast inside the window replaces the earlier choice
	res = applyBlock(t, l, start+2, mkEnv(0, "v-p3b", carol, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteNo}))
	r.NoError(res[0])

	// the block ending the voting window tallies all three
	end := start + GovVotingBlocks
	skipTo(t, l, end-1)
	applyBlock(t, l, end)

	r.Equal(ProposalQuorumFailed, getProposal(t, l, "prop-quiet").Status)

	// weights at the tally: sqrt of karma plus sqrt of observed balance.
	// Dave carries sqrt(3_000_003_800) = 54772 from three deposits and
	// his upvote spend; the rejected underfunded deposit counts nothing.
	p = getProposal(t, l, "prop-pass")
	r.Equal(ProposalPassed, p.Status)
	r.EqualValues(70, p.YesPower, "alice 20 + bob 50 + eve 0")
	r.EqualValues(30, p.NoPower, "carol's final choice")
	r.EqualValues(54772, p.AbstainPower)
	r.EqualValues(54872, p.QuorumBase)
	r.EqualValues(end+GovExecutionDelay, p.Executable)

	r.Equal(ProposalRejected, getProposal(t, l, "prop-fail").Status)

	// votes after the tally bounce off the settled proposal
	res = applyBlock(t, l, end+1, mkEnv(0, "v-late", bob, 0, wire.Vote{Proposal: "prop-pass", Choice: wire.VoteNo}))
	r.ErrorIs(res[0], ErrBadTransition)
}

func TestVotePowerCountedAtClose(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	applyBlock(t, l, 1,
		mkEnv(1, "p-a", alice, 0, wire.Post{Content: "a"}),
		mkEnv(1, "p-b", alice, 0, wire.Post{Content: "b"}),
	)
	applyBlock(t, l, 2, mkEnv(2, "u-1", bob, 100, wire.Upvote{Target: "p-a"}))
	applyBlock(t, l, 3, mkEnv(3, "prop", alice, GovDepositZat, wire.Propose{
		ProposalType: wire.ProposalParameter, Title: "weights",
	}))

	start := bsp.Height(3 + GovDiscussionBlocks)
	skipTo(t, l, start)
	res := applyBlock(t, l, start+1, mkEnv(0, "v", alice, 0, wire.Vote{Proposal: "prop", Choice: wire.VoteYes}))
	r.NoError(res[0])

	// alice's karma grows from 100 to 10_000 after she cast her vote
	res = applyBlock(t, l, start+2, mkEnv(0, "u-2", bob, 9_900, wire.Upvote{Target: "p-b"}))
	r.NoError(res[0])

	end := start + GovVotingBlocks
	skipTo(t, l, end-1)
	applyBlock(t, l, end)

	// counted at the close: sqrt(10_000) + sqrt(1e9) = 100 + 31_622,
	// not the 10 + 31_622 her weight was when she cast it
	p := getProposal(t, l, "prop")
	r.Equal(ProposalPassed, p.Status)
	r.EqualValues(31_722, p.YesPower)
	r.EqualValues(31_822, p.QuorumBase, "alice 31_722 plus bob's sqrt(10_000) of spend")
}

func TestProposalQuorum(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)
	seedPowers(t, l)

	res := applyBlock(t, l, 3,
		mkEnv(3, "prop-lone", dave, GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalParameter, Title: "lone",
		}),
		mkEnv(3, "prop-backed", dave, GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalParameter, Title: "backed",
		}),
	)
	r.NoError(res[0])
	r.NoError(res[1])

	start := bsp.Height(3 + GovDiscussionBlocks)
	skipTo(t, l, start)
	res = applyBlock(t, l, start+1,
		mkEnv(0, "v-l", alice, 0, wire.Vote{Proposal: "prop-lone", Choice: wire.VoteYes}),
		mkEnv(0, "v-b1", alice, 0, wire.Vote{Proposal: "prop-backed", Choice: wire.VoteYes}),
		mkEnv(0, "v-b2", dave, 0, wire.Vote{Proposal: "prop-backed", Choice: wire.VoteAbstain}),
	)
	for _, err := range res {
		r.NoError(err)
	}

	end := start + GovVotingBlocks
	skipTo(t, l, end-1)
	applyBlock(t, l, end)

	// alice alone is 20 of a base of 44_821, far under the 20% bar
	r.Equal(ProposalQuorumFailed, getProposal(t, l, "prop-lone").Status)

	// dave's abstention counts toward turnout but not toward approval
	p := getProposal(t, l, "prop-backed")
	r.Equal(ProposalPassed, p.Status)
	r.EqualValues(20, p.YesPower)
	r.Zero(p.NoPower)
	r.EqualValues(44_721, p.AbstainPower)
}
