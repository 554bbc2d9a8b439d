// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

// Governance bodies (0xE0-0xE1).

// ProposalType classifies what a proposal changes.
type ProposalType uint8

const (
	ProposalParameter ProposalType = iota
	ProposalUpgrade
	ProposalTreasury
	ProposalText
)

func (t ProposalType) String() string {
	switch t {
	case ProposalParameter:
		return "parameter"
	case ProposalUpgrade:
		return "upgrade"
	case ProposalTreasury:
		return "treasury"
	case ProposalText:
		return "text"
	}
	return "unknown"
}

// VoteChoice is one ballot option. Abstain counts for quorum but not for
// approval.
type VoteChoice uint8

const (
	VoteNo VoteChoice = iota
	VoteYes
	VoteAbstain
)

func (c VoteChoice) String() string {
	switch c {
	case VoteNo:
		return "no"
	case VoteYes:
		return "yes"
	case VoteAbstain:
		return "abstain"
	}
	return "unknown"
}

// Defined reports whether c is a known ballot option.
func (c VoteChoice) Defined() bool { return c <= VoteAbstain }

// Propose submits a governance proposal. The output value is the deposit.
// Layout: [proposal_type:1][title:len8][description:len16]
type Propose struct {
	ProposalType ProposalType
	Title        string
	Description  string
}

func (Propose) Kind() MessageType { return TypePropose }

func (p Propose) encodePayload() []byte {
	var out []byte
	out = append(out, byte(p.ProposalType))
	putBytes8([]byte(p.Title), &out)
	putBytes16([]byte(p.Description), &out)
	return out
}

func parsePropose(payload []byte) (Propose, error) {
	r := newPayloadReader(payload)
	p := Propose{
		ProposalType: ProposalType(r.u8()),
		Title:        r.string8(),
		Description:  r.string16(),
	}
	return p, r.done()
}

// Vote casts (or recasts) a ballot on a proposal. Weight is advisory; the
// indexer computes actual voting power when the window closes.
// Layout: [proposal_id:32][choice:1][weight:8]
type Vote struct {
	Proposal string
	Choice   VoteChoice
	Weight   uint64
}

func (Vote) Kind() MessageType { return TypeVote }

func (v Vote) encodePayload() []byte {
	var out []byte
	putHex32(v.Proposal, &out)
	out = append(out, byte(v.Choice))
	putU64(v.Weight, &out)
	return out
}

func parseVote(payload []byte) (Vote, error) {
	r := newPayloadReader(payload)
	v := Vote{
		Proposal: r.hex32(),
		Choice:   VoteChoice(r.u8()),
		Weight:   r.u64(),
	}
	return v, r.done()
}
