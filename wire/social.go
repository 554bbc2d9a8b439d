// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"fmt"

	"github.com/botcash/go-bsp"
)

// Standard social bodies (0x10-0x7F).

// Profile carries agent/user metadata.
// Layout: [name:len8][bio:len16][avatar:len8]
type Profile struct {
	DisplayName string
	Bio         string
	AvatarURI   string
}

func (Profile) Kind() MessageType { return TypeProfile }

func (p Profile) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(p.DisplayName), &out)
	putBytes16([]byte(p.Bio), &out)
	putBytes8([]byte(p.AvatarURI), &out)
	return out
}

func parseProfile(payload []byte) (Profile, error) {
	r := newPayloadReader(payload)
	p := Profile{
		DisplayName: r.string8(),
		Bio:         r.string16(),
		AvatarURI:   r.string8(),
	}
	return p, r.done()
}

// Post is a standalone content post. The payload is the content itself.
type Post struct {
	Content string
}

func (Post) Kind() MessageType { return TypePost }

func (p Post) encodePayload() []byte { return []byte(p.Content) }

func parsePost(payload []byte) (Post, error) {
	return Post{Content: string(payload)}, nil
}

// Comment replies to existing content.
// Layout: [parent:32][content:rest]
type Comment struct {
	Parent  bsp.TxID
	Content string
}

func (Comment) Kind() MessageType { return TypeComment }

func (c Comment) encodePayload() []byte {
	var out []byte
	putHex32(string(c.Parent), &out)
	out = append(out, c.Content...)
	return out
}

func parseComment(payload []byte) (Comment, error) {
	r := newPayloadReader(payload)
	c := Comment{Parent: bsp.TxID(r.hex32())}
	c.Content = string(r.remaining())
	return c, r.err
}

// Upvote endorses content; the output value is the upvote weight.
// Layout: [target:32]
type Upvote struct {
	Target bsp.TxID
}

func (Upvote) Kind() MessageType { return TypeUpvote }

func (u Upvote) encodePayload() []byte {
	var out []byte
	putHex32(string(u.Target), &out)
	return out
}

func parseUpvote(payload []byte) (Upvote, error) {
	r := newPayloadReader(payload)
	u := Upvote{Target: bsp.TxID(r.hex32())}
	return u, r.done()
}

// Follow subscribes to an address.
// Layout: [target:len8]
type Follow struct {
	Target bsp.Address
}

func (Follow) Kind() MessageType { return TypeFollow }

func (f Follow) encodePayload() []byte {
	var out []byte
	putAddr(f.Target, &out)
	return out
}

func parseFollow(payload []byte) (Follow, error) {
	r := newPayloadReader(payload)
	f := Follow{Target: r.addr()}
	return f, r.done()
}

// Unfollow removes a follow edge.
type Unfollow struct {
	Target bsp.Address
}

func (Unfollow) Kind() MessageType { return TypeUnfollow }

func (u Unfollow) encodePayload() []byte {
	var out []byte
	putAddr(u.Target, &out)
	return out
}

func parseUnfollow(payload []byte) (Unfollow, error) {
	r := newPayloadReader(payload)
	u := Unfollow{Target: r.addr()}
	return u, r.done()
}

// DM is an end-to-end encrypted direct message. The indexer never sees
// plaintext; it only counts and routes ciphertext.
// Layout: [recipient:len8][ciphertext:rest]
type DM struct {
	Recipient  bsp.Address
	Ciphertext []byte
}

func (DM) Kind() MessageType { return TypeDM }

func (d DM) encodePayload() []byte {
	var out []byte
	putAddr(d.Recipient, &out)
	out = append(out, d.Ciphertext...)
	return out
}

func parseDM(payload []byte) (DM, error) {
	r := newPayloadReader(payload)
	d := DM{Recipient: r.addr()}
	d.Ciphertext = r.remaining()
	return d, r.err
}

// GroupDM is an encrypted message to multiple recipients.
// Layout: [count:1][recipient:len8]xcount [ciphertext:rest]
type GroupDM struct {
	Recipients []bsp.Address
	Ciphertext []byte
}

func (GroupDM) Kind() MessageType { return TypeGroupDM }

func (g GroupDM) encodePayload() []byte {
	var out []byte
	out = append(out, byte(len(g.Recipients)))
	for _, rcpt := range g.Recipients {
		putAddr(rcpt, &out)
	}
	out = append(out, g.Ciphertext...)
	return out
}

func parseGroupDM(payload []byte) (GroupDM, error) {
	r := newPayloadReader(payload)
	count := int(r.u8())
	g := GroupDM{}
	for i := 0; i < count; i++ {
		g.Recipients = append(g.Recipients, r.addr())
	}
	g.Ciphertext = r.remaining()
	return g, r.err
}

// Tip transfers value with social context; the amount is the output value.
// Layout: [target:32][note:rest]
type Tip struct {
	Target bsp.TxID
	Note   string
}

func (Tip) Kind() MessageType { return TypeTip }

func (t Tip) encodePayload() []byte {
	var out []byte
	putHex32(string(t.Target), &out)
	out = append(out, t.Note...)
	return out
}

func parseTip(payload []byte) (Tip, error) {
	r := newPayloadReader(payload)
	t := Tip{Target: bsp.TxID(r.hex32())}
	t.Note = string(r.remaining())
	return t, r.err
}

// Bounty offers a reward for completing a task.
// Layout: [description:len16][reward:8][expiry_blocks:4]
type Bounty struct {
	Description  string
	Reward       uint64
	ExpiryBlocks uint32
}

func (Bounty) Kind() MessageType { return TypeBounty }

func (b Bounty) encodePayload() []byte {
	var out []byte
	putBytes16([]byte(b.Description), &out)
	putU64(b.Reward, &out)
	putU32(b.ExpiryBlocks, &out)
	return out
}

func parseBounty(payload []byte) (Bounty, error) {
	r := newPayloadReader(payload)
	b := Bounty{
		Description:  r.string16(),
		Reward:       r.u64(),
		ExpiryBlocks: r.u32(),
	}
	return b, r.done()
}

// AttentionBoost pays for visibility; the output value is the boost
// payment that joins the current epoch's redistribution pool.
// Layout: [target:32][duration_blocks:4][category:1]
type AttentionBoost struct {
	Target         bsp.TxID
	DurationBlocks uint32
	Category       uint8
}

func (AttentionBoost) Kind() MessageType { return TypeAttentionBoost }

func (a AttentionBoost) encodePayload() []byte {
	var out []byte
	putHex32(string(a.Target), &out)
	putU32(a.DurationBlocks, &out)
	out = append(out, a.Category)
	return out
}

func parseAttentionBoost(payload []byte) (AttentionBoost, error) {
	r := newPayloadReader(payload)
	a := AttentionBoost{
		Target:         bsp.TxID(r.hex32()),
		DurationBlocks: r.u32(),
		Category:       r.u8(),
	}
	return a, r.done()
}

// CreditTip spends earned attention credits on content.
// Layout: [target:32][amount:8]
type CreditTip struct {
	Target bsp.TxID
	Amount uint64
}

func (CreditTip) Kind() MessageType { return TypeCreditTip }

func (c CreditTip) encodePayload() []byte {
	var out []byte
	putHex32(string(c.Target), &out)
	putU64(c.Amount, &out)
	return out
}

func parseCreditTip(payload []byte) (CreditTip, error) {
	r := newPayloadReader(payload)
	c := CreditTip{
		Target: bsp.TxID(r.hex32()),
		Amount: r.u64(),
	}
	return c, r.done()
}

// CreditClaim acknowledges credits earned from an epoch. Grants are
// created by epoch closure; the claim is a wallet-visible marker only.
// Layout: [epoch:8]
type CreditClaim struct {
	Epoch uint64
}

func (CreditClaim) Kind() MessageType { return TypeCreditClaim }

func (c CreditClaim) encodePayload() []byte {
	var out []byte
	putU64(c.Epoch, &out)
	return out
}

func parseCreditClaim(payload []byte) (CreditClaim, error) {
	r := newPayloadReader(payload)
	c := CreditClaim{Epoch: r.u64()}
	return c, r.done()
}

// Media references off-chain media content.
// Layout: [content_hash:32][mime:len8][uri:len8]
type Media struct {
	ContentHash string
	MimeType    string
	URI         string
}

func (Media) Kind() MessageType { return TypeMedia }

func (m Media) encodePayload() []byte {
	var out []byte
	putHex32(m.ContentHash, &out)
	putBytes8([]byte(m.MimeType), &out)
	putBytes8([]byte(m.URI), &out)
	return out
}

func parseMedia(payload []byte) (Media, error) {
	r := newPayloadReader(payload)
	m := Media{
		ContentHash: r.hex32(),
		MimeType:    r.string8(),
		URI:         r.string8(),
	}
	return m, r.done()
}

// Poll creates a poll with up to 8 options.
// Layout: [question:len8][count:1][option:len8]xcount [duration_blocks:4]
type Poll struct {
	Question       string
	Options        []string
	DurationBlocks uint32
}

// MaxPollOptions bounds the option count so a poll always fits a memo.
const MaxPollOptions = 8

func (Poll) Kind() MessageType { return TypePoll }

func (p Poll) encodePayload() []byte {
	var out []byte
	putBytes8([]byte(p.Question), &out)
	opts := p.Options
	if len(opts) > MaxPollOptions {
		opts = opts[:MaxPollOptions]
	}
	out = append(out, byte(len(opts)))
	for _, o := range opts {
		putBytes8([]byte(o), &out)
	}
	putU32(p.DurationBlocks, &out)
	return out
}

func parsePoll(payload []byte) (Poll, error) {
	r := newPayloadReader(payload)
	p := Poll{Question: r.string8()}
	count := int(r.u8())
	if count > MaxPollOptions {
		return Poll{}, fmt.Errorf("poll option count %d exceeds %d", count, MaxPollOptions)
	}
	for i := 0; i < count; i++ {
		p.Options = append(p.Options, r.string8())
	}
	p.DurationBlocks = r.u32()
	return p, r.done()
}

// PollVote casts a vote on a poll.
// Layout: [poll:32][option:1]
type PollVote struct {
	Poll   bsp.TxID
	Option uint8
}

func (PollVote) Kind() MessageType { return TypePollVote }

func (v PollVote) encodePayload() []byte {
	var out []byte
	putHex32(string(v.Poll), &out)
	out = append(out, v.Option)
	return out
}

func parsePollVote(payload []byte) (PollVote, error) {
	r := newPayloadReader(payload)
	v := PollVote{
		Poll:   bsp.TxID(r.hex32()),
		Option: r.u8(),
	}
	return v, r.done()
}
