// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// ProfileRecord is the latest profile an address published.
type ProfileRecord struct {
	DisplayName string     `json:"display_name"`
	Bio         string     `json:"bio"`
	AvatarURI   string     `json:"avatar_uri,omitempty"`
	UpdatedAt   bsp.Height `json:"updated_at"`
}

// PostRecord is any addressable piece of content: posts, comments, media
// and mirrored bridge posts all live in the same table so upvotes, tips
// and boosts can target them uniformly.
type PostRecord struct {
	Author    bsp.Address `json:"author"`
	Height    bsp.Height  `json:"height"`
	Kind      string      `json:"kind"` // post, comment, media, bridge
	Parent    bsp.TxID    `json:"parent,omitempty"`
	Upvotes   uint64      `json:"upvotes,omitempty"`
	UpvoteZat uint64      `json:"upvote_zat,omitempty"`
	TipZat    uint64      `json:"tip_zat,omitempty"`
	CreditZat uint64      `json:"credit_zat,omitempty"`
	Replies   uint64      `json:"replies,omitempty"`
}

// BountyRecord is an open task bounty.
type BountyRecord struct {
	Author      bsp.Address `json:"author"`
	Description string      `json:"description"`
	Reward      uint64      `json:"reward"`
	Funded      uint64      `json:"funded"`
	Expiry      bsp.Height  `json:"expiry"`
}

// PollRecord holds a poll and its running tallies.
type PollRecord struct {
	Author   bsp.Address `json:"author"`
	Question string      `json:"question"`
	Options  []string    `json:"options"`
	Tallies  []uint64    `json:"tallies"`
	Closes   bsp.Height  `json:"closes"`
}

func bumpKarma(t *Tx, a bsp.Address, delta uint64) error {
	_, err := t.AddU64(keyKarma(a), delta)
	return err
}

func applyProfile(t *Tx, env *Envelope, p wire.Profile) error {
	name := norm.NFC.String(p.DisplayName)
	if !utf8.ValidString(name) || !utf8.ValidString(p.Bio) {
		return reject("profile", fmt.Errorf("invalid utf-8 in profile"))
	}
	return t.Set(keyProfile(env.From), ProfileRecord{
		DisplayName: name,
		Bio:         norm.NFC.String(p.Bio),
		AvatarURI:   p.AvatarURI,
		UpdatedAt:   env.Height,
	})
}

func applyPost(t *Tx, env *Envelope, p wire.Post) error {
	if len(p.Content) == 0 {
		return reject("post", fmt.Errorf("empty post"))
	}
	if ok, err := t.Has(keyPost(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("post", fmt.Errorf("%w: post %s", ErrDuplicate, env.TxID))
	}
	return t.Set(keyPost(env.TxID), PostRecord{
		Author: env.From,
		Height: env.Height,
		Kind:   "post",
	})
}

func applyComment(t *Tx, env *Envelope, c wire.Comment) error {
	var parent PostRecord
	ok, err := t.Get(keyPost(c.Parent), &parent)
	if err != nil {
		return err
	}
	if !ok {
		return reject("comment", fmt.Errorf("%w: parent %s", ErrUnknownID, c.Parent))
	}
	if ok, err := t.Has(keyPost(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("comment", fmt.Errorf("%w: comment %s", ErrDuplicate, env.TxID))
	}

	if err := t.Set(keyPost(env.TxID), PostRecord{
		Author: env.From,
		Height: env.Height,
		Kind:   "comment",
		Parent: c.Parent,
	}); err != nil {
		return err
	}
	parent.Replies++
	return t.Set(keyPost(c.Parent), parent)
}

func applyUpvote(t *Tx, env *Envelope, u wire.Upvote) error {
	var post PostRecord
	ok, err := t.Get(keyPost(u.Target), &post)
	if err != nil {
		return err
	}
	if !ok {
		return reject("upvote", fmt.Errorf("%w: target %s", ErrUnknownID, u.Target))
	}
	if post.Author == env.From {
		return reject("upvote", fmt.Errorf("%w: self upvote", ErrNotAParty))
	}
	if ok, err := t.Has(keyUpvote(u.Target, env.From)); err != nil {
		return err
	} else if ok {
		return reject("upvote", fmt.Errorf("%w: already upvoted %s", ErrDuplicate, u.Target))
	}

	if err := t.Set(keyUpvote(u.Target, env.From), env.Height); err != nil {
		return err
	}
	post.Upvotes++
	post.UpvoteZat += env.Value
	if err := t.Set(keyPost(u.Target), post); err != nil {
		return err
	}
	if err := accrueAU(t, env.Height, post.Author, env.Value*10); err != nil {
		return err
	}
	return bumpKarma(t, post.Author, env.Value)
}

func applyFollow(t *Tx, env *Envelope, f wire.Follow) error {
	if !f.Target.Valid() || f.Target == env.From {
		return reject("follow", fmt.Errorf("invalid follow target %q", f.Target))
	}
	if ok, err := t.Has(keyFollow(env.From, f.Target)); err != nil {
		return err
	} else if ok {
		return reject("follow", fmt.Errorf("%w: already following %s", ErrDuplicate, f.Target))
	}
	if err := t.Set(keyFollow(env.From, f.Target), env.Height); err != nil {
		return err
	}
	return t.Set(keyFollower(f.Target, env.From), env.Height)
}

func applyUnfollow(t *Tx, env *Envelope, u wire.Unfollow) error {
	if ok, err := t.Has(keyFollow(env.From, u.Target)); err != nil {
		return err
	} else if !ok {
		return reject("unfollow", fmt.Errorf("%w: not following %s", ErrUnknownID, u.Target))
	}
	if err := t.Delete(keyFollow(env.From, u.Target)); err != nil {
		return err
	}
	return t.Delete(keyFollower(u.Target, env.From))
}

func applyDM(t *Tx, env *Envelope, d wire.DM) error {
	if !d.Recipient.Valid() {
		return reject("dm", fmt.Errorf("invalid recipient %q", d.Recipient))
	}
	if len(d.Ciphertext) == 0 {
		return reject("dm", fmt.Errorf("empty ciphertext"))
	}
	// ciphertext is opaque; only delivery counters are derived
	_, err := t.AddU64(keyDMCount(d.Recipient), 1)
	return err
}

func applyGroupDM(t *Tx, env *Envelope, g wire.GroupDM) error {
	if len(g.Recipients) == 0 || len(g.Ciphertext) == 0 {
		return reject("group-dm", fmt.Errorf("empty group dm"))
	}
	for _, r := range g.Recipients {
		if !r.Valid() {
			return reject("group-dm", fmt.Errorf("invalid recipient %q", r))
		}
	}
	for _, r := range g.Recipients {
		if _, err := t.AddU64(keyDMCount(r), 1); err != nil {
			return err
		}
	}
	return nil
}

func applyTip(t *Tx, env *Envelope, tip wire.Tip) error {
	if env.Value == 0 {
		return reject("tip", fmt.Errorf("%w: zero value tip", ErrThresholdNotMet))
	}
	var post PostRecord
	ok, err := t.Get(keyPost(tip.Target), &post)
	if err != nil {
		return err
	}
	if !ok {
		return reject("tip", fmt.Errorf("%w: target %s", ErrUnknownID, tip.Target))
	}

	post.TipZat += env.Value
	if err := t.Set(keyPost(tip.Target), post); err != nil {
		return err
	}
	if err := accrueAU(t, env.Height, post.Author, env.Value*TipWeightTenths); err != nil {
		return err
	}
	return bumpKarma(t, post.Author, env.Value)
}

func applyBounty(t *Tx, env *Envelope, b wire.Bounty) error {
	if b.Reward == 0 {
		return reject("bounty", fmt.Errorf("%w: zero reward", ErrThresholdNotMet))
	}
	if ok, err := t.Has(keyBounty(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("bounty", fmt.Errorf("%w: bounty %s", ErrDuplicate, env.TxID))
	}
	expiry := bsp.Height(0)
	if b.ExpiryBlocks > 0 {
		expiry = env.Height + bsp.Height(b.ExpiryBlocks)
	}
	return t.Set(keyBounty(env.TxID), BountyRecord{
		Author:      env.From,
		Description: b.Description,
		Reward:      b.Reward,
		Funded:      env.Value,
		Expiry:      expiry,
	})
}

func applyMedia(t *Tx, env *Envelope, m wire.Media) error {
	if m.URI == "" && m.ContentHash == "" {
		return reject("media", fmt.Errorf("media without hash or uri"))
	}
	if ok, err := t.Has(keyPost(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("media", fmt.Errorf("%w: media %s", ErrDuplicate, env.TxID))
	}
	return t.Set(keyPost(env.TxID), PostRecord{
		Author: env.From,
		Height: env.Height,
		Kind:   "media",
	})
}

func applyPoll(t *Tx, env *Envelope, p wire.Poll) error {
	if len(p.Options) < 2 {
		return reject("poll", fmt.Errorf("poll needs at least 2 options, got %d", len(p.Options)))
	}
	if ok, err := t.Has(keyPoll(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("poll", fmt.Errorf("%w: poll %s", ErrDuplicate, env.TxID))
	}
	duration := p.DurationBlocks
	if duration == 0 {
		duration = EpochBlocks
	}
	return t.Set(keyPoll(env.TxID), PollRecord{
		Author:   env.From,
		Question: p.Question,
		Options:  p.Options,
		Tallies:  make([]uint64, len(p.Options)),
		Closes:   env.Height + bsp.Height(duration),
	})
}

func applyPollVote(t *Tx, env *Envelope, v wire.PollVote) error {
	var poll PollRecord
	ok, err := t.Get(keyPoll(v.Poll), &poll)
	if err != nil {
		return err
	}
	if !ok {
		return reject("poll-vote", fmt.Errorf("%w: poll %s", ErrUnknownID, v.Poll))
	}
	if env.Height >= poll.Closes {
		return reject("poll-vote", fmt.Errorf("%w: poll closed at %d", ErrWindowClosed, poll.Closes))
	}
	if int(v.Option) >= len(poll.Options) {
		return reject("poll-vote", fmt.Errorf("option %d out of range", v.Option))
	}
	if ok, err := t.Has(keyPollVote(v.Poll, env.From)); err != nil {
		return err
	} else if ok {
		return reject("poll-vote", fmt.Errorf("%w: already voted on %s", ErrDuplicate, v.Poll))
	}

	if err := t.Set(keyPollVote(v.Poll, env.From), v.Option); err != nil {
		return err
	}
	poll.Tallies[v.Option]++
	return t.Set(keyPoll(v.Poll), poll)
}
