// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// External platform bridges. A link is pending until the matching verify
// arrives; a platform identity can be claimed by one address at a time.

// BridgeLinkRecord ties an address to one external platform identity.
type BridgeLinkRecord struct {
	PlatformID string     `json:"platform_id"`
	Challenge  string     `json:"challenge"`
	Verified   bool       `json:"verified"`
	LinkedAt   bsp.Height `json:"linked_at"`
	VerifiedAt bsp.Height `json:"verified_at,omitempty"`
	Mirrored   uint64     `json:"mirrored,omitempty"`
}

func applyBridgeLink(t *Tx, env *Envelope, b wire.BridgeLink) error {
	if b.Platform == "" || b.PlatformID == "" {
		return reject("bridge-link", fmt.Errorf("empty platform or id"))
	}
	var owner bsp.Address
	ok, err := t.Get(keyBridgeID(b.Platform, b.PlatformID), &owner)
	if err != nil {
		return err
	}
	if ok && owner != env.From {
		return reject("bridge-link", fmt.Errorf("%w: %s/%s is claimed", ErrDuplicate, b.Platform, b.PlatformID))
	}
	return t.Set(keyBridge(env.From, b.Platform), BridgeLinkRecord{
		PlatformID: b.PlatformID,
		Challenge:  b.Challenge,
		LinkedAt:   env.Height,
	})
}

func applyBridgeVerify(t *Tx, env *Envelope, v wire.BridgeVerify) error {
	var link BridgeLinkRecord
	ok, err := t.Get(keyBridge(env.From, v.Platform), &link)
	if err != nil {
		return err
	}
	if !ok {
		return reject("bridge-verify", fmt.Errorf("%w: no pending link for %s", ErrUnknownID, v.Platform))
	}
	if link.PlatformID != v.PlatformID {
		return reject("bridge-verify", fmt.Errorf("%w: verify is for %s, link is for %s", ErrBadTransition, v.PlatformID, link.PlatformID))
	}
	if link.Verified {
		return reject("bridge-verify", fmt.Errorf("%w: already verified", ErrDuplicate))
	}
	if v.Response == "" {
		return reject("bridge-verify", fmt.Errorf("empty challenge response"))
	}
	var owner bsp.Address
	if ok, err := t.Get(keyBridgeID(v.Platform, v.PlatformID), &owner); err != nil {
		return err
	} else if ok && owner != env.From {
		return reject("bridge-verify", fmt.Errorf("%w: %s/%s is claimed", ErrDuplicate, v.Platform, v.PlatformID))
	}

	link.Verified = true
	link.VerifiedAt = env.Height
	if err := t.Set(keyBridge(env.From, v.Platform), link); err != nil {
		return err
	}
	return t.Set(keyBridgeID(v.Platform, v.PlatformID), env.From)
}

func applyBridgeUnlink(t *Tx, env *Envelope, u wire.BridgeUnlink) error {
	var link BridgeLinkRecord
	ok, err := t.Get(keyBridge(env.From, u.Platform), &link)
	if err != nil {
		return err
	}
	if !ok {
		return reject("bridge-unlink", fmt.Errorf("%w: no link for %s", ErrUnknownID, u.Platform))
	}
	if link.PlatformID != u.PlatformID {
		return reject("bridge-unlink", fmt.Errorf("%w: unlink is for %s, link is for %s", ErrBadTransition, u.PlatformID, link.PlatformID))
	}
	if err := t.Delete(keyBridge(env.From, u.Platform)); err != nil {
		return err
	}
	if link.Verified {
		return t.Delete(keyBridgeID(u.Platform, u.PlatformID))
	}
	return nil
}

// applyBridgePost mirrors external content. Only verified links may
// mirror; the mirror is addressable content like any post.
func applyBridgePost(t *Tx, env *Envelope, p wire.BridgePost) error {
	var link BridgeLinkRecord
	ok, err := t.Get(keyBridge(env.From, p.Platform), &link)
	if err != nil {
		return err
	}
	if !ok {
		return reject("bridge-post", fmt.Errorf("%w: no link for %s", ErrUnknownID, p.Platform))
	}
	if !link.Verified {
		return reject("bridge-post", fmt.Errorf("%w: link not verified", ErrBadTransition))
	}
	if ok, err := t.Has(keyPost(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("bridge-post", fmt.Errorf("%w: mirror %s", ErrDuplicate, env.TxID))
	}

	if err := t.Set(keyPost(env.TxID), PostRecord{
		Author: env.From,
		Height: env.Height,
		Kind:   "bridge",
	}); err != nil {
		return err
	}
	link.Mirrored++
	return t.Set(keyBridge(env.From, p.Platform), link)
}
