// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// Attention market. Boost payments pool per epoch; at epoch close the
// pool's redistribution share is granted back to the payers pro rata by
// what each paid in, spendable as credits until they expire. Attention
// units are tracked alongside for ranking, they carry no claim on the
// pool.

// EpochRecord tracks one epoch's pool and its closure.
type EpochRecord struct {
	Pool          uint64     `json:"pool"`
	AUTotalTenths uint64     `json:"au_total_tenths"`
	Closed        bool       `json:"closed"`
	ClosedAt      bsp.Height `json:"closed_at,omitempty"`
	Redistributed uint64     `json:"redistributed,omitempty"`
	Burned        uint64     `json:"burned,omitempty"`
}

// Grant is one payer's credit from one closed epoch.
type Grant struct {
	Amount    uint64     `json:"amount"`
	Remaining uint64     `json:"remaining"`
	Expiry    bsp.Height `json:"expiry"`
	Claimed   bool       `json:"claimed,omitempty"`
}

// BoostRecord is the active visibility boost on a piece of content.
type BoostRecord struct {
	Funder   bsp.Address `json:"funder"`
	Amount   uint64      `json:"amount"`
	Start    bsp.Height  `json:"start"`
	Duration uint32      `json:"duration"`
	Category uint8       `json:"category"`
}

// Active reports whether the boost covers height h.
func (b BoostRecord) Active(h bsp.Height) bool {
	return h >= b.Start && h < b.Start+bsp.Height(b.Duration)
}

func epochOf(h bsp.Height) uint64 { return uint64(h) / EpochBlocks }

// accrueAU credits tenths of attention units to author in the epoch of h.
// Accrual into a closed epoch is dropped: late engagement with old
// content still counts on the post record, not in a settled pool.
func accrueAU(t *Tx, h bsp.Height, author bsp.Address, tenths uint64) error {
	epoch := epochOf(h)
	var rec EpochRecord
	if _, err := t.Get(keyEpoch(epoch), &rec); err != nil {
		return err
	}
	if rec.Closed {
		return nil
	}
	rec.AUTotalTenths += tenths
	if err := t.Set(keyEpoch(epoch), rec); err != nil {
		return err
	}
	_, err := t.AddU64(keyAU(epoch, author), tenths)
	return err
}

func applyBoost(t *Tx, env *Envelope, b wire.AttentionBoost) error {
	if env.Value < MinBoostZat {
		return reject("boost", fmt.Errorf("%w: payment %d below %d", ErrThresholdNotMet, env.Value, MinBoostZat))
	}
	var post PostRecord
	ok, err := t.Get(keyPost(b.Target), &post)
	if err != nil {
		return err
	}
	if !ok {
		return reject("boost", fmt.Errorf("%w: target %s", ErrUnknownID, b.Target))
	}

	epoch := epochOf(env.Height)
	var rec EpochRecord
	if _, err := t.Get(keyEpoch(epoch), &rec); err != nil {
		return err
	}
	rec.Pool += env.Value
	if err := t.Set(keyEpoch(epoch), rec); err != nil {
		return err
	}
	// the pool is the sum of this table, per payer; closure pays out on it
	if _, err := t.AddU64(keyEpochPay(epoch, env.From), env.Value); err != nil {
		return err
	}

	duration := b.DurationBlocks
	if duration == 0 {
		duration = EpochBlocks
	}
	return t.Set(keyBoost(b.Target), BoostRecord{
		Funder:   env.From,
		Amount:   env.Value,
		Start:    env.Height,
		Duration: duration,
		Category: b.Category,
	})
}

// closeEpoch settles the epoch's pool. Idempotent: a closed epoch stays
// closed, so replay after restart is safe.
func closeEpoch(t *Tx, epoch uint64, at bsp.Height) error {
	var rec EpochRecord
	if _, err := t.Get(keyEpoch(epoch), &rec); err != nil {
		return err
	}
	if rec.Closed {
		return nil
	}

	redistributed := uint64(0)
	if rec.Pool > 0 {
		budget := mulDiv(rec.Pool, RedistributionPercent, 100)
		expiry := at + CreditTTLBlocks

		// each payer gets the redistribution share of their own payment
		prefix := prefixEpochPay(epoch)
		err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
			var paid uint64
			if err := json.Unmarshal(raw, &paid); err != nil {
				return false, err
			}
			payer := bsp.Address(k[len(prefix):])
			share := mulDiv(budget, paid, rec.Pool)
			if share == 0 {
				return false, nil
			}
			redistributed += share
			return false, t.Set(keyGrant(payer, epoch), Grant{
				Amount:    share,
				Remaining: share,
				Expiry:    expiry,
			})
		})
		if err != nil {
			return err
		}
	}

	rec.Closed = true
	rec.ClosedAt = at
	rec.Redistributed = redistributed
	rec.Burned = rec.Pool - redistributed
	return t.Set(keyEpoch(epoch), rec)
}

// mulDiv computes a*b/c without overflowing for pool-sized values.
func mulDiv(a, b, c uint64) uint64 {
	hi := a / c
	lo := a % c
	return hi*b + lo*b/c
}

func applyCreditTip(t *Tx, env *Envelope, c wire.CreditTip) error {
	if c.Amount == 0 {
		return reject("credit-tip", fmt.Errorf("%w: zero amount", ErrThresholdNotMet))
	}
	var post PostRecord
	ok, err := t.Get(keyPost(c.Target), &post)
	if err != nil {
		return err
	}
	if !ok {
		return reject("credit-tip", fmt.Errorf("%w: target %s", ErrUnknownID, c.Target))
	}

	// oldest unexpired grants first; expiry is checked at spend time so
	// passing an expiry never mutates state on its own
	type pick struct {
		key   []byte
		grant Grant
		take  uint64
	}
	var (
		picks []pick
		need  = c.Amount
	)
	err = t.Iterate(prefixGrant(env.From), func(k, raw []byte) (bool, error) {
		var g Grant
		if err := json.Unmarshal(raw, &g); err != nil {
			return false, err
		}
		if g.Remaining == 0 || env.Height >= g.Expiry {
			return false, nil
		}
		take := g.Remaining
		if take > need {
			take = need
		}
		picks = append(picks, pick{key: append([]byte(nil), k...), grant: g, take: take})
		need -= take
		return need == 0, nil
	})
	if err != nil {
		return err
	}
	if need > 0 {
		return reject("credit-tip", fmt.Errorf("%w: need %d more", ErrInsufficientCredit, need))
	}

	for _, p := range picks {
		p.grant.Remaining -= p.take
		if err := t.Set(p.key, p.grant); err != nil {
			return err
		}
	}

	post.CreditZat += c.Amount
	if err := t.Set(keyPost(c.Target), post); err != nil {
		return err
	}
	if err := accrueAU(t, env.Height, post.Author, c.Amount*10); err != nil {
		return err
	}
	return bumpKarma(t, post.Author, c.Amount)
}

func applyCreditClaim(t *Tx, env *Envelope, c wire.CreditClaim) error {
	var g Grant
	ok, err := t.Get(keyGrant(env.From, c.Epoch), &g)
	if err != nil {
		return err
	}
	if !ok {
		return reject("credit-claim", fmt.Errorf("%w: no grant for epoch %d", ErrUnknownID, c.Epoch))
	}
	if g.Claimed {
		return reject("credit-claim", fmt.Errorf("%w: epoch %d already claimed", ErrDuplicate, c.Epoch))
	}
	g.Claimed = true
	return t.Set(keyGrant(env.From, c.Epoch), g)
}

// CreditBalance sums the sender's unexpired grant remainder as of h.
// A grant is spendable strictly below its expiry height.
func CreditBalance(t *Tx, a bsp.Address, h bsp.Height) (uint64, error) {
	var total uint64
	err := t.Iterate(prefixGrant(a), func(_, raw []byte) (bool, error) {
		var g Grant
		if err := json.Unmarshal(raw, &g); err != nil {
			return false, err
		}
		if h < g.Expiry {
			total += g.Remaining
		}
		return false, nil
	})
	return total, err
}
