// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// Decentralized moderation: weighted trust edges between addresses, and
// staked reports against content. Neither hides anything by itself; the
// query layer folds them into per-viewer scores.

// TrustEdge is one address's declared trust in another.
type TrustEdge struct {
	Level  wire.TrustLevel `json:"level"`
	Reason string          `json:"reason,omitempty"`
	Height bsp.Height      `json:"height"`
}

// ReportRecord is a staked report against a piece of content.
type ReportRecord struct {
	Reporter bsp.Address         `json:"reporter"`
	Target   bsp.TxID            `json:"target"`
	Category wire.ReportCategory `json:"category"`
	Stake    uint64              `json:"stake"`
	Evidence string              `json:"evidence,omitempty"`
	Expiry   bsp.Height          `json:"expiry"`
}

func applyTrust(t *Tx, env *Envelope, tr wire.Trust) error {
	if !tr.Level.Defined() {
		return reject("trust", fmt.Errorf("undefined trust level %d", tr.Level))
	}
	if !tr.Target.Valid() || tr.Target == env.From {
		return reject("trust", fmt.Errorf("invalid trust target %q", tr.Target))
	}
	if tr.Level == wire.TrustNeutral {
		// neutral retracts the edge
		if ok, err := t.Has(keyTrust(env.From, tr.Target)); err != nil {
			return err
		} else if !ok {
			return reject("trust", fmt.Errorf("%w: no edge to retract", ErrUnknownID))
		}
		return t.Delete(keyTrust(env.From, tr.Target))
	}
	return t.Set(keyTrust(env.From, tr.Target), TrustEdge{
		Level:  tr.Level,
		Reason: tr.Reason,
		Height: env.Height,
	})
}

func applyReport(t *Tx, env *Envelope, r wire.Report) error {
	if !r.Category.Defined() {
		return reject("report", fmt.Errorf("undefined report category %d", r.Category))
	}
	if env.Value < ReportMinStakeZat {
		return reject("report", fmt.Errorf("%w: stake %d below %d", ErrThresholdNotMet, env.Value, ReportMinStakeZat))
	}
	var post PostRecord
	ok, err := t.Get(keyPost(r.Target), &post)
	if err != nil {
		return err
	}
	if !ok {
		return reject("report", fmt.Errorf("%w: target %s", ErrUnknownID, r.Target))
	}
	if post.Author == env.From {
		return reject("report", fmt.Errorf("%w: self report", ErrNotAParty))
	}
	if ok, err := t.Has(keyReport(env.TxID)); err != nil {
		return err
	} else if ok {
		return reject("report", fmt.Errorf("%w: report %s", ErrDuplicate, env.TxID))
	}

	if err := t.Set(keyReport(env.TxID), ReportRecord{
		Reporter: env.From,
		Target:   r.Target,
		Category: r.Category,
		Stake:    env.Value,
		Evidence: r.Evidence,
		Expiry:   env.Height + ReportExpiryBlocks,
	}); err != nil {
		return err
	}
	return t.Set(keyReportFor(r.Target, env.TxID), env.Height)
}
