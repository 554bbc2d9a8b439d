// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// Message channel lifecycle: open -> closing -> settled, with a dispute
// window between close and settle. Settled is terminal.

type ChannelState string

const (
	ChannelOpen     ChannelState = "open"
	ChannelClosing  ChannelState = "closing"
	ChannelDisputed ChannelState = "disputed"
	ChannelSettled  ChannelState = "settled"
)

// ChannelRecord is the on-ledger view of one channel. The channel id is
// the txid of its opening envelope.
type ChannelRecord struct {
	Parties     []bsp.Address `json:"parties"`
	Deposit     uint64        `json:"deposit"`
	Timeout     uint32        `json:"timeout"`
	OpenedAt    bsp.Height    `json:"opened_at"`
	State       ChannelState  `json:"state"`
	FinalSeq    uint32        `json:"final_seq,omitempty"`
	ClosedAt    bsp.Height    `json:"closed_at,omitempty"`
	ClosedBy    bsp.Address   `json:"closed_by,omitempty"`
	MessageHash string        `json:"message_hash,omitempty"`
	Disputes    uint64        `json:"disputes,omitempty"`
}

func (c ChannelRecord) party(a bsp.Address) bool {
	for _, p := range c.Parties {
		if p == a {
			return true
		}
	}
	return false
}

func applyChannelOpen(t *Tx, env *Envelope, c wire.ChannelOpen) error {
	if n := len(c.Parties); n < ChannelMinParties || n > ChannelMaxParties {
		return reject("channel-open", fmt.Errorf("%d parties outside [%d,%d]", n, ChannelMinParties, ChannelMaxParties))
	}
	if env.Value < ChannelMinDepositZat {
		return reject("channel-open", fmt.Errorf("%w: deposit %d below %d", ErrThresholdNotMet, env.Value, ChannelMinDepositZat))
	}
	rec := ChannelRecord{
		Parties:  c.Parties,
		Deposit:  env.Value,
		Timeout:  c.TimeoutBlocks,
		OpenedAt: env.Height,
		State:    ChannelOpen,
	}
	if rec.Timeout == 0 {
		rec.Timeout = ChannelDefaultTimeout
	}
	if !rec.party(env.From) {
		return reject("channel-open", fmt.Errorf("%w: opener not among parties", ErrNotAParty))
	}
	if ok, err := t.Has(keyChannel(string(env.TxID))); err != nil {
		return err
	} else if ok {
		return reject("channel-open", fmt.Errorf("%w: channel %s", ErrDuplicate, env.TxID))
	}
	return t.Set(keyChannel(string(env.TxID)), rec)
}

func applyChannelClose(t *Tx, env *Envelope, c wire.ChannelClose) error {
	var rec ChannelRecord
	ok, err := t.Get(keyChannel(c.ChannelID), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return reject("channel-close", fmt.Errorf("%w: channel %s", ErrUnknownID, c.ChannelID))
	}
	if !rec.party(env.From) {
		return reject("channel-close", fmt.Errorf("%w: %s", ErrNotAParty, env.From))
	}
	if rec.State != ChannelOpen {
		return reject("channel-close", fmt.Errorf("%w: close on %s channel", ErrBadTransition, rec.State))
	}

	rec.State = ChannelClosing
	rec.FinalSeq = c.FinalSeq
	rec.ClosedAt = env.Height
	rec.ClosedBy = env.From
	return t.Set(keyChannel(c.ChannelID), rec)
}

func applyChannelDispute(t *Tx, env *Envelope, d wire.ChannelDispute) error {
	var rec ChannelRecord
	ok, err := t.Get(keyChannel(d.ChannelID), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return reject("channel-dispute", fmt.Errorf("%w: channel %s", ErrUnknownID, d.ChannelID))
	}
	if !rec.party(env.From) {
		return reject("channel-dispute", fmt.Errorf("%w: %s", ErrNotAParty, env.From))
	}
	if rec.State != ChannelClosing && rec.State != ChannelDisputed {
		return reject("channel-dispute", fmt.Errorf("%w: dispute on %s channel", ErrBadTransition, rec.State))
	}
	if env.Height >= rec.ClosedAt+bsp.Height(rec.Timeout) {
		return reject("channel-dispute", fmt.Errorf("%w: dispute window ended", ErrWindowClosed))
	}
	if len(d.Evidence) == 0 {
		return reject("channel-dispute", fmt.Errorf("dispute without evidence"))
	}

	rec.State = ChannelDisputed
	rec.Disputes++
	return t.Set(keyChannel(d.ChannelID), rec)
}

func applyChannelSettle(t *Tx, env *Envelope, s wire.ChannelSettle) error {
	var rec ChannelRecord
	ok, err := t.Get(keyChannel(s.ChannelID), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return reject("channel-settle", fmt.Errorf("%w: channel %s", ErrUnknownID, s.ChannelID))
	}
	if !rec.party(env.From) {
		return reject("channel-settle", fmt.Errorf("%w: %s", ErrNotAParty, env.From))
	}
	switch rec.State {
	case ChannelClosing, ChannelDisputed:
	case ChannelSettled:
		return reject("channel-settle", fmt.Errorf("%w: already settled", ErrBadTransition))
	default:
		return reject("channel-settle", fmt.Errorf("%w: settle on %s channel", ErrBadTransition, rec.State))
	}
	if env.Height < rec.ClosedAt+bsp.Height(rec.Timeout) {
		return reject("channel-settle", fmt.Errorf("%w: %d blocks remain", ErrTimeoutNotElapsed,
			rec.ClosedAt+bsp.Height(rec.Timeout)-env.Height))
	}
	if s.FinalSeq < rec.FinalSeq {
		return reject("channel-settle", fmt.Errorf("%w: settle seq %d behind %d", ErrBadTransition, s.FinalSeq, rec.FinalSeq))
	}

	rec.State = ChannelSettled
	rec.FinalSeq = s.FinalSeq
	rec.MessageHash = s.MessageHash
	return t.Set(keyChannel(s.ChannelID), rec)
}
