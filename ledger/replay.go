// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/botcash/go-bsp"
)

// ReplayBlock opens block h during a journal rebuild. Unlike BeginBlock
// it may jump past heights that carried no journaled envelopes; the
// skipped range's scheduled work runs in EndBlock. Replayed blocks
// record no undo log, so rebuilt history cannot be rolled back.
func (l *Ledger) ReplayBlock(h bsp.Height, hash string) (*BlockTx, error) {
	cp, found, err := l.Checkpoint()
	if err != nil {
		return nil, err
	}
	if found && h <= cp.Height {
		return nil, bsp.ReorgError{Height: h, Reason: fmt.Sprintf("replay at or below checkpoint %d", cp.Height)}
	}

	from := h
	if found {
		from = cp.Height + 1
	}
	b := &BlockTx{
		tx:     newTx(l.db.NewTransaction(true), false),
		height: h,
		hash:   hash,
		from:   from,
	}
	if err := b.tx.Set(keyBlock(h), hash); err != nil {
		b.Discard()
		return nil, err
	}
	return b, nil
}

// tallyDueThrough settles every proposal whose deadline falls at or
// before h. Deadline keys are big-endian height ordered, so the walk
// stops at the first future one.
func tallyDueThrough(t *Tx, h bsp.Height) error {
	type due struct {
		h  bsp.Height
		id string
	}
	var dues []due
	err := t.Iterate([]byte(kpGovDeadline), func(k, _ []byte) (bool, error) {
		rest := k[len(kpGovDeadline):]
		if len(rest) < 9 {
			return false, nil
		}
		dh := bsp.Height(binary.BigEndian.Uint64(rest[:8]))
		if dh > h {
			return true, nil
		}
		dues = append(dues, due{h: dh, id: string(rest[9:])})
		return false, nil
	})
	if err != nil {
		return err
	}

	for _, d := range dues {
		if err := tallyProposal(t, d.h, d.id); err != nil {
			return err
		}
	}
	return nil
}
