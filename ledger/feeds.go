// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/botcash/go-bsp"
)

// Per-author feed index: a compressed bitmap of journal sequences per
// address. Stored through the block transaction, so it rolls back with
// the block that wrote it.

const kpFeed = "feed:"

func keyFeed(a bsp.Address) []byte { return key(kpFeed, string(a)) }

// AddToFeed marks journal sequence seq as content by a.
func AddToFeed(t *Tx, a bsp.Address, seq uint64) error {
	bm, err := loadFeed(t, a)
	if err != nil {
		return err
	}
	bm.Add(seq)
	raw, err := bm.MarshalBinary()
	if err != nil {
		return fmt.Errorf("ledger: encode feed %s: %w", a, err)
	}
	return t.SetRaw(keyFeed(a), raw)
}

// Feed returns a's journal sequences, oldest first.
func Feed(t *Tx, a bsp.Address) ([]uint64, error) {
	bm, err := loadFeed(t, a)
	if err != nil {
		return nil, err
	}
	return bm.ToArray(), nil
}

func loadFeed(t *Tx, a bsp.Address) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	item, err := t.btx.Get(keyFeed(a))
	if isNotFound(err) {
		return bm, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: load feed %s: %w", a, err)
	}
	err = item.Value(func(raw []byte) error {
		return bm.UnmarshalBinary(raw)
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: decode feed %s: %w", a, err)
	}
	return bm, nil
}
