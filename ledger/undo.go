// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/botcash/go-bsp"
)

// undoEntry records one key's state before a mutation. A key mutated
// several times in one block gets several entries; reverse replay
// restores the oldest one last, which is the pre-block value.
type undoEntry struct {
	Key     []byte `json:"k"`
	Prior   []byte `json:"p,omitempty"`
	Existed bool   `json:"e"`
}

// sealUndo writes the block's undo log under its height. It must run in
// the same badger transaction as the mutations it describes.
func (t *Tx) sealUndo(h bsp.Height) error {
	raw, err := json.Marshal(t.undo)
	if err != nil {
		return fmt.Errorf("ledger: encode undo log for height %d: %w", h, err)
	}
	// bypass Set: the undo log must not undo itself
	if err := t.btx.Set(keyUndo(h), raw); err != nil {
		return fmt.Errorf("ledger: seal undo log for height %d: %w", h, err)
	}
	return nil
}

// rollbackHeight reverses the block at height h inside btx and drops its
// undo log. Missing undo log is an error: the caller asked to rewind past
// what the store can reverse.
func rollbackHeight(btx *badger.Txn, h bsp.Height) error {
	item, err := btx.Get(keyUndo(h))
	if err == badger.ErrKeyNotFound {
		return bsp.ReorgError{Height: h, Reason: "no undo log for height"}
	}
	if err != nil {
		return fmt.Errorf("ledger: load undo log for height %d: %w", h, err)
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return fmt.Errorf("ledger: load undo log for height %d: %w", h, err)
	}

	var entries []undoEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("ledger: decode undo log for height %d: %w", h, err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Existed {
			err = btx.Set(e.Key, e.Prior)
		} else {
			err = btx.Delete(e.Key)
		}
		if err != nil {
			return fmt.Errorf("ledger: rollback height %d key %q: %w", h, e.Key, err)
		}
	}

	if err := btx.Delete(keyUndo(h)); err != nil {
		return fmt.Errorf("ledger: drop undo log for height %d: %w", h, err)
	}
	return nil
}
