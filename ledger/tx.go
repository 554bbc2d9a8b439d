// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tx wraps one badger transaction and records an undo entry for every
// mutation, so a whole block can be reversed key by key on reorg. All the
// apply functions below go through Set/Delete; writing to the badger
// transaction directly would escape the undo log.
type Tx struct {
	btx    *badger.Txn
	undo   []undoEntry
	record bool
}

func newTx(btx *badger.Txn, record bool) *Tx {
	return &Tx{btx: btx, record: record}
}

func isNotFound(err error) bool { return err == badger.ErrKeyNotFound }

// Get unmarshals the value at key into v. The bool reports presence.
func (t *Tx) Get(key []byte, v interface{}) (bool, error) {
	item, err := t.btx.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: get %q: %w", key, err)
	}
	err = item.Value(func(raw []byte) error {
		return json.Unmarshal(raw, v)
	})
	if err != nil {
		return false, fmt.Errorf("ledger: decode %q: %w", key, err)
	}
	return true, nil
}

// Has reports presence without decoding.
func (t *Tx) Has(key []byte) (bool, error) {
	_, err := t.btx.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: get %q: %w", key, err)
	}
	return true, nil
}

// Set marshals v and stores it, snapshotting the prior value first.
func (t *Tx) Set(key []byte, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: encode %q: %w", key, err)
	}
	return t.SetRaw(key, raw)
}

// SetRaw stores raw bytes, snapshotting the prior value first.
func (t *Tx) SetRaw(key, raw []byte) error {
	if err := t.snapshot(key); err != nil {
		return err
	}
	if err := t.btx.Set(key, raw); err != nil {
		return fmt.Errorf("ledger: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key, snapshotting the prior value first.
func (t *Tx) Delete(key []byte) error {
	if err := t.snapshot(key); err != nil {
		return err
	}
	if err := t.btx.Delete(key); err != nil {
		return fmt.Errorf("ledger: delete %q: %w", key, err)
	}
	return nil
}

// AddU64 adds delta to the u64 counter at key and returns the new value.
func (t *Tx) AddU64(key []byte, delta uint64) (uint64, error) {
	var cur uint64
	if _, err := t.Get(key, &cur); err != nil {
		return 0, err
	}
	cur += delta
	return cur, t.Set(key, cur)
}

// SubU64 subtracts delta, clamping at zero.
func (t *Tx) SubU64(key []byte, delta uint64) (uint64, error) {
	var cur uint64
	if _, err := t.Get(key, &cur); err != nil {
		return 0, err
	}
	if delta > cur {
		cur = 0
	} else {
		cur -= delta
	}
	return cur, t.Set(key, cur)
}

// Iterate walks all keys under prefix in lexicographic order. The
// callback sees copies; returning stop ends the walk early.
func (t *Tx) Iterate(prefix []byte, fn func(key, raw []byte) (stop bool, err error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.btx.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		k := item.KeyCopy(nil)
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("ledger: iterate %q: %w", prefix, err)
		}
		stop, err := fn(k, raw)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (t *Tx) snapshot(key []byte) error {
	if !t.record {
		return nil
	}
	e := undoEntry{Key: append([]byte(nil), key...)}
	item, err := t.btx.Get(key)
	switch {
	case err == badger.ErrKeyNotFound:
		// absent before; undo deletes it
	case err != nil:
		return fmt.Errorf("ledger: snapshot %q: %w", key, err)
	default:
		prior, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("ledger: snapshot %q: %w", key, err)
		}
		e.Prior = prior
		e.Existed = true
	}
	t.undo = append(t.undo, e)
	return nil
}
