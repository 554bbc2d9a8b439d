// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package repo

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

const statePath = "state"

func badgerOpts(dbPath string) badger.Options {
	opts := badger.DefaultOptions(dbPath)
	// the state store holds small records; badger's own chatter goes
	// through our logger or nowhere
	opts = opts.WithLogger(nil)
	return opts
}

// OpenStateDB opens the ledger's badger store under the repo.
func OpenStateDB(r Interface) (*badger.DB, error) {
	pth := r.GetPath(statePath)
	if err := mkdirFor(pth); err != nil {
		return nil, fmt.Errorf("repo: make state dir: %w", err)
	}
	db, err := badger.Open(badgerOpts(pth))
	if err != nil {
		return nil, fmt.Errorf("repo: open badger at %s: %w", pth, err)
	}
	return db, nil
}
