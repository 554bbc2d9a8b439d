// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package indexer

import (
	"github.com/botcash/go-bsp"
)

// Status is a point-in-time snapshot of the stores.
type Status struct {
	Network string     `json:"network"`
	Height  bsp.Height `json:"height"`
	Hash    string     `json:"hash"`

	// Journal is the number of archived envelopes, -1 when disabled.
	Journal int64 `json:"journal"`

	// on-disk state store footprint in bytes
	StateLSM  int64 `json:"stateLSM"`
	StateVlog int64 `json:"stateVlog"`
}

func (ix *Indexer) Status() (Status, error) {
	st := Status{Network: ix.params.Name, Journal: -1}

	cp, found, err := ix.Ledger.Checkpoint()
	if err != nil {
		return st, err
	}
	if found {
		st.Height = cp.Height
		st.Hash = cp.Hash
	}
	if ix.Journal != nil {
		st.Journal = ix.Journal.Seq() + 1
	}
	st.StateLSM, st.StateVlog = ix.DB.Size()
	return st, nil
}
