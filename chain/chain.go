// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package chain abstracts the block stream the indexer consumes. A
// source delivers connected blocks in height order and announces reorgs
// as disconnect events; everything above this package is deterministic
// on that stream.
package chain

import (
	"context"

	"github.com/botcash/go-bsp"
)

// MemoOutput is one shielded output carrying a memo field.
type MemoOutput struct {
	Index uint16 `json:"index"`
	Value uint64 `json:"value"`
	Memo  []byte `json:"memo"`
}

// MemoTx is one transaction's memo-bearing outputs. From is the sender
// identity the node attributes to the spend; outputs without a
// decodable sender are dropped by the source.
type MemoTx struct {
	ID      bsp.TxID     `json:"id"`
	From    bsp.Address  `json:"from"`
	Outputs []MemoOutput `json:"outputs"`
}

// Block is one connected block, already filtered down to memo traffic.
type Block struct {
	Height   bsp.Height `json:"height"`
	Hash     string     `json:"hash"`
	PrevHash string     `json:"prev"`
	Time     int64      `json:"time"`
	Txs      []MemoTx   `json:"txs,omitempty"`
}

// EventKind tags a block stream event.
type EventKind int

const (
	// Connect extends the tip with Event.Block.
	Connect EventKind = iota

	// Disconnect announces a reorg: every block above Event.ForkHeight
	// is orphaned and the source re-delivers from there.
	Disconnect
)

func (k EventKind) String() string {
	switch k {
	case Connect:
		return "connect"
	case Disconnect:
		return "disconnect"
	}
	return "unknown"
}

// Event is one block stream event.
type Event struct {
	Kind       EventKind  `json:"kind"`
	Block      *Block     `json:"block,omitempty"`
	ForkHeight bsp.Height `json:"fork,omitempty"`
}

// BlockSource streams chain events in order. Next blocks until an event
// is available or ctx ends.
type BlockSource interface {
	Next(ctx context.Context) (Event, error)

	// Tip is the source's current best height, for lag metrics.
	Tip() bsp.Height
}
