// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package broadcasts fans applied-block notifications out to registered
// listeners (websocket streams, metrics, tests).
package broadcasts

import (
	"context"
	"io"
	"sync"

	"github.com/botcash/go-bsp"
)

// BlockUpdate describes one block the pipeline finished: either applied
// (Rolledback false) or reversed during a reorg.
type BlockUpdate struct {
	Height     bsp.Height `json:"height"`
	Hash       string     `json:"hash"`
	Accepted   int        `json:"accepted"`
	Rejected   int        `json:"rejected"`
	Malformed  int        `json:"malformed"`
	Rolledback bool       `json:"rolledback,omitempty"`
}

// BlockUpdater receives block updates.
type BlockUpdater interface {
	Update(context.Context, BlockUpdate) error
	io.Closer
}

// CancelFunc stops a subscription and closes its stream.
type CancelFunc func()

// NewBlockUpdates creates an empty broadcaster.
func NewBlockUpdates() *BlockUpdates {
	return &BlockUpdates{sinks: make(map[*BlockUpdater]struct{})}
}

type BlockUpdates struct {
	mu    sync.Mutex
	sinks map[*BlockUpdater]struct{}
}

var _ BlockUpdater = (*BlockUpdates)(nil)

// Register subscribes sink until the returned cancel runs.
func (bcst *BlockUpdates) Register(sink *BlockUpdater) CancelFunc {
	bcst.mu.Lock()
	defer bcst.mu.Unlock()

	bcst.sinks[sink] = struct{}{}

	return func() {
		bcst.mu.Lock()
		defer bcst.mu.Unlock()
		delete(bcst.sinks, sink)
		(*sink).Close()
	}
}

// Update fans upd out; a failing sink is dropped.
func (bcst *BlockUpdates) Update(ctx context.Context, upd BlockUpdate) error {
	bcst.mu.Lock()
	defer bcst.mu.Unlock()

	for sink := range bcst.sinks {
		if err := (*sink).Update(ctx, upd); err != nil {
			delete(bcst.sinks, sink)
		}
	}
	return nil
}

// Close closes every sink and empties the registry.
func (bcst *BlockUpdates) Close() error {
	bcst.mu.Lock()
	defer bcst.mu.Unlock()

	for sink := range bcst.sinks {
		(*sink).Close()
	}
	bcst.sinks = make(map[*BlockUpdater]struct{})
	return nil
}

// FuncUpdater adapts a function to the BlockUpdater interface.
type FuncUpdater func(BlockUpdate) error

func (f FuncUpdater) Update(_ context.Context, u BlockUpdate) error { return f(u) }
func (f FuncUpdater) Close() error                                  { return nil }
