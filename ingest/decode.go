// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package ingest drives the block stream into the ledger: decode memos
// in parallel, apply envelopes in deterministic order, one badger
// transaction per block, and unwind on reorg.
package ingest

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/wire"
)

// BlockStats counts one block's decode and apply outcomes.
type BlockStats struct {
	Accepted  int
	Rejected  int
	Malformed int
	Empty     int
	Batches   int
}

// decodeBlock turns a block into its ordered envelope list. Memos
// decode concurrently per transaction; the output order is the block's
// transaction order, then output order, then batch action order, so the
// result is independent of scheduling.
func decodeBlock(b *chain.Block) ([]*ledger.Envelope, BlockStats) {
	type txResult struct {
		envs  []*ledger.Envelope
		stats BlockStats
	}

	results := make([]txResult, len(b.Txs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range b.Txs {
		i := i
		g.Go(func() error {
			results[i].envs, results[i].stats = decodeTx(b.Height, &b.Txs[i])
			return nil
		})
	}
	g.Wait() // decode never errors, it counts

	var (
		envs  []*ledger.Envelope
		stats BlockStats
	)
	for _, res := range results {
		for _, env := range res.envs {
			env.BlockHash = b.Hash
		}
		envs = append(envs, res.envs...)
		stats.Malformed += res.stats.Malformed
		stats.Empty += res.stats.Empty
		stats.Batches += res.stats.Batches
	}
	return envs, stats
}

func decodeTx(h bsp.Height, tx *chain.MemoTx) ([]*ledger.Envelope, BlockStats) {
	var (
		envs  []*ledger.Envelope
		stats BlockStats
	)
	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		msg, err := wire.Decode(out.Memo)
		if err != nil {
			if err == wire.ErrEmpty {
				stats.Empty++
			} else {
				stats.Malformed++
			}
			continue
		}

		if msg.Type == wire.TypeBatch {
			batch, ok := expandBatch(h, tx, out, msg)
			if !ok {
				stats.Malformed++
				continue
			}
			stats.Batches++
			envs = append(envs, batch...)
			continue
		}

		body, err := msg.Body()
		if err != nil {
			stats.Malformed++
			continue
		}
		envs = append(envs, &ledger.Envelope{
			Height:      h,
			TxID:        tx.ID,
			OutputIndex: out.Index,
			From:        tx.From,
			Value:       out.Value,
			Msg:         msg,
			Body:        body,
		})
	}
	return envs, stats
}

// expandBatch flattens a batch memo. All-or-nothing: one bad action
// drops the whole batch.
func expandBatch(h bsp.Height, tx *chain.MemoTx, out *chain.MemoOutput, msg wire.Message) ([]*ledger.Envelope, bool) {
	actions, err := wire.DecodeBatch(msg)
	if err != nil {
		return nil, false
	}
	envs := make([]*ledger.Envelope, 0, len(actions))
	for i, action := range actions {
		body, err := action.Body()
		if err != nil {
			return nil, false
		}
		// one output funds the whole batch; only the first action may
		// spend its value, the rest apply unfunded
		value := uint64(0)
		if i == 0 {
			value = out.Value
		}
		envs = append(envs, &ledger.Envelope{
			Height:      h,
			TxID:        tx.ID,
			OutputIndex: out.Index,
			From:        tx.From,
			Value:       value,
			Msg:         action,
			Body:        body,
		})
	}
	return envs, true
}
