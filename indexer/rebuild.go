// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package indexer

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log/level"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/wire"
)

// RebuildStats summarizes one journal replay.
type RebuildStats struct {
	Envelopes int
	Applied   int
	Rejected  int
	Orphaned  int
	Blocks    int
	Tip       bsp.Height
}

// Rebuild drops the state store and replays the journal into a fresh
// one. The journal keeps envelopes from orphaned blocks; only the last
// hash appended for each height is canonical, earlier ones are skipped.
//
// Replayed blocks carry no undo logs. A reorg that forks below the tip
// reached here cannot be unwound and forces another rebuild.
func (ix *Indexer) Rebuild(ctx context.Context) (RebuildStats, error) {
	var stats RebuildStats
	if ix.Journal == nil {
		return stats, fmt.Errorf("indexer: rebuild needs the journal")
	}

	last := ix.Journal.Seq()

	// pass 1: the canonical hash for a height is the last one journaled
	canon := make(map[bsp.Height]string)
	for seq := int64(0); seq <= last; seq++ {
		env, err := ix.Journal.Get(seq)
		if err != nil {
			return stats, fmt.Errorf("indexer: rebuild: journal seq %d: %w", seq, err)
		}
		canon[env.Height] = env.BlockHash
	}

	level.Info(ix.info).Log("event", "rebuild-start",
		"envelopes", last+1, "heights", len(canon))

	if err := ix.DB.DropAll(); err != nil {
		return stats, fmt.Errorf("indexer: rebuild: drop state: %w", err)
	}

	// pass 2: apply canonical envelopes, one ledger txn per height
	var btx *ledger.BlockTx
	closeBlock := func() error {
		if btx == nil {
			return nil
		}
		if err := btx.EndBlock(); err != nil {
			btx.Discard()
			return err
		}
		if err := btx.Commit(); err != nil {
			return err
		}
		stats.Blocks++
		stats.Tip = btx.Height()
		btx = nil
		return nil
	}

	for seq := int64(0); seq <= last; seq++ {
		if err := ctx.Err(); err != nil {
			if btx != nil {
				btx.Discard()
			}
			return stats, bsp.ErrShuttingDown
		}

		env, err := ix.Journal.Get(seq)
		if err != nil {
			if btx != nil {
				btx.Discard()
			}
			return stats, fmt.Errorf("indexer: rebuild: journal seq %d: %w", seq, err)
		}
		stats.Envelopes++

		if env.BlockHash != canon[env.Height] {
			stats.Orphaned++
			continue
		}

		if btx != nil && env.Height != btx.Height() {
			if err := closeBlock(); err != nil {
				return stats, fmt.Errorf("indexer: rebuild: height %d: %w", stats.Tip, err)
			}
		}
		if btx == nil {
			btx, err = ix.Ledger.ReplayBlock(env.Height, env.BlockHash)
			if err != nil {
				return stats, fmt.Errorf("indexer: rebuild: begin height %d: %w", env.Height, err)
			}
			if uint64(env.Height)%1000 == 0 {
				level.Debug(ix.info).Log("event", "rebuild-progress",
					"height", env.Height, "seq", seq)
			}
		}

		if err := btx.Apply(env); err != nil {
			if !ledger.IsReject(err) {
				btx.Discard()
				return stats, fmt.Errorf("indexer: rebuild: apply seq %d: %w", seq, err)
			}
			// journaled envelopes were accepted once; a reject here means
			// the rules changed since, keep going
			stats.Rejected++
			level.Warn(ix.info).Log("event", "rebuild-reject",
				"seq", seq, "height", env.Height, "err", err)
			continue
		}
		stats.Applied++

		switch env.Msg.Type {
		case wire.TypePost, wire.TypeComment, wire.TypeMedia, wire.TypeBridgePost:
			if err := ledger.AddToFeed(btx.Tx(), env.From, uint64(seq)); err != nil {
				btx.Discard()
				return stats, fmt.Errorf("indexer: rebuild: feed seq %d: %w", seq, err)
			}
		}
	}
	if err := closeBlock(); err != nil {
		return stats, fmt.Errorf("indexer: rebuild: final height: %w", err)
	}

	level.Info(ix.info).Log("event", "rebuild-done",
		"blocks", stats.Blocks, "applied", stats.Applied,
		"rejected", stats.Rejected, "orphaned", stats.Orphaned,
		"tip", stats.Tip)
	return stats, nil
}
