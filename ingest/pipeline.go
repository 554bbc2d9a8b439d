// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/internal/broadcasts"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/repo"
	"github.com/botcash/go-bsp/wire"
)

// Metrics are the pipeline's instrumentation hooks. Any field may be
// nil.
type Metrics struct {
	BlocksApplied    metrics.Counter
	BlocksRolledBack metrics.Counter
	EnvsAccepted     metrics.Counter
	EnvsRejected     metrics.Counter
	MemosMalformed   metrics.Counter
	TipLag           metrics.Gauge
}

// Pipeline pulls the block source and feeds the ledger, journal and
// feed index.
type Pipeline struct {
	src     chain.BlockSource
	ldg     *ledger.Ledger
	journal *repo.Journal
	params  chain.Params

	logger  kitlog.Logger
	metrics Metrics
	bcast   *broadcasts.BlockUpdates
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithJournal archives accepted envelopes and maintains the per-author
// feed index.
func WithJournal(j *repo.Journal) Option {
	return func(p *Pipeline) error {
		p.journal = j
		return nil
	}
}

// WithMetrics wires instrumentation.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithBroadcasts publishes a BlockUpdate after every applied or
// reversed block.
func WithBroadcasts(b *broadcasts.BlockUpdates) Option {
	return func(p *Pipeline) error {
		p.bcast = b
		return nil
	}
}

// New creates a pipeline over src and ldg.
func New(logger kitlog.Logger, src chain.BlockSource, ldg *ledger.Ledger, params chain.Params, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		src:    src,
		ldg:    ldg,
		params: params,
		logger: kitlog.With(logger, "unit", "ingest"),
	}
	for i, o := range opts {
		if err := o(p); err != nil {
			return nil, fmt.Errorf("ingest: option %d: %w", i, err)
		}
	}
	return p, nil
}

// Run consumes the source until ctx ends or the stream becomes
// inconsistent with the store. Per-envelope problems never stop it.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		ev, err := p.src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return bsp.ErrShuttingDown
			}
			return fmt.Errorf("ingest: block source: %w", err)
		}

		switch ev.Kind {
		case chain.Connect:
			if err := p.connect(ctx, ev.Block); err != nil {
				return err
			}
		case chain.Disconnect:
			if err := p.unwind(ctx, ev.ForkHeight); err != nil {
				return err
			}
		default:
			level.Warn(p.logger).Log("event", "unknown-event", "kind", ev.Kind)
		}
	}
}

func (p *Pipeline) connect(ctx context.Context, b *chain.Block) error {
	cp, found, err := p.ldg.Checkpoint()
	if err != nil {
		return err
	}
	if found && b.Height <= cp.Height {
		// replay after restart
		level.Debug(p.logger).Log("event", "skip-applied", "height", b.Height)
		return nil
	}
	if found && b.Height != cp.Height+1 {
		return bsp.ReorgError{Height: b.Height, Reason: fmt.Sprintf("gap after checkpoint %d", cp.Height)}
	}

	stats, err := p.applyBlock(b)
	if err != nil {
		return err
	}

	if c := p.metrics.BlocksApplied; c != nil {
		c.Add(1)
	}
	if c := p.metrics.EnvsAccepted; c != nil {
		c.Add(float64(stats.Accepted))
	}
	if c := p.metrics.EnvsRejected; c != nil {
		c.Add(float64(stats.Rejected))
	}
	if c := p.metrics.MemosMalformed; c != nil {
		c.Add(float64(stats.Malformed))
	}
	if g := p.metrics.TipLag; g != nil {
		g.Set(float64(int64(p.src.Tip()) - int64(b.Height)))
	}

	if stats.Accepted+stats.Rejected+stats.Malformed > 0 {
		level.Info(p.logger).Log("event", "block-applied", "height", b.Height,
			"accepted", stats.Accepted, "rejected", stats.Rejected,
			"malformed", stats.Malformed, "batches", stats.Batches)
	}

	if p.bcast != nil {
		p.bcast.Update(ctx, broadcasts.BlockUpdate{
			Height:    b.Height,
			Hash:      b.Hash,
			Accepted:  stats.Accepted,
			Rejected:  stats.Rejected,
			Malformed: stats.Malformed,
		})
	}

	// blocks beyond the reorg horizon never need their undo logs again
	horizon := bsp.Height(p.params.ReorgHorizon)
	if b.Height > horizon && uint64(b.Height)%64 == 0 {
		if err := p.ldg.PruneUndo(b.Height - horizon); err != nil {
			level.Warn(p.logger).Log("event", "prune-failed", "err", err)
		}
	}
	return nil
}

// applyBlock decodes and applies one block atomically.
func (p *Pipeline) applyBlock(b *chain.Block) (BlockStats, error) {
	envs, stats := decodeBlock(b)

	btx, err := p.ldg.BeginBlock(b.Height, b.Hash)
	if err != nil {
		return stats, err
	}

	for _, env := range envs {
		err := btx.Apply(env)
		switch {
		case err == nil:
			stats.Accepted++
			if jerr := p.archive(btx, env); jerr != nil {
				btx.Discard()
				return stats, jerr
			}
		case ledger.IsReject(err):
			stats.Rejected++
			level.Debug(p.logger).Log("event", "envelope-rejected",
				"height", env.Height, "tx", env.TxID, "type", env.Msg.Type.String(), "err", err)
		default:
			btx.Discard()
			return stats, fmt.Errorf("ingest: apply %s at %d: %w", env.TxID, env.Height, err)
		}
	}

	if err := btx.EndBlock(); err != nil {
		btx.Discard()
		return stats, err
	}
	return stats, btx.Commit()
}

// archive journals the accepted envelope and indexes content types into
// the author's feed.
func (p *Pipeline) archive(btx *ledger.BlockTx, env *ledger.Envelope) error {
	if p.journal == nil {
		return nil
	}
	seq, err := p.journal.Append(env)
	if err != nil {
		return err
	}
	switch env.Msg.Type {
	case wire.TypePost, wire.TypeComment, wire.TypeMedia, wire.TypeBridgePost:
		return ledger.AddToFeed(btx.Tx(), env.From, uint64(seq))
	}
	return nil
}

// unwind rolls the ledger back to fork. A reorg deeper than the undo
// horizon surfaces as a ReorgError; the store must be rebuilt then.
func (p *Pipeline) unwind(ctx context.Context, fork bsp.Height) error {
	for {
		cp, found, err := p.ldg.Checkpoint()
		if err != nil {
			return err
		}
		if !found || cp.Height <= fork {
			return nil
		}

		prev, err := p.ldg.Rollback()
		if err != nil {
			return err
		}
		if c := p.metrics.BlocksRolledBack; c != nil {
			c.Add(1)
		}
		level.Info(p.logger).Log("event", "block-rolledback", "height", cp.Height, "now", prev.Height)

		if p.bcast != nil {
			p.bcast.Update(ctx, broadcasts.BlockUpdate{
				Height:     cp.Height,
				Hash:       cp.Hash,
				Rolledback: true,
			})
		}
	}
}
