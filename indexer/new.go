// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package indexer assembles a whole node: repo, ledger, journal,
// pipeline and query API, opened with functional options and torn down
// in one Close.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/dgraph-io/badger/v3"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/ingest"
	"github.com/botcash/go-bsp/internal/broadcasts"
	"github.com/botcash/go-bsp/internal/ctxutils"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/query"
	"github.com/botcash/go-bsp/repo"
)

// Indexer is one running node.
type Indexer struct {
	repoPath  string
	params    chain.Params
	apiAddr   string
	info      kitlog.Logger
	rootCtx   context.Context
	source    chain.BlockSource
	metrics   ingest.Metrics
	noJournal bool

	closers  multiCloser
	Shutdown context.CancelFunc

	DB       *badger.DB
	Ledger   *ledger.Ledger
	Journal  *repo.Journal
	Updates  *broadcasts.BlockUpdates
	Reader   *query.Reader
	Pipeline *ingest.Pipeline
}

// New opens an indexer. The block source option is required unless the
// caller only runs offline maintenance (Rebuild, Status).
func New(fopts ...Option) (*Indexer, error) {
	var ix Indexer
	for i, opt := range fopts {
		if err := opt(&ix); err != nil {
			return nil, fmt.Errorf("indexer: option %d failed: %w", i, err)
		}
	}

	if ix.repoPath == "" {
		p, err := defaultRepoPath()
		if err != nil {
			return nil, err
		}
		ix.repoPath = p
	}
	if ix.params.Name == "" {
		ix.params = chain.MainNet
	}
	if ix.info == nil {
		ix.info = defaultLogger()
	}
	if ix.rootCtx == nil {
		ix.rootCtx = context.TODO()
	}

	return initIndexer(&ix)
}

func initIndexer(ix *Indexer) (*Indexer, error) {
	r := repo.New(ix.repoPath)

	db, err := repo.OpenStateDB(r)
	if err != nil {
		return nil, fmt.Errorf("indexer: failed to open state db: %w", err)
	}
	ix.closers.addCloser(db)
	ix.DB = db
	ix.Ledger = ledger.New(db)

	if !ix.noJournal {
		j, err := repo.OpenJournal(r)
		if err != nil {
			ix.closers.Close()
			return nil, fmt.Errorf("indexer: failed to open journal: %w", err)
		}
		ix.closers.addCloser(j)
		ix.Journal = j
	}

	ix.Updates = broadcasts.NewBlockUpdates()
	ix.closers.addCloser(ix.Updates)

	ix.Reader = query.NewReader(ix.Ledger, ix.Journal)

	if ix.source != nil {
		opts := []ingest.Option{
			ingest.WithBroadcasts(ix.Updates),
			ingest.WithMetrics(ix.metrics),
		}
		if ix.Journal != nil {
			opts = append(opts, ingest.WithJournal(ix.Journal))
		}
		p, err := ingest.New(ix.info, ix.source, ix.Ledger, ix.params, opts...)
		if err != nil {
			ix.closers.Close()
			return nil, err
		}
		ix.Pipeline = p
	}

	return ix, nil
}

// Serve runs the pipeline and, when configured, the query API until the
// context ends or ingestion fails hard.
func (ix *Indexer) Serve(parent context.Context) error {
	if ix.Pipeline == nil {
		return errors.New("indexer: no block source configured")
	}
	if parent == nil {
		parent = ix.rootCtx
	}

	ctx, shutdown := ctxutils.WithError(parent, bsp.ErrShuttingDown)
	ix.Shutdown = shutdown
	defer shutdown()

	if ix.apiAddr != "" {
		lis, err := net.Listen("tcp", ix.apiAddr)
		if err != nil {
			return fmt.Errorf("indexer: api listen on %s: %w", ix.apiAddr, err)
		}
		api := query.NewAPI(ix.info, ix.Reader, ix.Updates)
		srv := &http.Server{Handler: api.Handler()}
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		go func() {
			level.Info(ix.info).Log("event", "api-listening", "addr", lis.Addr())
			if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
				level.Warn(ix.info).Log("event", "api-exited", "err", err)
			}
		}()
	}

	err := ix.Pipeline.Run(ctx)
	if errors.Is(err, bsp.ErrShuttingDown) {
		return nil
	}
	return err
}

// Close tears the node down. Safe to call after a failed Serve.
func (ix *Indexer) Close() error {
	if ix.Shutdown != nil {
		ix.Shutdown()
	}
	level.Info(ix.info).Log("event", "closing")
	return ix.closers.Close()
}
