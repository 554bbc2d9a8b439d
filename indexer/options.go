// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package indexer

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	kitlog "github.com/go-kit/kit/log"

	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/ingest"
)

// Option configures an Indexer before it opens anything.
type Option func(*Indexer) error

// WithRepoPath sets the on-disk repo location. Defaults to ~/.go-bsp.
func WithRepoPath(path string) Option {
	return func(ix *Indexer) error {
		ix.repoPath = path
		return nil
	}
}

// WithNetwork selects the chain parameter set by name.
func WithNetwork(name string) Option {
	return func(ix *Indexer) error {
		p, err := chain.ByName(name)
		if err != nil {
			return err
		}
		ix.params = p
		return nil
	}
}

// WithBlockSource sets the stream of chain events. Required.
func WithBlockSource(src chain.BlockSource) Option {
	return func(ix *Indexer) error {
		ix.source = src
		return nil
	}
}

// WithInfo sets the logger.
func WithInfo(log kitlog.Logger) Option {
	return func(ix *Indexer) error {
		ix.info = log
		return nil
	}
}

// WithContext sets the root context everything under Serve derives
// from.
func WithContext(ctx context.Context) Option {
	return func(ix *Indexer) error {
		ix.rootCtx = ctx
		return nil
	}
}

// WithAPIAddr enables the HTTP/websocket query API on addr.
func WithAPIAddr(addr string) Option {
	return func(ix *Indexer) error {
		ix.apiAddr = addr
		return nil
	}
}

// WithMetrics wires pipeline instrumentation.
func WithMetrics(m ingest.Metrics) Option {
	return func(ix *Indexer) error {
		ix.metrics = m
		return nil
	}
}

// DisableJournal turns off the envelope journal and with it the feed
// index. Balances, channels, governance and recovery still work.
func DisableJournal() Option {
	return func(ix *Indexer) error {
		ix.noJournal = true
		return nil
	}
}

func defaultRepoPath() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("indexer: no current user: %w", err)
	}
	return filepath.Join(u.HomeDir, ".go-bsp"), nil
}

func defaultLogger() kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
}
