// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// bsp-indexer follows a stream of botcash blocks and folds their memo
// traffic into queryable state.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/log/term"
	cli "github.com/urfave/cli/v2"

	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/indexer"
	"github.com/botcash/go-bsp/internal/config"
)

// Version and Build are set by ldflags
var (
	Version = "snapshot"
	Build   = ""
)

var (
	longctx      context.Context
	shutdownFunc func()

	log kitlog.Logger
)

// Color by error type
func colorFn(keyvals ...interface{}) term.FgBgColor {
	for i := 1; i < len(keyvals); i += 2 {
		if _, ok := keyvals[i].(error); ok {
			return term.FgBgColor{Fg: term.Red}
		}
	}
	return term.FgBgColor{}
}

func check(err error) {
	if err != nil {
		level.Error(log).Log("err", err)
		os.Exit(1)
	}
}

var app = cli.App{
	Name:    "bsp-indexer",
	Usage:   "index the botcash memo protocol into queryable state",
	Version: "alpha1",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to bsp-indexer.toml (default: <repo>/bsp-indexer.toml)"},
		&cli.StringFlag{Name: "repo", Usage: "where to put the state db and journal (default: ~/.go-bsp)"},
		&cli.StringFlag{Name: "network", Value: "main", Usage: "chain network (main, test, regtest)"},
		&cli.StringFlag{Name: "node", Usage: "tcp address of a node-side block event stream"},
		&cli.StringFlag{Name: "stream", Usage: "file with block events, '-' for stdin (used when --node is unset)"},
		&cli.StringFlag{Name: "api", Usage: "address for the http/websocket query api"},
		&cli.StringFlag{Name: "debuglis", Usage: "prometheus listener address"},
		&cli.BoolFlag{Name: "nojournal", Usage: "disable the envelope journal (and with it feeds and rebuild)"},
	},

	Before: mergeConfigIntoFlags,
	Commands: []*cli.Command{
		runCmd,
		rebuildCmd,
		statusCmd,
	},
}

func init() {
	log = term.NewColorLogger(os.Stderr, kitlog.NewLogfmtLogger, colorFn)

	longctx = context.Background()
	longctx, shutdownFunc = context.WithCancel(longctx)
	signalc := make(chan os.Signal, 1)
	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalc
		level.Warn(log).Log("event", "shutting down", "sig", "caught")
		shutdownFunc()
	}()
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("%s (rev: %s, built: %s)\n", c.App.Version, Version, Build)
	}
	if err := app.Run(os.Args); err != nil {
		level.Error(log).Log("run-failure", err)
		os.Exit(1)
	}
}

// mergeConfigIntoFlags backfills flags the user did not pass from the
// config file and environment. Flags beat environment beats file.
func mergeConfigIntoFlags(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		repoDir := c.String("repo")
		if repoDir == "" {
			repoDir = config.ExpandPath(".go-bsp")
		}
		path = filepath.Join(repoDir, "bsp-indexer.toml")
	}
	conf, _ := readConfigAndEnv(path)

	apply := func(flag, key, val string) error {
		if !c.IsSet(flag) && conf.Has(key) {
			return c.Set(flag, val)
		}
		return nil
	}
	if err := apply("repo", "repo", conf.Repo); err != nil {
		return err
	}
	if err := apply("network", "network", conf.Network); err != nil {
		return err
	}
	if err := apply("node", "node", conf.NodeAddress); err != nil {
		return err
	}
	if err := apply("api", "api", conf.APIAddress); err != nil {
		return err
	}
	if err := apply("debuglis", "debuglis", conf.MetricsAddress); err != nil {
		return err
	}
	return apply("nojournal", "nojournal", strconv.FormatBool(bool(conf.NoJournal)))
}

func indexerOptions(c *cli.Context) []indexer.Option {
	opts := []indexer.Option{
		indexer.WithInfo(log),
		indexer.WithContext(longctx),
		indexer.WithNetwork(c.String("network")),
	}
	if repoDir := c.String("repo"); repoDir != "" {
		opts = append(opts, indexer.WithRepoPath(repoDir))
	}
	if c.Bool("nojournal") {
		opts = append(opts, indexer.DisableJournal())
	}
	return opts
}

// openSource dials the node stream, or falls back to a file / stdin.
func openSource(c *cli.Context) (chain.BlockSource, io.Closer, error) {
	if addr := c.String("node"); addr != "" {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("dial node stream %s: %w", addr, err)
		}
		return chain.NewStreamSource(conn), conn, nil
	}
	p := c.String("stream")
	if p == "" || p == "-" {
		return chain.NewStreamSource(os.Stdin), io.NopCloser(nil), nil
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, nil, fmt.Errorf("open block stream: %w", err)
	}
	return chain.NewStreamSource(f), f, nil
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "ingest blocks and serve queries",
	Action: func(c *cli.Context) error {
		src, closer, err := openSource(c)
		if err != nil {
			return err
		}
		// a pending read on the stream only unblocks by closing it
		go func() {
			<-longctx.Done()
			closer.Close()
		}()

		opts := append(indexerOptions(c),
			indexer.WithBlockSource(src),
			indexer.WithAPIAddr(c.String("api")),
		)
		if debugAddr := c.String("debuglis"); debugAddr != "" {
			opts = append(opts, indexer.WithMetrics(startDebug(debugAddr)))
		}

		ix, err := indexer.New(opts...)
		if err != nil {
			return err
		}
		defer ix.Close()

		level.Info(log).Log("event", "serving",
			"network", c.String("network"), "repo", c.String("repo"))
		err = ix.Serve(longctx)
		if errors.Is(err, io.EOF) {
			level.Info(log).Log("event", "block stream ended")
			return nil
		}
		return err
	},
}

var rebuildCmd = &cli.Command{
	Name:  "rebuild",
	Usage: "drop the state db and replay the journal",
	Action: func(c *cli.Context) error {
		ix, err := indexer.New(indexerOptions(c)...)
		if err != nil {
			return err
		}
		defer ix.Close()

		stats, err := ix.Rebuild(longctx)
		if err != nil {
			return err
		}
		fmt.Printf("rebuilt %s blocks to height %d\n", humanize.Comma(int64(stats.Blocks)), stats.Tip)
		fmt.Printf("  applied:  %s\n", humanize.Comma(int64(stats.Applied)))
		fmt.Printf("  rejected: %s\n", humanize.Comma(int64(stats.Rejected)))
		fmt.Printf("  orphaned: %s\n", humanize.Comma(int64(stats.Orphaned)))
		return nil
	},
}

var statusCmd = &cli.Command{
	Name:  "status",
	Usage: "print the stores' state",
	Action: func(c *cli.Context) error {
		ix, err := indexer.New(indexerOptions(c)...)
		if err != nil {
			return err
		}
		defer ix.Close()

		st, err := ix.Status()
		if err != nil {
			return err
		}
		fmt.Printf("network: %s\n", st.Network)
		if st.Hash == "" {
			fmt.Println("height:  none indexed yet")
		} else {
			fmt.Printf("height:  %s (%s)\n", humanize.Comma(int64(st.Height)), st.Hash)
		}
		if st.Journal < 0 {
			fmt.Println("journal: disabled")
		} else {
			fmt.Printf("journal: %s envelopes\n", humanize.Comma(st.Journal))
		}
		fmt.Printf("state:   %s lsm, %s value log\n",
			humanize.Bytes(uint64(st.StateLSM)), humanize.Bytes(uint64(st.StateVlog)))
		return nil
	},
}
