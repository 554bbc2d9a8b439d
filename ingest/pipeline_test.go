// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/internal/broadcasts"
	"github.com/botcash/go-bsp/internal/testutils"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/repo"
	"github.com/botcash/go-bsp/wire"
)

var errScriptDone = errors.New("script exhausted")

// scriptSource replays a fixed event list, then fails with
// errScriptDone so Run returns.
type scriptSource struct {
	events []chain.Event
	pos    int
	tip    bsp.Height
}

func (s *scriptSource) Next(ctx context.Context) (chain.Event, error) {
	if err := ctx.Err(); err != nil {
		return chain.Event{}, err
	}
	if s.pos >= len(s.events) {
		return chain.Event{}, errScriptDone
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *scriptSource) Tip() bsp.Height { return s.tip }

func connect(b *chain.Block) chain.Event { return chain.Event{Kind: chain.Connect, Block: b} }

func disconnect(fork bsp.Height) chain.Event {
	return chain.Event{Kind: chain.Disconnect, ForkHeight: fork}
}

func openTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return ledger.New(db)
}

func runScript(t *testing.T, l *ledger.Ledger, events []chain.Event, opts ...Option) {
	t.Helper()
	r := require.New(t)

	src := &scriptSource{events: events}
	if n := len(events); n > 0 && events[n-1].Block != nil {
		src.tip = events[n-1].Block.Height
	}

	p, err := New(testutils.NewRelativeTimeLogger(io.Discard), src, l, chain.RegTest, opts...)
	r.NoError(err)
	r.ErrorIs(p.Run(context.Background()), errScriptDone)
}

func TestPipelineAppliesAndArchives(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	rp := repo.New(t.TempDir())
	j, err := repo.OpenJournal(rp)
	r.NoError(err)
	defer j.Close()

	events := []chain.Event{
		connect(&chain.Block{Height: 1, Hash: "h1", Txs: []chain.MemoTx{
			mkTx(hexID(1), "B1alice", 0, memoOf(t, wire.Post{Content: "hello"})),
		}}),
		connect(&chain.Block{Height: 2, Hash: "h2", Txs: []chain.MemoTx{
			mkTx(hexID(2), "B1bob", 0, memoOf(t, wire.Upvote{Target: hexID(1)})),
		}}),
	}
	runScript(t, l, events, WithJournal(j))

	cp, found, err := l.Checkpoint()
	r.NoError(err)
	r.True(found)
	r.EqualValues(2, cp.Height)
	r.Equal("h2", cp.Hash)

	err = l.View(func(tx *ledger.Tx) error {
		post, ok, err := ledger.GetPost(tx, hexID(1))
		r.NoError(err)
		r.True(ok)
		r.EqualValues(1, post.Upvotes)

		// the post is in alice's feed, the upvote is journaled but not
		feed, err := ledger.Feed(tx, "B1alice")
		r.NoError(err)
		r.Equal([]uint64{0}, feed)
		feed, err = ledger.Feed(tx, "B1bob")
		r.NoError(err)
		r.Empty(feed)
		return nil
	})
	r.NoError(err)

	r.EqualValues(1, j.Seq())
	env, err := j.Get(0)
	r.NoError(err)
	r.Equal(hexID(1), env.TxID)
	r.Equal(wire.TypePost, env.Msg.Type)
}

func TestPipelineCountsAndSkipsReplay(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	var updates []broadcasts.BlockUpdate
	bcast := broadcasts.NewBlockUpdates()
	var sink broadcasts.BlockUpdater = broadcasts.FuncUpdater(func(u broadcasts.BlockUpdate) error {
		updates = append(updates, u)
		return nil
	})
	cancel := bcast.Register(&sink)
	defer cancel()

	b1 := &chain.Block{Height: 1, Hash: "h1", Txs: []chain.MemoTx{
		mkTx(hexID(1), "B1alice", 0,
			memoOf(t, wire.Post{Content: "kept"}),
			memoOf(t, wire.Upvote{Target: hexID(9)}), // unknown target, rejected
			padMemo([]byte{0x99, 0x01, 0x00, 0x00}),  // undefined type
			make([]byte, bsp.MemoSize),
		),
	}}

	// the same block twice; the second delivery is a replay and must
	// not double-apply
	runScript(t, l, []chain.Event{connect(b1), connect(b1)}, WithBroadcasts(bcast))

	r.Len(updates, 1)
	r.EqualValues(1, updates[0].Height)
	r.Equal(1, updates[0].Accepted)
	r.Equal(1, updates[0].Rejected)
	r.Equal(1, updates[0].Malformed)
	r.False(updates[0].Rolledback)

	cp, found, err := l.Checkpoint()
	r.NoError(err)
	r.True(found)
	r.EqualValues(1, cp.Height)
}

func TestPipelineReorg(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	var updates []broadcasts.BlockUpdate
	bcast := broadcasts.NewBlockUpdates()
	var sink broadcasts.BlockUpdater = broadcasts.FuncUpdater(func(u broadcasts.BlockUpdate) error {
		updates = append(updates, u)
		return nil
	})
	cancel := bcast.Register(&sink)
	defer cancel()

	events := []chain.Event{
		connect(&chain.Block{Height: 1, Hash: "a1", Txs: []chain.MemoTx{
			mkTx(hexID(1), "B1alice", 0, memoOf(t, wire.Post{Content: "stays"})),
		}}),
		connect(&chain.Block{Height: 2, Hash: "a2", Txs: []chain.MemoTx{
			mkTx(hexID(2), "B1bob", 0, memoOf(t, wire.Upvote{Target: hexID(1)})),
			mkTx(hexID(3), "B1carol", 0, memoOf(t, wire.Post{Content: "orphaned"})),
		}}),
		disconnect(1),
		connect(&chain.Block{Height: 2, Hash: "b2", Txs: []chain.MemoTx{
			mkTx(hexID(4), "B1bob", 0, memoOf(t, wire.Post{Content: "replacement"})),
		}}),
		connect(&chain.Block{Height: 3, Hash: "b3"}),
	}
	runScript(t, l, events, WithBroadcasts(bcast))

	cp, found, err := l.Checkpoint()
	r.NoError(err)
	r.True(found)
	r.EqualValues(3, cp.Height)
	r.Equal("b3", cp.Hash)

	err = l.View(func(tx *ledger.Tx) error {
		post, ok, err := ledger.GetPost(tx, hexID(1))
		r.NoError(err)
		r.True(ok)
		r.EqualValues(0, post.Upvotes, "orphaned upvote must be reversed")

		_, ok, err = ledger.GetPost(tx, hexID(3))
		r.NoError(err)
		r.False(ok, "orphaned post must be gone")

		_, ok, err = ledger.GetPost(tx, hexID(4))
		r.NoError(err)
		r.True(ok)
		return nil
	})
	r.NoError(err)

	var rolled []bsp.Height
	for _, u := range updates {
		if u.Rolledback {
			rolled = append(rolled, u.Height)
		}
	}
	r.Equal([]bsp.Height{2}, rolled)
}

func TestPipelineGapIsFatal(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	src := &scriptSource{events: []chain.Event{
		connect(&chain.Block{Height: 1, Hash: "h1"}),
		connect(&chain.Block{Height: 4, Hash: "h4"}),
	}}
	p, err := New(testutils.NewRelativeTimeLogger(io.Discard), src, l, chain.RegTest)
	r.NoError(err)

	err = p.Run(context.Background())
	r.Error(err)
	r.True(bsp.IsReorgError(err))
}

func TestPipelineDeepReorgIsFatal(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	runScript(t, l, []chain.Event{
		connect(&chain.Block{Height: 1, Hash: "h1"}),
		connect(&chain.Block{Height: 2, Hash: "h2"}),
		connect(&chain.Block{Height: 3, Hash: "h3"}),
	})

	// drop the undo logs below the tip, as horizon pruning would
	r.NoError(l.PruneUndo(2))

	src := &scriptSource{events: []chain.Event{disconnect(0)}}
	p, err := New(testutils.NewRelativeTimeLogger(io.Discard), src, l, chain.RegTest)
	r.NoError(err)

	err = p.Run(context.Background())
	r.Error(err)
	r.True(bsp.IsReorgError(err))
}

func TestPipelineContextCancel(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptSource{}
	p, err := New(testutils.NewRelativeTimeLogger(io.Discard), src, l, chain.RegTest)
	r.NoError(err)
	r.ErrorIs(p.Run(ctx), bsp.ErrShuttingDown)
}
