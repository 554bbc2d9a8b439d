// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/chain"
	"github.com/botcash/go-bsp/internal/testutils"
	"github.com/botcash/go-bsp/wire"
)

const (
	alice = "B1aliceaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "B1bobbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	carol = "B1carolcccccccccccccccccccccccccc"
)

func hexID(b byte) bsp.TxID {
	const digits = "0123456789abcdef"
	pair := string([]byte{digits[b>>4], digits[b&0x0f]})
	return bsp.TxID(strings.Repeat(pair, 32))
}

func memoOf(t *testing.T, body wire.Body) []byte {
	t.Helper()
	raw, err := wire.MustCompose(body).Encode()
	require.NoError(t, err)
	return raw
}

// eventFeed marshals chain events into the stream wire format.
func eventFeed(t *testing.T, events ...chain.Event) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, ev := range events {
		b, err := json.Marshal(ev)
		require.NoError(t, err)
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return &buf
}

func connect(h bsp.Height, hash string, txs ...chain.MemoTx) chain.Event {
	return chain.Event{Kind: chain.Connect, Block: &chain.Block{
		Height: h, Hash: hash, Txs: txs,
	}}
}

func disconnect(fork bsp.Height) chain.Event {
	return chain.Event{Kind: chain.Disconnect, ForkHeight: fork}
}

func mkTx(id bsp.TxID, from bsp.Address, value uint64, memos ...[]byte) chain.MemoTx {
	tx := chain.MemoTx{ID: id, From: from}
	for i, m := range memos {
		tx.Outputs = append(tx.Outputs, chain.MemoOutput{
			Index: uint16(i), Value: value, Memo: m,
		})
	}
	return tx
}

// One indexer run end to end: stream in, reorg included, then a rebuild
// from the journal that must converge on the same state.
func TestIndexerServeAndRebuild(t *testing.T) {
	r := require.New(t)

	ix, err := New(
		WithRepoPath(t.TempDir()),
		WithNetwork("regtest"),
		WithInfo(testutils.NewRelativeTimeLogger(io.Discard)),
		WithBlockSource(chain.NewStreamSource(eventFeed(t,
			connect(1, "a1", mkTx(hexID(1), alice, 1000, memoOf(t, wire.Post{Content: "hello"}))),
			connect(2, "a2", mkTx(hexID(2), bob, 0, memoOf(t, wire.Post{Content: "orphan me"}))),
			disconnect(1),
			connect(2, "b2", mkTx(hexID(3), bob, 200, memoOf(t, wire.Upvote{Target: hexID(1)}))),
			connect(3, "b3", mkTx(hexID(4), carol, 0, memoOf(t, wire.Follow{Target: alice}))),
		))),
	)
	r.NoError(err)
	defer ix.Close()

	err = ix.Serve(context.Background())
	r.ErrorIs(err, io.EOF, "stream exhausted")

	cpBefore, found, err := ix.Ledger.Checkpoint()
	r.NoError(err)
	r.True(found)
	r.EqualValues(3, cpBefore.Height)
	r.Equal("b3", cpBefore.Hash)

	postBefore, ok, err := ix.Reader.Post(hexID(1))
	r.NoError(err)
	r.True(ok)
	r.EqualValues(1, postBefore.Upvotes)

	_, ok, err = ix.Reader.Post(hexID(2))
	r.NoError(err)
	r.False(ok, "orphaned post is gone")

	feedBefore, err := ix.Reader.Feed(alice, 10)
	r.NoError(err)
	r.Len(feedBefore, 1)

	stats, err := ix.Rebuild(context.Background())
	r.NoError(err)
	r.Equal(4, stats.Envelopes)
	r.Equal(3, stats.Applied)
	r.Equal(1, stats.Orphaned)
	r.Equal(0, stats.Rejected)
	r.Equal(3, stats.Blocks)
	r.EqualValues(3, stats.Tip)

	cpAfter, found, err := ix.Ledger.Checkpoint()
	r.NoError(err)
	r.True(found)
	if diff := pretty.Compare(cpBefore, cpAfter); diff != "" {
		t.Errorf("checkpoint diverged after rebuild: (-before +after)\n%s", diff)
	}

	postAfter, ok, err := ix.Reader.Post(hexID(1))
	r.NoError(err)
	r.True(ok)
	if diff := pretty.Compare(postBefore, postAfter); diff != "" {
		t.Errorf("post record diverged after rebuild: (-before +after)\n%s", diff)
		t.Log(spew.Sdump(postAfter))
	}

	feedAfter, err := ix.Reader.Feed(alice, 10)
	r.NoError(err)
	if diff := pretty.Compare(feedBefore, feedAfter); diff != "" {
		t.Errorf("feed diverged after rebuild: (-before +after)\n%s", diff)
	}

	bobFeed, err := ix.Reader.Feed(bob, 10)
	r.NoError(err)
	r.Empty(bobFeed, "orphaned post never comes back")

	if t.Failed() {
		testutils.StreamJournal(t, ix.Journal)
	}
}

func TestIndexerRebuildNeedsJournal(t *testing.T) {
	r := require.New(t)

	ix, err := New(
		WithRepoPath(t.TempDir()),
		WithNetwork("regtest"),
		WithInfo(testutils.NewRelativeTimeLogger(io.Discard)),
		DisableJournal(),
	)
	r.NoError(err)
	defer ix.Close()

	_, err = ix.Rebuild(context.Background())
	r.Error(err)
}

func TestIndexerServeWithoutSource(t *testing.T) {
	r := require.New(t)

	ix, err := New(
		WithRepoPath(t.TempDir()),
		WithNetwork("regtest"),
		WithInfo(testutils.NewRelativeTimeLogger(io.Discard)),
	)
	r.NoError(err)
	defer ix.Close()

	r.Error(ix.Serve(context.Background()))

	st, err := ix.Status()
	r.NoError(err)
	r.Equal("regtest", st.Network)
	r.EqualValues(0, st.Journal, "journal open but empty")
}
