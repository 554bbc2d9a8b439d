// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package query

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/internal/testutils"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/repo"
	"github.com/botcash/go-bsp/wire"
)

const (
	alice = bsp.Address("B1alice")
	bob   = bsp.Address("B1bob")
	carol = bsp.Address("B1carol")
)

func hexID(b byte) bsp.TxID {
	const digits = "0123456789abcdef"
	pair := string([]byte{digits[b>>4], digits[b&0xf]})
	return bsp.TxID(strings.Repeat(pair, 32))
}

func openTestReader(t *testing.T) (*Reader, *ledger.Ledger, *repo.Journal) {
	t.Helper()
	r := require.New(t)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	r.NoError(err)
	t.Cleanup(func() { db.Close() })
	l := ledger.New(db)

	j, err := repo.OpenJournal(repo.New(t.TempDir()))
	r.NoError(err)
	t.Cleanup(func() { j.Close() })

	return NewReader(l, j), l, j
}

func env(h bsp.Height, id bsp.TxID, from bsp.Address, value uint64, body wire.Body) *ledger.Envelope {
	return &ledger.Envelope{
		Height: h,
		TxID:   id,
		From:   from,
		Value:  value,
		Msg:    wire.MustCompose(body),
		Body:   body,
	}
}

// applyBlock applies envs at height h the way the pipeline does:
// journal and feed-index accepted content, rejections are fatal here.
func applyBlock(t *testing.T, l *ledger.Ledger, j *repo.Journal, h bsp.Height, envs ...*ledger.Envelope) {
	t.Helper()
	r := require.New(t)

	btx, err := l.BeginBlock(h, "h")
	r.NoError(err)
	for _, e := range envs {
		r.NoError(btx.Apply(e))
		if j == nil {
			continue
		}
		switch e.Msg.Type {
		case wire.TypePost, wire.TypeComment, wire.TypeMedia, wire.TypeBridgePost:
			seq, err := j.Append(e)
			r.NoError(err)
			r.NoError(ledger.AddToFeed(btx.Tx(), e.From, uint64(seq)))
		}
	}
	r.NoError(btx.EndBlock())
	r.NoError(btx.Commit())
}

func TestFeedNewestFirst(t *testing.T) {
	r := require.New(t)
	rd, l, j := openTestReader(t)

	applyBlock(t, l, j, 1,
		env(1, hexID(1), alice, 0, wire.Post{Content: "one"}),
		env(1, hexID(9), bob, 0, wire.Post{Content: "theirs"}),
	)
	applyBlock(t, l, j, 2, env(2, hexID(2), alice, 0, wire.Post{Content: "two"}))
	applyBlock(t, l, j, 3, env(3, hexID(3), alice, 0, wire.Comment{Parent: hexID(1), Content: "three"}))

	items, err := rd.Feed(alice, 2)
	r.NoError(err)
	r.Len(items, 2)
	r.Equal(hexID(3), items[0].ID)
	r.Equal("comment", items[0].Kind)
	r.Equal(hexID(1), items[0].Parent)
	r.Equal("three", items[0].Content)
	r.Equal(hexID(2), items[1].ID)

	items, err = rd.Feed(alice, 0)
	r.NoError(err)
	r.Len(items, 3, "default limit covers all of them")
	r.Equal(hexID(1), items[2].ID)

	items, err = rd.Feed(bob, 0)
	r.NoError(err)
	r.Len(items, 1)
	r.Equal("theirs", items[0].Content)

	items, err = rd.Feed(carol, 0)
	r.NoError(err)
	r.Empty(items)
}

func TestFeedFlagsBridgedContent(t *testing.T) {
	r := require.New(t)
	rd, l, j := openTestReader(t)

	applyBlock(t, l, j, 1,
		env(1, hexID(1), alice, 0, wire.BridgeLink{Platform: "mastodon", PlatformID: "@alice", Challenge: "c1"}),
		env(1, hexID(2), alice, 0, wire.BridgeVerify{Platform: "mastodon", PlatformID: "@alice", Response: "r1"}),
	)
	applyBlock(t, l, j, 2,
		env(2, hexID(3), alice, 0, wire.BridgePost{Platform: "mastodon", OriginalID: "1234", Content: "mirrored"}),
	)

	items, err := rd.Feed(alice, 0)
	r.NoError(err)
	r.Len(items, 1)
	r.Equal("bridge", items[0].Kind)
	r.Equal("mastodon", items[0].Origin)
	r.Equal("mirrored", items[0].Content)
}

func TestFeedDropsReorgedEntries(t *testing.T) {
	r := require.New(t)
	rd, l, j := openTestReader(t)

	applyBlock(t, l, j, 1, env(1, hexID(1), alice, 0, wire.Post{Content: "keep"}))
	applyBlock(t, l, j, 2, env(2, hexID(2), alice, 0, wire.Post{Content: "orphan"}))

	_, err := l.Rollback()
	r.NoError(err)

	// the journal still holds both entries, the feed resolves to one
	r.EqualValues(1, j.Seq())
	items, err := rd.Feed(alice, 0)
	r.NoError(err)
	r.Len(items, 1)
	r.Equal("keep", items[0].Content)
}

func trustEnv(h bsp.Height, id bsp.TxID, from, to bsp.Address, level wire.TrustLevel) *ledger.Envelope {
	return env(h, id, from, 0, wire.Trust{Target: to, Level: level})
}

func TestTrustScorePropagation(t *testing.T) {
	r := require.New(t)
	rd, l, _ := openTestReader(t)

	dave := bsp.Address("B1dave")
	eve := bsp.Address("B1eve")
	frank := bsp.Address("B1frank")

	applyBlock(t, l, nil, 1,
		trustEnv(1, hexID(1), alice, bob, wire.TrustStrongTrust),
		trustEnv(1, hexID(2), bob, carol, wire.TrustTrust),
		trustEnv(1, hexID(3), carol, dave, wire.TrustTrust),
		trustEnv(1, hexID(4), dave, eve, wire.TrustTrust),
		trustEnv(1, hexID(5), alice, frank, wire.TrustDistrust),
		trustEnv(1, hexID(6), frank, eve, wire.TrustStrongTrust),
	)

	g, err := rd.BuildTrustGraph()
	r.NoError(err)
	r.Equal(6, g.Nodes())

	r.True(g.Trusts(alice, bob))
	r.False(g.Trusts(bob, alice))

	r.InDelta(2.0, g.Score(alice, bob), 1e-9, "direct edge at face value")
	r.InDelta(1.0*0.7, g.Score(alice, carol), 1e-9, "one hop decays")
	r.InDelta(1.0*0.7*0.7, g.Score(alice, dave), 1e-9, "two hops decay twice")
	r.InDelta(-1.0, g.Score(alice, frank), 1e-9, "direct distrust")

	// eve is three trusted hops out (via dave) plus one distrusted
	// neighbour; the distrust path does not extend, the deep path is
	// beyond the depth cut
	r.InDelta(0, g.Score(alice, eve), 1e-9)

	r.InDelta(0, g.Score(alice, alice), 1e-9)
	r.InDelta(0, g.Score(eve, alice), 1e-9, "no reverse reach")
	r.InDelta(0, g.Score("B1nobody", bob), 1e-9)
}

func TestRankDecayAndBoost(t *testing.T) {
	r := require.New(t)

	post := ledger.PostRecord{Author: alice, Height: 0, Kind: "post", TipZat: 100}

	base := Score(post, nil, 0)
	r.InDelta(200, base, 1e-9, "100 zat tipped at weight 2.0")

	r.InDelta(100, Score(post, nil, ledger.DecayHalfLifeBlocks), 1e-9, "one half life")
	r.InDelta(50, Score(post, nil, 2*ledger.DecayHalfLifeBlocks), 1e-9)

	boost := &ledger.BoostRecord{Start: 0, Duration: 10}
	r.InDelta(300, Score(post, boost, 0), 1e-9, "active boost multiplies")
	expired := Score(post, boost, ledger.DecayHalfLifeBlocks)
	r.InDelta(100, expired, 1e-9, "expired boost does not")
}

func TestRankOrdersPosts(t *testing.T) {
	r := require.New(t)
	rd, l, _ := openTestReader(t)

	applyBlock(t, l, nil, 1,
		env(1, hexID(1), alice, 0, wire.Post{Content: "quiet"}),
		env(1, hexID(2), bob, 0, wire.Post{Content: "loud"}),
	)
	applyBlock(t, l, nil, 2,
		env(2, hexID(3), carol, 500, wire.Tip{Target: hexID(2), Note: "nice"}),
		env(2, hexID(4), carol, 100, wire.Tip{Target: hexID(1), Note: "ok"}),
	)

	cp, _, err := l.Checkpoint()
	r.NoError(err)

	ranked, err := rd.Rank([]bsp.TxID{hexID(1), hexID(2), hexID(7)}, cp.Height)
	r.NoError(err)
	r.Len(ranked, 2, "unknown ids are dropped")
	r.Equal(hexID(2), ranked[0].ID)
	r.Equal(hexID(1), ranked[1].ID)
	r.Greater(ranked[0].Score, ranked[1].Score)
}

func TestProposalsByStatus(t *testing.T) {
	r := require.New(t)
	rd, l, _ := openTestReader(t)

	applyBlock(t, l, nil, 1,
		env(1, hexID(0x01), alice, ledger.GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalParameter, Title: "first",
		}),
	)
	applyBlock(t, l, nil, 2,
		env(2, hexID(0x02), bob, ledger.GovDepositZat, wire.Propose{
			ProposalType: wire.ProposalText, Title: "second",
		}),
	)

	all, err := rd.Proposals("")
	r.NoError(err)
	r.Len(all, 2)
	r.Equal(string(hexID(0x02)), all[0].ID, "newest submission first")

	active, err := rd.Proposals(ledger.ProposalActive)
	r.NoError(err)
	r.Len(active, 2)

	passed, err := rd.Proposals(ledger.ProposalPassed)
	r.NoError(err)
	r.Empty(passed)

	api := NewAPI(testutils.NewRelativeTimeLogger(io.Discard), rd, nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/proposals?status=active", nil))
	r.Equal(http.StatusOK, rec.Code)
	var got []ProposalInfo
	r.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	r.Len(got, 2)

	rec = httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/proposals?status=bogus", nil))
	r.Equal(http.StatusBadRequest, rec.Code)
}
