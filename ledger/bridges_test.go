// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

func TestBridgeLinkVerifyPost(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	res := applyBlock(t, l, 1,
		mkEnv(1, "ln", alice, 0, wire.BridgeLink{Platform: "nostr", PlatformID: "npub1x", Challenge: "aabb"}),
		mkEnv(1, "bp-early", alice, 0, wire.BridgePost{Platform: "nostr", OriginalID: "n1", Content: "too soon"}),
	)
	r.NoError(res[0])
	r.ErrorIs(res[1], ErrBadTransition, "unverified link can not mirror")

	res = applyBlock(t, l, 2,
		mkEnv(2, "vf-wrong", alice, 0, wire.BridgeVerify{Platform: "nostr", PlatformID: "npub1y", Response: "ccdd"}),
		mkEnv(2, "vf", alice, 0, wire.BridgeVerify{Platform: "nostr", PlatformID: "npub1x", Response: "ccdd"}),
		mkEnv(2, "vf-dup", alice, 0, wire.BridgeVerify{Platform: "nostr", PlatformID: "npub1x", Response: "ccdd"}),
	)
	r.ErrorIs(res[0], ErrBadTransition, "verify must match the pending link")
	r.NoError(res[1])
	r.ErrorIs(res[2], ErrDuplicate)

	res = applyBlock(t, l, 3,
		mkEnv(3, "bp", alice, 0, wire.BridgePost{Platform: "nostr", OriginalID: "n1", Content: "mirrored"}),
		mkEnv(3, "ln-steal", bob, 0, wire.BridgeLink{Platform: "nostr", PlatformID: "npub1x", Challenge: "ee"}),
	)
	r.NoError(res[0])
	r.ErrorIs(res[1], ErrDuplicate, "verified identity is claimed")

	post := getPost(t, l, "bp")
	r.Equal("bridge", post.Kind)
	r.Equal(alice, post.Author)

	// unlink releases the identity for someone else
	res = applyBlock(t, l, 4,
		mkEnv(4, "ul", alice, 0, wire.BridgeUnlink{Platform: "nostr", PlatformID: "npub1x"}),
	)
	r.NoError(res[0])

	res = applyBlock(t, l, 5,
		mkEnv(5, "ln-2", bob, 0, wire.BridgeLink{Platform: "nostr", PlatformID: "npub1x", Challenge: "ff"}),
		mkEnv(5, "bp-gone", alice, 0, wire.BridgePost{Platform: "nostr", OriginalID: "n2", Content: "x"}),
	)
	r.NoError(res[0])
	r.ErrorIs(res[1], ErrUnknownID, "unlinked bridge can not mirror")

	err := l.View(func(tx *Tx) error {
		var link BridgeLinkRecord
		ok, err := tx.Get(keyBridge(bob, "nostr"), &link)
		r.NoError(err)
		r.True(ok)
		r.False(link.Verified)
		return nil
	})
	r.NoError(err)
}

func TestBridgeVerifyWithoutLink(t *testing.T) {
	l := openTestLedger(t)
	res := applyBlock(t, l, 1,
		mkEnv(1, "vf", alice, 0, wire.BridgeVerify{Platform: "telegram", PlatformID: "t1", Response: "aa"}),
	)
	require.ErrorIs(t, res[0], ErrUnknownID)
}

func TestTrustEdges(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	res := applyBlock(t, l, 1,
		mkEnv(1, "t1", alice, 0, wire.Trust{Target: bob, Level: wire.TrustStrongTrust, Reason: "ally"}),
		mkEnv(1, "t2", alice, 0, wire.Trust{Target: alice, Level: wire.TrustTrust}),
		mkEnv(1, "t3", alice, 0, wire.Trust{Target: carol, Level: wire.TrustNeutral}),
	)
	r.NoError(res[0])
	r.Error(res[1], "self trust")
	r.ErrorIs(res[2], ErrUnknownID, "nothing to retract")

	var edge TrustEdge
	err := l.View(func(tx *Tx) error {
		ok, err := tx.Get(keyTrust(alice, bob), &edge)
		r.True(ok)
		return err
	})
	r.NoError(err)
	r.Equal(wire.TrustStrongTrust, edge.Level)

	// neutral retracts, downgrade overwrites
	res = applyBlock(t, l, 2,
		mkEnv(2, "t4", alice, 0, wire.Trust{Target: bob, Level: wire.TrustDistrust}),
	)
	r.NoError(res[0])
	err = l.View(func(tx *Tx) error {
		_, err := tx.Get(keyTrust(alice, bob), &edge)
		return err
	})
	r.NoError(err)
	r.Equal(wire.TrustDistrust, edge.Level)

	res = applyBlock(t, l, 3,
		mkEnv(3, "t5", alice, 0, wire.Trust{Target: bob, Level: wire.TrustNeutral}),
	)
	r.NoError(res[0])
	err = l.View(func(tx *Tx) error {
		ok, err := tx.Has(keyTrust(alice, bob))
		r.False(ok, "neutral removes the edge")
		return err
	})
	r.NoError(err)
}

func TestStakedReports(t *testing.T) {
	r := require.New(t)
	l := openTestLedger(t)

	applyBlock(t, l, 1, mkEnv(1, "post", alice, 0, wire.Post{Content: "spam?"}))

	res := applyBlock(t, l, 2,
		mkEnv(2, "rp-cheap", bob, 100, wire.Report{Target: "post", Category: wire.ReportSpam}),
		mkEnv(2, "rp-self", alice, ReportMinStakeZat, wire.Report{Target: "post", Category: wire.ReportSpam}),
		mkEnv(2, "rp-gone", bob, ReportMinStakeZat, wire.Report{Target: "missing", Category: wire.ReportSpam}),
		mkEnv(2, "rp", bob, ReportMinStakeZat, wire.Report{Target: "post", Category: wire.ReportScam, Evidence: "seen it"}),
	)
	r.ErrorIs(res[0], ErrThresholdNotMet)
	r.ErrorIs(res[1], ErrNotAParty, "self report")
	r.ErrorIs(res[2], ErrUnknownID)
	r.NoError(res[3])

	var rep ReportRecord
	err := l.View(func(tx *Tx) error {
		ok, err := tx.Get(keyReport(bsp.TxID("rp")), &rep)
		r.True(ok)
		if err != nil {
			return err
		}
		ok, err = tx.Has(keyReportFor(bsp.TxID("post"), bsp.TxID("rp")))
		r.True(ok, "per-target index entry")
		return err
	})
	r.NoError(err)
	r.Equal(bob, rep.Reporter)
	r.Equal(wire.ReportScam, rep.Category)
	r.EqualValues(2+ReportExpiryBlocks, rep.Expiry)
}
