// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"encoding/binary"

	"github.com/botcash/go-bsp"
)

// Key schema. One prefix per table, all in a single badger keyspace so a
// whole block commits in one transaction. Numeric key segments are
// big-endian so lexicographic iteration is numeric iteration. Variable
// segments are addresses or hex ids, both drawn from alphabets without
// ':', so the joints between segments are unambiguous.
const (
	kpProfile   = "prof:"
	kpPost      = "post:"
	kpUpvote    = "upv:"  // upv:<target>:<voter>
	kpFollow    = "flw:"  // flw:<follower>:<followee>
	kpFollower  = "flr:"  // flr:<followee>:<follower>, reverse edge
	kpKarma     = "karma:"
	kpBounty    = "bounty:"
	kpPoll      = "poll:"
	kpPollVote  = "pvote:" // pvote:<poll>:<voter>
	kpDMCount   = "dmc:"   // dmc:<recipient>

	kpEpoch    = "epoch:" // epoch:<n be8>
	kpAU       = "au:"    // au:<n be8>:<addr>
	kpEpochPay = "pay:"   // pay:<n be8>:<addr>, boost paid per payer
	kpGrant    = "grant:" // grant:<addr>:<epoch be8>
	kpBoost    = "boost:" // boost:<target>

	kpChannel = "chan:"

	kpProposal    = "prop:"
	kpGovVote     = "gvote:" // gvote:<proposal>:<voter>
	kpGovDeadline = "gdl:"   // gdl:<height be8>:<proposal>, tally schedule
	kpBalance     = "bal:"   // bal:<addr>, cumulative observed value moved

	kpRecovCfg  = "rcfg:"
	kpRecovReq  = "rreq:"
	kpRecovAppr = "rappr:" // rappr:<request>:<guardianhash>
	kpRotation  = "rot:"
	kpMultisig  = "msig:"

	kpBridge   = "bridge:" // bridge:<addr>:<platform>
	kpBridgeID = "bid:"    // bid:<platform>:<platform_id>, uniqueness

	kpTrust     = "trust:"  // trust:<from>:<to>
	kpReport    = "report:"
	kpReportFor = "rptfor:" // rptfor:<target>:<report txid>

	kpUndo  = "undo:" // undo:<height be8>
	kpBlock = "bh:"   // bh:<height be8> -> block hash
	kpMeta  = "meta:"
)

const metaCheckpoint = kpMeta + "checkpoint"

func be8(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func key(parts ...string) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func keyProfile(a bsp.Address) []byte  { return key(kpProfile, string(a)) }
func keyPost(id bsp.TxID) []byte       { return key(kpPost, string(id)) }
func keyUpvote(t bsp.TxID, v bsp.Address) []byte { return key(kpUpvote, string(t), ":", string(v)) }
func keyFollow(from, to bsp.Address) []byte      { return key(kpFollow, string(from), ":", string(to)) }
func keyFollower(to, from bsp.Address) []byte    { return key(kpFollower, string(to), ":", string(from)) }
func keyKarma(a bsp.Address) []byte    { return key(kpKarma, string(a)) }
func keyBounty(id bsp.TxID) []byte     { return key(kpBounty, string(id)) }
func keyPoll(id bsp.TxID) []byte       { return key(kpPoll, string(id)) }
func keyPollVote(p bsp.TxID, v bsp.Address) []byte { return key(kpPollVote, string(p), ":", string(v)) }
func keyDMCount(a bsp.Address) []byte  { return key(kpDMCount, string(a)) }

func keyEpoch(n uint64) []byte         { return append([]byte(kpEpoch), be8(n)...) }
func keyAU(n uint64, a bsp.Address) []byte {
	k := append([]byte(kpAU), be8(n)...)
	return append(append(k, ':'), a...)
}
func keyEpochPay(n uint64, a bsp.Address) []byte {
	k := append([]byte(kpEpochPay), be8(n)...)
	return append(append(k, ':'), a...)
}
func prefixEpochPay(n uint64) []byte { return append([]byte(kpEpochPay), append(be8(n), ':')...) }
func keyGrant(a bsp.Address, epoch uint64) []byte {
	k := key(kpGrant, string(a), ":")
	return append(k, be8(epoch)...)
}
func prefixGrant(a bsp.Address) []byte { return key(kpGrant, string(a), ":") }
func prefixAU(n uint64) []byte         { return append([]byte(kpAU), append(be8(n), ':')...) }
func keyBoost(t bsp.TxID) []byte       { return key(kpBoost, string(t)) }

func keyChannel(id string) []byte { return key(kpChannel, id) }

func keyProposal(id string) []byte { return key(kpProposal, id) }
func keyGovVote(prop string, v bsp.Address) []byte { return key(kpGovVote, prop, ":", string(v)) }
func prefixGovVote(prop string) []byte             { return key(kpGovVote, prop, ":") }
func keyBalance(a bsp.Address) []byte { return key(kpBalance, string(a)) }
func keyGovDeadline(h bsp.Height, prop string) []byte {
	k := append([]byte(kpGovDeadline), be8(uint64(h))...)
	return append(append(k, ':'), prop...)
}
func prefixGovDeadline(h bsp.Height) []byte {
	return append([]byte(kpGovDeadline), append(be8(uint64(h)), ':')...)
}

func keyRecovCfg(a bsp.Address) []byte { return key(kpRecovCfg, string(a)) }
func keyRecovReq(id string) []byte     { return key(kpRecovReq, id) }
func keyRecovAppr(id, guardianHash string) []byte { return key(kpRecovAppr, id, ":", guardianHash) }
func prefixRecovAppr(id string) []byte            { return key(kpRecovAppr, id, ":") }
func keyRotation(a bsp.Address) []byte { return key(kpRotation, string(a)) }
func keyMultisig(a bsp.Address) []byte { return key(kpMultisig, string(a)) }

func keyBridge(a bsp.Address, platform string) []byte { return key(kpBridge, string(a), ":", platform) }
func prefixBridge(a bsp.Address) []byte               { return key(kpBridge, string(a), ":") }
func keyBridgeID(platform, id string) []byte          { return key(kpBridgeID, platform, ":", id) }

func keyTrust(from, to bsp.Address) []byte { return key(kpTrust, string(from), ":", string(to)) }
func prefixTrustFrom(from bsp.Address) []byte { return key(kpTrust, string(from), ":") }
func keyReport(id bsp.TxID) []byte         { return key(kpReport, string(id)) }
func keyReportFor(target, report bsp.TxID) []byte {
	return key(kpReportFor, string(target), ":", string(report))
}
func prefixReportFor(target bsp.TxID) []byte { return key(kpReportFor, string(target), ":") }

func keyUndo(h bsp.Height) []byte  { return append([]byte(kpUndo), be8(uint64(h))...) }
func keyBlock(h bsp.Height) []byte { return append([]byte(kpBlock), be8(uint64(h))...) }
