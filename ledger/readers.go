// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"bytes"

	"github.com/botcash/go-bsp"
)

// Snapshot readers. All of them run against any Tx, live or read-only,
// and report presence with a bool instead of an error.

func GetProfile(t *Tx, a bsp.Address) (ProfileRecord, bool, error) {
	var rec ProfileRecord
	ok, err := t.Get(keyProfile(a), &rec)
	return rec, ok, err
}

func GetPost(t *Tx, id bsp.TxID) (PostRecord, bool, error) {
	var rec PostRecord
	ok, err := t.Get(keyPost(id), &rec)
	return rec, ok, err
}

func GetBounty(t *Tx, id bsp.TxID) (BountyRecord, bool, error) {
	var rec BountyRecord
	ok, err := t.Get(keyBounty(id), &rec)
	return rec, ok, err
}

func GetPoll(t *Tx, id bsp.TxID) (PollRecord, bool, error) {
	var rec PollRecord
	ok, err := t.Get(keyPoll(id), &rec)
	return rec, ok, err
}

func GetBoost(t *Tx, target bsp.TxID) (BoostRecord, bool, error) {
	var rec BoostRecord
	ok, err := t.Get(keyBoost(target), &rec)
	return rec, ok, err
}

func GetChannel(t *Tx, id string) (ChannelRecord, bool, error) {
	var rec ChannelRecord
	ok, err := t.Get(keyChannel(id), &rec)
	return rec, ok, err
}

func GetProposal(t *Tx, id string) (ProposalRecord, bool, error) {
	var rec ProposalRecord
	ok, err := t.Get(keyProposal(id), &rec)
	return rec, ok, err
}

// IterateProposals walks every proposal in id order.
func IterateProposals(t *Tx, fn func(id string, rec ProposalRecord) error) error {
	return t.Iterate([]byte(kpProposal), func(k, raw []byte) (bool, error) {
		var rec ProposalRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return false, err
		}
		return false, fn(string(k[len(kpProposal):]), rec)
	})
}

func GetRecoveryConfig(t *Tx, a bsp.Address) (RecoveryConfigRecord, bool, error) {
	var rec RecoveryConfigRecord
	ok, err := t.Get(keyRecovCfg(a), &rec)
	return rec, ok, err
}

func GetRecoveryRequest(t *Tx, id string) (RecoveryRequestRecord, bool, error) {
	var rec RecoveryRequestRecord
	ok, err := t.Get(keyRecovReq(id), &rec)
	return rec, ok, err
}

func GetRotation(t *Tx, a bsp.Address) (KeyRotationRecord, bool, error) {
	var rec KeyRotationRecord
	ok, err := t.Get(keyRotation(a), &rec)
	return rec, ok, err
}

func GetMultisig(t *Tx, a bsp.Address) (MultisigRecord, bool, error) {
	var rec MultisigRecord
	ok, err := t.Get(keyMultisig(a), &rec)
	return rec, ok, err
}

// Karma returns the accumulated karma score, zero if the address never
// earned any.
func Karma(t *Tx, a bsp.Address) (uint64, error) {
	var k uint64
	_, err := t.Get(keyKarma(a), &k)
	return k, err
}

// Power returns the governance voting weight of a as a tally would
// count it right now.
func Power(t *Tx, a bsp.Address) (uint64, error) {
	return votingPower(t, a)
}

// Follows lists the addresses a follows, in key order.
func Follows(t *Tx, a bsp.Address) ([]bsp.Address, error) {
	return edgeTargets(t, key(kpFollow, string(a), ":"))
}

// Followers lists the addresses following a, in key order.
func Followers(t *Tx, a bsp.Address) ([]bsp.Address, error) {
	return edgeTargets(t, key(kpFollower, string(a), ":"))
}

func edgeTargets(t *Tx, prefix []byte) ([]bsp.Address, error) {
	var out []bsp.Address
	err := t.Iterate(prefix, func(k, _ []byte) (bool, error) {
		out = append(out, bsp.Address(k[len(prefix):]))
		return false, nil
	})
	return out, err
}

// TrustEdgesFrom lists the direct trust assertions made by from, keyed
// by the trusted address.
func TrustEdgesFrom(t *Tx, from bsp.Address) (map[bsp.Address]TrustEdge, error) {
	prefix := prefixTrustFrom(from)
	out := make(map[bsp.Address]TrustEdge)
	err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
		var e TrustEdge
		if err := json.Unmarshal(raw, &e); err != nil {
			return false, err
		}
		out[bsp.Address(k[len(prefix):])] = e
		return false, nil
	})
	return out, err
}

// IterateTrust walks every trust edge in the store.
func IterateTrust(t *Tx, fn func(from, to bsp.Address, e TrustEdge) error) error {
	return t.Iterate([]byte(kpTrust), func(k, raw []byte) (bool, error) {
		pair := k[len(kpTrust):]
		sep := bytes.IndexByte(pair, ':')
		if sep < 0 {
			return false, nil
		}
		var e TrustEdge
		if err := json.Unmarshal(raw, &e); err != nil {
			return false, err
		}
		return false, fn(bsp.Address(pair[:sep]), bsp.Address(pair[sep+1:]), e)
	})
}

// BridgeLinks lists a's platform links, keyed by platform name.
func BridgeLinks(t *Tx, a bsp.Address) (map[string]BridgeLinkRecord, error) {
	prefix := prefixBridge(a)
	out := make(map[string]BridgeLinkRecord)
	err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
		var rec BridgeLinkRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return false, err
		}
		out[string(k[len(prefix):])] = rec
		return false, nil
	})
	return out, err
}

// ReportsFor resolves the open reports filed against target.
func ReportsFor(t *Tx, target bsp.TxID) ([]ReportRecord, error) {
	var out []ReportRecord
	err := t.Iterate(prefixReportFor(target), func(k, _ []byte) (bool, error) {
		id := k[bytes.LastIndexByte(k, ':')+1:]
		var rec ReportRecord
		ok, err := t.Get(keyReport(bsp.TxID(id)), &rec)
		if err != nil {
			return false, err
		}
		if ok {
			out = append(out, rec)
		}
		return false, nil
	})
	return out, err
}

// Grants lists a's unspent credit grants in epoch order.
func Grants(t *Tx, a bsp.Address) ([]Grant, error) {
	var out []Grant
	err := t.Iterate(prefixGrant(a), func(_, raw []byte) (bool, error) {
		var g Grant
		if err := json.Unmarshal(raw, &g); err != nil {
			return false, err
		}
		out = append(out, g)
		return false, nil
	})
	return out, err
}

// GetEpoch returns the attention epoch record for epoch n.
func GetEpoch(t *Tx, n uint64) (EpochRecord, bool, error) {
	var rec EpochRecord
	ok, err := t.Get(keyEpoch(n), &rec)
	return rec, ok, err
}

// AttentionUnits returns epoch n's attention unit tenths per author.
func AttentionUnits(t *Tx, n uint64) (map[bsp.Address]uint64, error) {
	out := make(map[bsp.Address]uint64)
	prefix := prefixAU(n)
	err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
		var tenths uint64
		if err := json.Unmarshal(raw, &tenths); err != nil {
			return false, err
		}
		out[bsp.Address(k[len(prefix):])] = tenths
		return false, nil
	})
	return out, err
}
