// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package query is the read side: snapshot views over the ledger, feed
// assembly from the journal, trust propagation and content ranking, and
// the HTTP/websocket API on top.
package query

import (
	"fmt"
	"sort"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/repo"
	"github.com/botcash/go-bsp/wire"
)

// Feed pagination bounds.
const (
	FeedDefaultLimit = 50
	FeedMaxLimit     = 1000
)

// Reader answers queries against a consistent badger snapshot. Feeds
// additionally resolve journal entries; entries whose content was
// reorged away are dropped at read time.
type Reader struct {
	ldg     *ledger.Ledger
	journal *repo.Journal
}

// NewReader creates a reader. journal may be nil; feeds are then empty.
func NewReader(ldg *ledger.Ledger, journal *repo.Journal) *Reader {
	return &Reader{ldg: ldg, journal: journal}
}

// FeedItem is one content entry of an author's feed, newest first.
type FeedItem struct {
	Seq     uint64      `json:"seq"`
	ID      bsp.TxID    `json:"id"`
	Author  bsp.Address `json:"author"`
	Height  bsp.Height  `json:"height"`
	Kind    string      `json:"kind"`
	Parent  bsp.TxID    `json:"parent,omitempty"`
	Content string      `json:"content,omitempty"`
	URI     string      `json:"uri,omitempty"`

	// Origin names the source platform for bridged content.
	Origin string `json:"origin,omitempty"`

	Upvotes   uint64 `json:"upvotes"`
	TipZat    uint64 `json:"tip_zat"`
	CreditZat uint64 `json:"credit_zat"`
}

// Feed returns the newest limit content entries authored by a. A limit
// of zero means FeedDefaultLimit; FeedMaxLimit caps it.
func (rd *Reader) Feed(a bsp.Address, limit int) ([]FeedItem, error) {
	if rd.journal == nil {
		return nil, nil
	}
	switch {
	case limit <= 0:
		limit = FeedDefaultLimit
	case limit > FeedMaxLimit:
		limit = FeedMaxLimit
	}

	var items []FeedItem
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		seqs, err := ledger.Feed(tx, a)
		if err != nil {
			return err
		}
		for i := len(seqs) - 1; i >= 0 && len(items) < limit; i-- {
			env, err := rd.journal.Get(int64(seqs[i]))
			if err != nil {
				return fmt.Errorf("query: feed %s seq %d: %w", a, seqs[i], err)
			}
			post, ok, err := ledger.GetPost(tx, env.TxID)
			if err != nil {
				return err
			}
			if !ok {
				// reorged away, the journal keeps the orphan
				continue
			}
			items = append(items, feedItem(seqs[i], env, post))
		}
		return nil
	})
	return items, err
}

func feedItem(seq uint64, env *ledger.Envelope, post ledger.PostRecord) FeedItem {
	item := FeedItem{
		Seq:       seq,
		ID:        env.TxID,
		Author:    post.Author,
		Height:    post.Height,
		Kind:      post.Kind,
		Parent:    post.Parent,
		Upvotes:   post.Upvotes,
		TipZat:    post.TipZat,
		CreditZat: post.CreditZat,
	}
	switch b := env.Body.(type) {
	case wire.Post:
		item.Content = b.Content
	case wire.Comment:
		item.Content = b.Content
	case wire.Media:
		item.Content = b.ContentHash
		item.URI = b.URI
	case wire.BridgePost:
		item.Content = b.Content
		item.Origin = b.Platform
	}
	return item
}

// Profile returns a's profile.
func (rd *Reader) Profile(a bsp.Address) (ledger.ProfileRecord, bool, error) {
	var (
		rec ledger.ProfileRecord
		ok  bool
	)
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		rec, ok, err = ledger.GetProfile(tx, a)
		return err
	})
	return rec, ok, err
}

// Post returns one content record.
func (rd *Reader) Post(id bsp.TxID) (ledger.PostRecord, bool, error) {
	var (
		rec ledger.PostRecord
		ok  bool
	)
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		rec, ok, err = ledger.GetPost(tx, id)
		return err
	})
	return rec, ok, err
}

// CreditBalance sums a's unexpired credit grants as of height h.
func (rd *Reader) CreditBalance(a bsp.Address, h bsp.Height) (uint64, error) {
	var bal uint64
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		bal, err = ledger.CreditBalance(tx, a, h)
		return err
	})
	return bal, err
}

// ChannelStatus returns the channel record for id.
func (rd *Reader) ChannelStatus(id string) (ledger.ChannelRecord, bool, error) {
	var (
		rec ledger.ChannelRecord
		ok  bool
	)
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		rec, ok, err = ledger.GetChannel(tx, id)
		return err
	})
	return rec, ok, err
}

// Proposal returns one governance proposal.
func (rd *Reader) Proposal(id string) (ledger.ProposalRecord, bool, error) {
	var (
		rec ledger.ProposalRecord
		ok  bool
	)
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		rec, ok, err = ledger.GetProposal(tx, id)
		return err
	})
	return rec, ok, err
}

// ProposalInfo is one proposal with its id, as listed.
type ProposalInfo struct {
	ID string `json:"id"`
	ledger.ProposalRecord
}

// Proposals lists governance proposals, newest submission first. An
// empty status means all; otherwise only proposals in that status.
func (rd *Reader) Proposals(status ledger.ProposalStatus) ([]ProposalInfo, error) {
	var out []ProposalInfo
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		return ledger.IterateProposals(tx, func(id string, rec ledger.ProposalRecord) error {
			if status != "" && rec.Status != status {
				return nil
			}
			out = append(out, ProposalInfo{ID: id, ProposalRecord: rec})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Submitted > out[j].Submitted
	})
	return out, nil
}

// RecoveryStatus describes an address's recovery setup and any request
// against it.
type RecoveryStatus struct {
	Config     *ledger.RecoveryConfigRecord       `json:"config,omitempty"`
	Request    *ledger.RecoveryRequestRecord      `json:"request,omitempty"`
	Approvals  map[string]ledger.GuardianApproval `json:"approvals,omitempty"`
	Executable bool                               `json:"executable"`
}

// Recovery resolves the recovery state of owner, checking executability
// against the current checkpoint height. requestID may be empty.
func (rd *Reader) Recovery(owner bsp.Address, requestID string) (RecoveryStatus, error) {
	var st RecoveryStatus
	cp, _, err := rd.ldg.Checkpoint()
	if err != nil {
		return st, err
	}
	err = rd.ldg.View(func(tx *ledger.Tx) error {
		cfg, ok, err := ledger.GetRecoveryConfig(tx, owner)
		if err != nil {
			return err
		}
		if ok {
			st.Config = &cfg
		}
		if requestID == "" {
			return nil
		}
		req, ok, err := ledger.GetRecoveryRequest(tx, requestID)
		if err != nil {
			return err
		}
		if ok && req.Owner == owner {
			st.Request = &req
			st.Executable = req.Executable(cp.Height)
			st.Approvals, err = ledger.RecoveryApprovals(tx, requestID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return st, err
}

// BridgeLinks lists a's platform identity links.
func (rd *Reader) BridgeLinks(a bsp.Address) (map[string]ledger.BridgeLinkRecord, error) {
	var links map[string]ledger.BridgeLinkRecord
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		links, err = ledger.BridgeLinks(tx, a)
		return err
	})
	return links, err
}

// Reports lists the staked reports against target, dropping expired
// ones as of height h.
func (rd *Reader) Reports(target bsp.TxID, h bsp.Height) ([]ledger.ReportRecord, error) {
	var out []ledger.ReportRecord
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		all, err := ledger.ReportsFor(tx, target)
		if err != nil {
			return err
		}
		for _, rep := range all {
			if rep.Expiry > h {
				out = append(out, rep)
			}
		}
		return nil
	})
	return out, err
}

// Karma returns a's karma score.
func (rd *Reader) Karma(a bsp.Address) (uint64, error) {
	var k uint64
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		var err error
		k, err = ledger.Karma(tx, a)
		return err
	})
	return k, err
}
