// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package query

import (
	"math"
	"sort"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/ledger"
)

// Ranked pairs a content id with its attention score.
type Ranked struct {
	ID    bsp.TxID `json:"id"`
	Score float64  `json:"score"`
}

// attentionTenths is the raw attention a post accumulated, in tenths of
// a unit: paid upvotes and credit tips weigh 1.0 per zat, tips 2.0.
func attentionTenths(p ledger.PostRecord) uint64 {
	return (p.UpvoteZat+p.CreditZat)*10 + p.TipZat*ledger.TipWeightTenths
}

// Score is a post's ranking score at height h: accumulated attention,
// halved every DecayHalfLifeBlocks of age, multiplied up while an
// attention boost is active on it.
func Score(p ledger.PostRecord, boost *ledger.BoostRecord, h bsp.Height) float64 {
	if h < p.Height {
		return 0
	}
	age := float64(h - p.Height)
	s := float64(attentionTenths(p)) / 10 * math.Exp2(-age/ledger.DecayHalfLifeBlocks)
	if boost != nil && boost.Active(h) {
		s *= float64(ledger.BoostMultiplierTenths) / 10
	}
	return s
}

// Rank scores the given posts at height h and returns them in
// descending score order. Unknown ids are dropped. Ties break on id so
// the order is stable across nodes.
func (rd *Reader) Rank(ids []bsp.TxID, h bsp.Height) ([]Ranked, error) {
	out := make([]Ranked, 0, len(ids))
	err := rd.ldg.View(func(tx *ledger.Tx) error {
		for _, id := range ids {
			post, ok, err := ledger.GetPost(tx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			var boost *ledger.BoostRecord
			if b, ok, err := ledger.GetBoost(tx, id); err != nil {
				return err
			} else if ok {
				boost = &b
			}
			out = append(out, Ranked{ID: id, Score: Score(post, boost, h)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
