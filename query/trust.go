// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package query

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/ledger"
)

type userNode struct {
	graph.Node
	addr bsp.Address
}

func (n userNode) String() string {
	if len(n.addr) > 8 {
		return string(n.addr[:8])
	}
	return string(n.addr)
}

type key2node map[bsp.Address]graph.Node

// TrustGraph is the declared trust edges folded into a weighted
// directed graph. Edge weight is the trust level (-2..+2, never 0;
// neutral retracts the edge in the ledger).
type TrustGraph struct {
	dg     *simple.WeightedDirectedGraph
	lookup key2node
}

// Nodes is the number of addresses in the graph.
func (g *TrustGraph) Nodes() int { return len(g.lookup) }

// BuildTrustGraph folds every trust edge in the ledger into a graph.
func (rd *Reader) BuildTrustGraph() (*TrustGraph, error) {
	g := &TrustGraph{
		dg:     simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		lookup: make(key2node),
	}

	err := rd.ldg.View(func(tx *ledger.Tx) error {
		return ledger.IterateTrust(tx, func(from, to bsp.Address, e ledger.TrustEdge) error {
			nFrom := g.node(from)
			nTo := g.node(to)
			g.dg.SetWeightedEdge(simple.WeightedEdge{
				F: nFrom,
				T: nTo,
				W: float64(e.Level),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *TrustGraph) node(a bsp.Address) graph.Node {
	if n, has := g.lookup[a]; has {
		return n
	}
	n := userNode{g.dg.NewNode(), a}
	g.dg.AddNode(n)
	g.lookup[a] = n
	return n
}

// Trusts reports whether from has a direct edge to to.
func (g *TrustGraph) Trusts(from, to bsp.Address) bool {
	nFrom, has := g.lookup[from]
	if !has {
		return false
	}
	nTo, has := g.lookup[to]
	if !has {
		return false
	}
	return g.dg.HasEdgeFromTo(nFrom.ID(), nTo.ID())
}

// Score aggregates viewer's transitive trust in subject. Direct edges
// count at face value; each hop beyond the first attenuates the path by
// the decay factor, out to the maximum depth. Multiple paths sum.
// The result is 0 when the two are unconnected.
func (g *TrustGraph) Score(viewer, subject bsp.Address) float64 {
	nViewer, has := g.lookup[viewer]
	if !has {
		return 0
	}
	nSubject, has := g.lookup[subject]
	if !has || nViewer.ID() == nSubject.ID() {
		return 0
	}

	depth := make(map[int64]int, len(g.lookup))
	depth[nViewer.ID()] = 0

	w := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			// distrust does not extend the horizon, it only scores
			return g.weight(e.From().ID(), e.To().ID()) > 0
		},
	}
	w.Walk(g.dg, nViewer, func(n graph.Node, d int) bool {
		depth[n.ID()] = d
		return d >= ledger.TrustMaxDepth
	})

	var score float64
	to := g.dg.To(nSubject.ID())
	for to.Next() {
		via := to.Node().ID()
		d, reached := depth[via]
		if !reached || d >= ledger.TrustMaxDepth {
			continue
		}
		score += g.weight(via, nSubject.ID()) * math.Pow(ledger.TrustDecay, float64(d))
	}
	return score
}

func (g *TrustGraph) weight(from, to int64) float64 {
	if e := g.dg.WeightedEdge(from, to); e != nil {
		return e.Weight()
	}
	return 0
}
