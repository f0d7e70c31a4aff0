//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result sizes.
const (
	TopCentralNodes = 10
	TopEntityTypes  = 10
	TopKeywords     = 15

	maxPropagationRounds = 100
	communitySample      = 5
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "with": {}, "that": {}, "this": {}, "its": {}, "into": {},
}

// Count is a label with its number of occurrences.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Score is a node with a centrality value.
type Score struct {
	Node  string  `json:"node"`
	Value float64 `json:"value"`
}

// DegreeBucket counts the nodes having a given degree.
type DegreeBucket struct {
	Degree int `json:"degree"`
	Nodes  int `json:"nodes"`
}

// DegreeStats summarizes the node degrees.
type DegreeStats struct {
	Min       int            `json:"min"`
	Max       int            `json:"max"`
	Mean      float64        `json:"mean"`
	Histogram []DegreeBucket `json:"histogram"`
}

// Community is a group of nodes found by label propagation.
type Community struct {
	Size int `json:"size"`
	// Sample holds up to five member IDs in graph order.
	Sample []string `json:"sample"`
}

// LengthStats summarizes entity description lengths in runes.
type LengthStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
}

// Stats are the structural statistics of a knowledge graph.
type Stats struct {
	Nodes            int         `json:"nodes"`
	Edges            int         `json:"edges"`
	Density          float64     `json:"density"`
	Components       int         `json:"components"`
	LargestComponent int         `json:"largest_component"`
	Degree           DegreeStats `json:"degree"`
	TopCentral       []Score     `json:"top_central"`
	Communities      []Community `json:"communities"`
	Entities         int         `json:"entities"`
	EntityTypes      []Count     `json:"entity_types"`
	Descriptions     LengthStats `json:"descriptions"`
	Keywords         []Count     `json:"keywords"`
}

// undirected is an adjacency view of a graph. Nodes are indexed in the order
// they appear, edge endpoints that were never declared are appended.
type undirected struct {
	ids []string
	adj [][]int
}

func newUndirected(g *Graph) *undirected {
	u := &undirected{}
	index := make(map[string]int)
	add := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(u.ids)
		u.ids = append(u.ids, id)
		u.adj = append(u.adj, nil)
		return len(u.ids) - 1
	}
	if g == nil {
		return u
	}
	for _, n := range g.Nodes {
		add(n.ID)
	}
	seen := make(map[[2]int]struct{})
	for _, e := range g.Edges {
		a, b := add(e.Source), add(e.Target)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		if _, ok := seen[[2]int{a, b}]; ok {
			continue
		}
		seen[[2]int{a, b}] = struct{}{}
		u.adj[a] = append(u.adj[a], b)
		u.adj[b] = append(u.adj[b], a)
	}
	for _, ns := range u.adj {
		sort.Ints(ns)
	}
	return u
}

// Analyze computes the statistics of g and entities. Either may be empty.
// The graph is treated as undirected.
func Analyze(g *Graph, entities []Entity) *Stats {
	u := newUndirected(g)
	s := &Stats{Nodes: len(u.ids)}
	if g != nil {
		s.Edges = len(g.Edges)
	}
	if s.Nodes > 1 {
		s.Density = 2 * float64(s.Edges) / float64(s.Nodes*(s.Nodes-1))
	}
	s.Components, s.LargestComponent = u.components()
	s.Degree = u.degrees()
	s.TopCentral = u.topCentral(TopCentralNodes)
	s.Communities = u.communities()

	s.Entities = len(entities)
	s.EntityTypes, s.Descriptions, s.Keywords = entityStats(entities)
	return s
}

func (u *undirected) components() (count, largest int) {
	visited := make([]bool, len(u.ids))
	for start := range u.ids {
		if visited[start] {
			continue
		}
		count++
		size := 0
		stack := []int{start}
		visited[start] = true
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, w := range u.adj[v] {
				if !visited[w] {
					visited[w] = true
					stack = append(stack, w)
				}
			}
		}
		largest = max(largest, size)
	}
	return count, largest
}

func (u *undirected) degrees() DegreeStats {
	var ds DegreeStats
	if len(u.ids) == 0 {
		return ds
	}
	hist := make(map[int]int)
	total := 0
	ds.Min = len(u.adj[0])
	for _, ns := range u.adj {
		d := len(ns)
		hist[d]++
		total += d
		ds.Min = min(ds.Min, d)
		ds.Max = max(ds.Max, d)
	}
	ds.Mean = float64(total) / float64(len(u.ids))
	for d, n := range hist {
		ds.Histogram = append(ds.Histogram, DegreeBucket{Degree: d, Nodes: n})
	}
	sort.Slice(ds.Histogram, func(i, j int) bool {
		return ds.Histogram[i].Degree < ds.Histogram[j].Degree
	})
	return ds
}

// betweenness runs Brandes' algorithm for unweighted graphs and normalizes
// by (n-1)(n-2), the undirected scale.
func (u *undirected) betweenness() []float64 {
	n := len(u.ids)
	cb := make([]float64, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)

	for s := 0; s < n; s++ {
		for i := range n {
			sigma[i], dist[i], delta[i] = 0, -1, 0
			preds[i] = preds[i][:0]
		}
		sigma[s], dist[s] = 1, 0
		order := make([]int, 0, n)
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, w := range u.adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}
	if n > 2 {
		scale := 1 / float64((n-1)*(n-2))
		for i := range cb {
			cb[i] *= scale
		}
	}
	return cb
}

func (u *undirected) topCentral(k int) []Score {
	cb := u.betweenness()
	scores := make([]Score, len(cb))
	for i, v := range cb {
		scores[i] = Score{Node: u.ids[i], Value: v}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Value != scores[j].Value {
			return scores[i].Value > scores[j].Value
		}
		return scores[i].Node < scores[j].Node
	})
	if len(scores) > k {
		scores = scores[:k]
	}
	return scores
}

// communities runs asynchronous label propagation in node order. A node
// keeps its label when it is among the most frequent, otherwise the smallest
// most frequent label wins, so the result is deterministic.
func (u *undirected) communities() []Community {
	n := len(u.ids)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	freq := make(map[int]int)
	for round := 0; round < maxPropagationRounds; round++ {
		changed := false
		for v := range n {
			if len(u.adj[v]) == 0 {
				continue
			}
			clear(freq)
			best := 0
			for _, w := range u.adj[v] {
				freq[labels[w]]++
				best = max(best, freq[labels[w]])
			}
			if freq[labels[v]] == best {
				continue
			}
			next := -1
			for l, c := range freq {
				if c == best && (next < 0 || l < next) {
					next = l
				}
			}
			labels[v] = next
			changed = true
		}
		if !changed {
			break
		}
	}

	groups := make(map[int][]int)
	var order []int
	for v, l := range labels {
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		groups[l] = append(groups[l], v)
	}
	out := make([]Community, 0, len(order))
	for _, l := range order {
		members := groups[l]
		c := Community{Size: len(members)}
		for _, v := range members[:min(len(members), communitySample)] {
			c.Sample = append(c.Sample, u.ids[v])
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out
}

func entityStats(entities []Entity) (types []Count, desc LengthStats, keywords []Count) {
	typeCounts := make(map[string]int)
	wordCounts := make(map[string]int)
	total := 0
	for _, e := range entities {
		if e.Type != "" {
			typeCounts[e.Type]++
		}
		if e.Description != "" {
			l := utf8.RuneCountInString(e.Description)
			if desc.Count == 0 || l < desc.Min {
				desc.Min = l
			}
			desc.Max = max(desc.Max, l)
			desc.Count++
			total += l
		}
		for _, w := range strings.Fields(e.Name) {
			w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			}))
			if utf8.RuneCountInString(w) < 2 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			wordCounts[w]++
		}
	}
	if desc.Count > 0 {
		desc.Mean = float64(total) / float64(desc.Count)
	}
	return topCounts(typeCounts, TopEntityTypes), desc, topCounts(wordCounts, TopKeywords)
}

func topCounts(m map[string]int, k int) []Count {
	out := make([]Count, 0, len(m))
	for l, c := range m {
		out = append(out, Count{Label: l, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
