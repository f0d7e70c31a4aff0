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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pathGraphML = `<?xml version='1.0' encoding='utf-8'?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <key id="d0" for="node" attr.name="type" attr.type="string" />
  <key id="d1" for="edge" attr.name="weight" attr.type="double" />
  <graph edgedefault="undirected">
    <node id="A"><data key="d0">CONCEPT</data></node>
    <node id="B"><data key="d0">TECHNIQUE</data></node>
    <node id="C" />
    <node id="D" />
    <edge source="A" target="B"><data key="d1">2.0</data></edge>
    <edge source="B" target="C" />
  </graph>
</graphml>
`

const entitiesJSON = `[
  {"name": "PROMPT ENGINEERING", "type": "CONCEPT", "description": "abcde"},
  {"title": "Chain of Thought", "type": "TECHNIQUE", "description": "ab"},
  {"name": "Prompt Template", "type": "CONCEPT"},
  {"name": "The Prompt"}
]`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseGraphML(t *testing.T) {
	g, err := ParseGraphML(strings.NewReader(pathGraphML))
	require.NoError(t, err)
	assert.False(t, g.Directed)
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, "A", g.Nodes[0].ID)
	assert.Equal(t, map[string]string{"type": "CONCEPT"}, g.Nodes[0].Data)
	assert.Nil(t, g.Nodes[2].Data)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, Edge{Source: "A", Target: "B", Data: map[string]string{"weight": "2.0"}}, g.Edges[0])

	_, err = ParseGraphML(strings.NewReader(`<graphml></graphml>`))
	assert.Error(t, err)
	_, err = ParseGraphML(strings.NewReader(`<graphml><graph>`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, GraphFile, pathGraphML)
	writeFile(t, dir, EntitiesFile, entitiesJSON)
	writeFile(t, dir, StatsFile, `{"num_documents": 3}`)

	a, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, a.Graph.Nodes, 4)
	require.Len(t, a.Entities, 4)
	assert.Equal(t, "Chain of Thought", a.Entities[1].Name)
	assert.Equal(t, float64(3), a.Stats["num_documents"])
	assert.Nil(t, a.TopLevelNodes)

	writeFile(t, dir, TopLevelNodesFile, `{broken`)
	_, err = Load(dir)
	assert.ErrorContains(t, err, TopLevelNodesFile)
}

func TestLoad_MissingGraph(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, EntitiesFile, entitiesJSON)
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrGraphNotFound)
}

func TestAnalyze_Graph(t *testing.T) {
	g, err := ParseGraphML(strings.NewReader(pathGraphML))
	require.NoError(t, err)
	s := Analyze(g, nil)

	assert.Equal(t, 4, s.Nodes)
	assert.Equal(t, 2, s.Edges)
	assert.InDelta(t, 1.0/3, s.Density, 1e-9)
	assert.Equal(t, 2, s.Components)
	assert.Equal(t, 3, s.LargestComponent)

	assert.Equal(t, 0, s.Degree.Min)
	assert.Equal(t, 2, s.Degree.Max)
	assert.InDelta(t, 1.0, s.Degree.Mean, 1e-9)
	assert.Equal(t, []DegreeBucket{{0, 1}, {1, 2}, {2, 1}}, s.Degree.Histogram)

	require.Len(t, s.TopCentral, 4)
	assert.Equal(t, "B", s.TopCentral[0].Node)
	assert.InDelta(t, 1.0/3, s.TopCentral[0].Value, 1e-9)
	assert.Equal(t, []string{"A", "C", "D"}, []string{s.TopCentral[1].Node, s.TopCentral[2].Node, s.TopCentral[3].Node})
	assert.Zero(t, s.TopCentral[1].Value)

	assert.Equal(t, []Community{
		{Size: 3, Sample: []string{"A", "B", "C"}},
		{Size: 1, Sample: []string{"D"}},
	}, s.Communities)
	assert.Zero(t, s.Entities)
	assert.Empty(t, s.EntityTypes)
}

func TestAnalyze_BetweennessStar(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "hub"}, {ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{{Source: "hub", Target: "a"}, {Source: "hub", Target: "b"}, {Source: "hub", Target: "c"}},
	}
	s := Analyze(g, nil)
	require.NotEmpty(t, s.TopCentral)
	assert.Equal(t, "hub", s.TopCentral[0].Node)
	assert.InDelta(t, 1.0, s.TopCentral[0].Value, 1e-9)
}

func TestAnalyze_Communities(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "b1"}, {ID: "b2"}, {ID: "b3"}},
		Edges: []Edge{
			{Source: "a1", Target: "a2"}, {Source: "a2", Target: "a3"}, {Source: "a3", Target: "a1"},
			{Source: "b1", Target: "b2"}, {Source: "b2", Target: "b3"}, {Source: "b3", Target: "b1"},
		},
	}
	s := Analyze(g, nil)
	require.Len(t, s.Communities, 2)
	assert.Equal(t, []string{"a1", "a2", "a3"}, s.Communities[0].Sample)
	assert.Equal(t, []string{"b1", "b2", "b3"}, s.Communities[1].Sample)
	assert.Equal(t, 2, s.Components)
}

func TestAnalyze_LoopsAndUndeclaredNodes(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "x"}},
		Edges: []Edge{{Source: "x", Target: "x"}, {Source: "x", Target: "y"}, {Source: "y", Target: "x"}},
	}
	s := Analyze(g, nil)
	assert.Equal(t, 2, s.Nodes)
	assert.Equal(t, []DegreeBucket{{Degree: 1, Nodes: 2}}, s.Degree.Histogram)
	assert.Equal(t, 1, s.Components)
}

func TestAnalyze_Entities(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, GraphFile, pathGraphML)
	writeFile(t, dir, EntitiesFile, entitiesJSON)
	a, err := Load(dir)
	require.NoError(t, err)

	s := Analyze(a.Graph, a.Entities)
	assert.Equal(t, 4, s.Entities)
	assert.Equal(t, []Count{{"CONCEPT", 2}, {"TECHNIQUE", 1}}, s.EntityTypes)
	assert.Equal(t, LengthStats{Count: 2, Min: 2, Max: 5, Mean: 3.5}, s.Descriptions)
	assert.Equal(t, []Count{
		{"prompt", 3}, {"chain", 1}, {"engineering", 1}, {"template", 1}, {"thought", 1},
	}, s.Keywords)
}

func TestAnalyze_Empty(t *testing.T) {
	s := Analyze(nil, nil)
	assert.Zero(t, s.Nodes)
	assert.Zero(t, s.Density)
	assert.Empty(t, s.TopCentral)
	assert.Empty(t, s.Communities)
	assert.Equal(t, LengthStats{}, s.Descriptions)
}
