//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package artifact loads the files a GraphRAG indexing run leaves in its
// artifacts directory and computes structural statistics over them.
package artifact

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact file names.
const (
	GraphFile         = "summarized_graph.graphml"
	EntitiesFile      = "raw_extracted_entities.json"
	TopLevelNodesFile = "top_level_nodes.json"
	StatsFile         = "stats.json"
)

// ErrGraphNotFound is returned when the artifacts dir has no graph file.
var ErrGraphNotFound = errors.New("graphml file not found")

// Node is a graph node with its data attributes keyed by attribute name.
type Node struct {
	ID   string            `json:"id"`
	Data map[string]string `json:"data,omitempty"`
}

// Edge is a graph edge with its data attributes keyed by attribute name.
type Edge struct {
	Source string            `json:"source"`
	Target string            `json:"target"`
	Data   map[string]string `json:"data,omitempty"`
}

// Graph is a parsed GraphML graph.
type Graph struct {
	Directed bool   `json:"directed"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Entity is one extracted entity. GraphRAG writes the name as either
// "name" or "title".
type Entity struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts "title" as an alias for "name".
func (e *Entity) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	if e.Name == "" {
		e.Name = raw.Title
	}
	e.Type = raw.Type
	e.Description = raw.Description
	return nil
}

// Artifacts is the content of an artifacts directory.
type Artifacts struct {
	Dir           string         `json:"dir"`
	Graph         *Graph         `json:"graph"`
	Entities      []Entity       `json:"entities,omitempty"`
	TopLevelNodes any            `json:"top_level_nodes,omitempty"`
	Stats         map[string]any `json:"stats,omitempty"`
}

// Load reads the artifacts in dir. Only the graph file is required.
func Load(dir string) (*Artifacts, error) {
	a := &Artifacts{Dir: dir}

	f, err := os.Open(filepath.Join(dir, GraphFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrGraphNotFound, dir)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if a.Graph, err = ParseGraphML(f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", GraphFile, err)
	}

	if err := readOptionalJSON(filepath.Join(dir, EntitiesFile), &a.Entities); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, TopLevelNodesFile), &a.TopLevelNodes); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, StatsFile), &a.Stats); err != nil {
		return nil, err
	}
	return a, nil
}

func readOptionalJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

type graphmlDoc struct {
	Keys   []graphmlKey   `xml:"key"`
	Graphs []graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ParseGraphML parses the first graph of a GraphML document. Data keys are
// resolved to their attr.name when the document declares one.
func ParseGraphML(r io.Reader) (*Graph, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Graphs) == 0 {
		return nil, errors.New("graphml: no graph element")
	}
	names := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Name != "" {
			names[k.ID] = k.Name
		}
	}
	data := func(ds []graphmlData) map[string]string {
		if len(ds) == 0 {
			return nil
		}
		m := make(map[string]string, len(ds))
		for _, d := range ds {
			key := d.Key
			if name, ok := names[key]; ok {
				key = name
			}
			m[key] = d.Value
		}
		return m
	}

	src := doc.Graphs[0]
	g := &Graph{
		Directed: src.EdgeDefault == "directed",
		Nodes:    make([]Node, 0, len(src.Nodes)),
		Edges:    make([]Edge, 0, len(src.Edges)),
	}
	for _, n := range src.Nodes {
		g.Nodes = append(g.Nodes, Node{ID: n.ID, Data: data(n.Data)})
	}
	for _, e := range src.Edges {
		g.Edges = append(g.Edges, Edge{Source: e.Source, Target: e.Target, Data: data(e.Data)})
	}
	return g, nil
}
