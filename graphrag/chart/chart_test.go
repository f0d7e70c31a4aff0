//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chart

import (
	"archive/zip"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
)

func sampleStats() *artifact.Stats {
	g := &artifact.Graph{
		Nodes: []artifact.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		Edges: []artifact.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	}
	return artifact.Analyze(g, []artifact.Entity{
		{Name: "Prompt Engineering", Type: "CONCEPT", Description: "about prompts"},
		{Name: "Few Shot Prompt", Type: "TECHNIQUE"},
	})
}

func countCharts(t *testing.T, path string) int {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	n := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/charts/chart") && strings.HasSuffix(f.Name, ".xml") {
			n++
		}
	}
	return n
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleStats()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{
		SheetSummary, SheetEntityTypes, SheetDegrees, SheetCentrality, SheetCommunities, SheetKeywords,
	}, f.GetSheetList())

	nodes, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", nodes)
	mostCommon, err := f.GetCellValue(SheetSummary, "B13")
	require.NoError(t, err)
	assert.Equal(t, "CONCEPT", mostCommon)

	rows, err := f.GetRows(SheetEntityTypes)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Type", "Count"}, {"CONCEPT", "1"}, {"TECHNIQUE", "1"}}, rows)

	rows, err = f.GetRows(SheetCommunities)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Community 1", "3"}, rows[1])

	rows, err = f.GetRows(SheetKeywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"prompt", "2"}, rows[1])

	assert.Equal(t, 5, countCharts(t, path))
}

func TestWriteWorkbook_EmptyTablesHaveNoChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	s := artifact.Analyze(&artifact.Graph{Nodes: []artifact.Node{{ID: "solo"}}}, nil)
	require.NoError(t, WriteWorkbook(path, s))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetEntityTypes)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Type", "Count"}}, rows)
	top, err := f.GetCellValue(SheetSummary, "B15")
	require.NoError(t, err)
	assert.Equal(t, "N/A", top)

	// Degrees, centrality and communities still have one row each.
	assert.Equal(t, 3, countCharts(t, path))
}

func TestWriteWorkbook_NilStats(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
