//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package chart renders knowledge-graph statistics as an Excel workbook with
// native charts.
package chart

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
)

// Sheet names.
const (
	SheetSummary     = "Summary"
	SheetEntityTypes = "EntityTypes"
	SheetDegrees     = "Degrees"
	SheetCentrality  = "Centrality"
	SheetCommunities = "Communities"
	SheetKeywords    = "Keywords"
)

// maxPieSlices bounds the communities drawn in the pie chart.
const maxPieSlices = 10

type table struct {
	sheet     string
	title     string
	header    [2]string
	chartType excelize.ChartType
	rows      [][2]any
}

// WriteWorkbook writes stats to an xlsx file at path. Data sheets without
// rows are written without a chart.
func WriteWorkbook(path string, stats *artifact.Stats) (err error) {
	if stats == nil {
		return errors.New("chart: stats is nil")
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if err := writeSummary(f, stats); err != nil {
		return err
	}
	for _, t := range tables(stats) {
		if err := writeTable(f, t); err != nil {
			return fmt.Errorf("chart: sheet %s: %w", t.sheet, err)
		}
	}
	return f.SaveAs(path)
}

func writeSummary(f *excelize.File, s *artifact.Stats) error {
	mostCommonType, topKeyword := "N/A", "N/A"
	if len(s.EntityTypes) > 0 {
		mostCommonType = s.EntityTypes[0].Label
	}
	if len(s.Keywords) > 0 {
		topKeyword = s.Keywords[0].Label
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Nodes", s.Nodes},
		{"Edges", s.Edges},
		{"Density", s.Density},
		{"Connected components", s.Components},
		{"Largest component", s.LargestComponent},
		{"Min degree", s.Degree.Min},
		{"Max degree", s.Degree.Max},
		{"Mean degree", s.Degree.Mean},
		{"Communities", len(s.Communities)},
		{"Entities", s.Entities},
		{"Entity types", len(s.EntityTypes)},
		{"Most common type", mostCommonType},
		{"Mean description length", s.Descriptions.Mean},
		{"Top keyword", topKeyword},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 28)
}

func tables(s *artifact.Stats) []table {
	types := table{
		sheet: SheetEntityTypes, title: "Entity type distribution",
		header: [2]string{"Type", "Count"}, chartType: excelize.Bar,
	}
	for _, c := range s.EntityTypes {
		types.rows = append(types.rows, [2]any{c.Label, c.Count})
	}

	degrees := table{
		sheet: SheetDegrees, title: "Node degree distribution",
		header: [2]string{"Degree", "Nodes"}, chartType: excelize.Col,
	}
	for _, b := range s.Degree.Histogram {
		degrees.rows = append(degrees.rows, [2]any{fmt.Sprint(b.Degree), b.Nodes})
	}

	central := table{
		sheet: SheetCentrality, title: "Top nodes by betweenness centrality",
		header: [2]string{"Node", "Betweenness"}, chartType: excelize.Bar,
	}
	for _, sc := range s.TopCentral {
		central.rows = append(central.rows, [2]any{sc.Node, sc.Value})
	}

	communities := table{
		sheet: SheetCommunities, title: fmt.Sprintf("Community structure (%d communities)", len(s.Communities)),
		header: [2]string{"Community", "Size"}, chartType: excelize.Pie,
	}
	for i, c := range s.Communities[:min(len(s.Communities), maxPieSlices)] {
		communities.rows = append(communities.rows, [2]any{fmt.Sprintf("Community %d", i+1), c.Size})
	}

	keywords := table{
		sheet: SheetKeywords, title: "Top keywords",
		header: [2]string{"Keyword", "Occurrences"}, chartType: excelize.Bar,
	}
	for _, c := range s.Keywords {
		keywords.rows = append(keywords.rows, [2]any{c.Label, c.Count})
	}
	return []table{types, degrees, central, communities, keywords}
}

func writeTable(f *excelize.File, t table) error {
	if _, err := f.NewSheet(t.sheet); err != nil {
		return err
	}
	header := []any{t.header[0], t.header[1]}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range t.rows {
		row := []any{r[0], r[1]}
		if err := f.SetSheetRow(t.sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if len(t.rows) == 0 {
		return nil
	}
	last := len(t.rows) + 1
	legend := "none"
	if t.chartType == excelize.Pie {
		legend = "right"
	}
	return f.AddChart(t.sheet, "D2", &excelize.Chart{
		Type: t.chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", t.sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", t.sheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", t.sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: t.title}},
		Format: excelize.GraphicOptions{OffsetX: 10, OffsetY: 10},
		Legend: excelize.ChartLegend{Position: legend},
	})
}
