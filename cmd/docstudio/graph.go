//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/chart"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/questions"
)

func (a *app) graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Query a GraphRAG index and inspect its artifacts",
	}
	cmd.AddCommand(
		a.graphQueryCmd(),
		a.graphPresetsCmd(),
		a.graphStatsCmd(),
		a.graphQuestionsCmd(),
	)
	return cmd
}

func (a *app) graphQueryCmd() *cobra.Command {
	var (
		method    string
		translate bool
		refine    bool
	)
	cmd := &cobra.Command{
		Use:   "query <question>...",
		Short: "Run one GraphRAG query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := graphrag.ParseMethod(method)
			if err != nil {
				return err
			}
			store, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)
			runner, err := a.newRunner(store)
			if err != nil {
				return err
			}
			res, err := runner.Query(cmd.Context(), strings.Join(args, " "), m)
			if err != nil {
				return err
			}
			return a.printQueryResult(cmd, res, translate, refine)
		},
	}
	cmd.Flags().StringVar(&method, "method", string(graphrag.MethodLocal), "Query method (local, global, drift)")
	cmd.Flags().BoolVar(&translate, "translate", false, "Translate the answer with the configured model")
	cmd.Flags().BoolVar(&refine, "refine", false, "Refine the answer with the configured model")
	return cmd
}

func (a *app) graphPresetsCmd() *cobra.Command {
	var run int
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the preset questions, or run one with --run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if run < 0 {
				return printPresets(cmd.OutOrStdout(), graphrag.Presets())
			}
			store, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)
			runner, err := a.newRunner(store)
			if err != nil {
				return err
			}
			res, err := runner.RunPreset(cmd.Context(), run)
			if err != nil {
				return err
			}
			return a.printQueryResult(cmd, res, false, false)
		},
	}
	cmd.Flags().IntVar(&run, "run", -1, "Index of the preset to run")
	return cmd
}

func printPresets(w io.Writer, presets []graphrag.Preset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tMETHOD\tCATEGORY\tQUESTION")
	for i, p := range presets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, p.Method, p.Category, p.Question)
	}
	return tw.Flush()
}

// printQueryResult prints the answer, optionally post-processed. A failed
// query is reported as an error after its output is printed.
func (a *app) printQueryResult(cmd *cobra.Command, res *graphrag.QueryResult, translate, refine bool) error {
	out := cmd.OutOrStdout()
	if res.Failed {
		fmt.Fprintln(out, res.Text)
		return fmt.Errorf("graphrag query failed with exit code %d", res.ExitCode)
	}
	text := res.Text
	if translate || refine {
		m, err := a.newModel("")
		if err != nil {
			return err
		}
		p := graphrag.NewPostprocessor(m, graphrag.WithTargetLanguage(a.cfg.GraphRAG.TargetLanguage))
		if refine {
			if text, err = p.Refine(cmd.Context(), text); err != nil {
				return err
			}
		}
		if translate {
			if text, err = p.Translate(cmd.Context(), text); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(out, text)
	if res.ResultPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "saved to %s (%s)\n", res.ResultPath, res.Duration)
	}
	return nil
}

func (a *app) graphStatsCmd() *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "stats <artifacts-dir>",
		Short: "Summarize the knowledge graph built by the indexer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arts, err := artifact.Load(args[0])
			if err != nil {
				return err
			}
			stats := artifact.Analyze(arts.Graph, arts.Entities)
			if err := printStats(cmd.OutOrStdout(), stats); err != nil {
				return err
			}
			if xlsx == "" {
				return nil
			}
			if err := chart.WriteWorkbook(xlsx, stats); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "charts written to %s\n", xlsx)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write the statistics and charts to this workbook")
	return cmd
}

func printStats(w io.Writer, s *artifact.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Nodes\t%d\n", s.Nodes)
	fmt.Fprintf(tw, "Edges\t%d\n", s.Edges)
	fmt.Fprintf(tw, "Density\t%.4f\n", s.Density)
	fmt.Fprintf(tw, "Connected components\t%d (largest %d)\n", s.Components, s.LargestComponent)
	fmt.Fprintf(tw, "Degree\tmin %d, max %d, mean %.2f\n", s.Degree.Min, s.Degree.Max, s.Degree.Mean)
	fmt.Fprintf(tw, "Communities\t%d\n", len(s.Communities))
	fmt.Fprintf(tw, "Entities\t%d\n", s.Entities)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(s.TopCentral) > 0 {
		fmt.Fprintln(w, "\nMost central nodes:")
		for i, c := range s.TopCentral {
			fmt.Fprintf(w, "  %2d. %s (%.4f)\n", i+1, c.Node, c.Value)
		}
	}
	if len(s.EntityTypes) > 0 {
		fmt.Fprintln(w, "\nEntity types:")
		for _, c := range s.EntityTypes {
			fmt.Fprintf(w, "  %s: %d\n", c.Label, c.Count)
		}
	}
	if len(s.Keywords) > 0 {
		words := make([]string, len(s.Keywords))
		for i, k := range s.Keywords {
			words[i] = fmt.Sprintf("%s(%d)", k.Label, k.Count)
		}
		fmt.Fprintf(w, "\nKeywords: %s\n", strings.Join(words, ", "))
	}
	return nil
}

func (a *app) graphQuestionsCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "questions [artifacts-dir]",
		Short: "Generate research questions from the presets and the graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats *artifact.Stats
			if len(args) == 1 {
				arts, err := artifact.Load(args[0])
				if err != nil {
					return err
				}
				stats = artifact.Analyze(arts.Graph, arts.Entities)
			}
			qs := questions.Generate(stats,
				questions.WithCommand(a.cfg.GraphRAG.Command),
				questions.WithRoot(a.cfg.GraphRAG.Root),
			)
			if outDir == "" {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for i, q := range qs {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, q.Method, q.Question)
				}
				return tw.Flush()
			}
			path, err := questions.WriteMarkdown(outDir, qs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Write the questions as Markdown into this directory")
	return cmd
}
