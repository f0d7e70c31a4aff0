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
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docstudio-go/analyzer"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
	"trpc.group/trpc-go/trpc-docstudio-go/report"
)

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the plain text extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := reader.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Content)
			return err
		},
	}
}

func (a *app) chunkCmd() *cobra.Command {
	var maxLength int
	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Split a document into model sized chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := reader.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if maxLength <= 0 {
				maxLength = a.cfg.Analyzer.ChunkSize
			}
			chunks := chunking.SplitText(doc.Content, maxLength)
			return printChunks(cmd.OutOrStdout(), chunks)
		},
	}
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum characters per chunk (default from config)")
	return cmd
}

func printChunks(w io.Writer, chunks []string) error {
	for i, c := range chunks {
		if _, err := fmt.Fprintf(w, "--- chunk %d/%d (%d chars) ---\n%s\n\n",
			i+1, len(chunks), utf8.RuneCountInString(c), c); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		tasks     []string
		mode      string
		modelName string
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "analyze <glob>...",
		Short: "Generate report sections for every matching document",
		Long: "Analyze runs the selected report tasks over each document matched by the\n" +
			"given patterns (doublestar syntax, e.g. docs/**/*.pdf) and writes one\n" +
			"Word report per document.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandGlobs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.New("no documents match the given patterns")
			}
			m, err := a.newModel(modelName)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.Server.ReportDir
			}
			ctx := cmd.Context()
			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			opts := append(a.analyzerOptions(),
				analyzer.WithHistory(store),
				analyzer.WithReportWriter(func(res *analyzer.Result) (string, error) {
					return report.Write(outDir, res)
				}),
			)
			an := analyzer.New(m, opts...)
			stderr := cmd.ErrOrStderr()
			var failed int
			for _, f := range files {
				res, err := an.Analyze(ctx, analyzer.AnalyzeRequest{Path: f, Tasks: tasks, Mode: mode},
					func(ev analyzer.Event) {
						if ev.Stage != analyzer.StageStreaming {
							fmt.Fprintf(stderr, "[%s] %s\n", ev.Stage, ev.Message)
						}
					})
				if err != nil {
					failed++
					fmt.Fprintf(stderr, "analyze %s: %v\n", f, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f, res.ReportPath)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Report task key or name, repeatable (default all)")
	cmd.Flags().StringVar(&mode, "mode", "", "Reasoning mode (default from config)")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name (default from config)")
	cmd.Flags().StringVar(&outDir, "out", "", "Report directory (default server.report_dir)")
	return cmd
}

// expandGlobs resolves doublestar patterns to a sorted, de-duplicated file list.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	return files, nil
}
