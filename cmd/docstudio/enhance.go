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
	"strings"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docstudio-go/prompt/enhancer"
)

func (a *app) enhanceCmd() *cobra.Command {
	var (
		method    string
		modelName string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "enhance <prompt>...",
		Short: "Rewrite a prompt with a prompt engineering technique",
		Long: "Enhance fills the technique template with the prompt and streams the\n" +
			"model's rewrite. With --dry-run the filled template is printed instead.\n" +
			"Methods: " + methodKeys(),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			if dryRun {
				rendered, err := enhancer.New(nil, a.enhancerOptions()...).Render(text, method)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, rendered)
				return err
			}
			m, err := a.newModel(modelName)
			if err != nil {
				return err
			}
			e := enhancer.New(m, a.enhancerOptions()...)
			var streamed bool
			result, err := e.Enhance(cmd.Context(), text, method, func(_, delta string) {
				streamed = true
				fmt.Fprint(out, delta)
			})
			if err != nil {
				return err
			}
			if !streamed {
				fmt.Fprint(out, result)
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVar(&method, "method", "costar", "Technique key ("+methodKeys()+")")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the filled template without calling the model")
	return cmd
}

func methodKeys() string {
	methods := enhancer.Methods()
	keys := make([]string, len(methods))
	for i, m := range methods {
		keys[i] = m.Key
	}
	return strings.Join(keys, ", ")
}
