//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package questions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docstudio-go/graphrag"
	"trpc.group/trpc-go/trpc-docstudio-go/graphrag/artifact"
)

func TestGenerate_PresetsOnly(t *testing.T) {
	qs := Generate(nil, WithCommand("graphrag query"), WithRoot("./kb"))
	require.Len(t, qs, len(graphrag.Presets()))
	first := qs[0]
	assert.Equal(t, graphrag.MethodGlobal, first.Method)
	assert.Equal(t, "Framework", first.Category)
	assert.Equal(t,
		`graphrag query --root ./kb --method global --query "`+first.Question+`"`,
		first.Command)
}

func TestGenerate_FromStats(t *testing.T) {
	stats := artifact.Analyze(&artifact.Graph{
		Nodes: []artifact.Node{{ID: "FEW-SHOT"}, {ID: "PROMPT"}, {ID: "ROLE"}},
		Edges: []artifact.Edge{{Source: "FEW-SHOT", Target: "PROMPT"}, {Source: "PROMPT", Target: "ROLE"}},
	}, []artifact.Entity{
		{Name: "Prompt Template", Type: "CONCEPT"},
		{Name: "Prompt Role", Type: "CONCEPT"},
	})

	qs := Generate(stats)
	extra := qs[len(graphrag.Presets()):]
	require.Len(t, extra, 3)
	assert.Contains(t, extra[0].Question, "PROMPT play")
	assert.Equal(t, graphrag.MethodLocal, extra[0].Method)
	assert.Equal(t, "Entity Type", extra[1].Category)
	assert.Contains(t, extra[1].Question, "CONCEPT")
	assert.Contains(t, extra[2].Question, "prompt and role")
	assert.True(t, strings.HasPrefix(extra[2].Command, graphrag.DefaultCommand+" --root "+graphrag.DefaultRoot))
}

func TestWriteMarkdown(t *testing.T) {
	now = func() time.Time { return time.Date(2025, 6, 2, 15, 16, 53, 0, time.Local) }
	t.Cleanup(func() { now = time.Now })

	dir := filepath.Join(t.TempDir(), "out")
	qs := Generate(nil)
	path, err := WriteMarkdown(dir, qs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompt_writing_deep_questions_20250602_151653.md"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(b)
	assert.True(t, strings.HasPrefix(md, "# Prompt writing deep questions\n\nGenerated at: 2025-06-02 15:16:53\n"))
	assert.Equal(t, len(qs), strings.Count(md, "### Question "))
	assert.Contains(t, md, "**Method**: `drift`")
	assert.Contains(t, md, "```bash\n"+qs[0].Command+"\n```")
	assert.Contains(t, md, "## Query methods")
	assert.Contains(t, md, "- **local**:")
}
