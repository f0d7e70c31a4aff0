//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })
	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}
	for _, c := range cases {
		SetLevel(c.in)
		assert.Equal(t, c.expected, zapLevel.Level(), c.in)
	}
}

func TestConfigure_JSON(t *testing.T) {
	oldDefault, oldCtx := Default, ContextDefault
	t.Cleanup(func() {
		Default, ContextDefault = oldDefault, oldCtx
		SetLevel(LevelInfo)
	})

	var buf bytes.Buffer
	Configure(LevelWarn, FormatJSON, &buf)
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown 2", entry["message"])
	assert.Equal(t, "warn", entry["lvl"])
}

func TestContextHelpersUseContextDefault(t *testing.T) {
	original := ContextDefault
	t.Cleanup(func() { ContextDefault = original })

	logger := &countLogger{}
	ContextDefault = logger

	ctx := context.Background()
	InfofContext(ctx, "test %s", "x")
	WarnfContext(ctx, "test %s", "y")
	ErrorfContext(ctx, "test %s", "z")
	DebugfContext(ctx, "test %s", "w")
	assert.Equal(t, 4, logger.calls)
}

type countLogger struct {
	calls int
}

func (c *countLogger) Debugf(string, ...any) { c.calls++ }
func (c *countLogger) Info(...any)           { c.calls++ }
func (c *countLogger) Infof(string, ...any)  { c.calls++ }
func (c *countLogger) Warnf(string, ...any)  { c.calls++ }
func (c *countLogger) Errorf(string, ...any) { c.calls++ }
