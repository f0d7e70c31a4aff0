//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package text

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

func TestTextReader_UTF8(t *testing.T) {
	rdr := New()
	doc, err := rdr.ReadFromReader(context.Background(), "notes.txt", strings.NewReader("Hello, 世界"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, 世界", doc.Content)
	assert.Equal(t, "notes.txt", doc.Name)
	assert.Equal(t, "utf-8", doc.Metadata[document.MetaStrategy])
	assert.Equal(t, ".txt", doc.Metadata[document.MetaExtension])
	assert.Equal(t, 9, doc.Metadata[document.MetaCharCount])
}

func TestTextReader_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom text")...)
	doc, err := New().ReadFromReader(context.Background(), "bom.txt", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "bom text", doc.Content)
}

func TestTextReader_GBKFallback(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("中文文档"))
	require.NoError(t, err)

	var failed []string
	rdr := New(reader.WithFallbackHook(func(_ string, a reader.Attempt) {
		failed = append(failed, a.Strategy)
	}))
	doc, err := rdr.ReadFromReader(context.Background(), "legacy.txt", bytes.NewReader(gbk))
	require.NoError(t, err)
	assert.Equal(t, "中文文档", doc.Content)
	assert.Equal(t, "gbk", doc.Metadata[document.MetaStrategy])
	assert.Equal(t, []string{"utf-8"}, failed)
}

func TestTextReader_BlankContent(t *testing.T) {
	_, err := New().ReadFromReader(context.Background(), "blank.txt", strings.NewReader(" \n\t "))
	var extErr *reader.ExtractionError
	require.ErrorAs(t, err, &extErr)
	require.Len(t, extErr.Attempts, 2)
	assert.ErrorIs(t, err, reader.ErrNoText)
}

func TestTextReader_ReadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.MD")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0o600))

	doc, err := reader.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", doc.Content)
	assert.Equal(t, ".md", doc.Metadata[document.MetaExtension])

	_, err = New().ReadFromFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestTextReader_Helpers(t *testing.T) {
	rdr := New()
	assert.Equal(t, "TextReader", rdr.Name())
	assert.Equal(t, []string{".txt", ".md", ".text"}, rdr.SupportedExtensions())
}
