//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperStrategy() Strategy {
	return NewStrategy("raw", func(_ context.Context, data []byte) (string, error) {
		return string(data), nil
	})
}

func registerFoo(t *testing.T) {
	t.Helper()
	ClearRegistry()
	t.Cleanup(ClearRegistry)
	RegisterReader([]string{".FOO"}, func(opts ...Option) Reader {
		return NewChainReader("FooReader", []string{".foo"}, Chain{upperStrategy()}, opts...)
	})
}

func TestRegistry_RegisterAndExtensions(t *testing.T) {
	registerFoo(t)

	globalRegistry.mu.RLock()
	_, okLower := globalRegistry.readers[".foo"]
	_, okUpper := globalRegistry.readers[".FOO"]
	globalRegistry.mu.RUnlock()
	assert.True(t, okLower)
	assert.False(t, okUpper)

	assert.Equal(t, []string{".foo"}, GetRegisteredExtensions())

	r, ok := GetReader(".Foo")
	require.True(t, ok)
	assert.Equal(t, "FooReader", r.Name())

	_, ok = GetReader(".bar")
	assert.False(t, ok)
}

func TestRead_DispatchesByExtension(t *testing.T) {
	registerFoo(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "notes.foo")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))
	doc, err := Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "payload", doc.Content)
	assert.Equal(t, "notes.foo", doc.Name)
	assert.Equal(t, "raw", doc.Metadata["strategy"])
	assert.Equal(t, ".foo", doc.Metadata["extension"])

	_, err = Read(context.Background(), filepath.Join(dir, "notes.xyz"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestChainReader_MaxSize(t *testing.T) {
	r := NewChainReader("FooReader", nil, Chain{upperStrategy()}, WithMaxSize(4))
	_, err := r.ReadFromReader(context.Background(), "big.foo", bytesReader("12345"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte limit")

	doc, err := r.ReadFromReader(context.Background(), "ok.foo", bytesReader("1234"))
	require.NoError(t, err)
	assert.Equal(t, "1234", doc.Content)
}
