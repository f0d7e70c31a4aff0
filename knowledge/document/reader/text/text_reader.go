//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package text provides the plain text document reader.
package text

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

var (
	// supportedExtensions defines the file extensions supported by this reader.
	supportedExtensions = []string{".txt", ".md", ".text"}

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	errInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// init registers the text reader with the global registry.
func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// New creates a text reader. It decodes UTF-8 first and falls back to GBK,
// the common legacy encoding for Chinese text files.
func New(opts ...reader.Option) reader.Reader {
	return reader.NewChainReader("TextReader", supportedExtensions, DefaultChain(), opts...)
}

// DefaultChain returns the default text decoding strategies.
func DefaultChain() reader.Chain {
	return reader.Chain{
		reader.NewStrategy("utf-8", decodeUTF8),
		reader.NewStrategy("gbk", decodeGBK),
	}
}

func decodeUTF8(_ context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

func decodeGBK(_ context.Context, data []byte) (string, error) {
	out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
