//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomutex/godocx"
	"github.com/gonfva/docxlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader"
)

func newTestDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	doc := docxlib.New()
	for _, p := range paragraphs {
		doc.AddParagraph().AddText(p)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	return buf.Bytes()
}

// newRawDOCX builds an archive holding only word/document.xml.
func newRawDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDOCXReader_ReadFromReader(t *testing.T) {
	data := newTestDOCX(t, "First paragraph.", "Second paragraph.")

	doc, err := New().ReadFromReader(context.Background(), "report.docx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Content)
	assert.Equal(t, "docxlib", doc.Metadata[document.MetaStrategy])
	assert.Equal(t, ".docx", doc.Metadata[document.MetaExtension])
}

// TestDOCXReader_WordGeneratedFile reads a file written by a different
// library than the primary parser.
func TestDOCXReader_WordGeneratedFile(t *testing.T) {
	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	_, err = doc.AddHeading("Quarterly Notes", 1)
	require.NoError(t, err)
	doc.AddParagraph("Revenue grew in every region.")

	path := filepath.Join(t.TempDir(), "notes.docx")
	require.NoError(t, doc.SaveTo(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := New().ReadFromReader(context.Background(), "notes.docx", f)
	require.NoError(t, err)
	assert.Contains(t, got.Content, "Quarterly Notes")
	assert.Contains(t, got.Content, "Revenue grew in every region.")
}

func TestDOCXReader_DocumentXML(t *testing.T) {
	data := newRawDOCX(t,
		`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> World</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>`)

	text, err := extractDocumentXML(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Hello World\na\tb", text)

	text, err = extractDocumentXML(context.Background(), newTestDOCX(t, "Generated"))
	require.NoError(t, err)
	assert.Equal(t, "Generated", text)
}

func TestDOCXReader_FallbackChain(t *testing.T) {
	failing := reader.NewStrategy("docxlib", func(context.Context, []byte) (string, error) {
		return "", reader.ErrNoText
	})
	rdr := New(reader.WithStrategies(failing, DefaultChain()[1]))

	doc, err := rdr.ReadFromReader(context.Background(), "raw.docx",
		bytes.NewReader(newRawDOCX(t, `<w:p><w:r><w:t>fallback</w:t></w:r></w:p>`)))
	require.NoError(t, err)
	assert.Equal(t, "fallback", doc.Content)
	assert.Equal(t, "document-xml", doc.Metadata[document.MetaStrategy])
}

func TestDOCXReader_Invalid(t *testing.T) {
	_, err := New().ReadFromReader(context.Background(), "bad.docx", strings.NewReader("plain text"))
	var extErr *reader.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Len(t, extErr.Attempts, 2)

	_, err = extractDocumentXML(context.Background(), func() []byte {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, _ = zw.Create("other.xml")
		_ = zw.Close()
		return buf.Bytes()
	}())
	assert.ErrorIs(t, err, errNoDocumentPart)
}

func TestDOCXReader_Helpers(t *testing.T) {
	rdr := New()
	assert.Equal(t, "DOCXReader", rdr.Name())
	assert.Equal(t, []string{".docx"}, rdr.SupportedExtensions())
}
