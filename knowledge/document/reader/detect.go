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
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedFormat is returned for extensions without a reader.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFormatMismatch is returned when the content contradicts the extension.
	ErrFormatMismatch = errors.New("file content does not match its extension")
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZIP  = "application/zip"
	mimeText = "text/plain"
)

// DetectFormat sniffs data and checks it against the extension of filename.
// It returns the detected MIME type.
func DetectFormat(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := GetReader(ext); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	mtype := mimetype.Detect(data)
	if !compatible(ext, mtype) {
		return mtype.String(), fmt.Errorf("%w: %s looks like %s", ErrFormatMismatch, filename, mtype.String())
	}
	return mtype.String(), nil
}

func compatible(ext string, mtype *mimetype.MIME) bool {
	switch ext {
	case ".pdf":
		return mtype.Is(mimePDF)
	case ".docx":
		return inHierarchy(mtype, mimeDOCX) || inHierarchy(mtype, mimeZIP)
	default:
		// Plain text in legacy encodings is often sniffed as octet-stream;
		// only reject content that is clearly another document format.
		if inHierarchy(mtype, mimeText) {
			return true
		}
		return !inHierarchy(mtype, mimePDF) && !inHierarchy(mtype, mimeZIP) &&
			!strings.HasPrefix(mtype.String(), "image/")
	}
}

func inHierarchy(mtype *mimetype.MIME, want string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}
