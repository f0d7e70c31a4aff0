//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Command docstudio serves the document studio and exposes its operations
// on the command line.
package main

import (
	"fmt"
	"os"

	_ "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader/docx"
	_ "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader/pdf"
	_ "trpc.group/trpc-go/trpc-docstudio-go/knowledge/document/reader/text"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
