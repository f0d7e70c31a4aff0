//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package graphrag runs queries against a GraphRAG index built offline and
// post-processes the answers.
package graphrag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMethod is returned for a search method GraphRAG does not support.
var ErrInvalidMethod = errors.New("invalid graphrag method")

// Method is a GraphRAG search method.
type Method string

// Search methods.
const (
	// MethodLocal answers from the entities closest to the question.
	MethodLocal Method = "local"
	// MethodGlobal answers from community summaries across the whole graph.
	MethodGlobal Method = "global"
	// MethodDrift starts global and follows up locally.
	MethodDrift Method = "drift"
)

// Methods returns the supported methods.
func Methods() []Method {
	return []Method{MethodLocal, MethodGlobal, MethodDrift}
}

// ParseMethod validates s, case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodLocal, MethodGlobal, MethodDrift:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (want local, global or drift)", ErrInvalidMethod, s)
}

func (m Method) String() string { return string(m) }
