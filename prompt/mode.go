//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package prompt holds the thinking modes and report tasks used to build
// analysis prompts.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned for a thinking mode that is not defined.
var ErrUnknownMode = errors.New("unknown thinking mode")

// Mode keys.
const (
	ModeStandard = "standard"
	ModeCoT      = "cot"
	ModeToT      = "tot"
	ModeGoT      = "got"
	ModeEoT      = "eot"
)

// Mode is a reasoning preamble placed in front of a task prompt.
type Mode struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prefix      string `json:"prefix"`
}

var modes = []Mode{
	{
		Key:         ModeStandard,
		Name:        "Standard",
		Description: "Answer directly without a reasoning preamble.",
	},
	{
		Key:         ModeCoT,
		Name:        "Chain of Thought (CoT)",
		Description: "Reason step by step before answering.",
		Prefix: `Before providing your final answer, think step by step:
1. First, identify the key information in the text
2. Then, analyze the relationships between different concepts
3. Next, consider the implications and connections
4. Finally, synthesize your findings into a coherent response

Let me work through this systematically:`,
	},
	{
		Key:         ModeToT,
		Name:        "Tree of Thought (ToT)",
		Description: "Explore several approaches and keep the most complete one.",
		Prefix: `I'll explore multiple possible approaches to analyze this text, then choose the best path:

**Approach 1**: Focus on main themes and arguments
**Approach 2**: Analyze from historical/contextual perspective
**Approach 3**: Examine practical applications and implications
**Approach 4**: Look at theoretical frameworks and concepts

Let me evaluate each approach and select the most comprehensive one:`,
	},
	{
		Key:         ModeGoT,
		Name:        "Graph of Thought (GoT)",
		Description: "Map how ideas, evidence and implications connect.",
		Prefix: `I'll analyze this text by mapping the interconnected relationships between ideas:

**Core Concepts** → **Supporting Evidence** → **Implications**
        ↓                    ↓                    ↓
**Related Themes** → **Counterarguments** → **Applications**
        ↓                    ↓                    ↓
**Historical Context** → **Current Relevance** → **Future Considerations**

Now let me trace these connections systematically:`,
	},
	{
		Key:         ModeEoT,
		Name:        "Everything of Thought (EoT)",
		Description: "Examine the text from every analytical dimension and perspective.",
		Prefix: `I'll analyze this from every possible angle and dimension:

**Analytical Dimensions:**
- Semantic analysis (what does it say?)
- Pragmatic analysis (what does it do?)
- Critical analysis (what are the strengths/weaknesses?)
- Contextual analysis (what's the broader picture?)
- Predictive analysis (what are the implications?)

**Perspective Angles:**
- Academic/scholarly view
- Practical/applied view
- Critical/skeptical view
- Creative/innovative view
- Holistic/systemic view

Let me synthesize insights from all these dimensions:`,
	},
}

// Modes returns the thinking modes in display order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// LookupMode resolves a mode by key or display name, case-insensitively.
// An empty key means standard.
func LookupMode(key string) (Mode, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return modes[0], nil
	}
	for _, m := range modes {
		if strings.EqualFold(m.Key, key) || strings.EqualFold(m.Name, key) {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, key)
}

// Combine prefixes base with the preamble of the given mode.
func Combine(mode, base string) (string, error) {
	m, err := LookupMode(mode)
	if err != nil {
		return "", err
	}
	if m.Prefix == "" {
		return base, nil
	}
	return m.Prefix + "\n\n" + base, nil
}
