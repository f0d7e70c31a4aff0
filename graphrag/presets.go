//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graphrag

import (
	"errors"
	"fmt"
)

// ErrPresetNotFound is returned for an out of range preset index.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a ready-made question about prompt writing.
type Preset struct {
	Question    string `json:"question"`
	Method      Method `json:"method"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Focus       string `json:"focus"`
}

var presets = []Preset{
	{
		Question:    "What are the fundamental frameworks and methodologies for effective prompt engineering?",
		Method:      MethodGlobal,
		Category:    "Framework",
		Description: "Foundational frameworks and methodology of prompt engineering",
		Focus:       "Overall structure and systematic approaches to prompt design",
	},
	{
		Question:    "How do different prompt writing techniques compare in terms of effectiveness and use cases?",
		Method:      MethodGlobal,
		Category:    "Comparison",
		Description: "How the prompt techniques compare in effect",
		Focus:       "Comparative analysis of various prompting methods",
	},
	{
		Question:    "What are the specific step-by-step processes for constructing high-quality prompts?",
		Method:      MethodLocal,
		Category:    "Process",
		Description: "Concrete steps for building high quality prompts",
		Focus:       "Detailed procedural knowledge for prompt construction",
	},
	{
		Question:    "Can you provide concrete examples of successful prompt templates for different AI tasks?",
		Method:      MethodLocal,
		Category:    "Examples",
		Description: "Successful prompt templates for different AI tasks",
		Focus:       "Specific prompt examples and templates",
	},
	{
		Question:    "What are the common pitfalls and mistakes to avoid when writing prompts?",
		Method:      MethodLocal,
		Category:    "Best Practices",
		Description: "Common prompt writing mistakes and how to avoid them",
		Focus:       "Error prevention and optimization techniques",
	},
	{
		Question:    "How has prompt engineering evolved and what are the emerging trends in this field?",
		Method:      MethodDrift,
		Category:    "Evolution",
		Description: "History of prompt engineering and emerging trends",
		Focus:       "Historical development and future directions",
	},
	{
		Question:    "What role does context length and structure play in prompt effectiveness?",
		Method:      MethodLocal,
		Category:    "Technical",
		Description: "Effect of context length and structure on prompts",
		Focus:       "Technical aspects of prompt design",
	},
	{
		Question:    "How do domain-specific prompting strategies differ across various industries and applications?",
		Method:      MethodGlobal,
		Category:    "Domain-Specific",
		Description: "Domain specific prompting strategies across industries",
		Focus:       "Industry-specific applications and adaptations",
	},
	{
		Question:    "What are the psychological and cognitive principles behind effective prompt design?",
		Method:      MethodDrift,
		Category:    "Psychology",
		Description: "Psychological and cognitive principles of prompt design",
		Focus:       "Human-AI interaction psychology",
	},
	{
		Question:    "How can prompt writers measure and evaluate the quality and performance of their prompts?",
		Method:      MethodLocal,
		Category:    "Evaluation",
		Description: "Measuring the quality and performance of prompts",
		Focus:       "Metrics and assessment methods",
	},
}

// Presets returns the preset questions in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetAt returns the preset at index.
func PresetAt(index int) (Preset, error) {
	if index < 0 || index >= len(presets) {
		return Preset{}, fmt.Errorf("%w: index %d (have %d)", ErrPresetNotFound, index, len(presets))
	}
	return presets[index], nil
}
