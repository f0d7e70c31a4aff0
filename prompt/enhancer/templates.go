//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package enhancer

const header = `You are a professional prompt engineer. Rewrite the prompt below in the {{ .Style }} style for the following reader: {{ .Audience | trim | default "a general audience" }}.

Original prompt: {{ .Original | trim }}

Give the rewritten prompt itself in {{ .Language | default "the language of the original prompt" }}, not advice about it. Requirements:
`

const footer = `
Rewritten prompt:`

var cotTemplate = header + `1. Open with "Let me think this through step by step..."
2. Break the task into clear, numbered steps
3. Keep the wording warm and lively for the reader above
4. Weave in the reader's interests where they fit naturally
` + footer

var totTemplate = header + `1. Open with "Let me explore a few different approaches..."
2. Ask the model to produce several candidate solutions and compare them
3. Keep the wording natural and friendly
4. Bring in local culture and the reader's interests
` + footer

var gotTemplate = header + `1. Open with "Let me map how these ideas connect..."
2. Stress the relationships and links between concepts
3. Use vivid images that make complex relationships easy to follow
4. Connect AI technology with its business applications
` + footer

var eotTemplate = header + `1. Open with "Let me look at this from every angle..."
2. Analyze the problem along several dimensions and perspectives
3. Be thorough and attentive to detail
4. Relate the task to an international business environment
` + footer

var costarTemplate = header + `Follow this CO-STAR layout exactly:

{{ upper "Context" }}: [a setting that fits the reader's local surroundings and daily life]
{{ upper "Objective" }}: [the task to accomplish]
{{ upper "Style" }}: [an output style suited to the reader]
{{ upper "Tone" }}: [a gentle, encouraging tone]
{{ upper "Audience" }}: [{{ .Audience | trim | default "a general audience" }}]
{{ upper "Response" }}: [the expected format and structure of the answer]

[Then give the complete structured prompt, natural and warm]
` + footer
