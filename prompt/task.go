//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTask is returned for a report task that is not defined.
var ErrUnknownTask = errors.New("unknown report task")

// Task keys.
const (
	TaskStudyGuide = "study_guide"
	TaskBriefing   = "briefing"
	TaskFAQ        = "faq"
	TaskTimeline   = "timeline"
	TaskDialogue   = "dialogue"
)

// Task is a report format the analyzer can produce.
type Task struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

var tasks = []Task{
	{Key: TaskStudyGuide, Name: "Study Guide", Prompt: studyGuidePrompt},
	{Key: TaskBriefing, Name: "Briefing Document", Prompt: briefingPrompt},
	{Key: TaskFAQ, Name: "FAQ", Prompt: faqPrompt},
	{Key: TaskTimeline, Name: "Timeline", Prompt: timelinePrompt},
	{Key: TaskDialogue, Name: "Dialogue", Prompt: dialoguePrompt},
}

// Tasks returns every report task in display order.
func Tasks() []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// LookupTask resolves a task by key or display name, case-insensitively.
func LookupTask(key string) (Task, error) {
	key = strings.TrimSpace(key)
	for _, t := range tasks {
		if strings.EqualFold(t.Key, key) || strings.EqualFold(t.Name, key) {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, key)
}

// DefaultModels are offered when the model server cannot list its models.
var DefaultModels = []string{
	"gemma3:27b",
	"qwen3:32b",
	"gemma3:12b",
	"deepseek-r1:32b",
	"phi4:latest",
	"openthinker:32b",
}

const studyGuidePrompt = `Create a comprehensive study guide for a chapter or section titled <CHAPTER_OR_SECTION_TITLE> based on the provided text. The study guide should include:

1. **Summary**
   - Provide a concise 200-word summary in English that captures the main points and key arguments of the text.
   - Focus on the most important concepts and their relationships.

2. **Comprehension Questions**
   - A series of short-answer questions that focus on the chapter's key concepts.
   - Each answer should require 2–3 sentences.

3. **Analytical Essay Questions**
   - A set of open-ended prompts that invite critical evaluation and exploration of broader implications related to the chapter's themes.
   - Encourage connections to real-world issues, ethical considerations, or theoretical debates.

4. **Glossary of Terms**
   - A list of the main technical or thematic terms introduced in the chapter.
   - Provide concise, student-friendly definitions for each term.

Ensure every question and definition is tightly aligned with the material, encourages deep engagement, and avoids any generic or off-topic items.`

const briefingPrompt = `Prepare a concise briefing document titled <BRIEFING_TITLE> that analyzes the main arguments and evidence in the provided text. Structure your briefing as follows:

1. **Main Themes**
   - Summarize the overarching ideas without using jargon.
   - Highlight 3–5 central themes showing how they interconnect.

2. **Key Insights and Evidence**
   - Identify the most important facts, statistics, or examples from the text.
   - Use bullet points to distinguish between different types of evidence (e.g., data, case studies, expert opinions).

3. **Model Limitations and Alternatives**
   - Discuss why existing theories or frameworks may fall short.
   - Reference proposed alternatives and note any open challenges.

4. **Practical Considerations**
   - Offer specific implications for policymakers, practitioners, or stakeholders.
   - Address potential risks and benefits.

5. **Illustrative Quotes**
   - Select 3–5 memorable quotes from the text.
   - For each quote, provide a one-sentence explanation of its relevance.

Adopt a professional yet accessible tone that balances clarity with intellectual rigor.`

const faqPrompt = `Create a detailed FAQ titled <FAQ_TITLE> to address common questions and concerns arising from the text. For each question, supply a concise, informative answer grounded in the source material. Organize the FAQ into these sections:

1. **Overview Concerns**
   - Questions about the broader context or foundational issues.
   - Provide balanced answers that reference historical precedents and current challenges.

2. **Proposed Solutions**
   - Inquire about remedies or strategies suggested by the text.
   - Summarize the pros and cons of each approach.

3. **Implementation Challenges**
   - Address potential barriers to putting solutions into practice.
   - Include social, economic, or technical obstacles.

4. **Individual Action**
   - Advice for readers on how to apply insights from the text in their own lives or careers.
   - Emphasize concrete steps and skill-building.

5. **Ethical and Philosophical Questions**
   - Tackle deeper questions about values, identity, or long-term impacts.
   - Ensure answers are nuanced and acknowledge uncertainty where appropriate.

Maintain a clear, engaging style that speaks to a broad audience without oversimplifying.`

const timelinePrompt = `You are a text-analysis assistant. Given the input text, produce:

1. **Timeline Extraction**
   - List every explicit date or year in the text in chronological order.
   - For each entry, supply:
     - date: the date in ISO format (YYYY-MM-DD) if possible, or as originally written.
     - event: a one-sentence summary of what occurred on that date.

2. **Character Extraction**
   - Identify all named persons, organizations, or entities.
   - For each, supply:
     - name: full name as it appears in the text.
     - role: affiliation or function (e.g., CEO of X, historian, organization).
     - description: 1-2 sentences summarizing their actions or statements.

Please format the output as structured data with clear sections for timeline and characters.`

const dialoguePrompt = `Based on the provided text or file, write an informal, audience-engaging dialogue between two hosts. Follow these guidelines:

1. Opening
   - Begin with: "Hey everyone, welcome back."
   - Introduce the discussion as a "deep dive" into <TOPIC>.
2. Structure
   - Alternate speakers (Mandy, Felix).
   - Mix short, punchy lines with longer explanatory segments.
   - Insert affirmations ("Right," "Exactly," "Absolutely") to keep momentum.
3. Tone & Language
   - Use contractions and colloquial phrases ("You know," "I mean").
   - Keep it energetic and approachable.
   - Use rhetorical questions ("Isn't that wild?") for transitions.
4. Content Flow
   - Early on, name the source material (articles, studies).
   - Use analogies ("It's like…") to clarify complex ideas.
   - Break points into numbered or clearly signposted segments.
5. Interaction
   - One host asks questions or expresses confusion; the other responds.
   - Validate each other with phrases like "You've hit the nail on the head."
   - Build collaboratively on each point.
6. Audience Engagement
   - Directly address listeners ("So to everyone tuning in…").
   - Pose thought-provoking questions for reflection.
7. Conclusion
   - Signal closing: "So as we wrap things up…"
   - Offer a final takeaway or question.
   - End with: "And on that note…" and a consistent sign-off:
     "Until next time, keep <VERB>."

Ensure the dialogue balances informative depth with a casual, friendly vibe.`
