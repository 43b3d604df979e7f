package genpaper

import (
	"encoding/json"
	"fmt"
	"strings"

	"examprep/models"
)

const responseFormat = `Respond with JSON only, in this exact shape:
{"questions": [{"type": "...", "question": "...", "options": ["..."], "correct_answer": "...", "solution": "...", "topic": "..."}]}
Valid types: mcq, assertion-reasoning, short-answer, long-answer, case-based, fill-blank, true-false, coding.
Omit "options" for non-choice types. Every question needs a correct_answer, a worked solution and a topic label.`

func buildSectionPrompt(subject string, bundle models.SectionBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a CBSE class XII %s paper setter. Author Section %s of a practice paper: exactly %d questions of %d marks each.\n\n",
		subject, bundle.Section, bundle.Count, bundle.MarksPerQuestion)

	if len(bundle.Reword) > 0 {
		fmt.Fprintf(&sb, "Reword the following %d past-paper questions: keep each one's concept and difficulty but change its numbers, context and phrasing so it reads as new.\n", len(bundle.Reword))
		writeQuestionList(&sb, bundle.Reword)
		sb.WriteString("\n")
	}
	if bundle.FreshCount > 0 {
		fmt.Fprintf(&sb, "Author %d additional fresh questions on syllabus topics in the same style and difficulty.\n", bundle.FreshCount)
	}
	if len(bundle.Patterns) > 0 {
		sb.WriteString("Pattern examples from past papers, for style and difficulty reference only (do not reuse them):\n")
		writeQuestionList(&sb, bundle.Patterns)
		sb.WriteString("\n")
	}

	sb.WriteString(responseFormat)
	return sb.String()
}

func buildSimilarPrompt(subject string, examples []models.Question, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a CBSE class XII %s paper setter. Author %d new practice questions modeled on the examples below: same topics, same types, same marks weighting, but entirely new content.\n\n", subject, count)

	sb.WriteString("Examples:\n")
	for i, q := range examples {
		fmt.Fprintf(&sb, "%d. [%s, %d marks, topic: %s] %s\n", i+1, q.Type, q.Marks, q.TopicOrDefault(), q.Text)
		if len(q.Options) > 0 {
			optionsJSON, _ := json.Marshal(q.Options)
			fmt.Fprintf(&sb, "   options: %s\n", optionsJSON)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(responseFormat)
	return sb.String()
}

func writeQuestionList(sb *strings.Builder, questions []models.BundleQuestion) {
	for i, q := range questions {
		fmt.Fprintf(sb, "%d. [%s, topic: %s] %s\n", i+1, q.Type, q.Topic, q.Question)
		if len(q.Options) > 0 {
			optionsJSON, _ := json.Marshal(q.Options)
			fmt.Fprintf(sb, "   options: %s\n", optionsJSON)
		}
	}
}
