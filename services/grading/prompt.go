package grading

import (
	"fmt"
	"strings"

	"examprep/models"
)

const gradingPreamble = `You are an experienced CBSE board examiner grading student answers.
Grade each answer against the expected answer and solution, following CBSE step-marking conventions:
- Award partial credit for correct steps, formulas and reasoning even when the final answer is wrong.
- Award full marks only when the answer covers every expected point.
- Keep feedback to 2-3 sentences a student can act on.
- List the specific key points the answer missed, or an empty list if none.
Report every grade through the report_grades tool, using each question's id as questionId.`

func buildTextBatchPrompt(items []models.CheckItem) string {
	var sb strings.Builder
	sb.WriteString(gradingPreamble)
	sb.WriteString("\n\nAnswers to grade:\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "\n--- Answer %d ---\n", i+1)
		fmt.Fprintf(&sb, "id: %s\n", item.ID)
		fmt.Fprintf(&sb, "Maximum marks: %d\n", item.Marks)
		fmt.Fprintf(&sb, "Question: %s\n", item.Question)
		fmt.Fprintf(&sb, "Expected answer: %s\n", item.CorrectAnswer)
		if item.Solution != "" {
			fmt.Fprintf(&sb, "Marking-scheme solution: %s\n", item.Solution)
		}
		fmt.Fprintf(&sb, "Student's answer: %s\n", item.StudentAnswer)
	}
	return sb.String()
}

func buildCodeBatchPrompt(items []models.CheckItem) string {
	var sb strings.Builder
	sb.WriteString(gradingPreamble)
	sb.WriteString("\nThese are programming answers. Judge correctness of logic and output, not style.\n")
	sb.WriteString("Minor syntax slips that would be caught in one compile cycle lose at most half a mark.\n")
	sb.WriteString("\nAnswers to grade:\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "\n--- Answer %d ---\n", i+1)
		fmt.Fprintf(&sb, "id: %s\n", item.ID)
		fmt.Fprintf(&sb, "Maximum marks: %d\n", item.Marks)
		fmt.Fprintf(&sb, "Language: %s\n", item.Language)
		fmt.Fprintf(&sb, "Question: %s\n", item.Question)
		fmt.Fprintf(&sb, "Expected answer: %s\n", item.CorrectAnswer)
		if item.Solution != "" {
			fmt.Fprintf(&sb, "Marking-scheme solution: %s\n", item.Solution)
		}
		fmt.Fprintf(&sb, "Student's code:\n%s\n", item.StudentAnswer)
	}
	return sb.String()
}

func buildImagePrompt(item models.ImageCheckItem) string {
	var sb strings.Builder
	sb.WriteString(gradingPreamble)
	sb.WriteString("\nThe image above is the student's handwritten or drawn answer. Read it carefully before grading.\n\n")
	fmt.Fprintf(&sb, "id: %s\n", item.ID)
	fmt.Fprintf(&sb, "Maximum marks: %d\n", item.Marks)
	fmt.Fprintf(&sb, "Question: %s\n", item.Question)
	fmt.Fprintf(&sb, "Expected answer: %s\n", item.CorrectAnswer)
	if item.Solution != "" {
		fmt.Fprintf(&sb, "Marking-scheme solution: %s\n", item.Solution)
	}
	return sb.String()
}
