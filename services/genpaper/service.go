// Package genpaper synthesizes exam questions: reworded variants of real
// PYQs plus freshly authored ones matching each section's pattern.
package genpaper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"examprep/models"
)

type Service struct {
	llm llms.Model
}

func NewService(openaiAPIKey string) (*Service, error) {
	if openaiAPIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return &Service{llm: llm}, nil
}

// sectionResponse is the JSON shape the model is asked to produce.
type sectionResponse struct {
	Questions []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Solution      string   `json:"solution"`
	Topic         string   `json:"topic"`
}

// GenerateSection synthesizes one section's questions from its bundle.
// Failures wrap the section-generation sentinel so callers can retry the
// section alone.
func (s *Service) GenerateSection(ctx context.Context, subject string, bundle models.SectionBundle) ([]models.Question, error) {
	prompt := buildSectionPrompt(subject, bundle)

	log.Printf("[INFO] Generating section %s for %s (%d reword, %d fresh)", bundle.Section, subject, len(bundle.Reword), bundle.FreshCount)
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("%w: section %s: %v", models.ErrSectionGeneration, bundle.Section, err)
	}

	var parsed sectionResponse
	if err := parseJSONResponse(completion, &parsed); err != nil {
		return nil, fmt.Errorf("%w: section %s: %v", models.ErrSectionGeneration, bundle.Section, err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("%w: section %s: response contained no questions", models.ErrSectionGeneration, bundle.Section)
	}

	questions := make([]models.Question, 0, len(parsed.Questions))
	for i, gq := range parsed.Questions {
		questions = append(questions, models.Question{
			ID:             fmt.Sprintf("gen_%d_%s_%d", time.Now().UnixMilli(), strings.ToLower(bundle.Section), i),
			QuestionNumber: i + 1,
			Section:        bundle.Section,
			Type:           models.NormalizeQuestionType(gq.Type),
			Text:           gq.Question,
			Options:        gq.Options,
			CorrectAnswer:  gq.CorrectAnswer,
			Solution:       gq.Solution,
			Marks:          bundle.MarksPerQuestion,
			Topic:          gq.Topic,
		})
	}
	return questions, nil
}

// SectionOutcome is one section's result within a concurrently generated
// paper. A failed section is retryable without touching the others.
type SectionOutcome struct {
	Section   string            `json:"section"`
	Questions []models.Question `json:"questions,omitempty"`
	Err       error             `json:"-"`
}

// GeneratePaper fires one synthesis call per section concurrently. The
// returned outcomes preserve the structure's section order, and partial
// failure is a valid result.
func (s *Service) GeneratePaper(ctx context.Context, subject string, bundles []models.SectionBundle) []SectionOutcome {
	outcomes := make([]SectionOutcome, len(bundles))

	var wg sync.WaitGroup
	for i, bundle := range bundles {
		wg.Add(1)
		go func(i int, bundle models.SectionBundle) {
			defer wg.Done()
			questions, err := s.GenerateSection(ctx, subject, bundle)
			if err != nil {
				log.Printf("[ERROR] Section %s generation failed: %v", bundle.Section, err)
			}
			outcomes[i] = SectionOutcome{Section: bundle.Section, Questions: questions, Err: err}
		}(i, bundle)
	}
	wg.Wait()

	// Paper-wide question numbering in section order; failed sections
	// leave a gap equal to their expected count so a retry slots in.
	number := 1
	for i := range outcomes {
		if outcomes[i].Err != nil {
			number += bundles[i].Count
			continue
		}
		for j := range outcomes[i].Questions {
			outcomes[i].Questions[j].QuestionNumber = number
			number++
		}
	}

	return outcomes
}

// GenerateSimilar authors count new questions in the style of the given
// examples. Used for ai-similar practice sessions.
func (s *Service) GenerateSimilar(ctx context.Context, subject string, examples []models.Question, count int) ([]models.Question, error) {
	if count <= 0 {
		count = len(examples)
	}
	prompt := buildSimilarPrompt(subject, examples, count)

	log.Printf("[INFO] Generating %d similar questions for %s from %d examples", count, subject, len(examples))
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.8))
	if err != nil {
		return nil, fmt.Errorf("failed to generate similar questions: %w", err)
	}

	var parsed sectionResponse
	if err := parseJSONResponse(completion, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse similar-question response: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("similar-question response contained no questions")
	}

	marks := 1
	if len(examples) > 0 {
		marks = examples[0].Marks
	}
	questions := make([]models.Question, 0, len(parsed.Questions))
	for i, gq := range parsed.Questions {
		if i >= count {
			break
		}
		questions = append(questions, models.Question{
			ID:             fmt.Sprintf("gen_%d_sim_%d", time.Now().UnixMilli(), i),
			QuestionNumber: i + 1,
			Type:           models.NormalizeQuestionType(gq.Type),
			Text:           gq.Question,
			Options:        gq.Options,
			CorrectAnswer:  gq.CorrectAnswer,
			Solution:       gq.Solution,
			Marks:          marks,
			Topic:          gq.Topic,
		})
	}
	return questions, nil
}

// parseJSONResponse tolerates the model wrapping its JSON in a markdown
// code fence or leading prose.
func parseJSONResponse(completion string, out any) error {
	text := strings.TrimSpace(completion)

	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}

	if start := strings.Index(text, "```"); start >= 0 {
		rest := text[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(rest)), out); err == nil {
			return nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("response is not valid JSON")
}
