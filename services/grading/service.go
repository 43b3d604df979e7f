// Package grading evaluates subjective, code and image answers against
// CBSE marking-scheme expectations using the Anthropic API.
package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"

	"examprep/models"
)

const gradeToolName = "report_grades"

// gradeToolInput is the structured verdict the model must return through
// the grading tool.
type gradeToolInput struct {
	Grades []models.CheckResult `json:"grades" jsonschema:"required,description=One grade entry per question in the same order the questions were given"`
}

type Service struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewService(anthropicAPIKey string) (*Service, error) {
	if anthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))
	return &Service{
		client: &client,
		model:  anthropic.ModelClaude4Sonnet20250514,
	}, nil
}

func gradeToolSchema() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(gradeToolInput{})
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

func gradeToolSpec() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        gradeToolName,
				Description: anthropic.String("Report the grade for every evaluated answer"),
				InputSchema: gradeToolSchema(),
			},
		},
	}
}

// CheckTextBatch grades a batch of written subjective answers in one call.
func (s *Service) CheckTextBatch(ctx context.Context, items []models.CheckItem) ([]models.CheckResult, error) {
	if len(items) == 0 {
		return nil, nil
	}
	log.Printf("[INFO] Grading %d text answers", len(items))
	return s.gradeBatch(ctx, buildTextBatchPrompt(items), len(items))
}

// CheckCodeBatch grades a batch of code answers in one call.
func (s *Service) CheckCodeBatch(ctx context.Context, items []models.CheckItem) ([]models.CheckResult, error) {
	if len(items) == 0 {
		return nil, nil
	}
	log.Printf("[INFO] Grading %d code answers", len(items))
	return s.gradeBatch(ctx, buildCodeBatchPrompt(items), len(items))
}

func (s *Service) gradeBatch(ctx context.Context, prompt string, want int) ([]models.CheckResult, error) {
	response, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: gradeToolSpec(),
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: gradeToolName},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %v", err)
	}

	results, err := extractGrades(response)
	if err != nil {
		return nil, err
	}
	if len(results) < want {
		log.Printf("[ERROR] Grading response covered %d of %d answers", len(results), want)
	}
	return results, nil
}

// CheckImage grades one photographed answer. The base64 payload may carry
// a data-URL prefix from the browser.
func (s *Service) CheckImage(ctx context.Context, item models.ImageCheckItem) (models.CheckResult, error) {
	mediaType, data := splitDataURL(item.ImageBase64)
	log.Printf("[INFO] Grading image answer for question %s (%s)", item.ID, mediaType)

	response, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, data),
				anthropic.NewTextBlock(buildImagePrompt(item)),
			),
		},
		Tools: gradeToolSpec(),
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: gradeToolName},
		},
	})
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("failed to call Anthropic API: %v", err)
	}

	results, err := extractGrades(response)
	if err != nil {
		return models.CheckResult{}, err
	}
	if len(results) == 0 {
		return models.CheckResult{}, fmt.Errorf("grading response contained no grades")
	}
	result := results[0]
	result.QuestionID = item.ID
	return result, nil
}

// extractGrades pulls the structured verdict out of the forced tool call.
// If the model answered in text anyway, the JSON is salvaged from it.
func extractGrades(response *anthropic.Message) ([]models.CheckResult, error) {
	var text string
	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if b.Name != gradeToolName {
				continue
			}
			inputJSON, err := json.Marshal(b.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input: %v", err)
			}
			var input gradeToolInput
			if err := json.Unmarshal(inputJSON, &input); err != nil {
				return nil, fmt.Errorf("failed to parse tool input: %v", err)
			}
			return input.Grades, nil
		case anthropic.TextBlock:
			text += b.Text
		}
	}
	if grades, err := salvageGrades(text); err == nil {
		log.Printf("[INFO] Salvaged %d grades from a text response", len(grades))
		return grades, nil
	}
	return nil, fmt.Errorf("response contained no %s tool call", gradeToolName)
}

// salvageGrades recovers a gradeToolInput payload from free text: plain
// JSON first, then a fenced block, then the outermost braces.
func salvageGrades(completion string) ([]models.CheckResult, error) {
	text := strings.TrimSpace(completion)
	if text == "" {
		return nil, fmt.Errorf("empty response text")
	}

	var input gradeToolInput
	if err := json.Unmarshal([]byte(text), &input); err == nil {
		return input.Grades, nil
	}

	if start := strings.Index(text, "```"); start >= 0 {
		rest := text[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(rest)), &input); err == nil {
			return input.Grades, nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &input); err == nil {
			return input.Grades, nil
		}
	}

	return nil, fmt.Errorf("response is not valid JSON")
}

// splitDataURL separates an optional "data:image/png;base64," prefix from
// the encoded payload. Bare base64 defaults to JPEG, which is what phone
// cameras produce.
func splitDataURL(payload string) (mediaType, data string) {
	if !strings.HasPrefix(payload, "data:") {
		return "image/jpeg", payload
	}
	rest := strings.TrimPrefix(payload, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "image/jpeg", payload
	}
	return rest[:sep], rest[sep+len(";base64,"):]
}
