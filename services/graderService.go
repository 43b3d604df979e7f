package services

import (
	"context"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"examprep/models"
)

// GradingCollaborator is the external AI grading boundary. Text and code
// answers go out in batches; image answers are one call each because
// vision grading cannot batch.
type GradingCollaborator interface {
	CheckTextBatch(ctx context.Context, items []models.CheckItem) ([]models.CheckResult, error)
	CheckCodeBatch(ctx context.Context, items []models.CheckItem) ([]models.CheckResult, error)
	CheckImage(ctx context.Context, item models.ImageCheckItem) (models.CheckResult, error)
}

// GraderService turns a finished session's answers into grading results.
type GraderService struct {
	collaborator GradingCollaborator
}

func NewGraderService(collaborator GradingCollaborator) *GraderService {
	return &GraderService{collaborator: collaborator}
}

var (
	answerLetterRe = regexp.MustCompile(`^\s*\(?([a-dA-D])[\).\s]`)
	nonWordRe      = regexp.MustCompile(`[^a-z0-9.\-+ ]+`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// normalizeAnswerLetter extracts the option letter from a stored correct
// answer, which may be "b", "(b)", "b) 9.8 m/s²" or similar.
func normalizeAnswerLetter(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) == 1 {
		return strings.ToLower(trimmed)
	}
	if m := answerLetterRe.FindStringSubmatch(trimmed); m != nil {
		return strings.ToLower(m[1])
	}
	return strings.ToLower(trimmed)
}

func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// fuzzyMatch decides whether a fill-blank answer earns credit. Exact
// normalized match wins, then numeric equality, then substring
// containment. Correct answers shorter than 5 characters never match by
// substring since "a" would match almost anything.
func fuzzyMatch(student, correct string) bool {
	s := normalizeText(student)
	c := normalizeText(correct)
	if s == "" || c == "" {
		return false
	}
	if s == c {
		return true
	}

	sn, sErr := strconv.ParseFloat(s, 64)
	cn, cErr := strconv.ParseFloat(c, 64)
	if sErr == nil && cErr == nil {
		return sn == cn
	}

	if len(c) < 5 {
		return false
	}
	return strings.Contains(s, c)
}

func clampScore(raw float64, maxMarks int) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	if raw > float64(maxMarks) {
		return float64(maxMarks)
	}
	return raw
}

// fallbackResults synthesizes zero-credit feedback for every item in a
// failed batch so a collaborator outage never sinks the whole session.
func fallbackResults(items []models.CheckItem) []models.CheckResult {
	results := make([]models.CheckResult, len(items))
	for i, item := range items {
		results[i] = models.CheckResult{
			QuestionID:      item.ID,
			Score:           0,
			MaxMarks:        item.Marks,
			Feedback:        "Evaluation failed. Please review this answer against the solution yourself.",
			KeyPointsMissed: []string{},
			IsCorrect:       false,
		}
	}
	return results
}

func fallbackImageResult(item models.ImageCheckItem) models.CheckResult {
	return models.CheckResult{
		QuestionID:      item.ID,
		Score:           0,
		MaxMarks:        item.Marks,
		Feedback:        "Evaluation failed. Please review this answer against the solution yourself.",
		KeyPointsMissed: []string{},
		IsCorrect:       false,
	}
}

type gradeOutcome struct {
	results  []models.CheckResult
	degraded bool
}

// GradeSession produces exactly one result per answered question: an auto
// result for objective and fill-blank types, AI feedback for everything
// else. Degraded reports whether any AI batch fell back after a failure.
func (g *GraderService) GradeSession(ctx context.Context, questions []models.Question, answers map[string]*models.Answer) (map[string]models.AutoResult, map[string]models.AIFeedback, bool, error) {
	auto := make(map[string]models.AutoResult)
	ai := make(map[string]models.AIFeedback)

	var textItems, codeItems []models.CheckItem
	var imageItems []models.ImageCheckItem
	marksByID := make(map[string]int, len(questions))

	for _, q := range questions {
		marksByID[q.ID] = q.Marks
		answer, ok := answers[q.ID]
		if !ok || !answer.IsAnswered() {
			continue
		}

		if img, isImage := answer.Payload.(models.ImageAnswer); isImage {
			imageItems = append(imageItems, models.ImageCheckItem{
				ID:            q.ID,
				Question:      q.Text,
				CorrectAnswer: q.CorrectAnswer,
				Solution:      q.Solution,
				Marks:         q.Marks,
				ImageBase64:   img.ImageBase64,
			})
			continue
		}

		switch {
		case q.Type.IsAutoCheckable(), q.Type == models.TypeCaseBased && len(q.Options) > 0:
			opt, isOpt := answer.Payload.(models.OptionAnswer)
			if !isOpt && q.Type == models.TypeCaseBased {
				// written sub-part of a case study, not an option pick
				item := models.CheckItem{
					ID:            q.ID,
					Question:      q.Text,
					CorrectAnswer: q.CorrectAnswer,
					Solution:      q.Solution,
					Marks:         q.Marks,
				}
				if t, isText := answer.Payload.(models.TextAnswer); isText {
					item.StudentAnswer = t.Text
				}
				textItems = append(textItems, item)
				continue
			}
			auto[q.ID] = models.AutoResult{
				IsCorrect:     normalizeAnswerLetter(opt.Selected) == normalizeAnswerLetter(q.CorrectAnswer),
				CorrectAnswer: q.CorrectAnswer,
			}
		case q.Type.IsFillBlank():
			text := ""
			if t, isText := answer.Payload.(models.TextAnswer); isText {
				text = t.Text
			}
			auto[q.ID] = models.AutoResult{
				IsCorrect:     fuzzyMatch(text, q.CorrectAnswer),
				CorrectAnswer: q.CorrectAnswer,
			}
		case q.Type == models.TypeCoding:
			item := models.CheckItem{
				ID:            q.ID,
				Question:      q.Text,
				CorrectAnswer: q.CorrectAnswer,
				Solution:      q.Solution,
				Marks:         q.Marks,
			}
			if code, isCode := answer.Payload.(models.CodeAnswer); isCode {
				item.StudentAnswer = code.Code
				item.Language = code.Language
				if item.Language == "" {
					item.Language = DetectCodeLanguage(q.Text)
				}
			} else if t, isText := answer.Payload.(models.TextAnswer); isText {
				item.StudentAnswer = t.Text
				item.Language = DetectCodeLanguage(q.Text)
			}
			codeItems = append(codeItems, item)
		default:
			item := models.CheckItem{
				ID:            q.ID,
				Question:      q.Text,
				CorrectAnswer: q.CorrectAnswer,
				Solution:      q.Solution,
				Marks:         q.Marks,
			}
			if t, isText := answer.Payload.(models.TextAnswer); isText {
				item.StudentAnswer = t.Text
			} else if opt, isOpt := answer.Payload.(models.OptionAnswer); isOpt {
				item.StudentAnswer = opt.Selected
			}
			textItems = append(textItems, item)
		}
	}

	outcomes := g.runAIChecks(ctx, textItems, codeItems, imageItems)

	degraded := false
	for _, outcome := range outcomes {
		if outcome.degraded {
			degraded = true
		}
		for _, result := range outcome.results {
			maxMarks := marksByID[result.QuestionID]
			score := clampScore(result.Score, maxMarks)
			ai[result.QuestionID] = models.AIFeedback{
				QuestionID:      result.QuestionID,
				Score:           score,
				MaxMarks:        maxMarks,
				Feedback:        result.Feedback,
				KeyPointsMissed: result.KeyPointsMissed,
				IsCorrect:       score >= float64(maxMarks),
			}
		}
	}

	return auto, ai, degraded, nil
}

// runAIChecks fires the text batch, the code batch and one call per image
// concurrently and waits for all of them. Each call that fails yields
// fallback results instead of an error.
func (g *GraderService) runAIChecks(ctx context.Context, textItems, codeItems []models.CheckItem, imageItems []models.ImageCheckItem) []gradeOutcome {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var outcomes []gradeOutcome

	collect := func(o gradeOutcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	if len(textItems) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(g.gradeBatchOrFallback(ctx, textItems, g.collaborator.CheckTextBatch))
		}()
	}
	if len(codeItems) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(g.gradeBatchOrFallback(ctx, codeItems, g.collaborator.CheckCodeBatch))
		}()
	}
	for _, item := range imageItems {
		wg.Add(1)
		go func(item models.ImageCheckItem) {
			defer wg.Done()
			result, err := g.collaborator.CheckImage(ctx, item)
			if err != nil {
				log.Printf("[ERROR] Image grading failed for question %s: %v", item.ID, err)
				collect(gradeOutcome{results: []models.CheckResult{fallbackImageResult(item)}, degraded: true})
				return
			}
			result.QuestionID = item.ID
			collect(gradeOutcome{results: []models.CheckResult{result}})
		}(item)
	}

	wg.Wait()
	return outcomes
}

// gradeBatchOrFallback is total: the returned outcome always covers every
// item in the batch, with zero-credit fallbacks when the call fails or
// comes back incomplete.
func (g *GraderService) gradeBatchOrFallback(ctx context.Context, items []models.CheckItem, check func(context.Context, []models.CheckItem) ([]models.CheckResult, error)) gradeOutcome {
	results, err := check(ctx, items)
	if err != nil {
		log.Printf("[ERROR] Batch grading failed for %d answers: %v", len(items), err)
		return gradeOutcome{results: fallbackResults(items), degraded: true}
	}

	byID := make(map[string]models.CheckResult, len(results))
	for _, r := range results {
		byID[r.QuestionID] = r
	}

	covered := make([]models.CheckResult, 0, len(items))
	degraded := false
	for _, item := range items {
		if r, ok := byID[item.ID]; ok {
			covered = append(covered, r)
			continue
		}
		log.Printf("[ERROR] Grading response missing question %s, using fallback", item.ID)
		covered = append(covered, fallbackResults([]models.CheckItem{item})[0])
		degraded = true
	}
	return gradeOutcome{results: covered, degraded: degraded}
}
