package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"examprep/db"
	"examprep/models"
)

// diagramCues mark questions that cannot be answered without the figure
// from the original scanned paper. Matched case-insensitively.
var diagramCues = []string{
	"as shown in the figure",
	"as shown in figure",
	"in the figure below",
	"in the given figure",
	"shown in the diagram",
	"in the diagram below",
	"refer to the given circuit",
	"refer to the figure",
	"the following circuit",
	"[diagram:",
	"[figure:",
}

// AssemblerService selects, filters and orders bank questions into
// practice sessions and mock-paper bundles.
type AssemblerService struct {
	questionRepo db.QuestionRepository
	opts         Options
	shuffle      func(n int, swap func(i, j int))
}

func NewAssemblerService(questionRepo db.QuestionRepository, opts Options) *AssemblerService {
	return &AssemblerService{
		questionRepo: questionRepo,
		opts:         opts,
		shuffle:      rand.Shuffle,
	}
}

// RequiresDiagram reports whether a question's text references an image
// that is not part of the stored bank.
func RequiresDiagram(q models.Question) bool {
	text := strings.ToLower(q.Text)
	for _, cue := range diagramCues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// AssembleSession samples up to cfg.QuestionCount questions for a
// practice run. The returned order is the session's navigation order.
func (s *AssemblerService) AssembleSession(ctx context.Context, cfg models.SessionConfig) ([]models.Question, error) {
	pool, err := s.questionRepo.FetchQuestions(cfg.Subject, models.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBankUnavailable, err)
	}

	pool = lo.Filter(pool, func(q models.Question, _ int) bool {
		return !RequiresDiagram(q)
	})
	if len(cfg.Years) > 0 {
		pool = lo.Filter(pool, func(q models.Question, _ int) bool {
			return lo.Contains(cfg.Years, q.Year)
		})
	}
	if len(cfg.Marks) > 0 {
		pool = lo.Filter(pool, func(q models.Question, _ int) bool {
			return lo.Contains(cfg.Marks, q.Marks)
		})
	}

	if len(pool) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}

	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	count := cfg.QuestionCount
	if count <= 0 || count > len(pool) {
		count = len(pool)
	}
	selected := pool[:count]
	log.Printf("[INFO] Assembled session for %s: %d of %d candidates", cfg.Subject, len(selected), len(pool))
	return selected, nil
}

// AssembleWeakTopicSession samples a session biased toward the topics the
// student has been scoring lowest on. Topic labels in the bank are free
// text, so matching against the tracked labels is fuzzy rather than exact.
func (s *AssemblerService) AssembleWeakTopicSession(ctx context.Context, subject string, weakTopics []string, count int) ([]models.Question, error) {
	if len(weakTopics) == 0 {
		return s.AssembleSession(ctx, models.SessionConfig{Subject: subject, QuestionCount: count, Mode: models.ModePYQ})
	}

	pool, err := s.questionRepo.FetchQuestions(subject, models.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBankUnavailable, err)
	}

	matched := lo.Filter(pool, func(q models.Question, _ int) bool {
		if RequiresDiagram(q) {
			return false
		}
		topic := q.TopicOrDefault()
		for _, weak := range weakTopics {
			if fuzzy.MatchFold(weak, topic) || fuzzy.MatchFold(topic, weak) {
				return true
			}
		}
		return false
	})
	if len(matched) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}

	s.shuffle(len(matched), func(i, j int) { matched[i], matched[j] = matched[j], matched[i] })
	if count > 0 && count < len(matched) {
		matched = matched[:count]
	}
	log.Printf("[INFO] Assembled weak-topic session for %s: %d questions across %d topics", subject, len(matched), len(weakTopics))
	return matched, nil
}

// BuildSectionBundle prepares the reword/pattern/fresh split for one
// section of a mock paper. The pool is all bank questions for the subject.
func (s *AssemblerService) BuildSectionBundle(pool []models.Question, def models.SectionDef) models.SectionBundle {
	primary := lo.Filter(pool, func(q models.Question, _ int) bool {
		return strings.EqualFold(q.Section, def.Section) && q.Marks == def.MarksPerQuestion
	})

	candidates := primary
	if len(primary) < s.opts.MinSectionPool {
		broadened := lo.Filter(pool, func(q models.Question, _ int) bool {
			return q.Marks == def.MarksPerQuestion
		})
		if len(broadened) > len(primary) {
			candidates = broadened
		}
	}

	s.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	rewordQuota := int(math.Ceil(float64(def.Count) * s.opts.RewordShare))
	if rewordQuota > len(candidates) {
		rewordQuota = len(candidates)
	}
	reword := candidates[:rewordQuota]

	patternLimit := s.opts.PatternExampleLimit
	rest := candidates[rewordQuota:]
	if len(rest) > patternLimit {
		rest = rest[:patternLimit]
	}

	return models.SectionBundle{
		Section:          def.Section,
		Count:            def.Count,
		MarksPerQuestion: def.MarksPerQuestion,
		Reword:           toBundleQuestions(reword),
		Patterns:         toBundleQuestions(rest),
		FreshCount:       def.Count - len(reword),
	}
}

// BuildPaperBundles runs section bucketing for every section of a
// subject's paper structure.
func (s *AssemblerService) BuildPaperBundles(ctx context.Context, subject string) ([]models.SectionBundle, error) {
	structure, err := PaperStructureFor(subject)
	if err != nil {
		return nil, err
	}
	pool, err := s.questionRepo.FetchQuestions(subject, models.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBankUnavailable, err)
	}
	pool = lo.Filter(pool, func(q models.Question, _ int) bool {
		return !RequiresDiagram(q)
	})
	if len(pool) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}

	bundles := make([]models.SectionBundle, 0, len(structure.Sections))
	for _, def := range structure.Sections {
		bundles = append(bundles, s.BuildSectionBundle(pool, def))
	}
	return bundles, nil
}

// BuildSingleSectionBundle narrows bucketing to one section letter so a
// failed section can be regenerated without redoing the whole paper.
func (s *AssemblerService) BuildSingleSectionBundle(ctx context.Context, subject, section string) (models.SectionBundle, error) {
	structure, err := PaperStructureFor(subject)
	if err != nil {
		return models.SectionBundle{}, err
	}
	var def *models.SectionDef
	for i := range structure.Sections {
		if strings.EqualFold(structure.Sections[i].Section, section) {
			def = &structure.Sections[i]
			break
		}
	}
	if def == nil {
		return models.SectionBundle{}, fmt.Errorf("subject %s has no section %q", subject, section)
	}

	pool, err := s.questionRepo.FetchQuestions(subject, models.QuestionFilters{})
	if err != nil {
		return models.SectionBundle{}, fmt.Errorf("%w: %v", models.ErrBankUnavailable, err)
	}
	pool = lo.Filter(pool, func(q models.Question, _ int) bool {
		return !RequiresDiagram(q)
	})
	if len(pool) == 0 {
		return models.SectionBundle{}, models.ErrNoQuestionsAvailable
	}
	return s.BuildSectionBundle(pool, *def), nil
}

// AssembleMockPaper builds a full-length paper purely from bank
// questions, without AI synthesis. Sections that cannot be filled from
// the bank come back short; callers can fall back to generation.
func (s *AssemblerService) AssembleMockPaper(ctx context.Context, subject string) ([]models.Question, error) {
	structure, err := PaperStructureFor(subject)
	if err != nil {
		return nil, err
	}
	pool, err := s.questionRepo.FetchQuestions(subject, models.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBankUnavailable, err)
	}
	pool = lo.Filter(pool, func(q models.Question, _ int) bool {
		return !RequiresDiagram(q)
	})
	if len(pool) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}

	used := make(map[string]bool, len(pool))
	var paper []models.Question
	for _, def := range structure.Sections {
		candidates := lo.Filter(pool, func(q models.Question, _ int) bool {
			return !used[q.ID] && strings.EqualFold(q.Section, def.Section) && q.Marks == def.MarksPerQuestion
		})
		if len(candidates) < def.Count {
			candidates = lo.Filter(pool, func(q models.Question, _ int) bool {
				return !used[q.ID] && q.Marks == def.MarksPerQuestion
			})
		}
		s.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		take := def.Count
		if take > len(candidates) {
			take = len(candidates)
		}
		for _, q := range candidates[:take] {
			q.Section = def.Section
			used[q.ID] = true
			paper = append(paper, q)
		}
	}
	if len(paper) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}
	log.Printf("[INFO] Assembled mock paper for %s: %d questions", subject, len(paper))
	return paper, nil
}

func toBundleQuestions(qs []models.Question) []models.BundleQuestion {
	return lo.Map(qs, func(q models.Question, _ int) models.BundleQuestion {
		return models.BundleQuestion{
			Question:      q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Type:          q.Type,
			Topic:         q.TopicOrDefault(),
		}
	})
}
