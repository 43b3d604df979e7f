package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"examprep/db"
	"examprep/models"
)

// SimilarQuestionGenerator synthesizes fresh practice questions in the
// style of sampled bank questions. Used for ai-similar sessions.
type SimilarQuestionGenerator interface {
	GenerateSimilar(ctx context.Context, subject string, examples []models.Question, count int) ([]models.Question, error)
}

// SessionService orchestrates the life of a practice session: assembly,
// the answering phase, scoring, persistence and the weak-topic update.
// Active sessions are held in memory until they are scored.
type SessionService struct {
	assembler   *AssemblerService
	grader      *GraderService
	aggregator  *AggregatorService
	tracker     *TrackerService
	sessionRepo db.SessionRepository
	generator   SimilarQuestionGenerator

	mu     sync.Mutex
	active map[string]*models.Session
	newID  func() string
	now    func() time.Time
}

func NewSessionService(
	assembler *AssemblerService,
	grader *GraderService,
	aggregator *AggregatorService,
	tracker *TrackerService,
	sessionRepo db.SessionRepository,
	generator SimilarQuestionGenerator,
) *SessionService {
	return &SessionService{
		assembler:   assembler,
		grader:      grader,
		aggregator:  aggregator,
		tracker:     tracker,
		sessionRepo: sessionRepo,
		generator:   generator,
		active:      make(map[string]*models.Session),
		newID:       func() string { return uuid.New().String() },
		now:         time.Now,
	}
}

// StartSession assembles a session and registers it as active. In
// ai-similar mode the sampled questions seed the generator and the
// synthesized set replaces them.
func (s *SessionService) StartSession(ctx context.Context, cfg models.SessionConfig) (*models.Session, error) {
	if !IsValidSubject(cfg.Subject) {
		return nil, fmt.Errorf("unknown subject %q", cfg.Subject)
	}
	if cfg.Mode == "" {
		cfg.Mode = models.ModePYQ
	}

	questions, err := s.assembler.AssembleSession(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Mode == models.ModeAISimilar {
		if s.generator == nil {
			return nil, fmt.Errorf("ai-similar mode is not configured")
		}
		generated, err := s.generator.GenerateSimilar(ctx, cfg.Subject, questions, cfg.QuestionCount)
		if err != nil {
			return nil, err
		}
		questions = generated
	}

	return s.register(cfg, questions), nil
}

// StartWeakTopicSession builds a session from the student's tracked weak
// topics for the subject.
func (s *SessionService) StartWeakTopicSession(ctx context.Context, subject string, count int) (*models.Session, error) {
	if !IsValidSubject(subject) {
		return nil, fmt.Errorf("unknown subject %q", subject)
	}

	records, err := s.tracker.TopWeakTopics(subject, 0)
	if err != nil {
		return nil, err
	}
	topics := make([]string, len(records))
	for i, rec := range records {
		topics[i] = rec.Topic
	}

	questions, err := s.assembler.AssembleWeakTopicSession(ctx, subject, topics, count)
	if err != nil {
		return nil, err
	}

	cfg := models.SessionConfig{Subject: subject, QuestionCount: count, Mode: models.ModePYQ}
	return s.register(cfg, questions), nil
}

func (s *SessionService) register(cfg models.SessionConfig, questions []models.Question) *models.Session {
	session := &models.Session{
		ID:        s.newID(),
		Config:    cfg,
		Questions: questions,
		Answers:   make(map[string]*models.Answer, len(questions)),
		Phase:     models.PhaseTaking,
		CreatedAt: s.now(),
	}
	for _, q := range questions {
		session.Answers[q.ID] = &models.Answer{QuestionID: q.ID, Type: q.Type}
	}

	s.mu.Lock()
	s.active[session.ID] = session
	s.mu.Unlock()

	log.Printf("[INFO] Started session %s (%s, %d questions)", session.ID, cfg.Subject, len(questions))
	return session
}

// GetSession returns an active in-memory session.
func (s *SessionService) GetSession(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.active[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// RecordAnswer stores or replaces the student's answer to one question.
// The payload kind must suit the question type.
func (s *SessionService) RecordAnswer(sessionID, questionID string, payload models.AnswerPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active[sessionID]
	if !ok {
		return models.ErrSessionNotFound
	}
	if session.Phase != models.PhaseTaking {
		return fmt.Errorf("session %s is no longer accepting answers", sessionID)
	}
	answer, ok := session.Answers[questionID]
	if !ok {
		return fmt.Errorf("question %s is not part of session %s", questionID, sessionID)
	}
	if err := validateAnswerPayload(answer.Type, payload); err != nil {
		return err
	}

	answer.Payload = payload
	return nil
}

func validateAnswerPayload(qType models.QuestionType, payload models.AnswerPayload) error {
	switch payload.(type) {
	case models.OptionAnswer:
		if !qType.IsChoiceBased() {
			return fmt.Errorf("question type %s does not take a selected option", qType)
		}
	case models.CodeAnswer:
		if qType != models.TypeCoding {
			return fmt.Errorf("question type %s does not take a code answer", qType)
		}
	case models.ImageAnswer:
		// Photographed work is accepted for any type; the grader routes
		// every image to AI evaluation.
	case models.TextAnswer:
		if qType.IsAutoCheckable() {
			return fmt.Errorf("question type %s takes a selected option", qType)
		}
	case nil:
		return fmt.Errorf("answer payload is required")
	default:
		return fmt.Errorf("unsupported answer payload")
	}
	return nil
}

// ToggleFlag flips a question's bookmark within the session.
func (s *SessionService) ToggleFlag(sessionID, questionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active[sessionID]
	if !ok {
		return false, models.ErrSessionNotFound
	}
	answer, ok := session.Answers[questionID]
	if !ok {
		return false, fmt.Errorf("question %s is not part of session %s", questionID, sessionID)
	}
	answer.IsFlagged = !answer.IsFlagged
	return answer.IsFlagged, nil
}

// Submit moves a session to the scored state: grade, aggregate, persist,
// update the tracker. Persistence and tracker failures are logged and do
// not hide the score from the student.
func (s *SessionService) Submit(ctx context.Context, sessionID string) (*models.SessionResults, error) {
	s.mu.Lock()
	session, ok := s.active[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrSessionNotFound
	}
	if session.Phase == models.PhaseScored {
		results := session.Results
		s.mu.Unlock()
		return results, nil
	}
	if session.Phase == models.PhaseScoring {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s is already being scored", sessionID)
	}
	session.Phase = models.PhaseScoring
	s.mu.Unlock()

	auto, ai, degraded, err := s.grader.GradeSession(ctx, session.Questions, session.Answers)
	if err != nil {
		s.mu.Lock()
		session.Phase = models.PhaseTaking
		s.mu.Unlock()
		return nil, err
	}

	total, max := s.aggregator.TotalScore(session.Questions, auto, ai)
	breakdown := s.aggregator.TopicBreakdown(session.Questions, auto, ai)
	weakTopics := s.aggregator.WeakTopics(breakdown)

	results := &models.SessionResults{
		Auto:           auto,
		AI:             ai,
		TotalScore:     total,
		MaxScore:       max,
		TopicBreakdown: breakdown,
		WeakTopics:     weakTopics,
		Degraded:       degraded,
	}

	s.mu.Lock()
	session.Results = results
	session.Phase = models.PhaseScored
	s.mu.Unlock()

	s.persistResults(session, results)
	return results, nil
}

// persistResults is best effort. The student already has their score;
// only history and tracking degrade when these writes fail.
func (s *SessionService) persistResults(session *models.Session, results *models.SessionResults) {
	record := &models.SessionRecord{
		ID:             session.ID,
		Subject:        session.Config.Subject,
		Mode:           session.Config.Mode,
		Years:          session.Config.Years,
		Marks:          session.Config.Marks,
		Questions:      session.Questions,
		Answers:        session.Answers,
		AutoResults:    results.Auto,
		AIFeedback:     results.AI,
		TotalScore:     results.TotalScore,
		MaxScore:       results.MaxScore,
		TopicBreakdown: results.TopicBreakdown,
		WeakTopics:     results.WeakTopics,
		CreatedAt:      session.CreatedAt,
	}
	if err := s.sessionRepo.SaveSession(record); err != nil {
		log.Printf("[ERROR] Failed to persist session %s: %v", session.ID, err)
	}
	if err := s.tracker.RecordSession(session.ID, session.Config.Subject, results.TopicBreakdown); err != nil {
		log.Printf("[ERROR] Failed to update weak topics for session %s: %v", session.ID, err)
	}
}

// Results returns the scored results of an active session.
func (s *SessionService) Results(sessionID string) (*models.SessionResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if session.Phase != models.PhaseScored || session.Results == nil {
		return nil, fmt.Errorf("session %s has not been scored yet", sessionID)
	}
	return session.Results, nil
}

// RetryWrong spins up a fresh session from the questions the student got
// wrong or skipped in a scored session.
func (s *SessionService) RetryWrong(sessionID string) (*models.Session, error) {
	s.mu.Lock()
	session, ok := s.active[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrSessionNotFound
	}
	if session.Phase != models.PhaseScored || session.Results == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s has not been scored yet", sessionID)
	}

	var wrong []models.Question
	for _, q := range session.Questions {
		if result, graded := session.Results.Auto[q.ID]; graded {
			if !result.IsCorrect {
				wrong = append(wrong, q)
			}
			continue
		}
		if feedback, graded := session.Results.AI[q.ID]; graded {
			if !feedback.IsCorrect {
				wrong = append(wrong, q)
			}
			continue
		}
		wrong = append(wrong, q)
	}
	cfg := session.Config
	s.mu.Unlock()

	if len(wrong) == 0 {
		return nil, models.ErrNoQuestionsAvailable
	}
	cfg.QuestionCount = len(wrong)
	return s.register(cfg, wrong), nil
}

// Abandon drops an unscored session without persisting anything.
func (s *SessionService) Abandon(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.active[sessionID]
	if !ok {
		return models.ErrSessionNotFound
	}
	if session.Phase == models.PhaseScoring {
		return fmt.Errorf("session %s is being scored", sessionID)
	}
	delete(s.active, sessionID)
	log.Printf("[INFO] Abandoned session %s", sessionID)
	return nil
}
