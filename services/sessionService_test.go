package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"examprep/models"
)

// fakeSessionRepo captures persisted session records.
type fakeSessionRepo struct {
	saved   []*models.SessionRecord
	saveErr error
}

func (f *fakeSessionRepo) SaveSession(record *models.SessionRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeSessionRepo) GetSession(id string) (*models.SessionRecord, error) {
	for _, rec := range f.saved {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("session record %s not found", id)
}

func (f *fakeSessionRepo) ListBySubject(subject string, limit int) ([]*models.SessionRecord, error) {
	return f.saved, nil
}

func newTestSessionService(questions []models.Question, sessionRepo *fakeSessionRepo, weakRepo *fakeWeakTopicRepo) *SessionService {
	opts := DefaultOptions()
	assembler := newTestAssembler(&fakeQuestionRepo{questions: questions})
	grader := NewGraderService(&fakeCollaborator{})
	aggregator := NewAggregatorService(opts)
	tracker := newTestTracker(weakRepo)

	svc := NewSessionService(assembler, grader, aggregator, tracker, sessionRepo, nil)
	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("session-%d", counter)
	}
	return svc
}

func fourMCQs() []models.Question {
	questions := make([]models.Question, 4)
	for i := range questions {
		questions[i] = models.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Type:          models.TypeMCQ,
			Text:          fmt.Sprintf("Question %d", i+1),
			Options:       []string{"first", "second", "third", "fourth"},
			CorrectAnswer: "a",
			Marks:         1,
			Topic:         "Optics",
		}
	}
	return questions
}

func TestSessionEndToEnd(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{
		Subject:       "Physics",
		QuestionCount: 4,
	})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if len(session.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(session.Questions))
	}
	if session.Phase != models.PhaseTaking {
		t.Errorf("expected taking phase, got %s", session.Phase)
	}

	// Answer three correctly, leave q4 blank.
	for _, id := range []string{"q1", "q2", "q3"} {
		if err := svc.RecordAnswer(session.ID, id, models.OptionAnswer{Selected: "a"}); err != nil {
			t.Fatalf("RecordAnswer(%s) returned error: %v", id, err)
		}
	}

	results, err := svc.Submit(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if results.TotalScore != 3 {
		t.Errorf("total score = %v, want 3", results.TotalScore)
	}
	if results.MaxScore != 4 {
		t.Errorf("max score = %d, want 4", results.MaxScore)
	}
	if stats := results.TopicBreakdown["Optics"]; stats.Correct != 3 || stats.Total != 4 {
		t.Errorf("Optics breakdown = %+v, want 3 correct of 4", stats)
	}

	if len(sessionRepo.saved) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(sessionRepo.saved))
	}
	if rec := weakRepo.records["Physics/Optics"]; rec.TotalAttempted != 4 {
		t.Errorf("tracker totalAttempted = %d, want 4", rec.TotalAttempted)
	}
}

func TestSubmitTwiceReturnsSameResults(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if err := svc.RecordAnswer(session.ID, "q1", models.OptionAnswer{Selected: "a"}); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	first, err := svc.Submit(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}
	second, err := svc.Submit(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}
	if first != second {
		t.Error("repeated Submit must return the already computed results")
	}
	if len(sessionRepo.saved) != 1 {
		t.Errorf("expected 1 persisted record after double submit, got %d", len(sessionRepo.saved))
	}
	if rec := weakRepo.records["Physics/Optics"]; rec.TotalAttempted != 4 {
		t.Errorf("tracker must not double-count: totalAttempted = %d, want 4", rec.TotalAttempted)
	}
}

func TestSubmitSurvivesPersistenceFailure(t *testing.T) {
	sessionRepo := &fakeSessionRepo{saveErr: errors.New("disk full")}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if err := svc.RecordAnswer(session.ID, "q1", models.OptionAnswer{Selected: "a"}); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	results, err := svc.Submit(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Submit must not fail on persistence errors, got: %v", err)
	}
	if results.TotalScore != 1 {
		t.Errorf("total score = %v, want 1", results.TotalScore)
	}
}

func TestRecordAnswerValidatesPayloadKind(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	if err := svc.RecordAnswer(session.ID, "q1", models.CodeAnswer{Code: "print(1)"}); err == nil {
		t.Error("expected a code payload on an mcq question to be rejected")
	}
	if err := svc.RecordAnswer(session.ID, "q1", nil); err == nil {
		t.Error("expected a nil payload to be rejected")
	}
	if err := svc.RecordAnswer(session.ID, "missing", models.OptionAnswer{Selected: "a"}); err == nil {
		t.Error("expected an unknown question id to be rejected")
	}
}

func TestRecordAnswerRejectedAfterScoring(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), session.ID); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if err := svc.RecordAnswer(session.ID, "q1", models.OptionAnswer{Selected: "a"}); err == nil {
		t.Error("expected answers to be rejected once the session is scored")
	}
}

func TestRetryWrongCollectsWrongAndUnanswered(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	// q1 correct, q2 wrong, q3 and q4 unanswered.
	if err := svc.RecordAnswer(session.ID, "q1", models.OptionAnswer{Selected: "a"}); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}
	if err := svc.RecordAnswer(session.ID, "q2", models.OptionAnswer{Selected: "b"}); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), session.ID); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	retry, err := svc.RetryWrong(session.ID)
	if err != nil {
		t.Fatalf("RetryWrong returned error: %v", err)
	}
	if len(retry.Questions) != 3 {
		t.Fatalf("expected 3 retry questions, got %d", len(retry.Questions))
	}
	for _, q := range retry.Questions {
		if q.ID == "q1" {
			t.Error("correctly answered question must not be retried")
		}
	}
}

func TestAbandonDropsSessionWithoutPersisting(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	weakRepo := newFakeWeakTopicRepo()
	svc := newTestSessionService(fourMCQs(), sessionRepo, weakRepo)

	session, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Physics", QuestionCount: 4})
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	if err := svc.Abandon(session.ID); err != nil {
		t.Fatalf("Abandon returned error: %v", err)
	}
	if _, err := svc.GetSession(session.ID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after abandon, got %v", err)
	}
	if len(sessionRepo.saved) != 0 {
		t.Error("abandoned session must not be persisted")
	}
	if len(weakRepo.records) != 0 {
		t.Error("abandoned session must not touch the weak-topic tracker")
	}
}

func TestStartSessionRejectsUnknownSubject(t *testing.T) {
	svc := newTestSessionService(fourMCQs(), &fakeSessionRepo{}, newFakeWeakTopicRepo())

	if _, err := svc.StartSession(context.Background(), models.SessionConfig{Subject: "Astrology", QuestionCount: 4}); err == nil {
		t.Error("expected unknown subject to be rejected")
	}
}
