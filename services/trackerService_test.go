package services

import (
	"math"
	"sort"
	"testing"
	"time"

	"examprep/models"
)

// fakeWeakTopicRepo is an in-memory stand-in for the persisted record set.
type fakeWeakTopicRepo struct {
	records  map[string]models.WeakTopicRecord
	sessions map[string]bool
}

func newFakeWeakTopicRepo() *fakeWeakTopicRepo {
	return &fakeWeakTopicRepo{
		records:  make(map[string]models.WeakTopicRecord),
		sessions: make(map[string]bool),
	}
}

func (f *fakeWeakTopicRepo) GetBySubject(subject string) ([]models.WeakTopicRecord, error) {
	var out []models.WeakTopicRecord
	for _, rec := range f.records {
		if rec.Subject == subject {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Accuracy < out[j].Accuracy })
	return out, nil
}

func (f *fakeWeakTopicRepo) Upsert(record *models.WeakTopicRecord) error {
	f.records[record.Subject+"/"+record.Topic] = *record
	return nil
}

func (f *fakeWeakTopicRepo) HasRecordedSession(sessionID string) (bool, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeWeakTopicRepo) MarkSessionRecorded(sessionID string) error {
	f.sessions[sessionID] = true
	return nil
}

func newTestTracker(repo *fakeWeakTopicRepo) *TrackerService {
	tracker := NewTrackerService(repo, DefaultOptions())
	tracker.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return tracker
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordSessionCreatesAndUpdates(t *testing.T) {
	repo := newFakeWeakTopicRepo()
	tracker := newTestTracker(repo)

	first := map[string]models.TopicStats{
		"Optics": {Total: 5, MarksEarned: 2, MarksPossible: 5}, // 40%
	}
	if err := tracker.RecordSession("s1", "Physics", first); err != nil {
		t.Fatalf("RecordSession returned error: %v", err)
	}

	rec := repo.records["Physics/Optics"]
	if !almostEqual(rec.Accuracy, 0.4) {
		t.Errorf("first session accuracy = %v, want 0.4", rec.Accuracy)
	}
	if rec.TotalAttempted != 5 {
		t.Errorf("totalAttempted = %d, want 5", rec.TotalAttempted)
	}

	second := map[string]models.TopicStats{
		"Optics": {Total: 5, MarksEarned: 4, MarksPossible: 5}, // 80%
	}
	if err := tracker.RecordSession("s2", "Physics", second); err != nil {
		t.Fatalf("RecordSession returned error: %v", err)
	}

	rec = repo.records["Physics/Optics"]
	if !almostEqual(rec.Accuracy, 0.64) {
		t.Errorf("updated accuracy = %v, want 0.4*0.4 + 0.6*0.8 = 0.64", rec.Accuracy)
	}
	if rec.TotalAttempted != 10 {
		t.Errorf("totalAttempted = %d, want 10", rec.TotalAttempted)
	}
}

func TestRecordSessionIdempotentPerSessionID(t *testing.T) {
	repo := newFakeWeakTopicRepo()
	tracker := newTestTracker(repo)

	breakdown := map[string]models.TopicStats{
		"Optics": {Total: 4, MarksEarned: 1, MarksPossible: 4},
	}
	if err := tracker.RecordSession("s1", "Physics", breakdown); err != nil {
		t.Fatalf("RecordSession returned error: %v", err)
	}
	if err := tracker.RecordSession("s1", "Physics", breakdown); err != nil {
		t.Fatalf("repeat RecordSession returned error: %v", err)
	}

	rec := repo.records["Physics/Optics"]
	if rec.TotalAttempted != 4 {
		t.Errorf("totalAttempted = %d after duplicate save, want 4", rec.TotalAttempted)
	}
}

func TestRecordSessionSkipsEmptyTopics(t *testing.T) {
	repo := newFakeWeakTopicRepo()
	tracker := newTestTracker(repo)

	breakdown := map[string]models.TopicStats{
		"Optics": {Total: 0, MarksEarned: 0, MarksPossible: 0},
	}
	if err := tracker.RecordSession("s1", "Physics", breakdown); err != nil {
		t.Fatalf("RecordSession returned error: %v", err)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected no records for empty topics, got %v", repo.records)
	}
}

func TestTopWeakTopics(t *testing.T) {
	repo := newFakeWeakTopicRepo()
	tracker := newTestTracker(repo)

	seed := []models.WeakTopicRecord{
		{Subject: "Physics", Topic: "Optics", Accuracy: 0.2, TotalAttempted: 6},
		{Subject: "Physics", Topic: "Magnetism", Accuracy: 0.4, TotalAttempted: 4},
		{Subject: "Physics", Topic: "Waves", Accuracy: 0.1, TotalAttempted: 1},     // too few attempts
		{Subject: "Physics", Topic: "Mechanics", Accuracy: 0.9, TotalAttempted: 8}, // not weak
		{Subject: "Physics", Topic: "Thermo", Accuracy: 0.5, TotalAttempted: 3},
		{Subject: "Chemistry", Topic: "Polymers", Accuracy: 0.1, TotalAttempted: 5}, // other subject
	}
	for i := range seed {
		repo.Upsert(&seed[i])
	}

	weak, err := tracker.TopWeakTopics("Physics", 3)
	if err != nil {
		t.Fatalf("TopWeakTopics returned error: %v", err)
	}
	if len(weak) != 3 {
		t.Fatalf("expected 3 weak topics, got %d", len(weak))
	}
	if weak[0].Topic != "Optics" || weak[1].Topic != "Magnetism" || weak[2].Topic != "Thermo" {
		t.Errorf("unexpected ordering: %v", weak)
	}
	for _, rec := range weak {
		if rec.Topic == "Waves" {
			t.Error("topics with fewer than 2 attempts must be excluded")
		}
	}
}

func TestTopWeakTopicsDefaultLimit(t *testing.T) {
	repo := newFakeWeakTopicRepo()
	tracker := newTestTracker(repo)

	for i, topic := range []string{"A", "B", "C", "D", "E"} {
		repo.Upsert(&models.WeakTopicRecord{
			Subject: "Physics", Topic: topic,
			Accuracy:       0.1 + float64(i)*0.05,
			TotalAttempted: 3,
		})
	}

	weak, err := tracker.TopWeakTopics("Physics", 0)
	if err != nil {
		t.Fatalf("TopWeakTopics returned error: %v", err)
	}
	if len(weak) != 3 {
		t.Errorf("expected default limit of 3, got %d", len(weak))
	}
}
