package services

import (
	"fmt"
	"log"
	"time"

	"examprep/db"
	"examprep/models"
)

// Rolling-accuracy weights. The newest session dominates so the weak-topic
// list reacts quickly to improvement.
const (
	historyWeight = 0.4
	sessionWeight = 0.6
)

// TrackerService maintains the per-(subject, topic) rolling accuracy
// records that feed weak-topic practice and the dashboard. It is the sole
// writer of those records.
type TrackerService struct {
	weakTopicRepo db.WeakTopicRepository
	opts          Options
	now           func() time.Time
}

func NewTrackerService(weakTopicRepo db.WeakTopicRepository, opts Options) *TrackerService {
	return &TrackerService{
		weakTopicRepo: weakTopicRepo,
		opts:          opts,
		now:           time.Now,
	}
}

// RecordSession folds one scored session's topic breakdown into the
// persisted records. Calling it again with the same session id is a no-op,
// so a re-rendered results page cannot double-count.
func (t *TrackerService) RecordSession(sessionID, subject string, breakdown map[string]models.TopicStats) error {
	recorded, err := t.weakTopicRepo.HasRecordedSession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to check session guard: %w", err)
	}
	if recorded {
		log.Printf("[INFO] Session %s already recorded, skipping weak-topic update", sessionID)
		return nil
	}

	existing, err := t.weakTopicRepo.GetBySubject(subject)
	if err != nil {
		return fmt.Errorf("failed to load weak-topic records: %w", err)
	}
	byTopic := make(map[string]models.WeakTopicRecord, len(existing))
	for _, rec := range existing {
		byTopic[rec.Topic] = rec
	}

	now := t.now()
	for topic, stats := range breakdown {
		if stats.Total == 0 {
			continue
		}
		ratio := 0.0
		if stats.MarksPossible > 0 {
			ratio = stats.MarksEarned / float64(stats.MarksPossible)
		}

		record, exists := byTopic[topic]
		if exists {
			record.Accuracy = historyWeight*record.Accuracy + sessionWeight*ratio
			record.TotalAttempted += stats.Total
		} else {
			record = models.WeakTopicRecord{
				Subject:        subject,
				Topic:          topic,
				Accuracy:       ratio,
				TotalAttempted: stats.Total,
			}
		}
		record.LastAttemptedAt = now

		if err := t.weakTopicRepo.Upsert(&record); err != nil {
			return fmt.Errorf("failed to upsert weak-topic record for %q: %w", topic, err)
		}
	}

	if err := t.weakTopicRepo.MarkSessionRecorded(sessionID); err != nil {
		return fmt.Errorf("failed to mark session recorded: %w", err)
	}
	return nil
}

// TopWeakTopics returns up to n weakest topics for a subject, skipping
// topics attempted fewer than the minimum number of times. n defaults
// to 3 when non-positive.
func (t *TrackerService) TopWeakTopics(subject string, n int) ([]models.WeakTopicRecord, error) {
	if n <= 0 {
		n = 3
	}

	records, err := t.weakTopicRepo.GetBySubject(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load weak-topic records: %w", err)
	}

	var weak []models.WeakTopicRecord
	for _, rec := range records {
		if rec.Accuracy >= t.opts.WeakTopicThreshold {
			continue
		}
		if rec.TotalAttempted < t.opts.MinAttemptsForWeak {
			continue
		}
		weak = append(weak, rec)
		if len(weak) == n {
			break
		}
	}
	return weak, nil
}
