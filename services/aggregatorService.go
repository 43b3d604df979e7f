package services

import (
	"sort"

	"examprep/models"
)

// AggregatorService folds grading results into totals, a per-topic
// breakdown and an ordered weak-topic list.
type AggregatorService struct {
	weakThreshold float64
}

func NewAggregatorService(opts Options) *AggregatorService {
	return &AggregatorService{weakThreshold: opts.WeakTopicThreshold}
}

// TotalScore sums earned marks across auto and AI results. MaxScore is
// the sum of every question's marks whether answered or not.
func (a *AggregatorService) TotalScore(questions []models.Question, auto map[string]models.AutoResult, ai map[string]models.AIFeedback) (total float64, max int) {
	for _, q := range questions {
		max += q.Marks
		if result, ok := auto[q.ID]; ok && result.IsCorrect {
			total += float64(q.Marks)
		} else if feedback, ok := ai[q.ID]; ok {
			total += feedback.Score
		}
	}
	return total, max
}

// TopicBreakdown groups the session's questions by topic. Questions with
// no grading result count toward Total and MarksPossible only.
func (a *AggregatorService) TopicBreakdown(questions []models.Question, auto map[string]models.AutoResult, ai map[string]models.AIFeedback) map[string]models.TopicStats {
	breakdown := make(map[string]models.TopicStats)
	for _, q := range questions {
		topic := q.TopicOrDefault()
		stats := breakdown[topic]
		stats.Total++
		stats.MarksPossible += q.Marks

		if result, ok := auto[q.ID]; ok {
			if result.IsCorrect {
				stats.Correct++
				stats.MarksEarned += float64(q.Marks)
			}
		} else if feedback, ok := ai[q.ID]; ok {
			stats.MarksEarned += feedback.Score
			if feedback.IsCorrect {
				stats.Correct++
			}
		}

		breakdown[topic] = stats
	}
	return breakdown
}

// WeakTopics returns the labels of topics scoring under the weakness
// threshold, weakest first.
func (a *AggregatorService) WeakTopics(breakdown map[string]models.TopicStats) []string {
	type scored struct {
		topic string
		ratio float64
	}
	var weak []scored
	for topic, stats := range breakdown {
		if stats.Total < 1 || stats.MarksPossible <= 0 {
			continue
		}
		ratio := stats.MarksEarned / float64(stats.MarksPossible)
		if ratio < a.weakThreshold {
			weak = append(weak, scored{topic: topic, ratio: ratio})
		}
	}
	sort.Slice(weak, func(i, j int) bool { return weak[i].ratio < weak[j].ratio })

	topics := make([]string, len(weak))
	for i, w := range weak {
		topics[i] = w.topic
	}
	return topics
}
