package services

import (
	"testing"

	"examprep/models"
)

func TestTotalScoreMaxIndependentOfAnswers(t *testing.T) {
	aggregator := NewAggregatorService(DefaultOptions())

	questions := []models.Question{
		{ID: "q1", Marks: 1},
		{ID: "q2", Marks: 3},
		{ID: "q3", Marks: 5},
	}

	total, max := aggregator.TotalScore(questions, nil, nil)
	if total != 0 {
		t.Errorf("expected total 0 with no results, got %v", total)
	}
	if max != 9 {
		t.Errorf("expected max 9 regardless of answers, got %d", max)
	}
}

func TestTotalScoreMixesAutoAndAI(t *testing.T) {
	aggregator := NewAggregatorService(DefaultOptions())

	questions := []models.Question{
		{ID: "q1", Marks: 1},
		{ID: "q2", Marks: 1},
		{ID: "q3", Marks: 3},
		{ID: "q4", Marks: 5},
	}
	auto := map[string]models.AutoResult{
		"q1": {IsCorrect: true},
		"q2": {IsCorrect: false},
	}
	ai := map[string]models.AIFeedback{
		"q3": {QuestionID: "q3", Score: 1.5, MaxMarks: 3},
	}

	total, max := aggregator.TotalScore(questions, auto, ai)
	if total != 2.5 {
		t.Errorf("expected total 2.5, got %v", total)
	}
	if max != 10 {
		t.Errorf("expected max 10, got %d", max)
	}
	if total > float64(max) {
		t.Error("total must never exceed max")
	}
}

func TestTopicBreakdown(t *testing.T) {
	aggregator := NewAggregatorService(DefaultOptions())

	questions := []models.Question{
		{ID: "q1", Topic: "Optics", Marks: 1},
		{ID: "q2", Topic: "Optics", Marks: 3},
		{ID: "q3", Topic: "", Marks: 2},
		{ID: "q4", Topic: "Magnetism", Marks: 5},
	}
	auto := map[string]models.AutoResult{
		"q1": {IsCorrect: true},
	}
	ai := map[string]models.AIFeedback{
		"q2": {QuestionID: "q2", Score: 2, MaxMarks: 3, IsCorrect: false},
	}
	// q3 and q4 unanswered.

	breakdown := aggregator.TopicBreakdown(questions, auto, ai)

	optics := breakdown["Optics"]
	if optics.Total != 2 || optics.MarksPossible != 4 {
		t.Errorf("Optics totals wrong: %+v", optics)
	}
	if optics.Correct != 1 {
		t.Errorf("expected 1 correct in Optics, got %d", optics.Correct)
	}
	if optics.MarksEarned != 3 {
		t.Errorf("expected 3 marks earned in Optics, got %v", optics.MarksEarned)
	}

	general, ok := breakdown["General"]
	if !ok {
		t.Fatal("expected topicless question under General")
	}
	if general.Total != 1 || general.MarksEarned != 0 {
		t.Errorf("General stats wrong: %+v", general)
	}

	magnetism := breakdown["Magnetism"]
	if magnetism.Total != 1 || magnetism.MarksPossible != 5 || magnetism.Correct != 0 {
		t.Errorf("unanswered question must count toward totals only: %+v", magnetism)
	}
}

func TestWeakTopicsOrderedWeakestFirst(t *testing.T) {
	aggregator := NewAggregatorService(DefaultOptions())

	breakdown := map[string]models.TopicStats{
		"Optics":      {Total: 4, MarksEarned: 1, MarksPossible: 4},   // 0.25
		"Magnetism":   {Total: 2, MarksEarned: 1, MarksPossible: 2},   // 0.5
		"Mechanics":   {Total: 3, MarksEarned: 3, MarksPossible: 3},   // 1.0, not weak
		"Thermo":      {Total: 2, MarksEarned: 1.2, MarksPossible: 2}, // 0.6, at threshold, not weak
		"Electronics": {Total: 0, MarksPossible: 0},
	}

	weak := aggregator.WeakTopics(breakdown)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak topics, got %v", weak)
	}
	if weak[0] != "Optics" || weak[1] != "Magnetism" {
		t.Errorf("expected weakest-first ordering [Optics Magnetism], got %v", weak)
	}
}
