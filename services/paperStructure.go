package services

import (
	"fmt"
	"strings"

	"examprep/models"
)

// ValidSubjects lists the subjects the question bank covers.
var ValidSubjects = []string{"Physics", "Chemistry", "Biology", "Mathematics", "Computer Science"}

// IsValidSubject does a case-sensitive membership check against ValidSubjects.
func IsValidSubject(subject string) bool {
	for _, s := range ValidSubjects {
		if s == subject {
			return true
		}
	}
	return false
}

// paperStructures is the static per-subject blueprint of a CBSE class XII
// board paper: section letters, marks per question and question counts.
var paperStructures = map[string]models.PaperStructure{
	"Physics": {
		Subject: "Physics", TotalQuestions: 33, TotalMarks: 70, DurationMinutes: 180,
		Sections: []models.SectionDef{
			{Section: "A", Count: 16, MarksPerQuestion: 1},
			{Section: "B", Count: 5, MarksPerQuestion: 2},
			{Section: "C", Count: 7, MarksPerQuestion: 3},
			{Section: "D", Count: 2, MarksPerQuestion: 4},
			{Section: "E", Count: 3, MarksPerQuestion: 5},
		},
	},
	"Chemistry": {
		Subject: "Chemistry", TotalQuestions: 33, TotalMarks: 70, DurationMinutes: 180,
		Sections: []models.SectionDef{
			{Section: "A", Count: 16, MarksPerQuestion: 1},
			{Section: "B", Count: 5, MarksPerQuestion: 2},
			{Section: "C", Count: 7, MarksPerQuestion: 3},
			{Section: "D", Count: 2, MarksPerQuestion: 4},
			{Section: "E", Count: 3, MarksPerQuestion: 5},
		},
	},
	"Biology": {
		Subject: "Biology", TotalQuestions: 33, TotalMarks: 70, DurationMinutes: 180,
		Sections: []models.SectionDef{
			{Section: "A", Count: 16, MarksPerQuestion: 1},
			{Section: "B", Count: 5, MarksPerQuestion: 2},
			{Section: "C", Count: 7, MarksPerQuestion: 3},
			{Section: "D", Count: 2, MarksPerQuestion: 4},
			{Section: "E", Count: 3, MarksPerQuestion: 5},
		},
	},
	"Mathematics": {
		Subject: "Mathematics", TotalQuestions: 38, TotalMarks: 80, DurationMinutes: 180,
		Sections: []models.SectionDef{
			{Section: "A", Count: 20, MarksPerQuestion: 1},
			{Section: "B", Count: 5, MarksPerQuestion: 2},
			{Section: "C", Count: 6, MarksPerQuestion: 3},
			{Section: "D", Count: 4, MarksPerQuestion: 5},
			{Section: "E", Count: 3, MarksPerQuestion: 4},
		},
	},
	"Computer Science": {
		Subject: "Computer Science", TotalQuestions: 37, TotalMarks: 70, DurationMinutes: 180,
		Sections: []models.SectionDef{
			{Section: "A", Count: 21, MarksPerQuestion: 1},
			{Section: "B", Count: 7, MarksPerQuestion: 2},
			{Section: "C", Count: 3, MarksPerQuestion: 3},
			{Section: "D", Count: 4, MarksPerQuestion: 4},
			{Section: "E", Count: 2, MarksPerQuestion: 5},
		},
	},
}

// PaperStructureFor looks up the blueprint for a subject.
func PaperStructureFor(subject string) (models.PaperStructure, error) {
	structure, ok := paperStructures[subject]
	if !ok {
		return models.PaperStructure{}, fmt.Errorf("no paper structure for subject %q", subject)
	}
	return structure, nil
}

// MarksForSubject lists the marks values a subject's questions come in.
func MarksForSubject(subject string) []int {
	switch subject {
	case "Mathematics":
		return []int{1, 2, 3, 5}
	case "Computer Science":
		return []int{1, 2, 3, 4, 5}
	default:
		return []int{1, 2, 3, 5}
	}
}

// DetectCodeLanguage guesses the expected language of a coding question
// from its text. Defaults to python, the dominant language in the CS paper.
func DetectCodeLanguage(questionText string) string {
	lower := strings.ToLower(questionText)
	if strings.Contains(lower, "sql") || strings.Contains(lower, "select") || strings.Contains(lower, "table") {
		return "sql"
	}
	if strings.Contains(lower, "c++") || strings.Contains(lower, "#include") || strings.Contains(lower, "cout") {
		return "cpp"
	}
	return "python"
}

// Options carries the tunable constants of the practice engine. The
// defaults match the behavior the product shipped with, but nothing
// depends on the literals themselves.
type Options struct {
	// RewordShare is the fraction of a generated section drawn by
	// rewording existing bank questions; the rest is authored fresh.
	RewordShare float64

	// WeakTopicThreshold is the marks ratio below which a topic counts
	// as weak.
	WeakTopicThreshold float64

	// MinAttemptsForWeak guards against flagging a topic off a single
	// unlucky question.
	MinAttemptsForWeak int

	// PatternExampleLimit caps how many extra questions ride along as
	// style examples for fresh-question synthesis.
	PatternExampleLimit int

	// MinSectionPool is the primary-pool size under which section
	// bucketing broadens to a marks-only match.
	MinSectionPool int
}

func DefaultOptions() Options {
	return Options{
		RewordShare:         0.5,
		WeakTopicThreshold:  0.6,
		MinAttemptsForWeak:  2,
		PatternExampleLimit: 10,
		MinSectionPool:      3,
	}
}
