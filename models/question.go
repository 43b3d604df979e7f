package models

// Question types found in CBSE board papers.
const (
	TypeMCQ                QuestionType = "mcq"
	TypeAssertionReasoning QuestionType = "assertion-reasoning"
	TypeShortAnswer        QuestionType = "short-answer"
	TypeLongAnswer         QuestionType = "long-answer"
	TypeCaseBased          QuestionType = "case-based"
	TypeFillBlank          QuestionType = "fill-blank"
	TypeTrueFalse          QuestionType = "true-false"
	TypeCoding             QuestionType = "coding"
)

type QuestionType string

var validQuestionTypes = map[QuestionType]bool{
	TypeMCQ:                true,
	TypeAssertionReasoning: true,
	TypeShortAnswer:        true,
	TypeLongAnswer:         true,
	TypeCaseBased:          true,
	TypeFillBlank:          true,
	TypeTrueFalse:          true,
	TypeCoding:             true,
}

// NormalizeQuestionType returns the type unchanged when it is a known type
// and falls back to short-answer otherwise. Generated questions sometimes
// come back with invented type labels.
func NormalizeQuestionType(raw string) QuestionType {
	t := QuestionType(raw)
	if validQuestionTypes[t] {
		return t
	}
	return TypeShortAnswer
}

// IsAutoCheckable reports whether answers of this type are graded by
// comparing option letters, with no AI involved.
func (t QuestionType) IsAutoCheckable() bool {
	return t == TypeMCQ || t == TypeAssertionReasoning || t == TypeTrueFalse
}

// IsFillBlank reports whether answers of this type go through fuzzy text
// matching.
func (t QuestionType) IsFillBlank() bool {
	return t == TypeFillBlank
}

// IsChoiceBased reports whether the question carries an options list the
// student picks from.
func (t QuestionType) IsChoiceBased() bool {
	return t == TypeMCQ || t == TypeAssertionReasoning || t == TypeTrueFalse || t == TypeCaseBased
}

type Question struct {
	ID                  string       `json:"id" db:"id"`
	QuestionNumber      int          `json:"question_number" db:"question_number"`
	Section             string       `json:"section" db:"section"`
	Type                QuestionType `json:"type" db:"type"`
	Text                string       `json:"question" db:"question"`
	Options             []string     `json:"options,omitempty" db:"options"`
	CorrectAnswer       string       `json:"correct_answer" db:"correct_answer"`
	Solution            string       `json:"solution" db:"solution"`
	Marks               int          `json:"marks" db:"marks"`
	Topic               string       `json:"topic,omitempty" db:"topic"`
	HasAlternative      bool         `json:"has_alternative" db:"has_alternative"`
	AlternativeQuestion *Question    `json:"alternative_question,omitempty" db:"alternative_question"`
	Year                int          `json:"year" db:"year"`
	PaperID             string       `json:"paper_id,omitempty" db:"paper_id"`
}

// TopicOrDefault returns the topic label, or "General" when the question
// was stored without one.
func (q *Question) TopicOrDefault() string {
	if q.Topic == "" {
		return "General"
	}
	return q.Topic
}

type Paper struct {
	ID              string  `json:"id" db:"id"`
	Subject         string  `json:"subject" db:"subject"`
	Year            int     `json:"year" db:"year"`
	SetCode         *string `json:"set_code,omitempty" db:"set_code"`
	TotalMarks      int     `json:"total_marks" db:"total_marks"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`
	QuestionCount   int     `json:"question_count" db:"question_count"`
}

// QuestionFilters narrows a bank fetch. Zero values mean "no filter".
type QuestionFilters struct {
	Marks   []int  `json:"marks,omitempty"`
	Years   []int  `json:"years,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Section string `json:"section,omitempty"`
}

// SubjectSummary is one row of the bank index: which years a subject
// covers and how many questions exist per marks value.
type SubjectSummary struct {
	Name           string      `json:"name"`
	Years          []int       `json:"years"`
	MarkCounts     map[int]int `json:"mark_counts"`
	TotalQuestions int         `json:"total_questions"`
}
