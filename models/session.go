package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type SessionMode string

const (
	ModePYQ       SessionMode = "pyq"
	ModeAISimilar SessionMode = "ai-similar"
	ModeFullPaper SessionMode = "full-paper"
)

type SessionPhase string

const (
	PhaseTaking  SessionPhase = "taking"
	PhaseScoring SessionPhase = "scoring"
	PhaseScored  SessionPhase = "scored"
)

// SessionConfig is the student's setup choice for a practice session.
// Empty Years/Marks mean no filter.
type SessionConfig struct {
	Subject       string      `json:"subject"`
	Years         []int       `json:"years,omitempty"`
	Marks         []int       `json:"marks,omitempty"`
	QuestionCount int         `json:"question_count"`
	Mode          SessionMode `json:"mode"`
}

// AnswerPayload is the per-type answer content. Exactly one concrete
// payload kind is legal for a given question type, so a coding answer can
// never carry a selected option.
type AnswerPayload interface {
	Empty() bool
	payloadKind() string
}

type OptionAnswer struct {
	Selected string `json:"selected_option"`
}

type TextAnswer struct {
	Text string `json:"text_answer"`
}

type CodeAnswer struct {
	Code     string `json:"code_answer"`
	Language string `json:"code_language,omitempty"`
}

type ImageAnswer struct {
	ImageBase64 string `json:"image_base64"`
}

func (a OptionAnswer) Empty() bool { return strings.TrimSpace(a.Selected) == "" }
func (a TextAnswer) Empty() bool   { return strings.TrimSpace(a.Text) == "" }
func (a CodeAnswer) Empty() bool   { return strings.TrimSpace(a.Code) == "" }
func (a ImageAnswer) Empty() bool  { return a.ImageBase64 == "" }

func (OptionAnswer) payloadKind() string { return "option" }
func (TextAnswer) payloadKind() string   { return "text" }
func (CodeAnswer) payloadKind() string   { return "code" }
func (ImageAnswer) payloadKind() string  { return "image" }

// Answer is one question's answer state within a session. It is mutable
// during the taking phase and read-only once scoring starts.
type Answer struct {
	QuestionID string
	Type       QuestionType
	Payload    AnswerPayload
	IsFlagged  bool
}

// IsAnswered is derived: true once any payload content is present.
func (a *Answer) IsAnswered() bool {
	return a.Payload != nil && !a.Payload.Empty()
}

// answerJSON is the flat wire/storage shape. The payload variant is
// reconstructed from whichever field is set, image taking precedence.
type answerJSON struct {
	QuestionID     string       `json:"question_id"`
	Type           QuestionType `json:"type"`
	SelectedOption string       `json:"selected_option,omitempty"`
	TextAnswer     string       `json:"text_answer,omitempty"`
	CodeAnswer     string       `json:"code_answer,omitempty"`
	CodeLanguage   string       `json:"code_language,omitempty"`
	ImageBase64    string       `json:"image_base64,omitempty"`
	IsAnswered     bool         `json:"is_answered"`
	IsFlagged      bool         `json:"is_flagged"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	out := answerJSON{
		QuestionID: a.QuestionID,
		Type:       a.Type,
		IsAnswered: a.IsAnswered(),
		IsFlagged:  a.IsFlagged,
	}

	switch p := a.Payload.(type) {
	case nil:
	case OptionAnswer:
		out.SelectedOption = p.Selected
	case TextAnswer:
		out.TextAnswer = p.Text
	case CodeAnswer:
		out.CodeAnswer = p.Code
		out.CodeLanguage = p.Language
	case ImageAnswer:
		out.ImageBase64 = p.ImageBase64
	default:
		return nil, fmt.Errorf("unknown answer payload kind %q", a.Payload.payloadKind())
	}

	return json.Marshal(out)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.QuestionID = raw.QuestionID
	a.Type = raw.Type
	a.IsFlagged = raw.IsFlagged
	a.Payload = nil

	switch {
	case raw.ImageBase64 != "":
		a.Payload = ImageAnswer{ImageBase64: raw.ImageBase64}
	case raw.CodeAnswer != "":
		a.Payload = CodeAnswer{Code: raw.CodeAnswer, Language: raw.CodeLanguage}
	case raw.TextAnswer != "":
		a.Payload = TextAnswer{Text: raw.TextAnswer}
	case raw.SelectedOption != "":
		a.Payload = OptionAnswer{Selected: raw.SelectedOption}
	}

	return nil
}

// AutoResult is the all-or-nothing grade for objective and fill-blank
// answers. CorrectAnswer is echoed back for display.
type AutoResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// AIFeedback is the partial-credit grade for AI-evaluated answers. Score
// is always clamped into [0, MaxMarks] before it is stored here.
type AIFeedback struct {
	QuestionID      string   `json:"question_id"`
	Score           float64  `json:"score"`
	MaxMarks        int      `json:"max_marks"`
	Feedback        string   `json:"feedback"`
	KeyPointsMissed []string `json:"key_points_missed"`
	IsCorrect       bool     `json:"is_correct"`
}

// TopicStats is the per-topic slice of one session's results. Unanswered
// questions count toward Total and MarksPossible only.
type TopicStats struct {
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
	MarksEarned   float64 `json:"marks_earned"`
	MarksPossible int     `json:"marks_possible"`
}

// SessionResults is everything computed when a session is scored.
type SessionResults struct {
	Auto           map[string]AutoResult `json:"auto_results"`
	AI             map[string]AIFeedback `json:"ai_feedback"`
	TotalScore     float64               `json:"total_score"`
	MaxScore       int                   `json:"max_score"`
	TopicBreakdown map[string]TopicStats `json:"topic_breakdown"`
	WeakTopics     []string              `json:"weak_topics"`
	// Degraded is set when any grading batch fell back to zero-credit
	// results because the collaborator failed.
	Degraded bool `json:"degraded"`
}

// Session is the in-flight state of one practice run.
type Session struct {
	ID        string             `json:"id"`
	Config    SessionConfig      `json:"config"`
	Questions []Question         `json:"questions"`
	Answers   map[string]*Answer `json:"answers"`
	Phase     SessionPhase       `json:"phase"`
	Results   *SessionResults    `json:"results,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// AnsweredCount returns how many questions have a non-empty payload.
func (s *Session) AnsweredCount() int {
	count := 0
	for _, a := range s.Answers {
		if a.IsAnswered() {
			count++
		}
	}
	return count
}

// SessionRecord is the durable artifact written once when a session
// reaches the scored state. Dashboards and the weak-topic tracker read it.
type SessionRecord struct {
	ID             string                `json:"id" db:"id"`
	Subject        string                `json:"subject" db:"subject"`
	Mode           SessionMode           `json:"mode" db:"mode"`
	Years          []int                 `json:"years" db:"years"`
	Marks          []int                 `json:"marks" db:"marks"`
	Questions      []Question            `json:"questions" db:"questions"`
	Answers        map[string]*Answer    `json:"answers" db:"answers"`
	AutoResults    map[string]AutoResult `json:"auto_results" db:"auto_results"`
	AIFeedback     map[string]AIFeedback `json:"ai_feedback" db:"ai_feedback"`
	TotalScore     float64               `json:"total_score" db:"total_score"`
	MaxScore       int                   `json:"max_score" db:"max_score"`
	TopicBreakdown map[string]TopicStats `json:"topic_breakdown" db:"topic_breakdown"`
	WeakTopics     []string              `json:"weak_topics" db:"weak_topics"`
	CreatedAt      time.Time             `json:"created_at" db:"created_at"`
}
