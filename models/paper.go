package models

// SectionDef is one row of a subject's paper blueprint: how many
// questions the lettered section has and how many marks each carries.
type SectionDef struct {
	Section          string `json:"section"`
	Count            int    `json:"count"`
	MarksPerQuestion int    `json:"marks_per_question"`
}

// PaperStructure is the static blueprint for one subject's board paper.
type PaperStructure struct {
	Subject         string       `json:"subject"`
	TotalQuestions  int          `json:"total_questions"`
	TotalMarks      int          `json:"total_marks"`
	DurationMinutes int          `json:"duration_minutes"`
	Sections        []SectionDef `json:"sections"`
}

// BundleQuestion is the slimmed-down question shape handed to the
// synthesis collaborator, either as a reword candidate or a pattern
// example.
type BundleQuestion struct {
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Type          QuestionType `json:"type"`
	Topic         string       `json:"topic,omitempty"`
}

// SectionBundle is the assembler's output for one section of a generated
// paper: which bank questions to reword, which to use only as pattern
// examples, and how many questions must be authored fresh.
type SectionBundle struct {
	Section          string           `json:"section"`
	Count            int              `json:"count"`
	MarksPerQuestion int              `json:"marks_per_question"`
	Reword           []BundleQuestion `json:"reword"`
	Patterns         []BundleQuestion `json:"patterns"`
	FreshCount       int              `json:"fresh_count"`
}
