package models

// CheckItem is one subjective answer sent to the grading collaborator as
// part of a text or code batch.
type CheckItem struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Solution      string `json:"solution"`
	Marks         int    `json:"marks"`
	Language      string `json:"language,omitempty"`
}

// ImageCheckItem is one image-backed answer. Vision grading cannot batch,
// so each item becomes its own collaborator call.
type ImageCheckItem struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	Solution      string `json:"solution"`
	Marks         int    `json:"marks"`
	ImageBase64   string `json:"image_base64"`
}

// CheckResult is the collaborator's raw verdict for one answer. The
// grader clamps Score and recomputes IsCorrect before trusting it.
type CheckResult struct {
	QuestionID      string   `json:"questionId"`
	Score           float64  `json:"score"`
	MaxMarks        int      `json:"maxMarks"`
	Feedback        string   `json:"feedback"`
	KeyPointsMissed []string `json:"keyPointsMissed"`
	IsCorrect       bool     `json:"isCorrect"`
}
