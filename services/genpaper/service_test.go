package genpaper

import (
	"testing"
)

func TestParseJSONResponse(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		wantCount  int
		wantErr    bool
	}{
		{
			name:       "plain json",
			completion: `{"questions": [{"type": "mcq", "question": "Q1", "correct_answer": "a"}]}`,
			wantCount:  1,
		},
		{
			name: "json fenced with language tag",
			completion: "```json\n" +
				`{"questions": [{"type": "mcq", "question": "Q1", "correct_answer": "a"}, {"type": "short-answer", "question": "Q2", "correct_answer": "x"}]}` +
				"\n```",
			wantCount: 2,
		},
		{
			name: "bare fence",
			completion: "```\n" +
				`{"questions": [{"type": "true-false", "question": "Q1", "correct_answer": "a"}]}` +
				"\n```",
			wantCount: 1,
		},
		{
			name:       "leading prose before json",
			completion: `Here is the section you asked for: {"questions": [{"type": "mcq", "question": "Q1", "correct_answer": "b"}]}`,
			wantCount:  1,
		},
		{
			name:       "not json at all",
			completion: "Sorry, I cannot help with that.",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsed sectionResponse
			err := parseJSONResponse(tt.completion, &parsed)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseJSONResponse returned error: %v", err)
			}
			if len(parsed.Questions) != tt.wantCount {
				t.Errorf("parsed %d questions, want %d", len(parsed.Questions), tt.wantCount)
			}
		})
	}
}
