package grading

import (
	"strings"
	"testing"

	"examprep/models"
)

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		wantMediaType string
		wantData      string
	}{
		{
			name:          "png data url",
			payload:       "data:image/png;base64,iVBORw0KGgo=",
			wantMediaType: "image/png",
			wantData:      "iVBORw0KGgo=",
		},
		{
			name:          "jpeg data url",
			payload:       "data:image/jpeg;base64,/9j/4AAQ",
			wantMediaType: "image/jpeg",
			wantData:      "/9j/4AAQ",
		},
		{
			name:          "bare base64 defaults to jpeg",
			payload:       "aGVsbG8=",
			wantMediaType: "image/jpeg",
			wantData:      "aGVsbG8=",
		},
		{
			name:          "malformed data url left intact",
			payload:       "data:image/png",
			wantMediaType: "image/jpeg",
			wantData:      "data:image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mediaType, data := splitDataURL(tt.payload)
			if mediaType != tt.wantMediaType {
				t.Errorf("mediaType = %q, want %q", mediaType, tt.wantMediaType)
			}
			if data != tt.wantData {
				t.Errorf("data = %q, want %q", data, tt.wantData)
			}
		})
	}
}

func TestSalvageGrades(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		wantCount  int
		wantErr    bool
	}{
		{
			name:       "plain json",
			completion: `{"grades":[{"questionId":"q1","score":2,"maxMarks":3,"feedback":"partial"}]}`,
			wantCount:  1,
		},
		{
			name:       "fenced json",
			completion: "Here are the grades:\n```json\n{\"grades\":[{\"questionId\":\"q1\",\"score\":1,\"maxMarks\":1},{\"questionId\":\"q2\",\"score\":0,\"maxMarks\":2}]}\n```",
			wantCount:  2,
		},
		{
			name:       "braces embedded in prose",
			completion: `The verdict follows. {"grades":[{"questionId":"q1","score":3,"maxMarks":3,"isCorrect":true}]} Hope that helps.`,
			wantCount:  1,
		},
		{
			name:       "empty text",
			completion: "   ",
			wantErr:    true,
		},
		{
			name:       "no json at all",
			completion: "I cannot grade these answers.",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grades, err := salvageGrades(tt.completion)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("salvageGrades returned error: %v", err)
			}
			if len(grades) != tt.wantCount {
				t.Errorf("got %d grades, want %d", len(grades), tt.wantCount)
			}
		})
	}
}

func TestBuildTextBatchPromptIncludesEveryItem(t *testing.T) {
	items := []models.CheckItem{
		{ID: "q1", Question: "Define momentum.", StudentAnswer: "mass times velocity", CorrectAnswer: "p = mv", Marks: 2},
		{ID: "q2", Question: "State the SI unit of force.", StudentAnswer: "newton", CorrectAnswer: "newton (N)", Solution: "1 N = 1 kg m/s^2", Marks: 1},
	}

	prompt := buildTextBatchPrompt(items)

	for _, fragment := range []string{"q1", "q2", "Define momentum.", "mass times velocity", "1 N = 1 kg m/s^2", "report_grades"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
	if strings.Count(prompt, "--- Answer") != 2 {
		t.Errorf("expected 2 answer blocks, got %d", strings.Count(prompt, "--- Answer"))
	}
}

func TestBuildCodeBatchPromptIncludesLanguage(t *testing.T) {
	items := []models.CheckItem{
		{ID: "q1", Question: "Write a function to reverse a string.", StudentAnswer: "def rev(s): return s[::-1]", CorrectAnswer: "slicing", Marks: 3, Language: "python"},
	}

	prompt := buildCodeBatchPrompt(items)
	if !strings.Contains(prompt, "Language: python") {
		t.Error("code prompt must name the expected language")
	}
	if !strings.Contains(prompt, "def rev(s): return s[::-1]") {
		t.Error("code prompt must carry the student's code verbatim")
	}
}

func TestBuildImagePromptOmitsEmptySolution(t *testing.T) {
	item := models.ImageCheckItem{ID: "q1", Question: "Draw the ray diagram.", CorrectAnswer: "converging lens diagram", Marks: 3}

	prompt := buildImagePrompt(item)
	if strings.Contains(prompt, "Marking-scheme solution") {
		t.Error("image prompt must omit the solution line when empty")
	}
	if !strings.Contains(prompt, "Maximum marks: 3") {
		t.Error("image prompt must state the maximum marks")
	}
}
