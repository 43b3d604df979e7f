package services

import "testing"

func TestPaperStructuresAreInternallyConsistent(t *testing.T) {
	for _, subject := range ValidSubjects {
		structure, err := PaperStructureFor(subject)
		if err != nil {
			t.Fatalf("missing structure for %s: %v", subject, err)
		}

		questions, marks := 0, 0
		for _, def := range structure.Sections {
			questions += def.Count
			marks += def.Count * def.MarksPerQuestion
		}
		if questions != structure.TotalQuestions {
			t.Errorf("%s: section counts sum to %d, structure says %d", subject, questions, structure.TotalQuestions)
		}
		if marks != structure.TotalMarks {
			t.Errorf("%s: section marks sum to %d, structure says %d", subject, marks, structure.TotalMarks)
		}
	}
}

func TestPaperStructureForUnknownSubject(t *testing.T) {
	if _, err := PaperStructureFor("Astrology"); err == nil {
		t.Error("expected an error for an unknown subject")
	}
}

func TestDetectCodeLanguage(t *testing.T) {
	tests := []struct {
		name     string
		question string
		expected string
	}{
		{name: "sql keywords", question: "Write a query to SELECT all rows from the employees table.", expected: "sql"},
		{name: "cpp includes", question: "Complete the program: #include <iostream>", expected: "cpp"},
		{name: "defaults to python", question: "Write a function to count vowels in a string.", expected: "python"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCodeLanguage(tt.question); got != tt.expected {
				t.Errorf("DetectCodeLanguage(%q) = %q, want %q", tt.question, got, tt.expected)
			}
		})
	}
}
