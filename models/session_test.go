package models

import (
	"encoding/json"
	"testing"
)

func TestAnswerJSONCarriesOnlyItsPayloadField(t *testing.T) {
	answer := Answer{
		QuestionID: "q1",
		Type:       TypeCoding,
		Payload:    CodeAnswer{Code: "print(1)", Language: "python"},
	}

	data, err := json.Marshal(answer)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if raw["code_answer"] != "print(1)" {
		t.Errorf("code_answer = %v", raw["code_answer"])
	}
	if _, present := raw["selected_option"]; present {
		t.Error("a coding answer must not serialize a selected_option")
	}
	if raw["is_answered"] != true {
		t.Error("is_answered must be derived from the payload")
	}
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	original := Answer{
		QuestionID: "q1",
		Type:       TypeMCQ,
		Payload:    OptionAnswer{Selected: "b"},
		IsFlagged:  true,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded Answer
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	payload, ok := decoded.Payload.(OptionAnswer)
	if !ok {
		t.Fatalf("decoded payload is %T, want OptionAnswer", decoded.Payload)
	}
	if payload.Selected != "b" || !decoded.IsFlagged {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestAnswerIsAnswered(t *testing.T) {
	tests := []struct {
		name     string
		payload  AnswerPayload
		expected bool
	}{
		{name: "nil payload", payload: nil, expected: false},
		{name: "blank text", payload: TextAnswer{Text: "   "}, expected: false},
		{name: "real text", payload: TextAnswer{Text: "osmosis"}, expected: true},
		{name: "selected option", payload: OptionAnswer{Selected: "a"}, expected: true},
		{name: "empty image", payload: ImageAnswer{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := Answer{QuestionID: "q1", Payload: tt.payload}
			if got := answer.IsAnswered(); got != tt.expected {
				t.Errorf("IsAnswered() = %v, want %v", got, tt.expected)
			}
		})
	}
}
