package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stemsi/exstem-client/internal/model"
)

func TestQuestion_TypedMultipleChoice(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "q-abc",
		"type": "MULTIPLE_CHOICE",
		"question_text": "What is 2+2?",
		"options": [
			{"id": "A", "text": "3", "is_correct": false},
			{"id": "B", "text": "4", "is_correct": true},
			{"id": "C", "text": "5", "correct": false}
		]
	}`)

	q := Question(raw, 0)

	if q.Kind != model.QuestionKindMultipleChoice {
		t.Fatalf("Kind = %s, want MULTIPLE_CHOICE", q.Kind)
	}
	if q.ID != "q-abc" {
		t.Errorf("ID = %q, want q-abc", q.ID)
	}
	if len(q.Choices) != 3 {
		t.Fatalf("len(Choices) = %d, want 3", len(q.Choices))
	}
	if q.Choices[1].ID != "B" || q.Choices[1].Text != "4" {
		t.Errorf("Choices[1] = %+v, want {B 4}", q.Choices[1])
	}
	if len(q.AcceptedAnswers) != 0 {
		t.Errorf("MCQ must not carry accepted answers, got %v", q.AcceptedAnswers)
	}
}

// The normalized question must never reveal which option is correct: its
// serialized form carries no correctness field at all.
func TestQuestion_NeverLeaksCorrectness(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "mcq",
		"question_text": "Pick one",
		"options": [
			{"id": "A", "text": "yes", "is_correct": true},
			{"id": "B", "text": "no", "is_correct": false}
		]
	}`)

	q := Question(raw, 0)

	out, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, banned := range []string{"is_correct", "correct"} {
		if strings.Contains(string(out), banned) {
			t.Errorf("normalized question leaks %q: %s", banned, out)
		}
	}
}

func TestQuestion_FillInBlank(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "q-fib",
		"type": "FILL_IN_BLANK",
		"question_text": "The capital of France is ___",
		"blanks": [
			{"id": "b1", "accepted_answers": ["Paris", "paris"]},
			{"id": "b2", "answers": ["PARIS"]}
		]
	}`)

	q := Question(raw, 3)

	if q.Kind != model.QuestionKindFillInBlank {
		t.Fatalf("Kind = %s, want FILL_IN_BLANK", q.Kind)
	}
	if q.BlankID != "b1" {
		t.Errorf("BlankID = %q, want b1", q.BlankID)
	}
	want := []string{"Paris", "paris", "PARIS"}
	if len(q.AcceptedAnswers) != len(want) {
		t.Fatalf("AcceptedAnswers = %v, want %v", q.AcceptedAnswers, want)
	}
	for i, a := range want {
		if q.AcceptedAnswers[i] != a {
			t.Errorf("AcceptedAnswers[%d] = %q, want %q", i, q.AcceptedAnswers[i], a)
		}
	}
}

func TestQuestion_LegacyFlatOptions(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "old-7",
		"text": "Legacy question",
		"options": [
			{"label": "A", "text": "first"},
			{"text": "second"}
		]
	}`)

	q := Question(raw, 6)

	if q.Kind != model.QuestionKindMultipleChoice {
		t.Fatalf("Kind = %s, want inferred MULTIPLE_CHOICE", q.Kind)
	}
	if q.Choices[0].ID != "A" {
		t.Errorf("Choices[0].ID = %q, want label fallback A", q.Choices[0].ID)
	}
	if q.Choices[1].ID != "opt2" {
		t.Errorf("Choices[1].ID = %q, want positional fallback opt2", q.Choices[1].ID)
	}
}

func TestQuestion_LegacyStringOptions(t *testing.T) {
	raw := json.RawMessage(`{"text": "Pick", "options": ["red", "blue"]}`)

	q := Question(raw, 0)

	if q.Kind != model.QuestionKindMultipleChoice {
		t.Fatalf("Kind = %s, want MULTIPLE_CHOICE", q.Kind)
	}
	if q.Choices[0].Text != "red" || q.Choices[0].ID != "opt1" {
		t.Errorf("Choices[0] = %+v, want {opt1 red}", q.Choices[0])
	}
}

func TestQuestion_UnknownShapeDegrades(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wantPrompt string
	}{
		{"unknown type", `{"id":"x","type":"MATRIX","question_text":"Fill the grid"}`, "Fill the grid"},
		{"typed mcq without options", `{"type":"MULTIPLE_CHOICE","question_text":"No options"}`, "No options"},
		{"not an object", `[1,2,3]`, "Question 3 could not be displayed"},
		{"garbage fields", `{"foo": 42}`, "Question 3 could not be displayed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Question(json.RawMessage(tc.raw), 2)
			if q.Kind != model.QuestionKindUnsupported {
				t.Fatalf("Kind = %s, want UNSUPPORTED", q.Kind)
			}
			if q.Prompt != tc.wantPrompt {
				t.Errorf("Prompt = %q, want %q", q.Prompt, tc.wantPrompt)
			}
			if q.Answerable() {
				t.Error("Unsupported question must not be answerable")
			}
		})
	}
}

func TestAll_CountsDegraded(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"type":"MCQ","question_text":"ok","options":[{"id":"A","text":"a"}]}`),
		json.RawMessage(`{"type":"HOTSPOT","question_text":"nope"}`),
		json.RawMessage(`not even json`),
	}

	questions, degraded := All(raws)

	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	if degraded != 2 {
		t.Errorf("degraded = %d, want 2", degraded)
	}
	if questions[1].ID != "q2" {
		t.Errorf("questions[1].ID = %q, want positional q2", questions[1].ID)
	}
}
