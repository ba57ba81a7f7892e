// Package normalize converts the heterogeneous raw question encodings the
// catalog serves into the single internal representation in model. Everything
// downstream pattern-matches on model.QuestionKind instead of probing raw
// wire shapes.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stemsi/exstem-client/internal/model"
)

// rawQuestion is the superset of fields seen across catalog payload variants.
// Unknown fields are ignored; missing fields decode to zero values.
type rawQuestion struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	QuestionText string      `json:"question_text"`
	Text         string      `json:"text"`
	Prompt       string      `json:"prompt"`
	Options      []rawOption `json:"options"`
	Blanks       []rawBlank  `json:"blanks"`
	Explanation  string      `json:"explanation"`
}

type rawOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Label string `json:"label"`

	// Correctness flags appear in some legacy exports. They are decoded only
	// so the decoder does not choke, and are never copied to the normalized
	// question: correct-option identity must not reach the client pre-submit.
	IsCorrect bool `json:"is_correct"`
	Correct   bool `json:"correct"`
}

// UnmarshalJSON accepts both the object form and the bare-string form some
// legacy exports use for options.
func (o *rawOption) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		o.Text = s
		return nil
	}
	type alias rawOption
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*o = rawOption(a)
	return nil
}

type rawBlank struct {
	ID              string   `json:"id"`
	AcceptedAnswers []string `json:"accepted_answers"`
	Answers         []string `json:"answers"`
}

// Question normalizes one raw catalog question. It is total: unrecognized or
// malformed payloads degrade to QuestionKindUnsupported instead of failing,
// with the prompt preserved where extractable.
func Question(raw json.RawMessage, position int) model.Question {
	var rq rawQuestion
	if err := json.Unmarshal(raw, &rq); err != nil {
		return unsupported(raw, position)
	}

	q := model.Question{
		ID:          rq.ID,
		Prompt:      prompt(rq),
		Explanation: rq.Explanation,
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("q%d", position+1)
	}

	switch {
	case isMultipleChoiceType(rq.Type) && len(rq.Options) > 0:
		q.Kind = model.QuestionKindMultipleChoice
		q.Choices = choices(rq.Options)

	case isFillInBlankType(rq.Type) && len(rq.Blanks) > 0:
		q.Kind = model.QuestionKindFillInBlank
		q.BlankID = rq.Blanks[0].ID
		q.AcceptedAnswers = acceptedAnswers(rq.Blanks)

	case rq.Type == "" && len(rq.Options) > 0:
		// Legacy shape: a flat options array without a typed wrapper.
		q.Kind = model.QuestionKindMultipleChoice
		q.Choices = choices(rq.Options)

	default:
		q.Kind = model.QuestionKindUnsupported
		q.Choices = nil
		q.AcceptedAnswers = nil
		if q.Prompt == "" {
			q.Prompt = placeholder(position)
		}
	}

	return q
}

// All normalizes an ordered raw question list. The second return value is the
// number of questions that degraded to Unsupported, for logging.
func All(raws []json.RawMessage) ([]model.Question, int) {
	out := make([]model.Question, len(raws))
	degraded := 0
	for i, raw := range raws {
		out[i] = Question(raw, i)
		if out[i].Kind == model.QuestionKindUnsupported {
			degraded++
		}
	}
	return out, degraded
}

func isMultipleChoiceType(t string) bool {
	switch strings.ToUpper(t) {
	case "MULTIPLE_CHOICE", "MCQ", "MCQ_SINGLE":
		return true
	}
	return false
}

func isFillInBlankType(t string) bool {
	switch strings.ToUpper(t) {
	case "FILL_IN_BLANK", "FILL_BLANK", "FIB":
		return true
	}
	return false
}

func prompt(rq rawQuestion) string {
	for _, p := range []string{rq.QuestionText, rq.Text, rq.Prompt} {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

// choices maps raw options to the client-held shape, deliberately leaving the
// correctness flags behind.
func choices(opts []rawOption) []model.Choice {
	out := make([]model.Choice, len(opts))
	for i, o := range opts {
		id := o.ID
		if id == "" {
			id = o.Label
		}
		if id == "" {
			id = fmt.Sprintf("opt%d", i+1)
		}
		out[i] = model.Choice{ID: id, Text: o.Text}
	}
	return out
}

// acceptedAnswers unions the accepted-answer lists across blanks. Both field
// spellings seen in the wild are honored.
func acceptedAnswers(blanks []rawBlank) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range blanks {
		for _, a := range append(b.AcceptedAnswers, b.Answers...) {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// unsupported covers payloads that are not even a JSON object. A best-effort
// probe for a text-ish field keeps the prompt when possible.
func unsupported(raw json.RawMessage, position int) model.Question {
	q := model.Question{
		ID:     fmt.Sprintf("q%d", position+1),
		Kind:   model.QuestionKindUnsupported,
		Prompt: placeholder(position),
	}

	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return q
	}
	for _, key := range []string{"question_text", "text", "prompt"} {
		if s, ok := loose[key].(string); ok && strings.TrimSpace(s) != "" {
			q.Prompt = s
			break
		}
	}
	if id, ok := loose["id"].(string); ok && id != "" {
		q.ID = id
	}
	return q
}

func placeholder(position int) string {
	return fmt.Sprintf("Question %d could not be displayed", position+1)
}
