package model

// QuestionKind discriminates the normalized question union.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	QuestionKindFillInBlank    QuestionKind = "FILL_IN_BLANK"
	QuestionKindUnsupported    QuestionKind = "UNSUPPORTED"
)

// Choice is one selectable option of a multiple-choice question.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the uniform internal question representation produced once at
// the normalization boundary. Correct-option identity is never present for
// multiple choice; the server discloses it only after submission.
type Question struct {
	ID              string       `json:"id"`
	Kind            QuestionKind `json:"kind"`
	Prompt          string       `json:"prompt"`
	Choices         []Choice     `json:"choices,omitempty"`          // MULTIPLE_CHOICE only
	BlankID         string       `json:"blank_id,omitempty"`         // FILL_IN_BLANK answer addressing
	AcceptedAnswers []string     `json:"accepted_answers,omitempty"` // FILL_IN_BLANK only
	Explanation     string       `json:"explanation,omitempty"`
}

// Answerable reports whether the learner can record an answer for this
// question. Unsupported questions never block navigation or submission.
func (q Question) Answerable() bool {
	return q.Kind != QuestionKindUnsupported
}
