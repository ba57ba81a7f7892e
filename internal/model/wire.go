package model

import "encoding/json"

// TestPaper is the raw payload returned by the test catalog. Questions stay
// opaque here; the normalize package owns decoding their heterogeneous shapes.
type TestPaper struct {
	TestID          string            `json:"test_id"`
	Title           string            `json:"title"`
	DurationSeconds int               `json:"duration_seconds"`
	TotalQuestions  int               `json:"total_questions"`
	Questions       []json.RawMessage `json:"questions"`
}

// WireAnswer is one answered question in the submit payload. Exactly one of
// SelectedOption/AnswerText is set depending on the question kind; unsupported
// questions are omitted from the payload entirely.
type WireAnswer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption string `json:"selected_option,omitempty"`
	AnswerText     string `json:"answer_text,omitempty"`
	TimeSpentSec   int    `json:"time_spent_sec" validate:"min=0"`
	Flagged        bool   `json:"flagged,omitempty"`
}

// SubmitRequest is the payload for committing an attempt. The attempt id
// rides in the URL; the server deduplicates double submits by it. UserID may
// be zero when the token claims could not be read — the server derives the
// learner from the bearer token anyway, so a missing id must not keep the
// submit off the wire.
type SubmitRequest struct {
	UserID      int          `json:"user_id" validate:"min=0"`
	TestID      string       `json:"test_id" validate:"required"`
	DurationSec int          `json:"duration_sec" validate:"min=0"`
	Answers     []WireAnswer `json:"answers" validate:"dive"`
}

// ReviewEntry is one per-question record from the remote review endpoint,
// with the correct answer disclosed now that the attempt is closed.
type ReviewEntry struct {
	QuestionID    string  `json:"question_id"`
	UserAnswer    string  `json:"user_answer"`
	IsCorrect     bool    `json:"is_correct"`
	CorrectAnswer string  `json:"correct_answer"`
	PointsAwarded float64 `json:"points_awarded"`
	TimeSpentSec  int     `json:"time_spent_sec"`
}
