package model

import "time"

// ResultSource records which path produced a SubmissionResult. The shape is
// identical either way so downstream code stays oblivious; the tag exists for
// logging and the local history store.
type ResultSource string

const (
	ResultSourceRemote ResultSource = "REMOTE"
	ResultSourceLocal  ResultSource = "LOCAL"
)

// SubmissionResult is the outcome of committing an attempt, either returned
// by the grading service or synthesized locally when it is unreachable.
// Immutable once attached to an attempt.
type SubmissionResult struct {
	AttemptID      string       `json:"attempt_id"`
	TotalQuestions int          `json:"total_questions"`
	Attempted      int          `json:"attempted"`
	Correct        int          `json:"correct"`
	Wrong          int          `json:"wrong"`
	Skipped        int          `json:"skipped"`
	Percentage     float64      `json:"percentage"`
	SubmittedAt    time.Time    `json:"submitted_at"`
	Source         ResultSource `json:"-"`
}
