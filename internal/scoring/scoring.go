// Package scoring computes the client-side approximate result used when the
// remote grading call fails. Correctness is claimed only where the client
// holds the ground truth: fill-in-blank accepted-answer sets. Multiple-choice
// correctness is unknowable offline because the correct option id is never
// shipped pre-submission, so attempted MCQs count toward neither correct nor
// wrong here. This is a documented availability-over-accuracy tradeoff, not
// a bug.
package scoring

import (
	"time"

	"github.com/stemsi/exstem-client/internal/model"
)

// Score synthesizes a SubmissionResult from an attempt snapshot.
// Percentage is always within [0,100].
func Score(st model.AttemptState, submittedAt time.Time) model.SubmissionResult {
	res := model.SubmissionResult{
		AttemptID:      st.AttemptID,
		TotalQuestions: len(st.Questions),
		SubmittedAt:    submittedAt,
		Source:         model.ResultSourceLocal,
	}

	for i, q := range st.Questions {
		answer, ok := st.Answers[i]
		if !ok || answer == "" {
			continue
		}
		res.Attempted++

		if q.Kind != model.QuestionKindFillInBlank {
			continue // not gradable offline
		}
		if MatchesAccepted(answer, q.AcceptedAnswers) {
			res.Correct++
		} else {
			res.Wrong++
		}
	}

	res.Skipped = res.TotalQuestions - res.Attempted
	if res.TotalQuestions > 0 {
		res.Percentage = float64(res.Correct) / float64(res.TotalQuestions) * 100
	}

	return res
}

// MatchesAccepted reports whether the learner's text matches any accepted
// answer after normalization on both sides.
func MatchesAccepted(answer string, accepted []string) bool {
	norm := NormalizeAnswer(answer)
	if norm == "" {
		return false
	}
	for _, a := range accepted {
		if NormalizeAnswer(a) == norm {
			return true
		}
	}
	return false
}
