// Package review loads the post-submission review, preferring the
// authoritative server records and reconstructing an approximation from the
// attempt snapshot when the service is unreachable.
package review

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-client/internal/model"
	"github.com/stemsi/exstem-client/internal/scoring"
)

// API is the slice of the exam service client the reconciler needs.
type API interface {
	FetchReview(ctx context.Context, attemptID string) ([]model.ReviewEntry, error)
}

// Reconciler produces per-question review records.
type Reconciler struct {
	api API
	log zerolog.Logger
}

// New creates a Reconciler.
func New(api API, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		api: api,
		log: log.With().Str("component", "review_reconciler").Logger(),
	}
}

// Load fetches the review. The boolean reports provenance: true means
// server-authoritative records; false means the local reconstruction below.
// Retries are caller-triggered (call Load again), never automatic — review
// is not time-critical.
func (r *Reconciler) Load(ctx context.Context, st model.AttemptState) ([]model.ReviewRecord, bool) {
	entries, err := r.api.FetchReview(ctx, st.AttemptID)
	if err != nil {
		r.log.Warn().Err(err).
			Str("attempt_id", st.AttemptID).
			Msg("Remote review unavailable, reconstructing locally")
		return Reconstruct(st), false
	}

	records := make([]model.ReviewRecord, len(entries))
	for i, e := range entries {
		correct := e.IsCorrect
		records[i] = model.ReviewRecord{
			QuestionID:    e.QuestionID,
			UserAnswer:    e.UserAnswer,
			Correct:       &correct,
			CorrectAnswer: e.CorrectAnswer,
			PointsAwarded: e.PointsAwarded,
			TimeSpentSec:  e.TimeSpentSec,
			Provenance:    model.ReviewProvenanceRemote,
		}
	}
	return records, true
}

// Reconstruct builds an approximate review from only the data the client
// already holds. Fill-in-blank correctness is computable locally from the
// accepted-answer set; multiple-choice correctness is NOT knowable offline
// and stays nil — rendered as "not gradable offline", never guessed.
func Reconstruct(st model.AttemptState) []model.ReviewRecord {
	records := make([]model.ReviewRecord, len(st.Questions))
	for i, q := range st.Questions {
		rec := model.ReviewRecord{
			QuestionID:   q.ID,
			UserAnswer:   st.Answers[i],
			TimeSpentSec: st.TimeSpentSeconds[i],
			Provenance:   model.ReviewProvenanceLocal,
		}

		if q.Kind == model.QuestionKindFillInBlank && rec.UserAnswer != "" {
			correct := scoring.MatchesAccepted(rec.UserAnswer, q.AcceptedAnswers)
			rec.Correct = &correct
			if correct {
				rec.PointsAwarded = 1
			}
			// The accepted set is client-held ground truth; disclosing it
			// after submission mirrors what the server would do.
			if len(q.AcceptedAnswers) > 0 {
				rec.CorrectAnswer = q.AcceptedAnswers[0]
			}
		}

		records[i] = rec
	}
	return records
}
