// Package submit builds the wire submission payload from an attempt snapshot
// and commits it to the grading service, degrading to local scoring when the
// remote call fails. The learner always reaches a completion screen.
package submit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-client/internal/model"
	"github.com/stemsi/exstem-client/internal/scoring"
	"github.com/stemsi/exstem-client/internal/validator"
)

// API is the slice of the exam service client the orchestrator needs.
type API interface {
	SubmitAttempt(ctx context.Context, attemptID string, req model.SubmitRequest) (*model.SubmissionResult, error)
}

// Orchestrator commits attempts.
type Orchestrator struct {
	api    API
	userID int
	log    zerolog.Logger
	now    func() time.Time
}

// New creates an Orchestrator. userID comes from the bearer token claims and
// rides in the submit payload.
func New(api API, userID int, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		api:    api,
		userID: userID,
		log:    log.With().Str("component", "submit_orchestrator").Logger(),
		now:    time.Now,
	}
}

// Submit commits the attempt. Any remote failure — transport error, timeout,
// server error, even a client-side payload bug — is absorbed by the local
// fallback scorer so the result is never an error. The two result shapes are
// identical; only Source tells them apart.
func (o *Orchestrator) Submit(ctx context.Context, st model.AttemptState) model.SubmissionResult {
	req := BuildRequest(st, o.userID)

	if fields := validator.Struct(&req); fields != nil {
		o.log.Warn().
			Str("attempt_id", st.AttemptID).
			Interface("fields", fields).
			Msg("Submit payload failed validation, scoring locally")
		return o.fallback(st)
	}

	res, err := o.api.SubmitAttempt(ctx, st.AttemptID, req)
	if err != nil {
		o.log.Warn().Err(err).
			Str("attempt_id", st.AttemptID).
			Msg("Remote submit failed, scoring locally")
		return o.fallback(st)
	}

	o.log.Info().
		Str("attempt_id", st.AttemptID).
		Float64("percentage", res.Percentage).
		Msg("Remote submit accepted")
	return *res
}

func (o *Orchestrator) fallback(st model.AttemptState) model.SubmissionResult {
	return scoring.Score(st, o.now())
}

// BuildRequest maps the ledger's answers into the wire shape appropriate to
// each question kind. Unsupported questions are omitted entirely.
func BuildRequest(st model.AttemptState, userID int) model.SubmitRequest {
	req := model.SubmitRequest{
		UserID:      userID,
		TestID:      st.TestID,
		DurationSec: st.TotalSeconds - st.RemainingSeconds,
		Answers:     make([]model.WireAnswer, 0, len(st.Questions)),
	}

	for i, q := range st.Questions {
		if q.Kind == model.QuestionKindUnsupported {
			continue
		}
		answer, ok := st.Answers[i]
		if !ok {
			continue
		}

		wa := model.WireAnswer{
			QuestionID:   q.ID,
			TimeSpentSec: st.TimeSpentSeconds[i],
			Flagged:      st.Flags[i],
		}
		switch q.Kind {
		case model.QuestionKindMultipleChoice:
			wa.SelectedOption = answer
		case model.QuestionKindFillInBlank:
			wa.AnswerText = answer
		}
		req.Answers = append(req.Answers, wa)
	}

	return req
}
