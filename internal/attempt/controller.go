package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-client/internal/model"
	"github.com/stemsi/exstem-client/internal/normalize"
)

// Controller surface errors.
var (
	ErrNotActive           = errors.New("attempt is not active")
	ErrEmptyPaper          = errors.New("test has no questions")
	ErrSubmissionInFlight  = errors.New("a submission is already in flight")
	ErrIndexOutOfRange     = errors.New("question index out of range")
	ErrUnsupportedQuestion = errors.New("question kind does not accept answers")
	ErrNotSubmitted        = errors.New("attempt has not been submitted")
	ErrNotReviewing        = errors.New("attempt is not in review")
)

// Catalog fetches test metadata plus raw questions in one call.
type Catalog interface {
	FetchPaper(ctx context.Context, testID string) (*model.TestPaper, error)
}

// Submitter commits an attempt. It never fails outward: a transport or server
// error degrades to a locally scored result.
type Submitter interface {
	Submit(ctx context.Context, st model.AttemptState) model.SubmissionResult
}

// Reviewer loads the post-submission review. The boolean reports whether the
// records are server-authoritative; false means a locally reconstructed
// approximation, and the caller may retry by calling again.
type Reviewer interface {
	Load(ctx context.Context, st model.AttemptState) ([]model.ReviewRecord, bool)
}

// Recorder persists the finished attempt locally. Optional; failures are
// logged and never affect the attempt.
type Recorder interface {
	RecordResult(ctx context.Context, st model.AttemptState, res model.SubmissionResult) error
}

// Controller is the attempt session state machine. It owns the AttemptState
// exclusively; the clock and ledger operate on slices of it under the
// controller's lock. The lock exists because the ticker goroutine races
// user-driven calls — in particular, clock expiry and a manual submit must
// collapse into exactly one submission.
type Controller struct {
	mu     sync.Mutex
	st     model.AttemptState
	clock  *Clock
	ledger *Ledger

	catalog   Catalog
	submitter Submitter
	reviewer  Reviewer
	recorder  Recorder
	log       zerolog.Logger

	tickInterval time.Duration

	result              *model.SubmissionResult
	review              []model.ReviewRecord
	reviewAuthoritative bool
}

// Options bundles controller dependencies.
type Options struct {
	Catalog   Catalog
	Submitter Submitter
	Reviewer  Reviewer
	Recorder  Recorder // optional
	Logger    zerolog.Logger
	// TickInterval defaults to one second.
	TickInterval time.Duration
}

// NewController creates a controller in the Loading phase with a fresh
// client-generated attempt id.
func NewController(opts Options) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &Controller{
		st: model.AttemptState{
			AttemptID: uuid.New().String(),
			Phase:     model.PhaseLoading,
		},
		clock:        NewClock(),
		catalog:      opts.Catalog,
		submitter:    opts.Submitter,
		reviewer:     opts.Reviewer,
		recorder:     opts.Recorder,
		log:          opts.Logger.With().Str("component", "attempt_controller").Logger(),
		tickInterval: opts.TickInterval,
	}
}

// Start fetches and normalizes the test, starts the clock, and transitions
// Loading → Active. A catalog error is the only failure that can keep the
// learner out of the attempt: it transitions to Failed, terminally.
// The countdown ticker runs until ctx is cancelled or the attempt leaves
// the Active phase.
func (c *Controller) Start(ctx context.Context, testID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Phase != model.PhaseLoading {
		return fmt.Errorf("start from phase %s: %w", c.st.Phase, ErrNotActive)
	}

	paper, err := c.catalog.FetchPaper(ctx, testID)
	if err != nil {
		c.st.Phase = model.PhaseFailed
		c.log.Error().Err(err).Str("test_id", testID).Msg("Catalog fetch failed")
		return fmt.Errorf("load test %s: %w", testID, err)
	}

	questions, degraded := normalize.All(paper.Questions)
	if len(questions) == 0 {
		// An attempt cannot start without questions; an empty paper is a
		// catalog failure, not a degenerate Active state.
		c.st.Phase = model.PhaseFailed
		c.log.Error().Str("test_id", testID).Msg("Catalog returned an empty paper")
		return fmt.Errorf("load test %s: %w", testID, ErrEmptyPaper)
	}
	if degraded > 0 {
		c.log.Warn().Int("count", degraded).Msg("Questions degraded to unsupported")
	}

	c.st.TestID = paper.TestID
	if c.st.TestID == "" {
		c.st.TestID = testID
	}
	c.st.Title = paper.Title
	c.st.Questions = questions
	c.st.Answers = make(map[int]string)
	c.st.Flags = make(map[int]bool)
	c.st.TimeSpentSeconds = make(map[int]int)
	c.st.CurrentIndex = 0
	c.st.TotalSeconds = paper.DurationSeconds
	c.st.RemainingSeconds = paper.DurationSeconds
	c.ledger = NewLedger(&c.st)

	c.clock.Start(paper.DurationSeconds, 0)
	c.st.Phase = model.PhaseActive

	c.log.Info().
		Str("attempt_id", c.st.AttemptID).
		Str("test_id", c.st.TestID).
		Int("questions", len(questions)).
		Int("total_seconds", c.st.TotalSeconds).
		Msg("Attempt active")

	go c.runTicker(ctx)
	return nil
}

// runTicker drives the countdown. Expiry is not a suggestion: when the
// deadline passes, submission is forced regardless of unanswered questions.
func (c *Controller) runTicker(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := c.tick(ctx); done {
				return
			}
		}
	}
}

// tick refreshes the remaining time and forces submission on expiry.
// Returns true once the attempt has left the Active phase.
func (c *Controller) tick(ctx context.Context) bool {
	c.mu.Lock()
	if c.st.Phase != model.PhaseActive {
		phase := c.st.Phase
		c.mu.Unlock()
		return phase != model.PhaseLoading
	}

	c.st.RemainingSeconds = c.clock.Remaining()
	if !c.clock.Expired() {
		c.mu.Unlock()
		return false
	}

	c.log.Info().Str("attempt_id", c.st.AttemptID).Msg("Time expired, forcing submission")
	snap := c.beginSubmissionLocked()
	c.mu.Unlock()

	c.finishSubmission(ctx, snap)
	return true
}

// beginSubmissionLocked flushes the clock into the state and transitions
// Active → Submitting. Caller must hold the lock and have checked the phase.
func (c *Controller) beginSubmissionLocked() model.AttemptState {
	c.clock.Flush()
	c.st.TimeSpentSeconds = c.clock.SpentSeconds()
	c.st.RemainingSeconds = c.clock.Remaining()
	c.st.Phase = model.PhaseSubmitting
	return c.st.Clone()
}

// finishSubmission runs the orchestrated submit outside the lock (it does
// network I/O) and attaches the result. The submitter's fallback guarantees
// Submitting → Submitted always happens.
func (c *Controller) finishSubmission(ctx context.Context, snap model.AttemptState) {
	res := c.submitter.Submit(ctx, snap)

	c.mu.Lock()
	c.result = &res
	c.st.Phase = model.PhaseSubmitted
	c.mu.Unlock()

	c.log.Info().
		Str("attempt_id", snap.AttemptID).
		Str("source", string(res.Source)).
		Float64("percentage", res.Percentage).
		Msg("Attempt submitted")

	if c.recorder != nil {
		if err := c.recorder.RecordResult(ctx, snap, res); err != nil {
			c.log.Warn().Err(err).Msg("Failed to record attempt history")
		}
	}
}

// Submit commits the attempt manually. Safe to call concurrently with clock
// expiry: only the first trigger submits. Calling after submission returns
// the stored result without re-submitting (Submitted is a one-way gate).
func (c *Controller) Submit(ctx context.Context) (model.SubmissionResult, error) {
	c.mu.Lock()
	switch c.st.Phase {
	case model.PhaseActive:
		// proceed below
	case model.PhaseSubmitting:
		c.mu.Unlock()
		return model.SubmissionResult{}, ErrSubmissionInFlight
	case model.PhaseSubmitted, model.PhaseReviewing:
		res := *c.result
		c.mu.Unlock()
		return res, nil
	default:
		phase := c.st.Phase
		c.mu.Unlock()
		return model.SubmissionResult{}, fmt.Errorf("submit from phase %s: %w", phase, ErrNotActive)
	}

	snap := c.beginSubmissionLocked()
	c.mu.Unlock()

	c.finishSubmission(ctx, snap)

	c.mu.Lock()
	res := *c.result
	c.mu.Unlock()
	return res, nil
}

// Navigate moves focus to the given question index, flushing elapsed time
// into the previously focused question.
func (c *Controller) Navigate(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Phase != model.PhaseActive {
		return ErrNotActive
	}
	if index < 0 || index >= len(c.st.Questions) {
		return fmt.Errorf("navigate to %d: %w", index, ErrIndexOutOfRange)
	}

	c.clock.SwitchActiveQuestion(index)
	c.st.TimeSpentSeconds = c.clock.SpentSeconds()
	c.st.CurrentIndex = index
	return nil
}

// SetAnswer records an answer for the currently focused question.
func (c *Controller) SetAnswer(answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Phase != model.PhaseActive {
		return ErrNotActive
	}
	if !c.st.Questions[c.st.CurrentIndex].Answerable() {
		return ErrUnsupportedQuestion
	}

	c.ledger.SetAnswer(c.st.CurrentIndex, answer)
	return nil
}

// ToggleFlag flips the review flag on the currently focused question.
func (c *Controller) ToggleFlag() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Phase != model.PhaseActive {
		return ErrNotActive
	}
	c.ledger.ToggleFlag(c.st.CurrentIndex)
	return nil
}

// RequestReview transitions Submitted → Reviewing and loads the review,
// preferring the authoritative server records. When the remote load fails the
// returned records are the local approximation and authoritative is false;
// calling RequestReview again is the explicit retry affordance.
func (c *Controller) RequestReview(ctx context.Context) ([]model.ReviewRecord, bool, error) {
	c.mu.Lock()
	if c.st.Phase != model.PhaseSubmitted && c.st.Phase != model.PhaseReviewing {
		phase := c.st.Phase
		c.mu.Unlock()
		return nil, false, fmt.Errorf("review from phase %s: %w", phase, ErrNotSubmitted)
	}

	// Already have the authoritative version; no need to refetch.
	if c.review != nil && c.reviewAuthoritative {
		c.st.Phase = model.PhaseReviewing
		records := c.review
		c.mu.Unlock()
		return records, true, nil
	}

	c.st.Phase = model.PhaseReviewing
	snap := c.st.Clone()
	c.mu.Unlock()

	records, authoritative := c.reviewer.Load(ctx, snap)

	c.mu.Lock()
	c.review = records
	c.reviewAuthoritative = authoritative
	c.mu.Unlock()

	return records, authoritative, nil
}

// BackFromReview transitions Reviewing → Submitted. Review is non-destructive
// and re-enterable any number of times.
func (c *Controller) BackFromReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Phase != model.PhaseReviewing {
		return ErrNotReviewing
	}
	c.st.Phase = model.PhaseSubmitted
	return nil
}

// Phase returns the current attempt phase.
func (c *Controller) Phase() model.AttemptPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Phase
}

// CurrentQuestion returns the focused question and its index.
func (c *Controller) CurrentQuestion() (model.Question, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.st.Questions) == 0 {
		return model.Question{}, 0
	}
	return c.st.Questions[c.st.CurrentIndex], c.st.CurrentIndex
}

// Progress returns answered and total question counts.
func (c *Controller) Progress() (answered, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return 0, 0
	}
	return c.ledger.AnsweredCount(), len(c.st.Questions)
}

// RemainingSeconds returns the live countdown value.
func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.Phase == model.PhaseActive {
		return c.clock.Remaining()
	}
	return c.st.RemainingSeconds
}

// Result returns the submission result once available.
func (c *Controller) Result() (model.SubmissionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return model.SubmissionResult{}, false
	}
	return *c.result, true
}

// Snapshot returns a deep copy of the attempt state for display.
func (c *Controller) Snapshot() model.AttemptState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Clone()
}
