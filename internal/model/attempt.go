package model

// AttemptPhase enumerates the attempt session states.
type AttemptPhase string

const (
	PhaseLoading    AttemptPhase = "LOADING"
	PhaseActive     AttemptPhase = "ACTIVE"
	PhaseSubmitting AttemptPhase = "SUBMITTING"
	PhaseSubmitted  AttemptPhase = "SUBMITTED"
	PhaseReviewing  AttemptPhase = "REVIEWING"
	PhaseFailed     AttemptPhase = "FAILED"
)

// AttemptState is the full state of one timed pass through a test. It is
// owned exclusively by the session controller; other components receive
// copies via Clone and never mutate it in place.
type AttemptState struct {
	TestID           string         `json:"test_id"`
	AttemptID        string         `json:"attempt_id"`
	Title            string         `json:"title"`
	Questions        []Question     `json:"questions"`
	Answers          map[int]string `json:"answers"`
	Flags            map[int]bool   `json:"flags"`
	TimeSpentSeconds map[int]int    `json:"time_spent_seconds"`
	CurrentIndex     int            `json:"current_index"`
	RemainingSeconds int            `json:"remaining_seconds"`
	TotalSeconds     int            `json:"total_seconds"`
	Phase            AttemptPhase   `json:"phase"`
}

// Clone returns a deep copy safe to hand to submission and review code while
// the original keeps changing under the controller's lock.
func (s *AttemptState) Clone() AttemptState {
	out := *s

	out.Questions = make([]Question, len(s.Questions))
	copy(out.Questions, s.Questions)

	out.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	out.Flags = make(map[int]bool, len(s.Flags))
	for k, v := range s.Flags {
		out.Flags[k] = v
	}
	out.TimeSpentSeconds = make(map[int]int, len(s.TimeSpentSeconds))
	for k, v := range s.TimeSpentSeconds {
		out.TimeSpentSeconds[k] = v
	}
	return out
}
