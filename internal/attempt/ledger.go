package attempt

import (
	"fmt"
	"sort"

	"github.com/stemsi/exstem-client/internal/model"
)

// Ledger is the mutable in-memory record of the learner's answers and flags.
// It is a view over the controller-owned attempt maps; it performs no I/O.
type Ledger struct {
	questions []model.Question
	answers   map[int]string
	flags     map[int]bool
}

// NewLedger wraps the attempt's answer and flag maps. The maps are shared,
// not copied: ledger mutations are attempt-state mutations.
func NewLedger(st *model.AttemptState) *Ledger {
	return &Ledger{
		questions: st.Questions,
		answers:   st.Answers,
		flags:     st.Flags,
	}
}

// SetAnswer records the learner's answer for a question index. For multiple
// choice the answer is a choice id; for fill-in-blank it is free text.
// Addressing an out-of-range index is a programming error and panics.
func (l *Ledger) SetAnswer(index int, answer string) {
	l.mustBeInRange(index)
	if answer == "" {
		delete(l.answers, index)
		return
	}
	l.answers[index] = answer
}

// ToggleFlag flips the review flag for a question index.
func (l *Ledger) ToggleFlag(index int) {
	l.mustBeInRange(index)
	if l.flags[index] {
		delete(l.flags, index)
		return
	}
	l.flags[index] = true
}

// Answer returns the recorded answer and whether one exists.
func (l *Ledger) Answer(index int) (string, bool) {
	l.mustBeInRange(index)
	a, ok := l.answers[index]
	return a, ok
}

// Flagged reports whether the question is flagged for review.
func (l *Ledger) Flagged(index int) bool {
	l.mustBeInRange(index)
	return l.flags[index]
}

// AnsweredCount returns how many questions have a recorded answer.
func (l *Ledger) AnsweredCount() int {
	return len(l.answers)
}

// UnansweredIndices returns the sorted indices without a recorded answer.
func (l *Ledger) UnansweredIndices() []int {
	var out []int
	for i := range l.questions {
		if _, ok := l.answers[i]; !ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func (l *Ledger) mustBeInRange(index int) {
	if index < 0 || index >= len(l.questions) {
		panic(fmt.Sprintf("attempt: question index %d out of range [0,%d)", index, len(l.questions)))
	}
}
