package attempt

import (
	"testing"
	"time"
)

// fakeNow returns a controllable clock source and its advance function.
func fakeNow(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func TestClock_RemainingFromDeadline(t *testing.T) {
	now, advance := fakeNow(time.Unix(1_700_000_000, 0))
	c := NewClock()
	c.now = now

	c.Start(600, 0)
	if got := c.Remaining(); got != 600 {
		t.Fatalf("Remaining = %d, want 600", got)
	}

	advance(60 * time.Second)
	if got := c.Remaining(); got != 540 {
		t.Errorf("Remaining = %d, want 540", got)
	}

	// Past the deadline: clamps at zero, never negative.
	advance(600 * time.Second)
	if got := c.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !c.Expired() {
		t.Error("Expired = false after deadline")
	}
}

// Per-question time must sum to wall-clock elapsed regardless of navigation
// order or repeat visits.
func TestClock_TimeAccountingAcrossNavigation(t *testing.T) {
	now, advance := fakeNow(time.Unix(1_700_000_000, 0))
	c := NewClock()
	c.now = now

	c.Start(600, 0)

	advance(10 * time.Second) // 10s on q0
	c.SwitchActiveQuestion(2)
	advance(25 * time.Second) // 25s on q2
	c.SwitchActiveQuestion(0)
	advance(5 * time.Second) // 5 more on q0
	c.SwitchActiveQuestion(1)
	advance(20 * time.Second) // 20s on q1
	c.Flush()

	spent := c.SpentSeconds()
	if spent[0] != 15 {
		t.Errorf("spent[0] = %d, want 15", spent[0])
	}
	if spent[1] != 20 {
		t.Errorf("spent[1] = %d, want 20", spent[1])
	}
	if spent[2] != 25 {
		t.Errorf("spent[2] = %d, want 25", spent[2])
	}

	sum := 0
	for _, s := range spent {
		sum += s
	}
	if sum != 60 {
		t.Errorf("sum(spent) = %d, want 60 (wall-clock elapsed)", sum)
	}
}

func TestClock_RepeatedFlushDoesNotDoubleCount(t *testing.T) {
	now, advance := fakeNow(time.Unix(1_700_000_000, 0))
	c := NewClock()
	c.now = now

	c.Start(600, 0)
	advance(7 * time.Second)
	c.Flush()
	c.Flush()
	c.Flush()

	if got := c.SpentSeconds()[0]; got != 7 {
		t.Errorf("spent[0] = %d, want 7 after repeated flushes", got)
	}
}

// Time past the deadline belongs to nobody: flushing after expiry credits
// only up to the deadline.
func TestClock_NoCreditPastDeadline(t *testing.T) {
	now, advance := fakeNow(time.Unix(1_700_000_000, 0))
	c := NewClock()
	c.now = now

	c.Start(30, 0)
	advance(45 * time.Second)
	c.Flush()

	if got := c.SpentSeconds()[0]; got != 30 {
		t.Errorf("spent[0] = %d, want 30 (clamped at deadline)", got)
	}
}

func TestClock_UnstartedIsInert(t *testing.T) {
	c := NewClock()
	if c.Remaining() != 0 {
		t.Error("unstarted Remaining != 0")
	}
	if c.Expired() {
		t.Error("unstarted clock reports expired")
	}
	c.Flush() // must not panic
	if len(c.SpentSeconds()) != 0 {
		t.Error("unstarted clock accumulated time")
	}
}
