package attempt

import "time"

// Clock tracks the attempt countdown and per-question elapsed time. All
// figures derive from wall-clock deltas against a fixed deadline, never from
// tick counts, so a suspended timer cannot drift or double-count.
type Clock struct {
	now func() time.Time

	startedAt   time.Time
	deadline    time.Time
	total       time.Duration
	activeIdx   int
	activeSince time.Time
	spent       map[int]time.Duration
	started     bool
}

// NewClock returns an unstarted clock.
func NewClock() *Clock {
	return &Clock{now: time.Now, spent: make(map[int]time.Duration)}
}

// Start begins the countdown with the given budget, focusing startIndex.
func (c *Clock) Start(totalSeconds, startIndex int) {
	n := c.now()
	c.total = time.Duration(totalSeconds) * time.Second
	c.startedAt = n
	c.deadline = n.Add(c.total)
	c.activeIdx = startIndex
	c.activeSince = n
	c.started = true
}

// Remaining returns the whole seconds left, clamped at zero.
func (c *Clock) Remaining() int {
	if !c.started {
		return 0
	}
	left := c.deadline.Sub(c.now())
	if left < 0 {
		left = 0
	}
	return int(left / time.Second)
}

// Expired reports whether the deadline has passed.
func (c *Clock) Expired() bool {
	return c.started && !c.now().Before(c.deadline)
}

// SwitchActiveQuestion flushes the elapsed time of the currently focused
// question, then moves focus to newIndex.
func (c *Clock) SwitchActiveQuestion(newIndex int) {
	c.Flush()
	c.activeIdx = newIndex
}

// Flush credits wall time since the last flush to the active question.
// Called on every focus change and once more at submission so the final
// question's time is not lost.
func (c *Clock) Flush() {
	if !c.started {
		return
	}
	n := c.now()
	// Time past the deadline belongs to nobody.
	if n.After(c.deadline) {
		n = c.deadline
	}
	if n.After(c.activeSince) {
		c.spent[c.activeIdx] += n.Sub(c.activeSince)
	}
	c.activeSince = c.now()
}

// SpentSeconds returns per-question accumulated whole seconds.
func (c *Clock) SpentSeconds() map[int]int {
	out := make(map[int]int, len(c.spent))
	for idx, d := range c.spent {
		out[idx] = int(d.Round(time.Second) / time.Second)
	}
	return out
}
