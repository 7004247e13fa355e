package search

import "time"

// Debounce delays used by the front ends.
const (
	InputDelay = 300 * time.Millisecond // search box to suggestions
	URLDelay   = 500 * time.Millisecond // store to location
)

// DebounceState is the state of a Debouncer.
type DebounceState int

const (
	Idle DebounceState = iota
	Pending
)

func (s DebounceState) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Debouncer is a two-state machine: idle, or pending with a value and a
// deadline. Every Write resets the deadline; Expire emits the last value
// once the deadline has passed. It is not safe for concurrent use.
type Debouncer struct {
	delay    time.Duration
	state    DebounceState
	value    string
	deadline time.Time
}

// NewDebouncer creates an idle Debouncer.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Write enters (or stays in) pending with value and returns the new deadline.
func (d *Debouncer) Write(value string, now time.Time) time.Time {
	d.state = Pending
	d.value = value
	d.deadline = now.Add(d.delay)
	return d.deadline
}

// Expire returns the pending value and goes idle if the deadline has passed.
func (d *Debouncer) Expire(now time.Time) (string, bool) {
	if d.state != Pending || now.Before(d.deadline) {
		return "", false
	}
	v := d.value
	d.Cancel()
	return v, true
}

// Cancel drops any pending value.
func (d *Debouncer) Cancel() {
	d.state = Idle
	d.value = ""
	d.deadline = time.Time{}
}

// State returns the current state.
func (d *Debouncer) State() DebounceState { return d.state }

// Deadline returns the pending deadline, or the zero time when idle.
func (d *Debouncer) Deadline() time.Time { return d.deadline }

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }
