package reminder

import "time"

// TimeLayout is the wire format for due timestamps, both in user dialogue
// and in persisted snapshots (single implicit local timezone).
const (
	DateLayout = "02.01.2006"
	ClockLayout = "15:04"
	TimeLayout = DateLayout + " " + ClockLayout
)

// Reminder is a single scheduled notification. The id is unique across all
// owners and immutable once created.
type Reminder struct {
	ID    uint64
	DueAt time.Time
	Text  string
}

// Due pairs a reminder with its owner for delivery scans.
type Due struct {
	Owner    int64
	Reminder Reminder
}

// Key identifies a reminder for removal.
type Key struct {
	Owner int64
	ID    uint64
}

// Clock supplies current time. The delivery scheduler and the dialogue
// engine take it as a dependency so due-time checks are deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
