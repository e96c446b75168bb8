package dialog

// Stage is the position of one user inside the reminder dialogue.
// Illegal combinations (e.g. a collected time without a date) are
// unrepresentable: fields are only filled by forward transitions.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingDate
	StageAwaitingTime
	StageAwaitingText
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitingDate:
		return "awaiting_date"
	case StageAwaitingTime:
		return "awaiting_time"
	case StageAwaitingText:
		return "awaiting_text"
	default:
		return "unknown"
	}
}

// session is the transient per-user dialogue state. Never persisted: a
// restart mid-dialogue loses only uncommitted input.
type session struct {
	stage Stage

	date      string // validated, DD.MM.YYYY
	timeOfDay string // validated, HH:MM

	// preset, when non-empty, is used as the reminder body and the
	// AwaitingText stage is skipped entirely.
	preset string
}
