package config

// Config is the root configuration document.
//
// The file may be YAML or JSON; YAML is coerced to JSON so both formats go
// through the same strict decoder (unknown keys are rejected).
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`

	// Reminders controls the delivery scheduler.
	Reminders RemindersConfig `json:"reminders"`

	// Storage selects the reminder snapshot backend.
	Storage StorageConfig `json:"storage"`

	// Content points at the FAQ content document (categories, questions,
	// HR contacts).
	Content ContentConfig `json:"content"`

	Health *HealthConfig `json:"health,omitempty"`
	Digest *DigestConfig `json:"digest,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// AllowedUserIDs is the access allowlist. Empty means nobody gets in.
	AllowedUserIDs []int64 `json:"allowed_user_ids"`
	// AdminUserIDs gates the stats surfaces and receives anonymous feedback.
	AdminUserIDs []int64 `json:"admin_user_ids"`

	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RemindersConfig controls the background delivery loop.
//
// All durations are Go duration strings. Defaults when omitted:
//   - poll_interval: "60s"
//   - start_delay:   "5s"
type RemindersConfig struct {
	PollInterval string `json:"poll_interval,omitempty"`
	StartDelay   string `json:"start_delay,omitempty"`
}

// StorageConfig selects the reminder snapshot backend.
//
// Driver values:
//   - "file":   whole-document JSON snapshot, atomic rename on write
//   - "sqlite": SQLite database file
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type ContentConfig struct {
	Path string `json:"path"`
}

// HealthConfig controls the optional HTTP health endpoint.
type HealthConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: ":10000"
}

// DigestConfig controls the cron-scheduled admin stats digest.
//
// Schedule is a standard 5-field cron expression, e.g. "0 9 * * 1"
// (Mondays 09:00).
type DigestConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}
