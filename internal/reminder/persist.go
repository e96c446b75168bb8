package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Snapshot is the durable representation of the whole store: owner id to
// ordered reminders. Owners with no reminders are never present.
type Snapshot map[int64][]Reminder

// Persister writes and reads whole-store snapshots. Save must be atomic:
// a reader after a crash sees either the previous or the new snapshot,
// never a mix.
type Persister interface {
	Load() (Snapshot, error)
	Save(s Snapshot) error
	Close() error
}

// StorageConfig selects the snapshot backend.
//
// Driver values:
//   - "file": single JSON document, written to a temp file then renamed
//   - "sqlite": SQLite database file
type StorageConfig struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// OpenPersister initializes the configured snapshot backend.
func OpenPersister(cfg StorageConfig) (Persister, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFilePersister(cfg.Path)
	case "sqlite", "sqlite3":
		return openSQLitePersister(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// reminderRecord is the persisted form of one reminder. The due timestamp is
// formatted as DD.MM.YYYY HH:MM (24h, local zone) to round-trip exactly.
type reminderRecord struct {
	ID    uint64 `json:"id"`
	DueAt string `json:"due_at"`
	Text  string `json:"text"`
}

type filePersister struct {
	path string
}

func openFilePersister(path string) (Persister, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &filePersister{path: path}, nil
}

func (p *filePersister) Load() (Snapshot, error) {
	b, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return nil, err
	}

	var raw map[int64][]reminderRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", p.path, err)
	}

	snap := make(Snapshot, len(raw))
	for owner, recs := range raw {
		if len(recs) == 0 {
			continue
		}
		rs := make([]Reminder, 0, len(recs))
		for _, rec := range recs {
			r, err := recordToReminder(rec)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s, owner %d: %w", p.path, owner, err)
			}
			rs = append(rs, r)
		}
		snap[owner] = rs
	}
	return snap, nil
}

func (p *filePersister) Save(s Snapshot) error {
	raw := make(map[int64][]reminderRecord, len(s))
	for owner, rs := range s {
		if len(rs) == 0 {
			continue
		}
		recs := make([]reminderRecord, 0, len(rs))
		for _, r := range rs {
			recs = append(recs, reminderToRecord(r))
		}
		raw[owner] = recs
	}

	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	// Write whole, then rename: a crash mid-write leaves the old snapshot intact.
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func (p *filePersister) Close() error { return nil }

func reminderToRecord(r Reminder) reminderRecord {
	return reminderRecord{ID: r.ID, DueAt: r.DueAt.Format(TimeLayout), Text: r.Text}
}

func recordToReminder(rec reminderRecord) (Reminder, error) {
	due, err := time.ParseInLocation(TimeLayout, rec.DueAt, time.Local)
	if err != nil {
		return Reminder{}, fmt.Errorf("reminder %d: bad due_at %q: %w", rec.ID, rec.DueAt, err)
	}
	return Reminder{ID: rec.ID, DueAt: due, Text: rec.Text}, nil
}
