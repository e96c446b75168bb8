package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reminders (
	id       INTEGER PRIMARY KEY,
	owner    INTEGER NOT NULL,
	due_at   TEXT    NOT NULL,
	text     TEXT    NOT NULL,
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS reminders_owner ON reminders(owner, position);
`

type sqlitePersister struct {
	db *sql.DB
}

func openSQLitePersister(cfg StorageConfig) (Persister, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqlitePersister{db: db}, nil
}

func (p *sqlitePersister) Load() (Snapshot, error) {
	rows, err := p.db.Query(`SELECT id, owner, due_at, text FROM reminders ORDER BY owner, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var (
			id    uint64
			owner int64
			dueAt string
			text  string
		)
		if err := rows.Scan(&id, &owner, &dueAt, &text); err != nil {
			return nil, err
		}
		due, err := time.ParseInLocation(TimeLayout, dueAt, time.Local)
		if err != nil {
			return nil, fmt.Errorf("reminder %d: bad due_at %q: %w", id, dueAt, err)
		}
		snap[owner] = append(snap[owner], Reminder{ID: id, DueAt: due, Text: text})
	}
	return snap, rows.Err()
}

// Save replaces the table contents in one transaction, preserving the
// whole-snapshot semantics of the file driver.
func (p *sqlitePersister) Save(s Snapshot) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM reminders`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO reminders(id, owner, due_at, text, position) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for owner, rs := range s {
		for pos, r := range rs {
			if _, err := stmt.Exec(r.ID, owner, r.DueAt.Format(TimeLayout), r.Text, pos); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (p *sqlitePersister) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
