package reminder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFilePersisterSnapshotFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reminders.json")
	pers, err := OpenPersister(StorageConfig{Driver: "file", Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pers.Close()

	due := time.Date(2030, 12, 31, 23, 59, 0, 0, time.Local)
	snap := Snapshot{42: {{ID: 7, DueAt: due, Text: "с новым годом"}}}
	if err := pers.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The on-disk document keys owners as strings and stores due_at in
	// the DD.MM.YYYY HH:MM layout.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	recs, ok := doc["42"]
	if !ok || len(recs) != 1 {
		t.Fatalf("doc = %v", doc)
	}
	if recs[0]["due_at"] != "31.12.2030 23:59" {
		t.Fatalf("due_at = %v", recs[0]["due_at"])
	}
	if recs[0]["text"] != "с новым годом" {
		t.Fatalf("text = %v", recs[0]["text"])
	}

	got, err := pers.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r := got[42][0]; r.ID != 7 || !r.DueAt.Equal(due) {
		t.Fatalf("loaded = %+v", r)
	}
}

func TestFilePersisterMissingFile(t *testing.T) {
	t.Parallel()

	pers, err := OpenPersister(StorageConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "none.json")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pers.Close()

	snap, err := pers.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("snapshot = %v, want empty", snap)
	}
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	t.Parallel()

	pers, err := OpenPersister(StorageConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "reminders.db"),
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pers.Close()

	due := time.Date(2030, 3, 8, 9, 0, 0, 0, time.Local)
	snap := Snapshot{
		1: {{ID: 1, DueAt: due, Text: "поздравить коллег"}, {ID: 3, DueAt: due.Add(time.Hour), Text: "второе"}},
		2: {{ID: 2, DueAt: due, Text: "другой владелец"}},
	}
	if err := pers.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := pers.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || len(got[1]) != 2 {
		t.Fatalf("loaded = %+v", got)
	}
	// Insertion order within one owner survives.
	if got[1][0].ID != 1 || got[1][1].ID != 3 {
		t.Fatalf("owner 1 order = %+v", got[1])
	}

	// Save replaces the previous snapshot wholesale.
	if err := pers.Save(Snapshot{2: snap[2]}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = pers.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 1 || len(got[2]) != 1 {
		t.Fatalf("after replace = %+v", got)
	}
}

func TestOpenPersisterUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := OpenPersister(StorageConfig{Driver: "redis", Path: "x"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
