package dialog

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/reminder"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestEngine(t *testing.T, now time.Time) (*Engine, *reminder.Store) {
	t.Helper()
	pers, err := reminder.OpenPersister(reminder.StorageConfig{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "reminders.json"),
	})
	if err != nil {
		t.Fatalf("open persister: %v", err)
	}
	store, err := reminder.NewStore(pers)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewEngine(store, fixedClock{now: now}, logx.Nop()), store
}

func TestEngineFullDialogue(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)
	e, store := newTestEngine(t, now)

	if got := e.Start(7); got != promptDate {
		t.Fatalf("Start prompt = %q, want %q", got, promptDate)
	}
	if res := e.HandleText(7, "11.05.2030"); res.Kind != ResultPrompt || res.Text != promptTime {
		t.Fatalf("date step = %+v", res)
	}
	if res := e.HandleText(7, "09:30"); res.Kind != ResultPrompt || res.Text != promptText {
		t.Fatalf("time step = %+v", res)
	}
	res := e.HandleText(7, "позвонить в бухгалтерию")
	if res.Kind != ResultCompleted {
		t.Fatalf("text step = %+v", res)
	}
	if res.ReminderID == 0 {
		t.Fatal("completed dialogue returned zero reminder id")
	}
	if e.Active(7) {
		t.Fatal("session still active after completion")
	}

	rs := store.ListForOwner(7)
	if len(rs) != 1 {
		t.Fatalf("stored reminders = %d, want 1", len(rs))
	}
	want := time.Date(2030, 5, 11, 9, 30, 0, 0, time.Local)
	if !rs[0].DueAt.Equal(want) {
		t.Fatalf("due at = %v, want %v", rs[0].DueAt, want)
	}
	if rs[0].Text != "позвонить в бухгалтерию" {
		t.Fatalf("text = %q", rs[0].Text)
	}
}

func TestEngineReprompts(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		inputs []string
		want   string
	}{
		{"garbage date", []string{"tomorrow"}, promptDateBad},
		{"date wrong separator", []string{"2030-05-11"}, promptDateBad},
		{"garbage time", []string{"11.05.2030", "полдень"}, promptTimeBad},
		{"time out of range", []string{"11.05.2030", "25:70"}, promptTimeBad},
		{"empty text", []string{"11.05.2030", "10:00", "   "}, promptTextEmpty},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, _ := newTestEngine(t, now)
			e.Start(1)
			var res Result
			for _, in := range tc.inputs {
				res = e.HandleText(1, in)
			}
			if res.Kind != ResultPrompt || res.Text != tc.want {
				t.Fatalf("got %+v, want prompt %q", res, tc.want)
			}
			if !e.Active(1) {
				t.Fatal("re-prompt must keep the session alive")
			}
		})
	}
}

func TestEnginePastDueTerminates(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)
	e, store := newTestEngine(t, now)

	e.Start(3)
	e.HandleText(3, "10.05.2030")
	res := e.HandleText(3, "11:00")
	if res.Kind != ResultTerminated {
		t.Fatalf("past due = %+v, want terminated", res)
	}
	if e.Active(3) {
		t.Fatal("session must end after past-due input")
	}
	if rs := store.ListForOwner(3); len(rs) != 0 {
		t.Fatalf("no reminder expected, got %d", len(rs))
	}
}

func TestEnginePresetSkipsTextStage(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)
	e, store := newTestEngine(t, now)

	e.StartPreset(9, "Перечитать ответ на вопрос про отпуск")
	e.HandleText(9, "12.05.2030")
	res := e.HandleText(9, "08:00")
	if res.Kind != ResultCompleted {
		t.Fatalf("preset completion = %+v", res)
	}
	rs := store.ListForOwner(9)
	if len(rs) != 1 || !strings.Contains(rs[0].Text, "про отпуск") {
		t.Fatalf("stored = %+v", rs)
	}
}

func TestEngineCancelAndIgnore(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)
	e, _ := newTestEngine(t, now)

	if res := e.HandleText(5, "11.05.2030"); res.Kind != ResultIgnored {
		t.Fatalf("no-session input = %+v, want ignored", res)
	}

	e.Start(5)
	e.Cancel(5)
	if e.Active(5) {
		t.Fatal("cancel left the session active")
	}
	if res := e.HandleText(5, "11.05.2030"); res.Kind != ResultIgnored {
		t.Fatalf("post-cancel input = %+v, want ignored", res)
	}
}

func TestStepPure(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.Local)
	s := session{stage: StageAwaitingDate}

	out := step(s, "11.05.2030", now)
	if out.next.stage != StageAwaitingTime || out.next.date != "11.05.2030" {
		t.Fatalf("next = %+v", out.next)
	}
	if s.stage != StageAwaitingDate {
		t.Fatal("step must not mutate its input")
	}
}
