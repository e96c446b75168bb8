package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/eventbus"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

type tickClock struct{ now time.Time }

func (c tickClock) Now() time.Time { return c.now }

type captureGateway struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]error
}

func (g *captureGateway) Send(_ context.Context, userID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[userID]; err != nil {
		return err
	}
	if g.sent == nil {
		g.sent = map[int64][]string{}
	}
	g.sent[userID] = append(g.sent[userID], text)
	return nil
}

func TestSchedulerTickDeliversAndRemoves(t *testing.T) {
	t.Parallel()

	s := newFileStore(t, filepath.Join(t.TempDir(), "r.json"))
	defer s.Close()

	now := time.Date(2030, 7, 1, 12, 0, 0, 0, time.Local)
	s.Add(1, now.Add(-time.Minute), "сдать отчёт")
	s.Add(2, now.Add(time.Hour), "ещё рано")

	gw := &captureGateway{}
	sched := NewScheduler(SchedulerConfig{}, s, gw, tickClock{now: now}, logx.Nop(), nil)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	gw.mu.Lock()
	got := gw.sent[1]
	gw.mu.Unlock()
	if len(got) != 1 || !strings.Contains(got[0], "сдать отчёт") || !strings.HasPrefix(got[0], "🔔") {
		t.Fatalf("delivered = %q", got)
	}
	if rest := s.ListForOwner(1); len(rest) != 0 {
		t.Fatalf("delivered reminder still stored: %+v", rest)
	}
	if rest := s.ListForOwner(2); len(rest) != 1 {
		t.Fatalf("future reminder touched: %+v", rest)
	}

	// Second tick: nothing due, nothing sent.
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	gw.mu.Lock()
	n := len(gw.sent[1])
	gw.mu.Unlock()
	if n != 1 {
		t.Fatalf("second tick re-delivered: %d sends", n)
	}
}

func TestSchedulerFailedSendStillRemoved(t *testing.T) {
	t.Parallel()

	s := newFileStore(t, filepath.Join(t.TempDir(), "r.json"))
	defer s.Close()

	now := time.Date(2030, 7, 1, 12, 0, 0, 0, time.Local)
	s.Add(1, now.Add(-time.Minute), "недоставляемое")
	s.Add(2, now.Add(-time.Minute), "доставляемое")

	gw := &captureGateway{fail: map[int64]error{1: errors.New("blocked by user")}}
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()

	sched := NewScheduler(SchedulerConfig{}, s, gw, tickClock{now: now}, logx.Nop(), bus)
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	// At-most-once: the failed one is discarded, not retried.
	if rest := s.ListForOwner(1); len(rest) != 0 {
		t.Fatalf("failed reminder still stored: %+v", rest)
	}
	if rest := s.ListForOwner(2); len(rest) != 0 {
		t.Fatalf("delivered reminder still stored: %+v", rest)
	}

	var delivered, failed int
	for i := 0; i < 2; i++ {
		select {
		case e := <-events:
			switch e.Type {
			case eventbus.TypeReminderDelivered:
				delivered++
			case eventbus.TypeReminderFailed:
				failed++
			}
		case <-time.After(time.Second):
			t.Fatal("missing bus event")
		}
	}
	if delivered != 1 || failed != 1 {
		t.Fatalf("events delivered=%d failed=%d", delivered, failed)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	s := newFileStore(t, filepath.Join(t.TempDir(), "r.json"))
	defer s.Close()

	gw := &captureGateway{}
	sched := NewScheduler(SchedulerConfig{
		PollInterval: 10 * time.Millisecond,
		StartDelay:   0,
	}, s, gw, tickClock{now: time.Now()}, logx.Nop(), nil)

	ctx := context.Background()
	sched.Start(ctx)
	sched.Start(ctx) // idempotent
	time.Sleep(50 * time.Millisecond)
	sched.Stop(ctx)
	sched.Stop(ctx) // idempotent
}

func TestFormatDelivery(t *testing.T) {
	t.Parallel()

	got := FormatDelivery(Reminder{ID: 1, Text: "позвонить"})
	if got != "🔔 Напоминание:\nпозвонить" {
		t.Fatalf("FormatDelivery = %q", got)
	}
}
