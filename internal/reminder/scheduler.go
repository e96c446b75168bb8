package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/eventbus"
	rtsup "github.com/Spring31st/ulanaberezkova-hr-bot/internal/runtime/supervisor"
	logx "github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

// Gateway delivers one text to one user. Implementations must bound the call
// (timeout/rate limit) so a single unreachable user cannot stall a tick.
type Gateway interface {
	Send(ctx context.Context, userID int64, text string) error
}

// SchedulerConfig controls the delivery loop cadence.
type SchedulerConfig struct {
	// PollInterval is the fixed scan cadence. Default 60s.
	PollInterval time.Duration
	// StartDelay is a grace period before the first scan, so transport
	// polling is up before we try to deliver. Zero starts immediately.
	StartDelay time.Duration
}

// Scheduler is the background delivery loop: on every tick it scans the
// store for due reminders, attempts delivery, and discards processed entries
// with a single batched persist.
//
// Delivery is at-most-once: a failed send is logged and the reminder is
// still removed, not retried.
type Scheduler struct {
	cfg   SchedulerConfig
	store *Store
	gw    Gateway
	clock Clock
	log   logx.Logger
	bus   eventbus.Bus

	runMu   sync.Mutex
	running bool
	sup     *rtsup.Supervisor
}

func NewScheduler(cfg SchedulerConfig, store *Store, gw Gateway, clock Clock, log logx.Logger, bus eventbus.Bus) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.StartDelay < 0 {
		cfg.StartDelay = 0
	}
	if clock == nil {
		clock = SystemClock()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{cfg: cfg, store: store, gw: gw, clock: clock, log: log, bus: bus}
}

// Start launches the delivery loop. Idempotent.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return
	}
	s.running = true
	s.sup = rtsup.New(ctx,
		rtsup.WithLogger(s.log),
		rtsup.WithCancelOnError(false),
	)
	sup := s.sup
	s.runMu.Unlock()

	sup.GoRestart("reminders.deliver", func(c context.Context) error {
		return s.loop(c)
	})
}

// Stop cancels the loop and waits for it, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.runMu.Lock()
	sup := s.sup
	s.sup = nil
	s.running = false
	s.runMu.Unlock()

	if sup == nil {
		return
	}
	sup.Cancel()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = sup.Wait(ctx)
}

func (s *Scheduler) loop(ctx context.Context) error {
	if s.cfg.StartDelay > 0 {
		t := time.NewTimer(s.cfg.StartDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				// Persistence trouble; keep looping, entries stay queued.
				s.log.Error("delivery tick failed", logx.Err(err))
			}
		}
	}
}

// Tick performs one scan-deliver-remove pass. Exported so tests can drive
// the scheduler without real time.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.clock.Now()
	due := s.store.ListDue(now)
	if len(due) == 0 {
		return nil
	}

	keys := make([]Key, 0, len(due))
	for _, d := range due {
		// One unreachable user must not abort the rest of the batch.
		err := s.gw.Send(ctx, d.Owner, FormatDelivery(d.Reminder))
		if err != nil {
			s.log.Warn("reminder send failed; discarding",
				logx.Int64("owner", d.Owner),
				logx.Uint64("id", d.Reminder.ID),
				logx.Err(err))
			s.publish(eventbus.TypeReminderFailed, d, err.Error())
		} else {
			s.log.Debug("reminder delivered",
				logx.Int64("owner", d.Owner),
				logx.Uint64("id", d.Reminder.ID))
			s.publish(eventbus.TypeReminderDelivered, d, "")
		}
		keys = append(keys, Key{Owner: d.Owner, ID: d.Reminder.ID})

		if ctx.Err() != nil {
			break
		}
	}

	// Single persist for the whole tick.
	_, err := s.store.RemoveBatch(keys)
	return err
}

func (s *Scheduler) publish(typ string, d Due, detail string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type:       typ,
		Owner:      d.Owner,
		ReminderID: d.Reminder.ID,
		Detail:     detail,
	})
}

// FormatDelivery renders the outbound reminder message.
func FormatDelivery(r Reminder) string {
	return "🔔 Напоминание:\n" + r.Text
}
