// Package app assembles the bot: config, logging, storage, transport,
// the FAQ content, the reminder pipeline, and the update router.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/bot"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/config"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/content"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/dialog"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/eventbus"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/health"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/notify"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/reminder"
	rtsup "github.com/Spring31st/ulanaberezkova-hr-bot/internal/runtime/supervisor"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/stats"
	kit "github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	telegram "github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport/telegram"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

// StopReason labels why the app is shutting down, for the final log line.
type StopReason string

const (
	StopSignal     StopReason = "signal"
	StopFatalError StopReason = "fatal_error"
)

type App struct {
	cfgm *config.Manager
	sup  *rtsup.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	adapter  kit.Adapter
	store    *reminder.Store
	sched    *reminder.Scheduler
	gateway  *notify.Gateway
	engine   *dialog.Engine
	book     *content.Book
	counters *stats.Counters
	digest   *stats.Digest
	health   *health.Service
	router   *bot.Router

	updates chan kit.Update
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()

	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	pers, err := reminder.OpenPersister(reminder.StorageConfig{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	})
	if err != nil {
		return nil, err
	}
	store, err := reminder.NewStore(pers)
	if err != nil {
		return nil, err
	}
	log.Info("reminder store loaded", logx.String("driver", cfg.Storage.Driver))

	book, err := content.Load(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("load content %q: %w", cfg.Content.Path, err)
	}

	// Feedback counters live next to the reminder snapshot.
	statsPath := filepath.Join(filepath.Dir(cfg.Storage.Path), "stats.json")
	counters, err := stats.Open(statsPath)
	if err != nil {
		return nil, err
	}

	gw := notify.NewGateway(ad, notify.Config{}, log)
	engine := dialog.NewEngine(store, reminder.SystemClock(), log)

	pollInterval, err := config.ParseDurationOrDefault("reminders.poll_interval", cfg.Reminders.PollInterval, 60*time.Second)
	if err != nil {
		return nil, err
	}
	startDelay, err := config.ParseDurationOrDefault("reminders.start_delay", cfg.Reminders.StartDelay, 5*time.Second)
	if err != nil {
		return nil, err
	}
	sched := reminder.NewScheduler(reminder.SchedulerConfig{
		PollInterval: pollInterval,
		StartDelay:   startDelay,
	}, store, gw, reminder.SystemClock(), log.With(logx.String("comp", "scheduler")), bus)

	router := bot.NewRouter(bot.Config{
		AllowedUserIDs: cfg.Telegram.AllowedUserIDs,
		AdminUserIDs:   cfg.Telegram.AdminUserIDs,
	}, ad, engine, store, book, counters, log)

	var digest *stats.Digest
	if cfg.Digest != nil && cfg.Digest.Enabled {
		digest = stats.NewDigest(stats.DigestConfig{
			Schedule: cfg.Digest.Schedule,
			Timezone: cfg.Digest.Timezone,
			Admins:   cfg.Telegram.AdminUserIDs,
		}, counters, gw, func(id string) string {
			if q := book.QuestionByID(id); q != nil {
				return q.Question
			}
			return id
		}, log)
	}

	var hl *health.Service
	if cfg.Health != nil {
		hl = health.New(health.Config{
			Enabled: cfg.Health.Enabled,
			Addr:    cfg.Health.Addr,
		}, log)
	}

	return &App{
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		bus:      bus,
		adapter:  ad,
		store:    store,
		sched:    sched,
		gateway:  gw,
		engine:   engine,
		book:     book,
		counters: counters,
		digest:   digest,
		health:   hl,
		router:   router,
		updates:  make(chan kit.Update, 256),
	}, nil
}

// Done is closed when the app run context ends (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log), rtsup.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return validate(cfg)
	})

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}

	a.sched.Start(a.sup.Context())
	if a.health != nil && a.health.Enabled() {
		a.health.Start(a.sup.Context())
	}
	if a.digest != nil {
		if err := a.digest.Start(a.sup.Context()); err != nil {
			return err
		}
	}

	a.sup.Go("bot.dispatch", func(c context.Context) error {
		return a.router.Run(c, a.updates)
	})

	// Debug visibility into reminder lifecycle events.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event",
					logx.String("type", e.Type),
					logx.Int64("owner", e.Owner),
					logx.Uint64("reminder_id", e.ReminderID))
			}
		}
	})

	// Config hot reload: logging and access lists apply live; storage
	// and transport changes need a restart.
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyReload(newCfg)
			}
		}
	})
	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

func (a *App) applyReload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.router.UpdateAccess(cfg.Telegram.AllowedUserIDs, cfg.Telegram.AdminUserIDs)
	a.log.Info("config reloaded",
		logx.Int("allowed", len(cfg.Telegram.AllowedUserIDs)),
		logx.Int("admins", len(cfg.Telegram.AdminUserIDs)))
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	a.sup.Cancel()

	// Bounded shutdown steps: one stuck component must not stall the rest.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()
		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name))
		}
	}

	step("scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	if a.digest != nil {
		step("digest", 1*time.Second, func(c context.Context) error { a.digest.Stop(c); return nil })
	}
	if a.health != nil {
		step("health", 1*time.Second, func(c context.Context) error { a.health.Stop(c); return nil })
	}
	step("adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	step("store", 1*time.Second, func(c context.Context) error { return a.store.Close() })
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}

func validate(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch strings.TrimSpace(cfg.Storage.Driver) {
	case "", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("storage.driver: unknown %q", cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Content.Path) == "" {
		return fmt.Errorf("content.path is required")
	}
	if _, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("reminders.poll_interval", cfg.Reminders.PollInterval); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("reminders.start_delay", cfg.Reminders.StartDelay); err != nil {
		return err
	}
	if _, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
		return err
	}
	if cfg.Digest != nil && cfg.Digest.Enabled {
		if strings.TrimSpace(cfg.Digest.Schedule) == "" {
			return fmt.Errorf("digest.schedule is required when digest is enabled")
		}
		if tz := strings.TrimSpace(cfg.Digest.Timezone); tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("digest.timezone: invalid %q: %w", tz, err)
			}
		}
	}
	return nil
}
