package stats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

// Sender delivers one digest message to a user.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// QuestionTitle resolves a question id to its display title; it returns
// the id itself when unknown, so deleted questions still show up.
type QuestionTitle func(id string) string

type DigestConfig struct {
	// Schedule is a standard 5-field cron expression,
	// e.g. "0 10 * * 1" for Monday 10:00.
	Schedule string
	Timezone string
	Admins   []int64
}

// Digest periodically sends the feedback report to the admins.
type Digest struct {
	cfg      DigestConfig
	counters *Counters
	sender   Sender
	title    QuestionTitle
	log      logx.Logger

	mu sync.Mutex
	c  *cron.Cron
}

func NewDigest(cfg DigestConfig, counters *Counters, sender Sender, title QuestionTitle, log logx.Logger) *Digest {
	if title == nil {
		title = func(id string) string { return id }
	}
	return &Digest{
		cfg:      cfg,
		counters: counters,
		sender:   sender,
		title:    title,
		log:      log.With(logx.String("component", "stats.digest")),
	}
}

// Start registers the cron entry. Returns an error for a bad schedule
// or timezone so misconfiguration fails at startup, not silently.
func (d *Digest) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c != nil {
		return nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(d.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("digest timezone: %w", err)
		}
		loc = l
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(d.cfg.Schedule, func() { d.run(ctx) }); err != nil {
		return fmt.Errorf("digest schedule %q: %w", d.cfg.Schedule, err)
	}
	c.Start()
	d.c = c
	d.log.Info("digest scheduled",
		logx.String("schedule", d.cfg.Schedule),
		logx.String("tz", loc.String()),
		logx.Int("admins", len(d.cfg.Admins)))
	return nil
}

func (d *Digest) Stop(ctx context.Context) {
	d.mu.Lock()
	c := d.c
	d.c = nil
	d.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func (d *Digest) run(ctx context.Context) {
	text := d.Report()
	for _, admin := range d.cfg.Admins {
		if err := d.sender.Send(ctx, admin, text); err != nil {
			d.log.Warn("digest send failed", logx.Int64("admin", admin), logx.Err(err))
		}
	}
}

// Report renders the current feedback summary.
func (d *Digest) Report() string {
	helpful, notHelpful := d.counters.Totals()
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Сводка обратной связи\n👍 Помог: %d\n👎 Не помог: %d\n", helpful, notHelpful)

	top := d.counters.TopNotHelpful(5)
	if len(top) == 0 {
		b.WriteString("\n📉 Пока ни одного «не помог».")
		return b.String()
	}
	b.WriteString("\n📉 ТОП-5 «не помог»:\n")
	for i, e := range top {
		fmt.Fprintf(&b, "%d. %s — %d\n", i+1, d.title(e.QuestionID), e.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}
