// Package notify sends outbound messages through the transport adapter
// with a global rate cap, so scheduler bursts never trip Telegram's
// flood limits.
package notify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

const (
	// Telegram allows ~30 messages/s across chats; stay well under.
	defaultRate  = rate.Limit(20)
	defaultBurst = 5

	defaultSendTimeout = 10 * time.Second
)

type Config struct {
	// MessagesPerSecond caps outbound sends. Zero means the default.
	MessagesPerSecond float64
	Burst             int
	// SendTimeout bounds a single send including the limiter wait.
	SendTimeout time.Duration
}

// Gateway is the delivery side of the reminder pipeline.
type Gateway struct {
	adapter transport.Adapter
	limiter *rate.Limiter
	timeout time.Duration
	log     logx.Logger
}

func NewGateway(adapter transport.Adapter, cfg Config, log logx.Logger) *Gateway {
	lim := defaultRate
	if cfg.MessagesPerSecond > 0 {
		lim = rate.Limit(cfg.MessagesPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Gateway{
		adapter: adapter,
		limiter: rate.NewLimiter(lim, burst),
		timeout: timeout,
		log:     log.With(logx.String("component", "notify")),
	}
}

// Send delivers text to userID, waiting for a limiter token first. The
// whole operation is bounded by the configured send timeout.
func (g *Gateway) Send(ctx context.Context, userID int64, text string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if _, err := g.adapter.SendText(ctx, transport.ChatTarget{ChatID: userID}, text, nil); err != nil {
		return fmt.Errorf("send to %d: %w", userID, err)
	}
	return nil
}
