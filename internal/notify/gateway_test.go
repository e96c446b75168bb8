package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

type fakeAdapter struct {
	mu    sync.Mutex
	sent  []string
	chats []int64
	err   error
}

func (f *fakeAdapter) Start(context.Context, chan<- transport.Update) error { return nil }
func (f *fakeAdapter) Stop(context.Context) error                           { return nil }
func (f *fakeAdapter) EditText(context.Context, transport.MessageRef, string, *transport.SendOptions) error {
	return nil
}
func (f *fakeAdapter) AnswerCallback(context.Context, string, string) error { return nil }

func (f *fakeAdapter) SendText(_ context.Context, to transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return transport.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.chats = append(f.chats, to.ChatID)
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func TestGatewaySend(t *testing.T) {
	t.Parallel()

	fa := &fakeAdapter{}
	g := NewGateway(fa, Config{}, logx.Nop())

	if err := g.Send(context.Background(), 42, "привет"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fa.sent) != 1 || fa.sent[0] != "привет" || fa.chats[0] != 42 {
		t.Fatalf("adapter saw %v to %v", fa.sent, fa.chats)
	}
}

func TestGatewaySendError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("telegram: forbidden")
	fa := &fakeAdapter{err: wantErr}
	g := NewGateway(fa, Config{}, logx.Nop())

	err := g.Send(context.Background(), 42, "x")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestGatewayRespectsRate(t *testing.T) {
	t.Parallel()

	fa := &fakeAdapter{}
	// 10 msg/s, burst 1: the third send can start no earlier than 200ms in.
	g := NewGateway(fa, Config{MessagesPerSecond: 10, Burst: 1}, logx.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Send(context.Background(), 1, "tick"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 180*time.Millisecond {
		t.Fatalf("3 sends finished in %v, limiter not applied", elapsed)
	}
}

func TestGatewayCancelledContext(t *testing.T) {
	t.Parallel()

	fa := &fakeAdapter{}
	g := NewGateway(fa, Config{MessagesPerSecond: 0.001, Burst: 1}, logx.Nop())

	// Drain the single burst token, then a cancelled context must fail
	// fast instead of waiting out the limiter.
	if err := g.Send(context.Background(), 1, "first"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Send(ctx, 1, "second"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if len(fa.sent) != 1 {
		t.Fatalf("adapter saw %d sends, want 1", len(fa.sent))
	}
}
