// Package bot routes inbound Telegram updates to the FAQ browser, the
// reminder dialogue, feedback collection, and admin commands.
package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/content"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/dialog"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/reminder"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/stats"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/tgui"
)

const defaultPageSize = 7

type Config struct {
	AllowedUserIDs []int64
	AdminUserIDs   []int64
	PageSize       int
}

// userState is transient per-user UI state outside the reminder
// dialogue. Lost on restart, which only costs the user one tap.
type userState struct {
	awaitingComment bool // anonymous feedback text expected next
}

type Router struct {
	adapter  transport.Adapter
	engine   *dialog.Engine
	store    *reminder.Store
	book     *content.Book
	counters *stats.Counters
	log      logx.Logger

	pageSize int

	accessMu sync.RWMutex
	allowed  map[int64]struct{}
	admins   map[int64]struct{}
	adminSeq []int64

	stateMu sync.Mutex
	states  map[int64]*userState
}

func NewRouter(cfg Config, adapter transport.Adapter, engine *dialog.Engine, store *reminder.Store, book *content.Book, counters *stats.Counters, log logx.Logger) *Router {
	r := &Router{
		adapter:  adapter,
		engine:   engine,
		store:    store,
		book:     book,
		counters: counters,
		log:      log.With(logx.String("component", "bot")),
		pageSize: cfg.PageSize,
		states:   make(map[int64]*userState),
	}
	if r.pageSize <= 0 {
		r.pageSize = defaultPageSize
	}
	r.UpdateAccess(cfg.AllowedUserIDs, cfg.AdminUserIDs)
	return r
}

// UpdateAccess swaps the allowlist and admin set. Called at startup and
// again on config hot reload.
func (r *Router) UpdateAccess(allowed, admins []int64) {
	al := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		al[id] = struct{}{}
	}
	ad := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		ad[id] = struct{}{}
		// Admins are implicitly allowed.
		al[id] = struct{}{}
	}
	r.accessMu.Lock()
	r.allowed = al
	r.admins = ad
	r.adminSeq = append([]int64(nil), admins...)
	r.accessMu.Unlock()
}

func (r *Router) isAllowed(uid int64) bool {
	r.accessMu.RLock()
	_, ok := r.allowed[uid]
	r.accessMu.RUnlock()
	return ok
}

func (r *Router) isAdmin(uid int64) bool {
	r.accessMu.RLock()
	_, ok := r.admins[uid]
	r.accessMu.RUnlock()
	return ok
}

// feedbackRecipient is the admin who receives anonymous feedback.
func (r *Router) feedbackRecipient() (int64, bool) {
	r.accessMu.RLock()
	defer r.accessMu.RUnlock()
	if len(r.adminSeq) == 0 {
		return 0, false
	}
	return r.adminSeq[0], true
}

// mutateState runs fn on the owner's state under the state lock.
func (r *Router) mutateState(uid int64, fn func(st *userState)) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	st, ok := r.states[uid]
	if !ok {
		st = &userState{}
		r.states[uid] = st
	}
	fn(st)
}

// Run consumes updates until ctx is cancelled or the channel closes.
// Handlers are synchronous: Telegram updates for one bot arrive in
// order and the handlers only do quick local work plus one send.
func (r *Router) Run(ctx context.Context, updates <-chan transport.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			r.dispatch(ctx, u)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, u transport.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panic", logx.Any("panic", rec))
		}
	}()

	switch u.Kind {
	case transport.UpdateMessage:
		if u.Message != nil {
			r.handleMessage(ctx, u.Message)
		}
	case transport.UpdateCallback:
		if u.Callback != nil {
			r.handleCallback(ctx, u.Callback)
		}
	}
}

func (r *Router) handleMessage(ctx context.Context, m *transport.Message) {
	uid := m.FromID
	if !r.isAllowed(uid) {
		r.reply(ctx, m.ChatID, "❌ Доступ запрещён.", nil)
		return
	}

	text := strings.TrimSpace(m.Text)
	switch {
	case text == "/start":
		r.sendMainMenu(ctx, m.ChatID, uid)
		return
	case text == "/stats":
		if !r.isAdmin(uid) {
			r.reply(ctx, m.ChatID, "❌ Команда доступна только админам.", nil)
			return
		}
		r.reply(ctx, m.ChatID, r.renderStats(), backToMenuMarkup())
		return
	}

	if r.takeFeedbackComment(ctx, m) {
		return
	}

	res := r.engine.HandleText(uid, m.Text)
	switch res.Kind {
	case dialog.ResultIgnored:
		// Free text outside any flow: point at the menu.
		r.reply(ctx, m.ChatID, "👋 Выберите действие в меню: /start", nil)
	case dialog.ResultCompleted:
		r.reply(ctx, m.ChatID, res.Text, r.mainMenuMarkup(uid))
	default:
		r.reply(ctx, m.ChatID, res.Text, nil)
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *transport.Callback) {
	uid := cb.FromID
	if !r.isAllowed(uid) {
		r.answer(ctx, cb, "Доступ запрещён")
		return
	}

	ns, action, payload := tgui.Split(cb.Data)
	switch ns {
	case "menu":
		if action == "main" {
			r.engine.Cancel(uid)
			r.mutateState(uid, func(st *userState) { st.awaitingComment = false })
			r.editToMainMenu(ctx, cb)
		}
		r.answer(ctx, cb, "")
	case "faq":
		r.handleFAQCallback(ctx, cb, action, payload)
	case "fb":
		r.handleFeedbackCallback(ctx, cb, action, payload)
	case "afb":
		r.handleCommentCallback(ctx, cb, action)
	case "rem":
		r.handleReminderCallback(ctx, cb, action, payload)
	case "adm":
		if action == "stats" {
			if !r.isAdmin(uid) {
				r.answer(ctx, cb, "Нет доступа")
				return
			}
			r.edit(ctx, cb, r.renderStats(), backToMenuMarkup())
			r.answer(ctx, cb, "")
			return
		}
		r.answer(ctx, cb, "")
	case "noop":
		r.answer(ctx, cb, "")
	default:
		r.log.Debug("unknown callback", logx.String("data", cb.Data), logx.Int64("from", uid))
		r.answer(ctx, cb, "")
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string, markup any) {
	opt := &transport.SendOptions{ReplyMarkup: markup}
	if _, err := r.adapter.SendText(ctx, transport.ChatTarget{ChatID: chatID}, text, opt); err != nil {
		r.log.Warn("send failed", logx.Int64("chat", chatID), logx.Err(err))
	}
}

func (r *Router) edit(ctx context.Context, cb *transport.Callback, text string, markup any) {
	ref := transport.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
	opt := &transport.SendOptions{ReplyMarkup: markup}
	if err := r.adapter.EditText(ctx, ref, text, opt); err != nil {
		// Edits fail when the message is too old; fall back to a new one.
		r.log.Debug("edit failed, sending new message", logx.Int64("chat", cb.ChatID), logx.Err(err))
		r.reply(ctx, cb.ChatID, text, markup)
	}
}

func (r *Router) answer(ctx context.Context, cb *transport.Callback, text string) {
	if err := r.adapter.AnswerCallback(ctx, cb.ID, text); err != nil {
		r.log.Debug("answer callback failed", logx.Err(err))
	}
}
