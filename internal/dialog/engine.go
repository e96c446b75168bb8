// Package dialog drives the multi-step reminder creation dialogue. The
// per-user state machine lives in memory; only the finished reminder
// reaches the store.
package dialog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/reminder"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

const (
	promptDate      = "📅 Введите дату отправки напоминания в формате ДД.ММ.ГГГГ:"
	promptDateBad   = "❗️ Неверный формат даты. Введите дату в формате ДД.ММ.ГГГГ:"
	promptTime      = "⏰ Введите время отправки в формате ЧЧ:ММ:"
	promptTimeBad   = "❗️ Неверный формат времени. Введите время в формате ЧЧ:ММ:"
	promptText      = "📝 Введите текст напоминания:"
	promptTextEmpty = "❗️ Текст напоминания не может быть пустым. Введите текст:"
	msgPastDue      = "❗️ Укажите дату и время в будущем. Напоминание не создано."
	msgSaved        = "✅ Напоминание сохранено!"
	msgSaveFailed   = "⚠️ Не удалось сохранить напоминание. Попробуйте ещё раз."
)

// ResultKind tells the caller what to do with the outcome of one input.
type ResultKind int

const (
	// ResultIgnored means the user has no active dialogue; the input
	// belongs to someone else's handler.
	ResultIgnored ResultKind = iota
	// ResultPrompt carries the next question (or a re-prompt after
	// malformed input); the dialogue continues.
	ResultPrompt
	// ResultTerminated means the dialogue ended without a reminder.
	ResultTerminated
	// ResultCompleted means a reminder was created.
	ResultCompleted
)

// Result is the user-visible outcome of feeding one text into the engine.
type Result struct {
	Kind       ResultKind
	Text       string
	ReminderID uint64
}

// stepOutcome is the pure-transition result before any store access.
type stepOutcome struct {
	next session
	kind ResultKind
	text string

	// set only when kind == ResultCompleted
	dueAt time.Time
	body  string
}

// step computes the next session state for one inbound text. It touches
// no shared state, which keeps every transition testable in isolation.
func step(s session, input string, now time.Time) stepOutcome {
	input = strings.TrimSpace(input)

	switch s.stage {
	case StageAwaitingDate:
		if _, err := time.ParseInLocation(reminder.DateLayout, input, time.Local); err != nil {
			return stepOutcome{next: s, kind: ResultPrompt, text: promptDateBad}
		}
		s.date = input
		s.stage = StageAwaitingTime
		return stepOutcome{next: s, kind: ResultPrompt, text: promptTime}

	case StageAwaitingTime:
		if _, err := time.Parse(reminder.ClockLayout, input); err != nil {
			return stepOutcome{next: s, kind: ResultPrompt, text: promptTimeBad}
		}
		s.timeOfDay = input
		dueAt, err := time.ParseInLocation(reminder.TimeLayout, s.date+" "+s.timeOfDay, time.Local)
		if err != nil || !dueAt.After(now) {
			return stepOutcome{next: session{}, kind: ResultTerminated, text: msgPastDue}
		}
		if s.preset != "" {
			return stepOutcome{next: session{}, kind: ResultCompleted, dueAt: dueAt, body: s.preset}
		}
		s.stage = StageAwaitingText
		return stepOutcome{next: s, kind: ResultPrompt, text: promptText}

	case StageAwaitingText:
		if input == "" {
			return stepOutcome{next: s, kind: ResultPrompt, text: promptTextEmpty}
		}
		dueAt, err := time.ParseInLocation(reminder.TimeLayout, s.date+" "+s.timeOfDay, time.Local)
		if err != nil || !dueAt.After(now) {
			return stepOutcome{next: session{}, kind: ResultTerminated, text: msgPastDue}
		}
		return stepOutcome{next: session{}, kind: ResultCompleted, dueAt: dueAt, body: input}

	default:
		return stepOutcome{next: session{}, kind: ResultIgnored}
	}
}

// Engine runs reminder dialogues for any number of users concurrently.
// One session per owner; starting a new dialogue replaces the old one.
type Engine struct {
	store *reminder.Store
	clock reminder.Clock
	log   logx.Logger

	mu       sync.Mutex
	sessions map[int64]session
}

func NewEngine(store *reminder.Store, clock reminder.Clock, log logx.Logger) *Engine {
	if clock == nil {
		clock = reminder.SystemClock()
	}
	return &Engine{
		store:    store,
		clock:    clock,
		log:      log.With(logx.String("component", "dialog")),
		sessions: make(map[int64]session),
	}
}

// Start opens a dialogue for owner and returns the first prompt.
func (e *Engine) Start(owner int64) string {
	e.mu.Lock()
	e.sessions[owner] = session{stage: StageAwaitingDate}
	e.mu.Unlock()
	return promptDate
}

// StartPreset opens a dialogue whose reminder text is fixed in advance,
// so the user is only asked for a date and a time.
func (e *Engine) StartPreset(owner int64, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return e.Start(owner)
	}
	e.mu.Lock()
	e.sessions[owner] = session{stage: StageAwaitingDate, preset: text}
	e.mu.Unlock()
	return promptDate
}

// Cancel drops the owner's dialogue, if any. Used when the user escapes
// to the main menu mid-dialogue.
func (e *Engine) Cancel(owner int64) {
	e.mu.Lock()
	delete(e.sessions, owner)
	e.mu.Unlock()
}

// Active reports whether owner has a dialogue in progress.
func (e *Engine) Active(owner int64) bool {
	e.mu.Lock()
	_, ok := e.sessions[owner]
	e.mu.Unlock()
	return ok
}

// HandleText feeds one inbound message into the owner's dialogue.
func (e *Engine) HandleText(owner int64, text string) Result {
	e.mu.Lock()
	s, ok := e.sessions[owner]
	if !ok {
		e.mu.Unlock()
		return Result{Kind: ResultIgnored}
	}

	out := step(s, text, e.clock.Now())
	if out.kind == ResultCompleted || out.kind == ResultTerminated {
		delete(e.sessions, owner)
	} else {
		e.sessions[owner] = out.next
	}
	e.mu.Unlock()

	if out.kind != ResultCompleted {
		return Result{Kind: out.kind, Text: out.text}
	}

	id, err := e.store.Add(owner, out.dueAt, out.body)
	if err != nil {
		e.log.Error("reminder save failed", logx.Int64("owner", owner), logx.Err(err))
		return Result{Kind: ResultTerminated, Text: msgSaveFailed}
	}
	e.log.Info("reminder created",
		logx.Int64("owner", owner),
		logx.Uint64("id", id),
		logx.Time("due_at", out.dueAt))
	return Result{
		Kind:       ResultCompleted,
		Text:       fmt.Sprintf("%s\n🗓 %s", msgSaved, out.dueAt.Format(reminder.TimeLayout)),
		ReminderID: id,
	}
}
