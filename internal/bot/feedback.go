package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
)

// Answer feedback: fb:yes:<qID> / fb:no:<qID>. The question id rides in
// the callback payload, so feedback lands on the right counter even
// when the user browsed on to other questions in between.
func (r *Router) handleFeedbackCallback(ctx context.Context, cb *transport.Callback, action, qID string) {
	switch action {
	case "yes":
		if err := r.counters.MarkHelpful(qID); err != nil {
			r.log.Warn("stats update failed", logx.String("question", qID), logx.Err(err))
		}
		r.reply(ctx, cb.ChatID, "✅ Спасибо за обратную связь!", backToMenuMarkup())
	case "no":
		if err := r.counters.MarkNotHelpful(qID); err != nil {
			r.log.Warn("stats update failed", logx.String("question", qID), logx.Err(err))
		}
		r.reply(ctx, cb.ChatID, r.book.ContactsCard(), backToMenuMarkup())
	}
	r.answer(ctx, cb, "")
}

// Anonymous feedback: afb:start switches the user into comment mode;
// the next plain message goes to the first admin without the sender's
// identity.
func (r *Router) handleCommentCallback(ctx context.Context, cb *transport.Callback, action string) {
	if action != "start" {
		r.answer(ctx, cb, "")
		return
	}
	r.mutateState(cb.FromID, func(st *userState) { st.awaitingComment = true })
	r.edit(ctx, cb, "✏️ Напишите ваш анонимный отзыв:\nчто нравится, что можно улучшить и т.д.", backToMenuMarkup())
	r.answer(ctx, cb, "")
}

// takeFeedbackComment consumes the message when the user is in comment
// mode. Returns false when the message belongs to another flow.
func (r *Router) takeFeedbackComment(ctx context.Context, m *transport.Message) bool {
	var waiting bool
	r.mutateState(m.FromID, func(st *userState) {
		waiting = st.awaitingComment
		st.awaitingComment = false
	})
	if !waiting {
		return false
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		r.reply(ctx, m.ChatID, "❗️ Отзыв не может быть пустым.", backToMenuMarkup())
		return true
	}

	recipient, ok := r.feedbackRecipient()
	if !ok {
		r.log.Warn("anonymous feedback dropped: no admins configured")
		r.reply(ctx, m.ChatID, "😔 Сейчас не удалось отправить отзыв. Попробуйте позже.", backToMenuMarkup())
		return true
	}

	msg := fmt.Sprintf("🆕 Анонимный отзыв\n\n%s", text)
	if _, err := r.adapter.SendText(ctx, transport.ChatTarget{ChatID: recipient}, msg, nil); err != nil {
		r.log.Warn("anonymous feedback forward failed", logx.Err(err))
		r.reply(ctx, m.ChatID, "😔 Сейчас не удалось отправить отзыв HR. Попробуйте позже.", backToMenuMarkup())
		return true
	}
	r.reply(ctx, m.ChatID, "✅ Спасибо! Ваш отзыв анонимно отправлен HR.", backToMenuMarkup())
	return true
}

func (r *Router) renderStats() string {
	top := r.counters.TopNotHelpful(5)
	if len(top) == 0 {
		return "📊 Пока ни одного «не помог»."
	}
	var b strings.Builder
	b.WriteString("📉 ТОП-5 «не помог»:\n")
	for i, e := range top {
		title := e.QuestionID
		if q := r.book.QuestionByID(e.QuestionID); q != nil {
			title = q.Question
		}
		fmt.Fprintf(&b, "%d. %s — %d\n", i+1, title, e.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}
