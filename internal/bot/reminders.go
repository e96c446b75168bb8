package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/reminder"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/tgui"
)

// Reminder callbacks:
//
//	rem:new          start the dialogue
//	rem:auto:<qID>   start with the question's preset text
//	rem:list         list active reminders
//	rem:del:<id>     delete one reminder
func (r *Router) handleReminderCallback(ctx context.Context, cb *transport.Callback, action, payload string) {
	uid := cb.FromID
	switch action {
	case "new":
		prompt := r.engine.Start(uid)
		r.edit(ctx, cb, prompt, backToMenuMarkup())
		r.answer(ctx, cb, "")
	case "auto":
		q := r.book.QuestionByID(payload)
		if q == nil || !q.Remind {
			r.answer(ctx, cb, "Вопрос не найден")
			return
		}
		prompt := r.engine.StartPreset(uid, q.RemindText)
		text := fmt.Sprintf("⏰ Напоминание: «%s»\n\n%s", q.RemindText, prompt)
		r.edit(ctx, cb, text, backToMenuMarkup())
		r.answer(ctx, cb, "")
	case "list":
		r.showReminders(ctx, cb, false)
		r.answer(ctx, cb, "")
	case "del":
		id, err := strconv.ParseUint(payload, 10, 64)
		if err != nil {
			r.answer(ctx, cb, "")
			return
		}
		removed, rerr := r.store.Remove(uid, id)
		if rerr != nil {
			r.log.Error("reminder delete failed", logx.Int64("owner", uid), logx.Uint64("id", id), logx.Err(rerr))
			r.answer(ctx, cb, "Не удалось удалить")
			return
		}
		if removed {
			r.answer(ctx, cb, "🗑 Удалено!")
		} else {
			r.answer(ctx, cb, "Уже удалено")
		}
		r.showReminders(ctx, cb, true)
	default:
		r.answer(ctx, cb, "")
	}
}

func (r *Router) showReminders(ctx context.Context, cb *transport.Callback, afterDelete bool) {
	uid := cb.FromID
	list := r.store.ListForOwner(uid)
	if len(list) == 0 {
		text := "📭 У вас нет активных напоминаний."
		if afterDelete {
			text = "📭 Все напоминания удалены."
		}
		r.edit(ctx, cb, text, backToMenuMarkup())
		return
	}

	kb := tgui.NewInline()
	for _, rem := range list {
		label := fmt.Sprintf("%s – %s", rem.DueAt.Format(reminder.TimeLayout), tgui.TruncRunes(rem.Text, 30))
		kb.Row(
			tgui.Btn(label, tgui.Data("noop", "", "")),
			tgui.Btn("❌", tgui.Data("rem", "del", strconv.FormatUint(rem.ID, 10))),
		)
	}
	kb.Row(tgui.Btn("🔙 Главное меню", tgui.Data("menu", "main", "")))
	r.edit(ctx, cb, "📋 Ваши напоминания:", kb.Markup())
}
