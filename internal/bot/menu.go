package bot

import (
	"context"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/tgui"
)

const greeting = "👋 Что вас интересует?"

func (r *Router) mainMenuMarkup(uid int64) any {
	kb := tgui.NewInline()
	if r.isAdmin(uid) {
		kb.Row(tgui.Btn("📊 Статистика", tgui.Data("adm", "stats", "")))
	}
	kb.Row(tgui.Btn("📚 Категории вопросов", tgui.Data("faq", "cats", "0")))
	kb.Row(tgui.Btn("📅 Создать напоминание", tgui.Data("rem", "new", "")))
	kb.Row(tgui.Btn("📋 Мои напоминания", tgui.Data("rem", "list", "")))
	kb.Row(tgui.Btn("✏️ Оставить отзыв", tgui.Data("afb", "start", "")))
	return kb.Markup()
}

func backToMenuMarkup() any {
	return tgui.NewInline().
		Row(tgui.Btn("🔙 Главное меню", tgui.Data("menu", "main", ""))).
		Markup()
}

func (r *Router) sendMainMenu(ctx context.Context, chatID, uid int64) {
	r.reply(ctx, chatID, greeting, r.mainMenuMarkup(uid))
}

func (r *Router) editToMainMenu(ctx context.Context, cb *transport.Callback) {
	r.edit(ctx, cb, greeting, r.mainMenuMarkup(cb.FromID))
}
