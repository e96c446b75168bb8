package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/content"
	"github.com/Spring31st/ulanaberezkova-hr-bot/internal/transport"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/logx"
	"github.com/Spring31st/ulanaberezkova-hr-bot/pkg/tgui"
)

// FAQ callbacks:
//
//	faq:cats:<page>          category list
//	faq:cat:<catID>          open category, first page of questions
//	faq:qs:<catID>:<page>    question list page
//	faq:q:<qID>              show the answer
func (r *Router) handleFAQCallback(ctx context.Context, cb *transport.Callback, action, payload string) {
	uid := cb.FromID
	switch action {
	case "cats":
		page, _ := strconv.Atoi(payload)
		r.showCategories(ctx, cb, page)
	case "cat":
		cat := r.book.CategoryByID(payload)
		if cat == nil || (cat.AdminOnly && !r.isAdmin(uid)) {
			r.answer(ctx, cb, "Категория не найдена")
			return
		}
		r.showQuestions(ctx, cb, cat, 0)
	case "qs":
		catID, pageStr, _ := strings.Cut(payload, ":")
		cat := r.book.CategoryByID(catID)
		if cat == nil || (cat.AdminOnly && !r.isAdmin(uid)) {
			r.answer(ctx, cb, "Категория не найдена")
			return
		}
		page, _ := strconv.Atoi(pageStr)
		r.showQuestions(ctx, cb, cat, page)
	case "q":
		q := r.book.QuestionByID(payload)
		if q == nil {
			r.answer(ctx, cb, "Вопрос не найден")
			return
		}
		r.showAnswer(ctx, cb, q)
	default:
		r.answer(ctx, cb, "")
	}
}

func (r *Router) showCategories(ctx context.Context, cb *transport.Callback, page int) {
	cats := r.book.VisibleCategories(r.isAdmin(cb.FromID))
	p := tgui.Paginate(cats, page, r.pageSize)

	kb := tgui.NewInline()
	for _, c := range p.Items {
		kb.Row(tgui.Btn(c.Name, tgui.Data("faq", "cat", c.ID)))
	}
	r.addNav(kb, p.HasPrev, p.HasNext, p.Index,
		func(n int) string { return tgui.Data("faq", "cats", strconv.Itoa(n)) })
	kb.Row(tgui.Btn("🔙 Главное меню", tgui.Data("menu", "main", "")))

	r.edit(ctx, cb, "📚 Выберите категорию:", kb.Markup())
	r.answer(ctx, cb, "")
}

func (r *Router) showQuestions(ctx context.Context, cb *transport.Callback, cat *content.Category, page int) {
	p := tgui.Paginate(cat.Questions, page, r.pageSize)

	kb := tgui.NewInline()
	for _, q := range p.Items {
		data := tgui.Data("faq", "q", q.ID)
		if err := tgui.CheckData(data); err != nil {
			r.log.Warn("question id too long for callback", logx.String("id", q.ID))
			continue
		}
		kb.Row(tgui.Btn(q.Question, data))
	}
	r.addNav(kb, p.HasPrev, p.HasNext, p.Index,
		func(n int) string { return tgui.Data("faq", "qs", cat.ID+":"+strconv.Itoa(n)) })
	kb.Row(tgui.Btn("🔙 Главное меню", tgui.Data("menu", "main", "")))

	text := fmt.Sprintf("📂 %s\n\nВыберите вопрос:", cat.Name)
	r.edit(ctx, cb, text, kb.Markup())
	r.answer(ctx, cb, "")
}

func (r *Router) showAnswer(ctx context.Context, cb *transport.Callback, q *content.Question) {
	kb := tgui.NewInline()
	kb.Row(
		tgui.Btn("👍 Помог", tgui.Data("fb", "yes", q.ID)),
		tgui.Btn("👎 Не помог", tgui.Data("fb", "no", q.ID)),
	)
	if q.Remind {
		kb.Row(tgui.Btn("⏰ Напомнить", tgui.Data("rem", "auto", q.ID)))
	}
	kb.Row(tgui.Btn("🔙 Главное меню", tgui.Data("menu", "main", "")))

	// The answer goes out as a new message so the question list stays
	// on screen for further browsing.
	r.reply(ctx, cb.ChatID, q.Answer, kb.Markup())
	r.answer(ctx, cb, "")
}

func (r *Router) addNav(kb *tgui.Inline, hasPrev, hasNext bool, page int, data func(page int) string) {
	var btns []struct{ text, data string }
	if hasPrev {
		btns = append(btns, struct{ text, data string }{"⬅️", data(page - 1)})
	}
	if hasNext {
		btns = append(btns, struct{ text, data string }{"➡️", data(page + 1)})
	}
	switch len(btns) {
	case 1:
		kb.Row(tgui.Btn(btns[0].text, btns[0].data))
	case 2:
		kb.Row(
			tgui.Btn(btns[0].text, btns[0].data),
			tgui.Btn(btns[1].text, btns[1].data),
		)
	}
}
