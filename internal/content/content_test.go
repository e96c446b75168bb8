package content

import (
	"strings"
	"testing"
)

const sampleDoc = `
categories:
  - id: vacation
    name: "Отпуск"
    questions:
      - id: vac_days
        question: "Сколько дней отпуска?"
        answer: "28 календарных дней в год."
      - id: vac_apply
        question: "Как оформить отпуск?"
        answer: "Заявление за 14 дней."
        remind: true
        remind_text: "Подать заявление на отпуск"
  - id: internal
    name: "Для HR"
    admin_only: true
    questions:
      - id: hr_onboarding
        question: "Чек-лист онбординга"
        answer: "См. внутреннюю базу."
hr_contacts:
  email: hr@example.com
  phone: "+7 900 000-00-00"
  telegram:
    - "@hr_help"
    - ""
`

func TestParseAndLookup(t *testing.T) {
	t.Parallel()

	b, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := len(b.VisibleCategories(false)); got != 1 {
		t.Fatalf("visible for user = %d, want 1", got)
	}
	if got := len(b.VisibleCategories(true)); got != 2 {
		t.Fatalf("visible for admin = %d, want 2", got)
	}

	q := b.QuestionByID("vac_apply")
	if q == nil || !q.Remind || q.RemindText != "Подать заявление на отпуск" {
		t.Fatalf("vac_apply = %+v", q)
	}
	if b.QuestionByID("nope") != nil {
		t.Fatal("unknown question id must return nil")
	}
	if c := b.CategoryByID("vacation"); c == nil || len(c.Questions) != 2 {
		t.Fatalf("vacation category = %+v", c)
	}
}

func TestContactsCardSkipsEmpty(t *testing.T) {
	t.Parallel()

	b, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	card := b.ContactsCard()
	if !strings.Contains(card, "hr@example.com") || !strings.Contains(card, "@hr_help") {
		t.Fatalf("card missing contacts:\n%s", card)
	}
	if strings.Count(card, "Telegram:") != 1 {
		t.Fatalf("empty telegram entry must be skipped:\n%s", card)
	}
}

func TestParseRejectsBadDocs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate question id", `
categories:
  - id: a
    name: A
    questions:
      - {id: q1, question: "x", answer: "y"}
      - {id: q1, question: "z", answer: "w"}
`},
		{"remind without text", `
categories:
  - id: a
    name: A
    questions:
      - {id: q1, question: "x", answer: "y", remind: true}
`},
		{"unknown field", `
categories:
  - id: a
    name: A
    color: red
`},
		{"missing category name", `
categories:
  - id: a
`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}
