// Package content loads the FAQ knowledge base from a YAML document:
// question categories with answers, plus the HR contact card shown when
// an answer did not help.
package content

import (
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Question is a single FAQ entry. ID must be unique across the whole
// document because callback payloads and stats counters key on it.
type Question struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`

	// Remind enables the "напомнить" shortcut under the answer;
	// RemindText is the preset body for the created reminder.
	Remind     bool   `yaml:"remind"`
	RemindText string `yaml:"remind_text"`
}

// Category groups questions. AdminOnly categories are hidden from
// regular users entirely.
type Category struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	AdminOnly bool       `yaml:"admin_only"`
	Questions []Question `yaml:"questions"`
}

// HRContacts is the escalation card.
type HRContacts struct {
	Email    string   `yaml:"email"`
	Phone    string   `yaml:"phone"`
	Telegram []string `yaml:"telegram"`
}

// Book is the loaded knowledge base with id indexes built once.
type Book struct {
	Categories []Category
	Contacts   HRContacts

	byCategory map[string]*Category
	byQuestion map[string]*Question
}

type document struct {
	Categories []Category `yaml:"categories"`
	HRContacts HRContacts `yaml:"hr_contacts"`
}

// Load reads and validates the knowledge base file.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

// Parse validates the document. Duplicate or empty ids are rejected up
// front rather than surfacing later as broken callbacks.
func Parse(data []byte) (*Book, error) {
	var doc document
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	b := &Book{
		Categories: doc.Categories,
		Contacts:   doc.HRContacts,
		byCategory: make(map[string]*Category, len(doc.Categories)),
		byQuestion: make(map[string]*Question),
	}
	for ci := range b.Categories {
		c := &b.Categories[ci]
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("category %d: id and name are required", ci)
		}
		if _, dup := b.byCategory[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		b.byCategory[c.ID] = c
		for qi := range c.Questions {
			q := &c.Questions[qi]
			if q.ID == "" || q.Question == "" {
				return nil, fmt.Errorf("category %q question %d: id and question are required", c.ID, qi)
			}
			if _, dup := b.byQuestion[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			if q.Remind && strings.TrimSpace(q.RemindText) == "" {
				return nil, fmt.Errorf("question %q: remind enabled without remind_text", q.ID)
			}
			b.byQuestion[q.ID] = q
		}
	}
	return b, nil
}

// VisibleCategories returns the categories a user may browse.
func (b *Book) VisibleCategories(admin bool) []Category {
	out := make([]Category, 0, len(b.Categories))
	for _, c := range b.Categories {
		if c.AdminOnly && !admin {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CategoryByID returns nil when the id is unknown.
func (b *Book) CategoryByID(id string) *Category { return b.byCategory[id] }

// QuestionByID returns nil when the id is unknown.
func (b *Book) QuestionByID(id string) *Question { return b.byQuestion[id] }

// ContactsCard renders the HR contact block appended to a "did not
// help" reply. Empty fields are omitted.
func (b *Book) ContactsCard() string {
	lines := []string{"😔 К сожалению, не смог помочь.", "", "📞 HR-отдел:"}
	if b.Contacts.Email != "" {
		lines = append(lines, "📧 E-mail: "+b.Contacts.Email)
	}
	if b.Contacts.Phone != "" {
		lines = append(lines, "📞 Телефон: "+b.Contacts.Phone)
	}
	for _, tg := range b.Contacts.Telegram {
		if tg != "" {
			lines = append(lines, "💬 Telegram: "+tg)
		}
	}
	return strings.Join(lines, "\n")
}
