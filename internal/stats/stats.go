// Package stats tracks answer feedback: how often each FAQ question was
// marked helpful or not. Counters survive restarts via a JSON file.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Entry is one row of a ranked report.
type Entry struct {
	QuestionID string
	Count      int
}

type snapshot struct {
	Helpful    map[string]int `json:"helpful"`
	NotHelpful map[string]int `json:"not_helpful"`
}

// Counters is a persistent pair of per-question counters. Safe for
// concurrent use.
type Counters struct {
	mu   sync.Mutex
	path string
	s    snapshot
}

// Open loads counters from path, starting empty if the file is missing.
func Open(path string) (*Counters, error) {
	c := &Counters{
		path: path,
		s: snapshot{
			Helpful:    map[string]int{},
			NotHelpful: map[string]int{},
		},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse stats: %w", err)
	}
	if s.Helpful != nil {
		c.s.Helpful = s.Helpful
	}
	if s.NotHelpful != nil {
		c.s.NotHelpful = s.NotHelpful
	}
	return c, nil
}

// MarkHelpful increments the helpful counter for questionID and persists.
func (c *Counters) MarkHelpful(questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Helpful[questionID]++
	if err := c.saveLocked(); err != nil {
		c.s.Helpful[questionID]--
		return err
	}
	return nil
}

// MarkNotHelpful increments the not-helpful counter and persists.
func (c *Counters) MarkNotHelpful(questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.NotHelpful[questionID]++
	if err := c.saveLocked(); err != nil {
		c.s.NotHelpful[questionID]--
		return err
	}
	return nil
}

// TopNotHelpful returns up to n questions ranked by not-helpful count,
// ties broken by question id for a stable report.
func (c *Counters) TopNotHelpful(n int) []Entry {
	c.mu.Lock()
	out := make([]Entry, 0, len(c.s.NotHelpful))
	for q, cnt := range c.s.NotHelpful {
		out = append(out, Entry{QuestionID: q, Count: cnt})
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Totals returns the overall helpful / not-helpful sums.
func (c *Counters) Totals() (helpful, notHelpful int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.s.Helpful {
		helpful += v
	}
	for _, v := range c.s.NotHelpful {
		notHelpful += v
	}
	return helpful, notHelpful
}

func (c *Counters) saveLocked() error {
	data, err := json.MarshalIndent(c.s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace stats: %w", err)
	}
	return nil
}
