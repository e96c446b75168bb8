package reminder

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyText = errors.New("reminder text is empty")
)

// Store is the durable owner → reminders mapping shared between the dialogue
// layer and the delivery scheduler.
//
// All mutations are serialized by a mutex and snapshot-persisted before they
// return, so a persisted state is always internally consistent. If the
// persister fails, the in-memory mutation is rolled back and the error is
// returned to the caller.
type Store struct {
	mu      sync.Mutex
	byOwner Snapshot

	alloc *IDAllocator
	pers  Persister
}

// NewStore loads the persisted snapshot and seeds the id allocator from the
// highest id found.
func NewStore(pers Persister) (*Store, error) {
	snap, err := pers.Load()
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	if snap == nil {
		snap = Snapshot{}
	}

	var maxID uint64
	for _, rs := range snap {
		for _, r := range rs {
			if r.ID > maxID {
				maxID = r.ID
			}
		}
	}

	return &Store{
		byOwner: snap,
		alloc:   NewIDAllocator(maxID),
		pers:    pers,
	}, nil
}

// Add allocates an id, appends the reminder to the owner's sequence, and
// persists. A concurrent scan never observes a half-appended entry.
func (s *Store) Add(owner int64, dueAt time.Time, text string) (uint64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.alloc.Next()
	prev := s.byOwner[owner]
	s.byOwner[owner] = append(prev, Reminder{ID: id, DueAt: dueAt, Text: text})

	if err := s.pers.Save(s.byOwner); err != nil {
		// Roll back so memory never claims more than disk holds.
		if len(prev) == 0 {
			delete(s.byOwner, owner)
		} else {
			s.byOwner[owner] = prev
		}
		return 0, fmt.Errorf("persist reminders: %w", err)
	}
	return id, nil
}

// ListDue returns all reminders with due_at <= now, across all owners,
// without removing them. Order within one scan is unspecified.
func (s *Store) ListDue(now time.Time) []Due {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Due
	for owner, rs := range s.byOwner {
		for _, r := range rs {
			if !r.DueAt.After(now) {
				due = append(due, Due{Owner: owner, Reminder: r})
			}
		}
	}
	return due
}

// Remove deletes one reminder by id and persists. Removing an id that is
// already gone is a no-op returning false, never an error.
func (s *Store) Remove(owner int64, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, found := s.removeLocked(owner, id)
	if !found {
		return false, nil
	}
	if err := s.pers.Save(s.byOwner); err != nil {
		s.byOwner[owner] = prev
		return false, fmt.Errorf("persist reminders: %w", err)
	}
	return true, nil
}

// RemoveBatch deletes the given reminders and persists once, bounding I/O
// when a delivery tick removes many entries. Missing keys are skipped.
func (s *Store) RemoveBatch(keys []Key) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep enough state to restore on persist failure.
	saved := make(map[int64][]Reminder)
	removed := 0
	for _, k := range keys {
		if _, ok := saved[k.Owner]; !ok {
			saved[k.Owner] = s.byOwner[k.Owner]
		}
		if _, found := s.removeLocked(k.Owner, k.ID); found {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.pers.Save(s.byOwner); err != nil {
		for owner, rs := range saved {
			if len(rs) == 0 {
				delete(s.byOwner, owner)
			} else {
				s.byOwner[owner] = rs
			}
		}
		return 0, fmt.Errorf("persist reminders: %w", err)
	}
	return removed, nil
}

// removeLocked removes id from owner's sequence, pruning the owner key when
// it becomes empty. Returns the owner's previous sequence and whether the id
// was found.
func (s *Store) removeLocked(owner int64, id uint64) ([]Reminder, bool) {
	prev := s.byOwner[owner]
	for i, r := range prev {
		if r.ID == id {
			next := make([]Reminder, 0, len(prev)-1)
			next = append(next, prev[:i]...)
			next = append(next, prev[i+1:]...)
			if len(next) == 0 {
				delete(s.byOwner, owner)
			} else {
				s.byOwner[owner] = next
			}
			return prev, true
		}
	}
	return prev, false
}

// ListForOwner returns a copy of the owner's reminders in insertion order.
func (s *Store) ListForOwner(owner int64) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.byOwner[owner]...)
}

// Close closes the underlying persister.
func (s *Store) Close() error {
	return s.pers.Close()
}
