package reminder

import "sync/atomic"

// IDAllocator issues strictly increasing reminder ids. Safe for concurrent
// use; each call returns a distinct value.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator seeds the allocator so the first Next() returns maxSeen+1.
func NewIDAllocator(maxSeen uint64) *IDAllocator {
	a := &IDAllocator{}
	a.last.Store(maxSeen)
	return a
}

func (a *IDAllocator) Next() uint64 { return a.last.Add(1) }
