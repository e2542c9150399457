package fsh

import (
	"container/heap"
	"sync"
)

// idSpace hands out dense non-negative handles below a fixed ceiling.
// Freed handles are reused lowest-first, keeping the live set dense.
// Allocation fails once every value below the ceiling is live.
type idSpace struct {
	mu    sync.Mutex
	limit int64 // first value that is never handed out
	next  int64 // lowest never-allocated value
	free  handleHeap
}

func newIDSpace(limit int64) *idSpace {
	return &idSpace{limit: limit}
}

// alloc returns the lowest free handle, or (HandleInvalid, false) on
// exhaustion.
func (s *idSpace) alloc() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.free.Len() > 0 {
		return heap.Pop(&s.free).(Handle), true
	}
	if s.next >= s.limit {
		return HandleInvalid, false
	}
	h := Handle(s.next)
	s.next++
	return h, true
}

// release returns a handle to the space. The framework frees a handle
// exactly once, at final reclamation; double-free is a caller bug the
// space does not defend against.
func (s *idSpace) release(h Handle) {
	s.mu.Lock()
	heap.Push(&s.free, h)
	s.mu.Unlock()
}

// handleHeap is a min-heap of freed handles, so reuse picks the lowest.
type handleHeap []Handle

func (h handleHeap) Len() int            { return len(h) }
func (h handleHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h handleHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *handleHeap) Push(x any)         { *h = append(*h, x.(Handle)) }
func (h *handleHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
