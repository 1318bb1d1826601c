// Package tlocal implements the thread-local object storage facility
// described in spec.md §3/§4.4: a slot that holds at most one value
// per calling thread, with a destructor invoked on overwrite and on
// final teardown.
//
// Go has no exposed goroutine-local storage (unlike the pthread TLS
// the original C facility wraps), so this package keys values by the
// calling goroutine's runtime id, recovered from its stack trace
// header the way several goroutine-local-storage libraries in the
// wider ecosystem do (e.g. jtolds/gls, petermattis/goid). That keying
// is confined to goid.go; callers only ever see Storage[T].
package tlocal

import (
	"sync"
)

// Destructor is invoked on a value that is being replaced or that is
// still present when the Storage is destroyed.
type Destructor[T any] func(T)

// Storage holds at most one T per calling goroutine.
type Storage[T any] struct {
	mu    sync.Mutex
	slots map[int64]T
	dtor  Destructor[T]
}

// New creates a Storage whose values are released through dtor. dtor
// may be nil, in which case overwritten and torn-down values are
// simply dropped.
func New[T any](dtor Destructor[T]) *Storage[T] {
	return &Storage[T]{
		slots: make(map[int64]T),
		dtor:  dtor,
	}
}

// Set stores v for the calling goroutine, destroying any value it
// replaces unless the replacement is the same value.
func (s *Storage[T]) Set(v T) {
	id := CurrentGoroutineID()
	s.mu.Lock()
	old, had := s.slots[id]
	s.slots[id] = v
	s.mu.Unlock()
	if had && s.dtor != nil && !sameValue(old, v) {
		s.dtor(old)
	}
}

// Get returns the calling goroutine's value, if any.
func (s *Storage[T]) Get() (T, bool) {
	id := CurrentGoroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[id]
	return v, ok
}

// Take returns and clears the calling goroutine's value without
// invoking the destructor.
func (s *Storage[T]) Take() (T, bool) {
	id := CurrentGoroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[id]
	if ok {
		delete(s.slots, id)
	}
	return v, ok
}

// Destroy invokes the destructor, if any, on every thread's remaining
// value exactly once, then clears the storage.
func (s *Storage[T]) Destroy() {
	s.mu.Lock()
	slots := s.slots
	s.slots = make(map[int64]T)
	dtor := s.dtor
	s.mu.Unlock()
	if dtor == nil {
		return
	}
	for _, v := range slots {
		dtor(v)
	}
}

// sameValue compares two T values via interface equality. It panics if
// T's dynamic type is uncomparable (slice, map, func); callers storing
// such types should not rely on overwrite-elision.
func sameValue[T any](a, b T) bool {
	return any(a) == any(b)
}
