package syncutil

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a stateless (no allocation) mutual-exclusion lock backed
// by a single atomic word.
type Spinlock struct {
	state atomic.Bool
}

// Lock spins until the lock is acquired.
func (s *Spinlock) Lock() {
	for !s.state.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without spinning.
func (s *Spinlock) TryLock() bool {
	return s.state.CompareAndSwap(false, true)
}

// Unlock releases the lock.
func (s *Spinlock) Unlock() {
	s.state.Store(false)
}

// RWSpinlock composes a reader count and a writer flag into a single
// atomic word: the writer spins until both fields are zero, then
// CAS-sets the writer bit; readers CAS-increment only when the writer
// bit is clear.
type RWSpinlock struct {
	word atomic.Uint32
}

const rwSpinWriterBit = uint32(1) << 31

// LockRead spins until no writer holds the lock, then registers as a
// reader.
func (l *RWSpinlock) LockRead() {
	for {
		cur := l.word.Load()
		if cur&rwSpinWriterBit != 0 {
			runtime.Gosched()
			continue
		}
		if l.word.CompareAndSwap(cur, cur+1) {
			return
		}
	}
}

// UnlockRead releases one reader registration.
func (l *RWSpinlock) UnlockRead() {
	l.word.Add(^uint32(0)) // -1
}

// LockWrite spins until there are no readers and no writer, then
// claims the writer bit.
func (l *RWSpinlock) LockWrite() {
	for {
		if l.word.CompareAndSwap(0, rwSpinWriterBit) {
			return
		}
		runtime.Gosched()
	}
}

// UnlockWrite releases the writer bit.
func (l *RWSpinlock) UnlockWrite() {
	l.word.Store(0)
}
