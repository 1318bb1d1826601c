// Package syncutil wraps Go's concurrency primitives with the typed
// error surface spec.md §4.2/§7 expects (InvalidArgument, Busy,
// Timeout, PermissionDenied) instead of panics or silent no-ops.
// Spinlock and RWSpinlock are allocation-free atomic-word types;
// Mutex, RWLock, and ConditionVariable wrap sync.Mutex/sync.Cond with
// explicit lock-ownership tracking so Unlock on an unheld lock reports
// PermissionDenied rather than panicking like the stdlib primitive.
package syncutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// Mutex is a non-reentrant mutual-exclusion lock with explicit
// ownership tracking.
type Mutex struct {
	mu     sync.Mutex
	held   atomic.Bool
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.mu.Lock()
	m.held.Store(true)
}

// TryLock attempts to acquire the mutex without blocking. It returns
// dserr.Busy if the lock is currently held.
func (m *Mutex) TryLock() error {
	if !m.mu.TryLock() {
		return dserr.New("syncutil.Mutex.TryLock", dserr.Busy)
	}
	m.held.Store(true)
	return nil
}

// Unlock releases the mutex. It returns dserr.PermissionDenied if the
// mutex is not currently held.
func (m *Mutex) Unlock() error {
	if !m.held.CompareAndSwap(true, false) {
		return dserr.New("syncutil.Mutex.Unlock", dserr.PermissionDenied)
	}
	m.mu.Unlock()
	return nil
}

// RWLock is a reader/writer lock with explicit ownership tracking for
// the writer side (needed so Unlock can distinguish "not held" from
// "held by a reader").
type RWLock struct {
	mu         sync.RWMutex
	writeHeld  atomic.Bool
}

func (l *RWLock) LockRead() { l.mu.RLock() }

func (l *RWLock) TryLockRead() error {
	if !l.mu.TryRLock() {
		return dserr.New("syncutil.RWLock.TryLockRead", dserr.Busy)
	}
	return nil
}

func (l *RWLock) UnlockRead() { l.mu.RUnlock() }

func (l *RWLock) LockWrite() {
	l.mu.Lock()
	l.writeHeld.Store(true)
}

func (l *RWLock) TryLockWrite() error {
	if !l.mu.TryLock() {
		return dserr.New("syncutil.RWLock.TryLockWrite", dserr.Busy)
	}
	l.writeHeld.Store(true)
	return nil
}

func (l *RWLock) UnlockWrite() error {
	if !l.writeHeld.CompareAndSwap(true, false) {
		return dserr.New("syncutil.RWLock.UnlockWrite", dserr.PermissionDenied)
	}
	l.mu.Unlock()
	return nil
}

// ConditionVariable pairs with an external Mutex, matching the
// source's C API shape (wait/timedWait/notifyOne/notifyAll taking an
// already-held mutex).
type ConditionVariable struct {
	cond *sync.Cond
	mu   *sync.Mutex
}

// NewConditionVariable creates a condition variable bound to mu's
// internal lock.
func NewConditionVariable(m *Mutex) *ConditionVariable {
	return &ConditionVariable{cond: sync.NewCond(&m.mu), mu: &m.mu}
}

// Wait blocks until NotifyOne/NotifyAll is called. The caller must hold
// the associated Mutex.
func (c *ConditionVariable) Wait() { c.cond.Wait() }

// TimedWait blocks until notified or d elapses, returning
// dserr.Timeout in the latter case. The caller must hold the
// associated Mutex; it is released while waiting and re-acquired
// before returning, matching sync.Cond.Wait semantics.
func (c *ConditionVariable) TimedWait(d time.Duration) error {
	var expired atomic.Bool
	timer := time.AfterFunc(d, func() {
		expired.Store(true)
		c.cond.Broadcast()
	})
	defer timer.Stop()

	c.cond.Wait()
	if expired.Load() {
		return dserr.New("syncutil.ConditionVariable.TimedWait", dserr.Timeout)
	}
	return nil
}

// NotifyOne wakes a single waiter.
func (c *ConditionVariable) NotifyOne() { c.cond.Signal() }

// NotifyAll wakes every waiter.
func (c *ConditionVariable) NotifyAll() { c.cond.Broadcast() }
