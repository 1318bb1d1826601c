package fencesync

import "sync/atomic"

// Ref is the second, independently shared ref count layered over a
// FenceSync: per spec.md §3, it is "set once by the consumer thread
// then read by submitters". Multiple submitters can each AddRef/
// Release the same Ref concurrently with the single Set call, since
// Set uses a CAS and submitters only ever read the resulting pointer.
type Ref struct {
	refCount atomic.Int32
	sync     atomic.Pointer[FenceSync]
}

// NewRef creates a Ref with a reference count of 1 and no FenceSync
// set yet.
func NewRef() *Ref {
	r := &Ref{}
	r.refCount.Store(1)
	return r
}

// Set attaches sync to this Ref, taking ownership of the caller's
// reference to it (the caller should not Release sync itself after a
// successful Set). It reports whether this call won the race to set
// it; a Ref's FenceSync is set at most once.
func (r *Ref) Set(sync *FenceSync) bool {
	return r.sync.CompareAndSwap(nil, sync)
}

// Sync returns the attached FenceSync, or nil if Set has not yet been
// called.
func (r *Ref) Sync() *FenceSync {
	return r.sync.Load()
}

// AddRef increments the reference count and returns r.
func (r *Ref) AddRef() *Ref {
	r.refCount.Add(1)
	return r
}

// Release decrements the reference count. On the last release, if a
// FenceSync was attached, it is released in turn.
func (r *Ref) Release() {
	if r.refCount.Add(-1) == 0 {
		if s := r.sync.Load(); s != nil {
			s.Release()
		}
	}
}
