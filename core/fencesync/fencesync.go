// Package fencesync implements the pooled GPU fence-sync primitive
// described in spec.md §3: a FenceSync wraps one backend completion
// token, and a Ref layers a second, independently shared ref
// count on top so producers and consumers can hand the same token
// around without racing on its lifetime.
//
// The original C type pairs manual ref counts with a spinlock and a
// defer-destroy flag (the dsGLResource pattern spec.md §9 calls out
// for replacement). This package follows that design note: FenceSync
// and Ref are reference-counted with plain atomics, and
// returning a drained FenceSync to its Pool happens automatically when
// the last reference drops, with no lock and no deferred-destroy bit.
package fencesync

import (
	"sync"
	"sync/atomic"
)

// FenceSync wraps one backend-specific completion token (an OpenGL
// sync object in the original library; represented here as an opaque
// value set by whichever backend creates it). It is never constructed
// directly; obtain one from a Pool.
type FenceSync struct {
	pool     *Pool
	refCount atomic.Int32
	token    any
}

// SetToken records the backend-specific sync object this FenceSync
// wraps. It is set once by whichever backend call created the fence.
func (s *FenceSync) SetToken(token any) { s.token = token }

// Token returns the backend-specific sync object, or nil if none has
// been set yet.
func (s *FenceSync) Token() any { return s.token }

// AddRef increments the reference count and returns s, so callers can
// chain it at the point they hand out a second owner.
func (s *FenceSync) AddRef() *FenceSync {
	s.refCount.Add(1)
	return s
}

// Release decrements the reference count. On the last release the
// FenceSync is reset and returned to its owning Pool.
func (s *FenceSync) Release() {
	if s.refCount.Add(-1) == 0 {
		s.pool.put(s)
	}
}

// Pool recycles FenceSync objects instead of allocating one per frame,
// mirroring the bump/pool allocators' buffer reuse at the object
// level.
type Pool struct {
	mu   sync.Mutex
	free []*FenceSync
}

// NewPool creates an empty fence-sync pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a FenceSync with a reference count of 1, reused from
// the free list when available.
func (p *Pool) Acquire() *FenceSync {
	p.mu.Lock()
	n := len(p.free)
	if n == 0 {
		p.mu.Unlock()
		s := &FenceSync{pool: p}
		s.refCount.Store(1)
		return s
	}
	s := p.free[n-1]
	p.free = p.free[:n-1]
	p.mu.Unlock()
	s.refCount.Store(1)
	return s
}

func (p *Pool) put(s *FenceSync) {
	s.token = nil
	p.mu.Lock()
	p.free = append(p.free, s)
	p.mu.Unlock()
}
