// Package respool implements the resource command-buffer pool:
// auxiliary command buffers acquired off the main thread for deferred
// GPU resource operations, flushed and finally submitted onto the main
// command buffer in a single linear order at the deferred-resource
// boundary (spec.md §4.5).
package respool

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/core/syncutil"
)

// CommandBufferPool is an opaque auxiliary pool the backend creates;
// the contents are backend-specific, so this package only tracks
// identity and lifecycle state.
type CommandBufferPool struct {
	Native any
}

// activeEntry pairs an active pool with the live command buffer
// Acquire most recently began on it, so Flush can locate the pool from
// the handle the caller actually records commands against.
type activeEntry struct {
	pool *CommandBufferPool
	cb   any
}

// Backend is the subset of the backend vtable (gfx/backend.Functions)
// this package calls through, narrowed to what acquire/flush/submit
// need.
type Backend struct {
	Create func() (any, error)
	Begin  func(pool any) (any, error)
	End    func(cb any) error
	Reset  func(pool any) error
	Submit func(primary, secondary any) error
}

// Pool holds the three dynamic vectors of spec.md §4.5: available,
// pending, and active, each guarded by its own spinlock so acquire,
// flush, and submit never contend with each other over a single lock.
type Pool struct {
	backend Backend

	availableMu syncutil.Spinlock
	available   []*CommandBufferPool

	activeMu syncutil.Spinlock
	active   []activeEntry

	pendingMu syncutil.Spinlock
	pending   []*CommandBufferPool

	beginDeferredResources func() uint64
	endDeferredResources   func(swapCount uint64)
}

// New creates an empty resource command-buffer pool. beginDeferred and
// endDeferred wrap submit() in the GPU profiler's
// beginDeferredResources/endDeferredResources scope (spec.md §4.5);
// either may be nil.
func New(backend Backend, beginDeferred func() uint64, endDeferred func(uint64)) *Pool {
	return &Pool{backend: backend, beginDeferredResources: beginDeferred, endDeferredResources: endDeferred}
}

// Acquire pops one pool from available (creating one if empty), begins
// it, and moves it to active. Safe to call from any goroutine
// concurrently with Flush and Submit.
func (p *Pool) Acquire() (any, error) {
	const op = "respool.Pool.Acquire"

	p.availableMu.Lock()
	var cbp *CommandBufferPool
	if n := len(p.available); n > 0 {
		cbp = p.available[n-1]
		p.available = p.available[:n-1]
	}
	p.availableMu.Unlock()

	if cbp == nil {
		if p.backend.Create == nil {
			return nil, dserr.New(op, dserr.PermissionDenied)
		}
		native, err := p.backend.Create()
		if err != nil {
			return nil, err
		}
		cbp = &CommandBufferPool{Native: native}
	}

	if p.backend.Begin == nil {
		return nil, dserr.New(op, dserr.PermissionDenied)
	}
	cb, err := p.backend.Begin(cbp.Native)
	if err != nil {
		return nil, err
	}

	p.activeMu.Lock()
	p.active = append(p.active, activeEntry{pool: cbp, cb: cb})
	p.activeMu.Unlock()

	return cb, nil
}

// Flush locates the pool backing cb (the handle Acquire returned),
// ends it, and moves it to pending. Safe to call from any goroutine
// concurrently with Acquire and Submit.
func (p *Pool) Flush(cb any) error {
	const op = "respool.Pool.Flush"

	p.activeMu.Lock()
	idx := -1
	for i, e := range p.active {
		if e.cb == cb {
			idx = i
			break
		}
	}
	var found *CommandBufferPool
	if idx >= 0 {
		found = p.active[idx].pool
		p.active[idx] = p.active[len(p.active)-1]
		p.active = p.active[:len(p.active)-1]
	}
	p.activeMu.Unlock()

	if found == nil {
		return dserr.New(op, dserr.NotFound)
	}

	if p.backend.End != nil {
		if err := p.backend.End(cb); err != nil {
			return err
		}
	}

	p.pendingMu.Lock()
	p.pending = append(p.pending, found)
	p.pendingMu.Unlock()
	return nil
}

// Submit submits every pending pool onto mainCommandBuffer in order,
// resets each, and moves them to available. Callers must only invoke
// this from the main thread (spec.md §4.5, §5): submit establishes the
// one linear ordering point for resource operations flushed from
// arbitrary threads.
func (p *Pool) Submit(mainCommandBuffer any) error {
	p.pendingMu.Lock()
	batch := p.pending
	p.pending = nil
	p.pendingMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var swapCount uint64
	if p.beginDeferredResources != nil {
		swapCount = p.beginDeferredResources()
	}
	defer func() {
		if p.endDeferredResources != nil {
			p.endDeferredResources(swapCount)
		}
	}()

	for _, cbp := range batch {
		if p.backend.Submit != nil {
			if err := p.backend.Submit(mainCommandBuffer, cbp.Native); err != nil {
				return err
			}
		}
		if p.backend.Reset != nil {
			if err := p.backend.Reset(cbp.Native); err != nil {
				return err
			}
		}
	}

	p.availableMu.Lock()
	p.available = append(p.available, batch...)
	p.availableMu.Unlock()
	return nil
}

// Counts returns the number of pools currently available, active, and
// pending, for tests and diagnostics.
func (p *Pool) Counts() (available, active, pending int) {
	p.availableMu.Lock()
	available = len(p.available)
	p.availableMu.Unlock()
	p.activeMu.Lock()
	active = len(p.active)
	p.activeMu.Unlock()
	p.pendingMu.Lock()
	pending = len(p.pending)
	p.pendingMu.Unlock()
	return
}
