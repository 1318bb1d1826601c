// Package alloc defines the allocator trait shared by the render core
// and implements its three built-in variants: a thin wrapper over the
// Go heap (System), a monotonic bump allocator (Bump), and a
// fixed-chunk pool allocator (Pool).
//
// Every variant embeds a Header tracking outstanding bytes and
// allocation counts; the backing implementation updates it under its
// own synchronization, so Header.Stats is safe to call concurrently
// with Alloc/Free.
package alloc

import (
	"sync/atomic"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// Alignment is the platform alignment every allocation satisfies
// unless a larger explicit alignment is requested. It matches
// spec.md's ALLOC_ALIGNMENT (16 bytes on 64-bit targets).
const Alignment = 16

// Allocator is the common interface implemented by System, Bump, and
// Pool. All methods are safe for concurrent use from multiple
// goroutines.
type Allocator interface {
	// Alloc allocates size bytes aligned to Alignment.
	Alloc(size int) ([]byte, error)
	// AlignedAlloc allocates size bytes aligned to align (which must
	// be a power of two).
	AlignedAlloc(size, align int) ([]byte, error)
	// Realloc resizes a previous allocation, preserving its contents
	// up to min(oldSize, newSize). Returns dserr.PermissionDenied if
	// the underlying allocator does not support reallocation.
	Realloc(buf []byte, newSize int) ([]byte, error)
	// AlignedRealloc is Realloc with an explicit alignment.
	AlignedRealloc(buf []byte, newSize, align int) ([]byte, error)
	// Free releases buf. It returns true when the call completes
	// without error, even when the allocator cannot recover the
	// space (e.g. Bump).
	Free(buf []byte) (bool, error)
	// Stats returns a snapshot of the allocator's bookkeeping.
	Stats() Header
}

// Header is the bookkeeping block embedded in every allocator
// variant. Fields are updated with atomic operations so Stats can be
// read without additional locking.
type Header struct {
	size               int64
	totalAllocations   int64
	currentAllocations int64
}

// Stats returns an instantaneous snapshot.
func (h *Header) Stats() Header {
	return Header{
		size:               atomic.LoadInt64(&h.size),
		totalAllocations:   atomic.LoadInt64(&h.totalAllocations),
		currentAllocations: atomic.LoadInt64(&h.currentAllocations),
	}
}

// Size reports bytes currently outstanding.
func (h Header) Size() int64 { return h.size }

// TotalAllocations reports the monotonic count of Alloc/AlignedAlloc
// calls that succeeded since creation.
func (h Header) TotalAllocations() int64 { return h.totalAllocations }

// CurrentAllocations reports the number of live allocations.
func (h Header) CurrentAllocations() int64 { return h.currentAllocations }

func (h *Header) recordAlloc(size int) {
	atomic.AddInt64(&h.size, int64(size))
	atomic.AddInt64(&h.totalAllocations, 1)
	atomic.AddInt64(&h.currentAllocations, 1)
}

func (h *Header) recordResize(delta int) {
	atomic.AddInt64(&h.size, int64(delta))
}

func (h *Header) recordFree(size int) {
	atomic.AddInt64(&h.size, -int64(size))
	atomic.AddInt64(&h.currentAllocations, -1)
}

// alignUp rounds v up to the nearest multiple of align (a power of
// two).
func alignUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

// checkAllocArgs validates the common alloc(size) precondition shared
// by every variant: size must be positive.
func checkAllocArgs(op string, size int) error {
	if size <= 0 {
		return dserr.New(op, dserr.InvalidArgument)
	}
	return nil
}

func checkAlign(op string, align int) error {
	if align <= 0 || align&(align-1) != 0 {
		return dserr.New(op, dserr.InvalidArgument)
	}
	return nil
}
