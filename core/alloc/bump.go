package alloc

import (
	"sync/atomic"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// Bump is a monotonic bump allocator over a fixed-size byte buffer.
// Alloc advances an atomic cursor; Free is a no-op (it still returns
// true, per spec.md §4.1); Reset restores the cursor to zero.
//
// Invariant: cursor <= len(buffer) at all times, and every returned
// allocation satisfies its requested alignment.
type Bump struct {
	Header

	buf    []byte
	cursor int64
}

// NewBump initializes a Bump allocator over buf. buf's address must
// already be aligned to Alignment (true for any Go-allocated slice
// whose backing array starts at a word boundary, which is always the
// case for make([]byte, n)). size 0 is rejected.
func NewBump(buf []byte) (*Bump, error) {
	const op = "alloc.NewBump"
	if len(buf) == 0 {
		return nil, dserr.New(op, dserr.InvalidArgument)
	}
	return &Bump{buf: buf}, nil
}

// Cap returns the total buffer size.
func (b *Bump) Cap() int { return len(b.buf) }

// Reset restores the cursor to zero. Callers must ensure no live
// references into the buffer survive the reset.
func (b *Bump) Reset() {
	atomic.StoreInt64(&b.cursor, 0)
	atomic.StoreInt64(&b.size, 0)
}

func (b *Bump) Alloc(size int) ([]byte, error) {
	return b.AlignedAlloc(size, Alignment)
}

// AlignedAlloc rounds the cursor up to the larger of align and
// Alignment via a CAS loop, then advances it by the aligned size.
func (b *Bump) AlignedAlloc(size, align int) ([]byte, error) {
	const op = "alloc.Bump.AlignedAlloc"
	if err := checkAllocArgs(op, size); err != nil {
		return nil, err
	}
	if err := checkAlign(op, align); err != nil {
		return nil, err
	}
	if align < Alignment {
		align = Alignment
	}

	for {
		cur := atomic.LoadInt64(&b.cursor)
		start := int64(alignUp(int(cur), align))
		end := start + int64(size)
		if end > int64(len(b.buf)) {
			return nil, dserr.New(op, dserr.OutOfMemory)
		}
		if atomic.CompareAndSwapInt64(&b.cursor, cur, end) {
			b.recordAllocConsumed(int(end - cur))
			return b.buf[start:end:end], nil
		}
		// lost the race, retry
	}
}

// recordAllocConsumed records the total bytes consumed by an
// allocation including alignment padding, matching the spec's
// requirement that the counter reflect the actual bytes consumed.
func (b *Bump) recordAllocConsumed(consumed int) {
	atomic.AddInt64(&b.size, int64(consumed))
	atomic.AddInt64(&b.totalAllocations, 1)
	atomic.AddInt64(&b.currentAllocations, 1)
}

// Realloc is unsupported: Bump has no realloc_fn, per spec.md §4.1.
func (b *Bump) Realloc(buf []byte, newSize int) ([]byte, error) {
	return nil, dserr.New("alloc.Bump.Realloc", dserr.PermissionDenied)
}

// AlignedRealloc is unsupported for the same reason as Realloc.
func (b *Bump) AlignedRealloc(buf []byte, newSize, align int) ([]byte, error) {
	return nil, dserr.New("alloc.Bump.AlignedRealloc", dserr.PermissionDenied)
}

// Free is a no-op that always reports success; bump allocations are
// only reclaimed in bulk via Reset.
func (b *Bump) Free(buf []byte) (bool, error) {
	return true, nil
}

var _ Allocator = (*Bump)(nil)
