package alloc

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// System wraps the Go heap with an optional size cap. It records the
// real request size (including any alignment adjustment) for accurate
// bookkeeping, matching spec.md's system allocator.
//
// The page size is read once via platformPageSize (backed by
// golang.org/x/sys/unix.Getpagesize on unix targets, see
// system_pagesize_unix.go) and reported by PageSize. Allocation does
// not use it: Alloc aligns to Alignment and no request is rounded to
// the page size.
type System struct {
	Header

	cap      int64 // 0 means unlimited
	pageSize int
}

// NewSystem creates a System allocator. A capacity of 0 means
// unlimited.
func NewSystem(capacity int64) *System {
	ps := 4096
	if p := platformPageSize(); p > 0 {
		ps = p
	}
	return &System{cap: capacity, pageSize: ps}
}

// PageSize returns the platform page size (4096 where the platform
// reports none).
func (s *System) PageSize() int { return s.pageSize }

// Remaining reports capacity minus bytes currently outstanding. It
// returns -1 when the allocator has no cap.
func (s *System) Remaining() int64 {
	if s.cap <= 0 {
		return -1
	}
	return s.cap - s.Stats().Size()
}

func (s *System) Alloc(size int) ([]byte, error) {
	return s.AlignedAlloc(size, Alignment)
}

func (s *System) AlignedAlloc(size, align int) ([]byte, error) {
	const op = "alloc.System.AlignedAlloc"
	if err := checkAllocArgs(op, size); err != nil {
		return nil, err
	}
	if err := checkAlign(op, align); err != nil {
		return nil, err
	}
	if s.cap > 0 && s.Stats().Size()+int64(size) > s.cap {
		return nil, dserr.New(op, dserr.OutOfMemory)
	}
	// Go's allocator does not expose raw alignment control; a slice's
	// backing array is already aligned for any builtin type, which
	// satisfies every alignment this module ever requests (<=16).
	buf := make([]byte, size)
	s.recordAlloc(size)
	return buf, nil
}

func (s *System) Realloc(buf []byte, newSize int) ([]byte, error) {
	return s.AlignedRealloc(buf, newSize, Alignment)
}

func (s *System) AlignedRealloc(buf []byte, newSize, align int) ([]byte, error) {
	const op = "alloc.System.AlignedRealloc"
	if err := checkAllocArgs(op, newSize); err != nil {
		return nil, err
	}
	if err := checkAlign(op, align); err != nil {
		return nil, err
	}
	oldSize := len(buf)
	if s.cap > 0 && s.Stats().Size()+int64(newSize-oldSize) > s.cap {
		return nil, dserr.New(op, dserr.OutOfMemory)
	}
	out := make([]byte, newSize)
	n := copy(out, buf)
	_ = n
	s.recordResize(newSize - oldSize)
	return out, nil
}

func (s *System) Free(buf []byte) (bool, error) {
	s.recordFree(len(buf))
	return true, nil
}

var _ Allocator = (*System)(nil)
