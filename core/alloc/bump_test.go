package alloc

import (
	"sync"
	"testing"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// TestBumpBasic reproduces scenario A from spec.md §8: a 100-byte
// buffer aligned to 16.
func TestBumpBasic(t *testing.T) {
	buf := make([]byte, 100)
	b, err := NewBump(buf)
	if err != nil {
		t.Fatal(err)
	}

	check := func(size int, wantOff int, wantCounter int64) {
		t.Helper()
		p, err := b.Alloc(size)
		if err != nil {
			t.Fatalf("Alloc(%d): %v", size, err)
		}
		off := int(uintptrDiff(&p[0], &buf[0]))
		if off != wantOff {
			t.Fatalf("Alloc(%d): offset = %d, want %d", size, off, wantOff)
		}
		if got := b.Stats().Size(); got != wantCounter {
			t.Fatalf("Alloc(%d): counter = %d, want %d", size, got, wantCounter)
		}
	}

	check(10, 0, 10)
	check(30, 16, 46)

	if _, err := b.Alloc(60); dserr.KindOf(err) != dserr.OutOfMemory {
		t.Fatalf("Alloc(60): expected OutOfMemory, got %v", err)
	}

	check(40, 48, 88)
	check(1, 96, 97)

	if _, err := b.Alloc(1); dserr.KindOf(err) != dserr.OutOfMemory {
		t.Fatalf("final Alloc(1): expected OutOfMemory, got %v", err)
	}
}

func TestBumpResetsCursor(t *testing.T) {
	b, err := NewBump(make([]byte, 64))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Alloc(32); err != nil {
		t.Fatal(err)
	}
	b.Reset()
	if got := b.Stats().Size(); got != 0 {
		t.Fatalf("after Reset: size = %d, want 0", got)
	}
	if _, err := b.Alloc(64); err != nil {
		t.Fatalf("Alloc after Reset: %v", err)
	}
}

// TestBumpConcurrent verifies property 1 from spec.md §8: disjoint,
// in-bounds, aligned ranges under concurrent allocation.
func TestBumpConcurrent(t *testing.T) {
	const n = 200
	const size = 16
	buf := make([]byte, n*size)
	b, err := NewBump(buf)
	if err != nil {
		t.Fatal(err)
	}

	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := b.Alloc(size)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = p
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	base := &buf[0]
	for _, p := range results {
		if p == nil {
			continue
		}
		off := int(uintptrDiff(&p[0], base))
		if off%Alignment != 0 {
			t.Fatalf("offset %d not aligned", off)
		}
		if off < 0 || off+size > len(buf) {
			t.Fatalf("offset %d out of bounds", off)
		}
		if seen[off] {
			t.Fatalf("offset %d allocated twice", off)
		}
		seen[off] = true
	}
	if got := b.Stats().Size(); got != int64(n*size) {
		t.Fatalf("final size = %d, want %d", got, n*size)
	}
}

func TestBumpRejectsZeroBuffer(t *testing.T) {
	if _, err := NewBump(nil); dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestBumpFreeIsNoop(t *testing.T) {
	b, _ := NewBump(make([]byte, 16))
	p, _ := b.Alloc(8)
	ok, err := b.Free(p)
	if !ok || err != nil {
		t.Fatalf("Free: got (%v, %v), want (true, nil)", ok, err)
	}
}

func TestBumpRealloc(t *testing.T) {
	b, _ := NewBump(make([]byte, 16))
	if _, err := b.Realloc(nil, 8); dserr.KindOf(err) != dserr.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}
