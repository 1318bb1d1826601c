package alloc

import (
	"sync"
	"testing"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

func newTestPool(t *testing.T, chunkSize, chunkCount int) *Pool {
	t.Helper()
	aligned := alignUp(chunkSize, Alignment)
	if aligned < wordSize {
		aligned = alignUp(wordSize, Alignment)
	}
	p, err := NewPool(make([]byte, aligned*chunkCount), chunkSize, chunkCount)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPoolAllocFreeRoundTrip(t *testing.T) {
	p := newTestPool(t, 32, 4)

	var chunks [][]byte
	for i := 0; i < 4; i++ {
		c, err := p.Alloc(32)
		if err != nil {
			t.Fatalf("Alloc %d: %v", i, err)
		}
		chunks = append(chunks, c)
	}
	if _, err := p.Alloc(32); dserr.KindOf(err) != dserr.OutOfMemory {
		t.Fatalf("expected OutOfMemory once exhausted, got %v", err)
	}
	if !p.Validate() {
		t.Fatal("Validate: expected true")
	}

	for _, c := range chunks {
		ok, err := p.Free(c)
		if !ok || err != nil {
			t.Fatalf("Free: got (%v, %v)", ok, err)
		}
	}
	if !p.Validate() {
		t.Fatal("Validate after freeing all: expected true")
	}
	if fc := p.FreeCount(); fc != 4 {
		t.Fatalf("FreeCount = %d, want 4", fc)
	}
}

// TestPoolConcurrent verifies property 2 from spec.md §8: after any
// interleaving of Alloc/Free across goroutines, Validate holds and
// freeCount+outstanding == chunkCount.
func TestPoolConcurrent(t *testing.T) {
	const chunkCount = 64
	p := newTestPool(t, 24, chunkCount)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var live [][]byte

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c, err := p.Alloc(24)
				if err != nil {
					continue
				}
				mu.Lock()
				live = append(live, c)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if !p.Validate() {
		t.Fatal("Validate: expected true after concurrent allocs")
	}
	outstanding := len(live)
	if fc := p.FreeCount(); fc+outstanding != chunkCount {
		t.Fatalf("free=%d + outstanding=%d != chunkCount=%d", fc, outstanding, chunkCount)
	}

	for _, c := range live {
		if ok, err := p.Free(c); !ok || err != nil {
			t.Fatalf("Free: (%v, %v)", ok, err)
		}
	}
	if !p.Validate() {
		t.Fatal("Validate: expected true after freeing everything")
	}
	if fc := p.FreeCount(); fc != chunkCount {
		t.Fatalf("FreeCount = %d, want %d", fc, chunkCount)
	}
}

func TestPoolRejectsMismatchedBuffer(t *testing.T) {
	if _, err := NewPool(make([]byte, 10), 32, 4); dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestPoolReset(t *testing.T) {
	p := newTestPool(t, 16, 4)
	for i := 0; i < 4; i++ {
		if _, err := p.Alloc(16); err != nil {
			t.Fatal(err)
		}
	}
	p.Reset()
	if fc := p.FreeCount(); fc != 4 {
		t.Fatalf("FreeCount after Reset = %d, want 4", fc)
	}
	if !p.Validate() {
		t.Fatal("Validate after Reset: expected true")
	}
}
