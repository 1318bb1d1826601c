package respool

import (
	"sync"
	"testing"
)

type fakePool struct {
	id int
}

func testBackend(t *testing.T) (Backend, *int, *[]string) {
	t.Helper()
	var nextID int
	var submitOrder []string
	var mu sync.Mutex
	return Backend{
		Create: func() (any, error) {
			mu.Lock()
			defer mu.Unlock()
			nextID++
			return &fakePool{id: nextID}, nil
		},
		Begin: func(pool any) (any, error) {
			return pool, nil // the "command buffer" is just the pool itself here
		},
		End: func(cb any) error { return nil },
		Reset: func(pool any) error { return nil },
		Submit: func(primary, secondary any) error {
			mu.Lock()
			defer mu.Unlock()
			fp := secondary.(*fakePool)
			submitOrder = append(submitOrder, poolName(fp))
			return nil
		},
	}, &nextID, &submitOrder
}

func poolName(fp *fakePool) string {
	names := []string{"", "a", "b", "c", "d", "e"}
	if fp.id < len(names) {
		return names[fp.id]
	}
	return "?"
}

func TestAcquireFlushSubmitCycle(t *testing.T) {
	backend, _, submitOrder := testBackend(t)
	var deferredSeen bool
	p := New(backend, func() uint64 { deferredSeen = true; return 1 }, func(uint64) {})

	cb1, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	cb2, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	if avail, active, pending := p.Counts(); active != 2 || avail != 0 || pending != 0 {
		t.Fatalf("counts after acquire = (%d,%d,%d)", avail, active, pending)
	}

	if err := p.Flush(cb1); err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(cb2); err != nil {
		t.Fatal(err)
	}
	if avail, active, pending := p.Counts(); active != 0 || pending != 2 {
		t.Fatalf("counts after flush = (%d,%d,%d)", avail, active, pending)
	}

	if err := p.Submit("main"); err != nil {
		t.Fatal(err)
	}
	if !deferredSeen {
		t.Fatal("expected beginDeferredResources to be called")
	}
	if avail, active, pending := p.Counts(); avail != 2 || active != 0 || pending != 0 {
		t.Fatalf("counts after submit = (%d,%d,%d)", avail, active, pending)
	}
	if len(*submitOrder) != 2 {
		t.Fatalf("submitOrder = %v, want 2 entries", *submitOrder)
	}
}

func TestAcquireReusesAvailablePool(t *testing.T) {
	backend, nextID, _ := testBackend(t)
	p := New(backend, nil, nil)

	cb, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(cb); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit("main"); err != nil {
		t.Fatal(err)
	}
	if *nextID != 1 {
		t.Fatalf("pools created = %d, want 1", *nextID)
	}

	if _, err := p.Acquire(); err != nil {
		t.Fatal(err)
	}
	if *nextID != 1 {
		t.Fatalf("pools created after reuse = %d, want 1 (should reuse)", *nextID)
	}
}

func TestFlushUnknownHandleFails(t *testing.T) {
	backend, _, _ := testBackend(t)
	p := New(backend, nil, nil)
	if err := p.Flush("not acquired"); err == nil {
		t.Fatal("expected error flushing an unacquired handle")
	}
}
