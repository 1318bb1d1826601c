package syncutil

import (
	"sync"
	"testing"
)

func TestSpinlockMutualExclusion(t *testing.T) {
	var l Spinlock
	var counter int
	var wg sync.WaitGroup
	const n = 500
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.Lock()
			counter++
			l.Unlock()
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestSpinlockTryLock(t *testing.T) {
	var l Spinlock
	if !l.TryLock() {
		t.Fatal("expected first TryLock to succeed")
	}
	if l.TryLock() {
		t.Fatal("expected second TryLock to fail")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("expected TryLock after Unlock to succeed")
	}
}

func TestRWSpinlockReadersConcurrent(t *testing.T) {
	var l RWSpinlock
	var wg sync.WaitGroup
	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.LockRead()
			l.UnlockRead()
		}()
	}
	wg.Wait()
}

func TestRWSpinlockWriteExclusion(t *testing.T) {
	var l RWSpinlock
	var counter int
	var wg sync.WaitGroup
	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.LockWrite()
			counter++
			l.UnlockWrite()
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}
