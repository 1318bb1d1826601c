// Package uniquename implements the process-wide unique-name interning
// table from spec.md §3: a string -> uint32 id mapping where 0 is
// reserved for "missing" and ids are otherwise stable for the process
// lifetime.
package uniquename

import (
	"sync"

	"github.com/akb825/DeepSea-sub003/core/container"
)

// Table is an explicitly-initialized interning table. The zero value
// is not usable; call New.
type Table struct {
	mu    sync.Mutex
	ids   *container.HashTable[uint32]
	pool  *container.StringPool
	next  uint32
	cap   int
	count int
}

// New creates a Table with the given initial capacity hint.
func New(initialCapacity int) *Table {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Table{
		ids:  container.NewHashTable[uint32](initialCapacity),
		pool: container.NewStringPool(),
		next: 1,
		cap:  initialCapacity,
	}
}

// Create returns the id for s, inserting it (and copying s into the
// pool's internal storage) if it was not already present. Ids start
// at 1; 0 is never returned.
func (t *Table) Create(s string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.ids.Find(s); ok {
		return id
	}
	interned := t.pool.Intern(s)
	id := t.next
	t.next++
	// Insert cannot fail here: Find above established s is absent.
	_ = t.ids.Insert(interned, id)
	t.count++
	if t.count > t.cap {
		t.cap *= 2
		t.ids.Rehash(t.cap * 4 / 3)
	}
	return id
}

// Get returns the id for s, or 0 if s was never interned.
func (t *Table) Get(s string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids.Find(s)
	if !ok {
		return 0
	}
	return id
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
