package container

import (
	"fmt"
	"testing"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// TestHashTableRoundTrip verifies property 3 from spec.md §8:
// insert+find round-trips for an injective key stream, and
// remove+find returns not-found.
func TestHashTableRoundTrip(t *testing.T) {
	h := NewHashTable[int](16)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := h.Insert(key, i); err != nil {
			t.Fatalf("Insert(%s): %v", key, err)
		}
	}
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		v, ok := h.Find(key)
		if !ok || v != i {
			t.Fatalf("Find(%s) = (%d, %v), want (%d, true)", key, v, ok, i)
		}
	}
	if h.Len() != 100 {
		t.Fatalf("Len = %d, want 100", h.Len())
	}

	h.Remove("key-50")
	if _, ok := h.Find("key-50"); ok {
		t.Fatal("Find after Remove: expected false")
	}
	if h.Len() != 99 {
		t.Fatalf("Len after Remove = %d, want 99", h.Len())
	}
}

func TestHashTableDuplicateInsertFails(t *testing.T) {
	h := NewHashTable[int](4)
	if err := h.Insert("a", 1); err != nil {
		t.Fatal(err)
	}
	if err := h.Insert("a", 2); dserr.KindOf(err) != dserr.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestHashTablePreservesInsertionOrder(t *testing.T) {
	h := NewHashTable[int](4)
	order := []string{"z", "a", "m", "b"}
	for i, k := range order {
		if err := h.Insert(k, i); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	h.Each(func(k string, _ int) { got = append(got, k) })
	for i := range order {
		if got[i] != order[i] {
			t.Fatalf("iteration order = %v, want %v", got, order)
		}
	}
}

func TestHashTableRehash(t *testing.T) {
	h := NewHashTable[int](4)
	for i := 0; i < 20; i++ {
		h.Insert(fmt.Sprintf("k%d", i), i)
	}
	h.Rehash(64)
	for i := 0; i < 20; i++ {
		v, ok := h.Find(fmt.Sprintf("k%d", i))
		if !ok || v != i {
			t.Fatalf("after Rehash, Find(k%d) = (%d,%v)", i, v, ok)
		}
	}
	if h.Len() != 20 {
		t.Fatalf("Len after Rehash = %d, want 20", h.Len())
	}
}

func TestNextPrimeAtLeast(t *testing.T) {
	cases := map[int]int{1: 2, 2: 2, 3: 3, 4: 5, 8: 11, 10: 11, 25: 29}
	for in, want := range cases {
		if got := nextPrimeAtLeast(in); got != want {
			t.Fatalf("nextPrimeAtLeast(%d) = %d, want %d", in, got, want)
		}
	}
}
