package container

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// HashTable is a hash table on string keys whose nodes also carry
// global list linkage, preserving insertion order across iteration
// (spec.md §3: "a bucket array... each bucket threading through a
// separate link set within a hash-table node that also embeds a
// global list node"). Values are stored by the caller's type T.
type HashTable[T any] struct {
	buckets   [][]entry[T]
	order     *List[keyValue[T]]
	tableSize int
	count     int
}

type entry[T any] struct {
	key       string
	orderNode int
}

type keyValue[T any] struct {
	key   string
	value T
}

// NewHashTable creates a table sized for at least n entries before a
// rehash is needed, per the ceil(n*4/3) next-prime sizing policy.
func NewHashTable[T any](n int) *HashTable[T] {
	if n < 1 {
		n = 1
	}
	size := nextPrimeAtLeast(ceilDiv(n*4, 3))
	return &HashTable[T]{
		buckets:   make([][]entry[T], size),
		order:     NewList[keyValue[T]](),
		tableSize: size,
	}
}

// Len returns the number of entries currently stored.
func (h *HashTable[T]) Len() int { return h.count }

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func (h *HashTable[T]) bucketFor(key string) int {
	return int(fnv1a(key) % uint64(h.tableSize))
}

// Insert adds key->value. It fails with dserr.AlreadyExists if key is
// already present.
func (h *HashTable[T]) Insert(key string, value T) error {
	const op = "container.HashTable.Insert"
	b := h.bucketFor(key)
	for _, e := range h.buckets[b] {
		if e.key == key {
			return dserr.New(op, dserr.AlreadyExists)
		}
	}
	node := h.order.PushBack(keyValue[T]{key: key, value: value})
	h.buckets[b] = append(h.buckets[b], entry[T]{key: key, orderNode: node})
	h.count++
	return nil
}

// Find returns the value stored under key and true, or the zero value
// and false.
func (h *HashTable[T]) Find(key string) (T, bool) {
	b := h.bucketFor(key)
	for _, e := range h.buckets[b] {
		if e.key == key {
			return h.order.Value(e.orderNode).value, true
		}
	}
	var zero T
	return zero, false
}

// Remove deletes key, reporting whether it was present.
func (h *HashTable[T]) Remove(key string) bool {
	b := h.bucketFor(key)
	bucket := h.buckets[b]
	for i, e := range bucket {
		if e.key == key {
			h.order.Remove(e.orderNode)
			h.buckets[b] = append(bucket[:i], bucket[i+1:]...)
			h.count--
			return true
		}
	}
	return false
}

// Each iterates entries in insertion order.
func (h *HashTable[T]) Each(fn func(key string, value T)) {
	h.order.Each(func(_ int, kv keyValue[T]) {
		fn(kv.key, kv.value)
	})
}

// Rehash re-buckets every entry into a fresh table of newSize buckets
// (rounded up to the next prime), preserving insertion order.
func (h *HashTable[T]) Rehash(newSize int) {
	size := nextPrimeAtLeast(newSize)
	buckets := make([][]entry[T], size)
	h.tableSize = size
	h.order.Each(func(node int, kv keyValue[T]) {
		b := h.bucketFor(kv.key)
		buckets[b] = append(buckets[b], entry[T]{key: kv.key, orderNode: node})
	})
	h.buckets = buckets
}

// fnv1a is a small, dependency-free string hash (the pack's retrieved
// repos all reach for FNV or a similar non-cryptographic hash for
// table bucketing; e.g. gogpu-gg's glyph cache keys off a struct hash
// with the same shape of requirements: fast, stable, no allocation).
func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// nextPrimeAtLeast returns the smallest prime >= n (minimum 2).
func nextPrimeAtLeast(n int) int {
	if n < 2 {
		return 2
	}
	for !isPrime(n) {
		n++
	}
	return n
}
