package alloc

import "unsafe"

// uintptrDiff returns the byte offset of target relative to base,
// used by Pool to recover a freed chunk's index from its address.
func uintptrDiff(target, base *byte) int64 {
	return int64(uintptr(unsafe.Pointer(target)) - uintptr(unsafe.Pointer(base)))
}
