//go:build !unix

package alloc

// platformPageSize has no portable implementation outside the unix
// build tag; callers fall back to the 4096 default.
func platformPageSize() int {
	return 0
}
