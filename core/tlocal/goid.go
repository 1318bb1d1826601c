package tlocal

import (
	"bytes"
	"runtime"
	"strconv"
)

// CurrentGoroutineID recovers the runtime-assigned id of the calling
// goroutine from the "goroutine N [...]" header of its own stack
// trace. The id is stable for the goroutine's lifetime and unique
// among concurrently live goroutines, which is all this package needs
// as a stand-in key for thread-local storage. Exported so callers that
// need "is this the same goroutine that did X" checks outside of a
// Storage[T] (e.g. the renderer's main-goroutine enforcement) can reuse
// it instead of parsing runtime.Stack themselves.
func CurrentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	if sp := bytes.IndexByte(b, ' '); sp >= 0 {
		b = b[:sp]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
