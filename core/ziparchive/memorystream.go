package ziparchive

import (
	"io"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// MemoryStream is a read-only io.ReadSeeker/io.ReaderAt over an
// in-memory byte slice. It lets callers open an Archive that was
// loaded wholesale (e.g. from an embedded resource) without a
// temporary file, mirroring the original library's support for
// opening archives directly from a memory block.
type MemoryStream struct {
	data []byte
	pos  int64
}

// NewMemoryStream wraps data for reading. data is not copied; callers
// must not mutate it while the stream is in use.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{data: data}
}

func (s *MemoryStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *MemoryStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, dserr.New("ziparchive.MemoryStream.ReadAt", dserr.OutOfRange)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return 0, dserr.New("ziparchive.MemoryStream.Seek", dserr.InvalidArgument)
	}
	if abs < 0 {
		return 0, dserr.New("ziparchive.MemoryStream.Seek", dserr.OutOfRange)
	}
	s.pos = abs
	return abs, nil
}

func (s *MemoryStream) Close() error { return nil }

// Size returns the total number of bytes backing the stream.
func (s *MemoryStream) Size() int64 { return int64(len(s.data)) }
