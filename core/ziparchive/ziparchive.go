// Package ziparchive implements the read-only ZIP archive reader
// described in spec.md §4.3: end-of-central-directory location,
// central-directory parsing, a sorted path index with prefix-aware
// directory iteration, and stored/DEFLATE file streams.
//
// ZIP64 is out of scope, matching the original C library's supported
// subset.
package ziparchive

import (
	"encoding/binary"
	"io"
	"sort"
	"strings"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/core/logging"
	"github.com/klauspost/compress/flate"
)

const (
	eocdSignature = 0x06054b50
	eocdMinSize   = 22
	cdfhSignature = 0x02014b50
	cdfhMinSize   = 46
	lfhSignature  = 0x04034b50
	lfhMinSize    = 30
	maxEOCDScan   = 64 * 1024
)

// PathStatus classifies the result of a path lookup within an
// archive.
type PathStatus int

const (
	Missing PathStatus = iota
	ExistsFile
	ExistsDirectory
)

func (s PathStatus) String() string {
	switch s {
	case ExistsFile:
		return "file"
	case ExistsDirectory:
		return "directory"
	default:
		return "missing"
	}
}

type entry struct {
	name              string
	localHeaderOffset uint32
	compressedSize    uint32
	uncompressedSize  uint32
	method            uint16
}

// Archive is an opened, indexed ZIP file.
type Archive struct {
	r       io.ReaderAt
	entries []entry // sorted by name
}

// Open parses the end-of-central-directory record and central
// directory from r, which spans exactly size bytes.
func Open(r io.ReaderAt, size int64) (*Archive, error) {
	const op = "ziparchive.Open"
	if r == nil || size <= 0 {
		return nil, dserr.New(op, dserr.InvalidArgument)
	}

	eocd, err := findEOCD(r, size)
	if err != nil {
		return nil, err
	}

	entries, err := readCentralDirectory(r, eocd)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	logging.Named("ziparchive").Debug().Int("entries", len(entries)).Msg("archive opened")
	return &Archive{r: r, entries: entries}, nil
}

type eocdRecord struct {
	totalEntries uint16
	cdSize       uint32
	cdOffset     uint32
}

// findEOCD scans the last 64 KiB of the stream backward for the EOCD
// signature, tolerating a trailing ZIP comment of up to
// maxEOCDScan-eocdMinSize bytes; a longer comment is not found.
func findEOCD(r io.ReaderAt, size int64) (eocdRecord, error) {
	const op = "ziparchive.findEOCD"
	scan := int64(maxEOCDScan)
	if scan > size {
		scan = size
	}
	if scan < eocdMinSize {
		return eocdRecord{}, dserr.New(op, dserr.Format)
	}

	buf := make([]byte, scan)
	if _, err := r.ReadAt(buf, size-scan); err != nil && err != io.EOF {
		return eocdRecord{}, dserr.Wrap(op, dserr.Format, err)
	}

	for i := len(buf) - eocdMinSize; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) == eocdSignature {
			return eocdRecord{
				totalEntries: binary.LittleEndian.Uint16(buf[i+10 : i+12]),
				cdSize:       binary.LittleEndian.Uint32(buf[i+12 : i+16]),
				cdOffset:     binary.LittleEndian.Uint32(buf[i+16 : i+20]),
			}, nil
		}
	}
	return eocdRecord{}, dserr.New(op, dserr.Format)
}

func readCentralDirectory(r io.ReaderAt, eocd eocdRecord) ([]entry, error) {
	const op = "ziparchive.readCentralDirectory"
	buf := make([]byte, eocd.cdSize)
	if _, err := r.ReadAt(buf, int64(eocd.cdOffset)); err != nil && err != io.EOF {
		return nil, dserr.Wrap(op, dserr.Format, err)
	}

	entries := make([]entry, 0, eocd.totalEntries)
	pos := 0
	for i := 0; i < int(eocd.totalEntries); i++ {
		if pos+cdfhMinSize > len(buf) {
			return nil, dserr.New(op, dserr.Format)
		}
		if binary.LittleEndian.Uint32(buf[pos:pos+4]) != cdfhSignature {
			return nil, dserr.New(op, dserr.Format)
		}
		method := binary.LittleEndian.Uint16(buf[pos+10 : pos+12])
		compSize := binary.LittleEndian.Uint32(buf[pos+20 : pos+24])
		uncompSize := binary.LittleEndian.Uint32(buf[pos+24 : pos+28])
		nameLen := int(binary.LittleEndian.Uint16(buf[pos+28 : pos+30]))
		extraLen := int(binary.LittleEndian.Uint16(buf[pos+30 : pos+32]))
		commentLen := int(binary.LittleEndian.Uint16(buf[pos+32 : pos+34]))
		localOffset := binary.LittleEndian.Uint32(buf[pos+42 : pos+46])

		nameStart := pos + cdfhMinSize
		nameEnd := nameStart + nameLen
		if nameEnd > len(buf) {
			return nil, dserr.New(op, dserr.Format)
		}
		name := string(buf[nameStart:nameEnd])

		entries = append(entries, entry{
			name:              name,
			localHeaderOffset: localOffset,
			compressedSize:    compSize,
			uncompressedSize:  uncompSize,
			method:            method,
		})
		pos = nameEnd + extraLen + commentLen
	}
	return entries, nil
}

func (a *Archive) find(name string) (int, bool) {
	i := sort.Search(len(a.entries), func(i int) bool { return a.entries[i].name >= name })
	if i < len(a.entries) && a.entries[i].name == name {
		return i, true
	}
	return i, false
}

func (a *Archive) hasPrefix(prefix string) bool {
	i := sort.Search(len(a.entries), func(i int) bool { return a.entries[i].name >= prefix })
	return i < len(a.entries) && strings.HasPrefix(a.entries[i].name, prefix)
}

func (a *Archive) lookup(canonical string) PathStatus {
	if canonical == "" {
		return ExistsDirectory
	}
	_, hasFile := a.find(canonical)
	_, hasExplicitDir := a.find(canonical + "/")
	if hasExplicitDir || a.hasPrefix(canonical+"/") {
		return ExistsDirectory
	}
	if hasFile {
		return ExistsFile
	}
	return Missing
}

// PathStatus canonicalizes path and classifies it.
func (a *Archive) PathStatus(path string) (PathStatus, error) {
	canonical, directoryExpected, err := CanonicalizePath(path)
	if err != nil {
		return Missing, err
	}
	status := a.lookup(canonical)
	if directoryExpected && status == ExistsFile {
		return Missing, nil
	}
	return status, nil
}

// OpenFile opens a seekable read stream over the file at path. Stored
// entries (method 0) are trivially sliced; DEFLATE entries (method 8)
// are inflated on the fly and are not seekable.
func (a *Archive) OpenFile(path string) (Stream, error) {
	const op = "ziparchive.Archive.OpenFile"
	canonical, directoryExpected, err := CanonicalizePath(path)
	if err != nil {
		return nil, err
	}
	if canonical == "" || directoryExpected {
		return nil, dserr.New(op, dserr.InvalidArgument)
	}
	idx, ok := a.find(canonical)
	if !ok {
		return nil, dserr.New(op, dserr.NoEntry)
	}
	e := a.entries[idx]

	hdr := make([]byte, lfhMinSize)
	if _, err := a.r.ReadAt(hdr, int64(e.localHeaderOffset)); err != nil && err != io.EOF {
		return nil, dserr.Wrap(op, dserr.Format, err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != lfhSignature {
		return nil, dserr.New(op, dserr.Format)
	}
	nameLen := int(binary.LittleEndian.Uint16(hdr[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(hdr[28:30]))
	dataOffset := int64(e.localHeaderOffset) + lfhMinSize + int64(nameLen) + int64(extraLen)

	switch e.method {
	case 0:
		return &storedStream{io.NewSectionReader(a.r, dataOffset, int64(e.compressedSize))}, nil
	case 8:
		sr := io.NewSectionReader(a.r, dataOffset, int64(e.compressedSize))
		return &inflateStream{rc: flate.NewReader(sr)}, nil
	default:
		return nil, dserr.New(op, dserr.Format)
	}
}

// Stream is a readable file handle returned by OpenFile. Seek on a
// DEFLATE stream always fails with dserr.PermissionDenied: the
// taxonomy in spec.md §7 has no distinct "unsupported operation"
// kind, and PermissionDenied ("feature disabled") is its closest
// member.
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer
}

type storedStream struct {
	*io.SectionReader
}

func (s *storedStream) Close() error { return nil }

type inflateStream struct {
	rc io.ReadCloser
}

func (s *inflateStream) Read(p []byte) (int, error) { return s.rc.Read(p) }

func (s *inflateStream) Seek(int64, int) (int64, error) {
	return 0, dserr.New("ziparchive.Stream.Seek", dserr.PermissionDenied)
}

func (s *inflateStream) Close() error { return s.rc.Close() }
