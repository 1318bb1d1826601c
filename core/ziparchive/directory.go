package ziparchive

import (
	"sort"
	"strings"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// DirectoryEntry is one immediate child yielded while iterating a
// directory.
type DirectoryEntry struct {
	Name string
	Kind PathStatus // ExistsFile or ExistsDirectory
}

// DirectoryIterator walks the immediate children of a directory in
// sorted order. The zero value is not usable; obtain one from
// Archive.OpenDirectory.
type DirectoryIterator struct {
	children []DirectoryEntry
	pos      int
}

// NextDirectoryEntry returns the next child, or Missing with an empty
// name once iteration is exhausted.
func (it *DirectoryIterator) NextDirectoryEntry() (string, PathStatus) {
	if it.pos >= len(it.children) {
		return "", Missing
	}
	e := it.children[it.pos]
	it.pos++
	return e.Name, e.Kind
}

// OpenDirectory returns an iterator over path's immediate children,
// both files and (explicit or implicit) subdirectories, in sorted
// order.
func (a *Archive) OpenDirectory(path string) (*DirectoryIterator, error) {
	const op = "ziparchive.Archive.OpenDirectory"
	canonical, _, err := CanonicalizePath(path)
	if err != nil {
		return nil, err
	}
	if canonical != "" {
		switch a.lookup(canonical) {
		case Missing:
			return nil, dserr.New(op, dserr.NoEntry)
		case ExistsFile:
			return nil, dserr.New(op, dserr.InvalidArgument)
		}
	}

	prefix := ""
	if canonical != "" {
		prefix = canonical + "/"
	}

	start := 0
	end := len(a.entries)
	if prefix != "" {
		start = sort.Search(len(a.entries), func(i int) bool { return a.entries[i].name >= prefix })
		end = start
		for end < len(a.entries) && strings.HasPrefix(a.entries[end].name, prefix) {
			end++
		}
	}

	var children []DirectoryEntry
	for i := start; i < end; {
		rel := a.entries[i].name[len(prefix):]
		if rel == "" {
			// The explicit entry for the directory itself is not a child.
			i++
			continue
		}
		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			children = append(children, DirectoryEntry{Name: rel, Kind: ExistsFile})
			i++
			continue
		}
		childName := rel[:slash]
		children = append(children, DirectoryEntry{Name: childName, Kind: ExistsDirectory})
		childPrefix := prefix + childName + "/"
		i++
		for i < end && strings.HasPrefix(a.entries[i].name, childPrefix) {
			i++
		}
	}

	return &DirectoryIterator{children: children}, nil
}
