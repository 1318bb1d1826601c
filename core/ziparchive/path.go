package ziparchive

import (
	"strings"

	"github.com/akb825/DeepSea-sub003/core/dserr"
)

// CanonicalizePath normalizes a lookup path the way Archive methods
// require: a leading "./" is stripped, repeated "/" are collapsed, and
// a trailing "/" is noted as "directory expected" and removed from the
// returned name. "." and "./" both canonicalize to the archive root
// (empty name). A bare "/" is deliberately left distinct from the
// root: zip entries never start with "/", so it canonicalizes to "/"
// itself, a name that can never match any entry or the root.
func CanonicalizePath(path string) (name string, directoryExpected bool, err error) {
	const op = "ziparchive.CanonicalizePath"
	if path == "" {
		return "", false, dserr.New(op, dserr.InvalidArgument)
	}
	if path == "." || path == "./" {
		return "", true, nil
	}
	if path == "/" {
		return "/", true, nil
	}

	s := path
	if strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	s = collapseSlashes(s)

	directoryExpected = strings.HasSuffix(s, "/")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "/", true, nil
	}
	return s, directoryExpected, nil
}

func collapseSlashes(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevSlash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
