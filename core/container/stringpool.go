package container

import "strings"

// StringPool is an append-only arena for interned strings. Strings
// are copied into an internal builder so callers may discard their
// original buffer; Intern returns a string backed by the pool's
// storage.
type StringPool struct {
	b strings.Builder
}

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool { return &StringPool{} }

// Intern copies s into the pool and returns the pool-owned copy.
func (p *StringPool) Intern(s string) string {
	start := p.b.Len()
	p.b.WriteString(s)
	full := p.b.String()
	return full[start : start+len(s)]
}

// Len returns the total number of bytes stored in the pool.
func (p *StringPool) Len() int { return p.b.Len() }
