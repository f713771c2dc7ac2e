// Package ids generates opaque identifiers for visits, speakers and hosts.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces new opaque identifiers.
type Generator interface {
	NewID() string
}

// UUIDv7 generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// NewID returns a hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequence returns predictable identifiers ("<prefix>-1", "<prefix>-2", ...)
// for tests and golden files.
//
// Thread-safety: Sequence is safe for concurrent use via internal mutex.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// Func adapts a plain function to Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }
