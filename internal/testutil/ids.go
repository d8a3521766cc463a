package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialIDs hands out build-00000001, build-00000002, ... so build and
// factory record IDs are stable across test runs.
//
// It satisfies build.IDGenerator.
//
// Thread-safety: safe for concurrent use (atomic counter).
type SequentialIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "build".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "build"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	return fmt.Sprintf("%s-%08d", g.prefix, g.n.Add(1))
}
