// Package names allocates synthetic identifiers for generated source.
//
// Each category of identifier (factories, functions, generators, setup
// bindings, locals) draws from its own Pool so names from different
// categories never collide, and a Pool shared between concurrently
// compiling scripts never hands out the same name twice.
package names

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Pool produces prefix0, prefix1, ... without end.
//
// Thread-safety: Pool is safe for concurrent use (atomic counter).
type Pool struct {
	prefix string
	count  atomic.Int64
}

// NewPool creates a pool. The prefix must contain a non-space character,
// otherwise generated names would start with a digit.
func NewPool(prefix string) *Pool {
	if strings.TrimSpace(prefix) == "" {
		panic(fmt.Sprintf("names: invalid pool prefix %q", prefix))
	}
	return &Pool{prefix: prefix}
}

// Next returns the next unused name.
func (p *Pool) Next() string {
	n := p.count.Add(1) - 1
	return fmt.Sprintf("%s%d", p.prefix, n)
}

// Prefix returns the pool's prefix.
func (p *Pool) Prefix() string {
	return p.prefix
}

// Set groups the pools whose names must be unique across every script
// loaded into one host: factory names, plain function names, and generator
// function names.
type Set struct {
	Factory   *Pool
	Function  *Pool
	Generator *Pool
}

// NewSet creates a fresh, independent set. Compiles that share a Set get
// globally unique names; a fresh Set per compile gives reproducible output.
func NewSet() *Set {
	return &Set{
		Factory:   NewPool("factory"),
		Function:  NewPool("fun"),
		Generator: NewPool("gen"),
	}
}

// Shared is the process-wide set used when a caller does not supply one.
var Shared = NewSet()

// Per-script pool prefixes.
const (
	LocalPrefix = "a"
	SetupPrefix = "b"
)
