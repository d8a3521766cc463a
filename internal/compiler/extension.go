package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/names"
)

// InputHook compiles one input node of an extension block.
type InputHook func(node *ir.InputNode, g *Generator, imp Imports) Value

// StackHook compiles one statement node of an extension block by appending
// to the generator's source.
type StackHook func(node *ir.StackNode, g *Generator, imp Imports)

// Hooks is what an extension contributes for one block. Either half may be
// nil; the missing family falls through to the built-in rules.
type Hooks struct {
	Input InputHook
	Stack StackHook

	// Revision names the hook implementation. Bump it whenever the emitted
	// source changes so cached factories compiled with the old hooks miss.
	Revision string
}

// Imports is the fixed capability bundle handed to every hook.
type Imports struct {
	NewConstant func(lit ir.Literal, safe bool) *Constant
	NewTyped    func(src string, typ Type) *Typed
	NewVariable func(src string) *Variable
	NewFrame    func(isLoop bool, parent string) *Frame

	TypeNumber    Type
	TypeString    Type
	TypeBoolean   Type
	TypeUnknown   Type
	TypeNumberNaN Type

	// Locals allocates per-script local identifiers.
	Locals *names.Pool
}

// Registry maps extension IDs to their per-block hooks.
//
// Thread-safety: safe for concurrent use (RWMutex). Registration is expected
// before compiles start, lookups happen during every compile.
type Registry struct {
	mu   sync.RWMutex
	exts map[string]map[string]Hooks
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{exts: make(map[string]map[string]Hooks)}
}

// Register installs hooks for extension.block. A later registration for the
// same block replaces the earlier one.
func (r *Registry) Register(extension, block string, h Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blocks, ok := r.exts[extension]
	if !ok {
		blocks = make(map[string]Hooks)
		r.exts[extension] = blocks
	}
	blocks[block] = h
}

// Unregister removes every hook of an extension.
func (r *Registry) Unregister(extension string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.exts, extension)
}

// Has reports whether any hooks are registered for extension.
func (r *Registry) Has(extension string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exts[extension]) > 0
}

// Lookup finds the hooks for a node kind. The kind splits at its first '.'
// into extension and block; kinds without a '.' never match.
func (r *Registry) Lookup(kind string) (ext, block string, h Hooks, ok bool) {
	ext, block, found := strings.Cut(kind, ".")
	if !found {
		return "", "", Hooks{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok = r.exts[ext][block]
	return ext, block, h, ok
}

// Fingerprint summarises the registered hooks for cache keys. It covers each
// block's families and revision; an empty or nil registry yields "".
func (r *Registry) Fingerprint() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	var entries []string
	for ext, blocks := range r.exts {
		for block, h := range blocks {
			entries = append(entries, fmt.Sprintf("%s.%s input=%t stack=%t rev=%q",
				ext, block, h.Input != nil, h.Stack != nil, h.Revision))
		}
	}
	r.mu.RUnlock()

	if len(entries) == 0 {
		return ""
	}
	slices.Sort(entries)
	sum := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(sum[:])
}

func (g *Generator) imports() Imports {
	return Imports{
		NewConstant:   NewConstant,
		NewTyped:      NewTyped,
		NewVariable:   NewVariable,
		NewFrame:      NewFrame,
		TypeNumber:    TypeNumber,
		TypeString:    TypeString,
		TypeBoolean:   TypeBoolean,
		TypeUnknown:   TypeUnknown,
		TypeNumberNaN: TypeNumberNaN,
		Locals:        g.locals,
	}
}
