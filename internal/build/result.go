package build

import (
	"errors"

	"github.com/roach88/blockc/internal/compiler"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/store"
)

// Result is the outcome of one build.
type Result struct {
	ID          string
	ProgramHash string
	Target      string

	// Scripts holds one entry per script in Program.Scripts() order.
	Scripts []ScriptResult
}

// ScriptResult is the outcome for one script. Exactly one of Factory and
// Err is set.
type ScriptResult struct {
	Name       string
	Key        string
	TopBlockID string

	Factory *compiler.Factory
	// Cached is true when Factory came from the store.
	Cached bool

	Err *ScriptError
}

// Script returns the result for the named script.
func (r *Result) Script(name string) (ScriptResult, bool) {
	for _, sr := range r.Scripts {
		if sr.Name == name {
			return sr, true
		}
	}
	return ScriptResult{}, false
}

// Failures returns the scripts that did not compile, in script order.
func (r *Result) Failures() []ScriptResult {
	var out []ScriptResult
	for _, sr := range r.Scripts {
		if sr.Err != nil {
			out = append(out, sr)
		}
	}
	return out
}

// CachedCount returns how many factories were served from the store.
func (r *Result) CachedCount() int {
	n := 0
	for _, sr := range r.Scripts {
		if sr.Cached {
			n++
		}
	}
	return n
}

// Err joins every script failure, or returns nil if all scripts compiled.
func (r *Result) Err() error {
	var errs []error
	for _, sr := range r.Scripts {
		if sr.Err != nil {
			errs = append(errs, sr.Err)
		}
	}
	return errors.Join(errs...)
}

func fromStored(sf store.Factory) *compiler.Factory {
	return &compiler.Factory{
		Name:          sf.Name,
		FunctionName:  sf.FunctionName,
		Source:        sf.Source,
		TopBlockID:    sf.TopBlockID,
		Warp:          sf.Warp,
		Yields:        sf.Yields,
		Procedure:     sf.Procedure,
		Arity:         sf.Arity,
		SetupBindings: sf.SetupBindings,
		YieldPoints:   sf.YieldPoints,
	}
}

func toStored(res *Result, sr *ScriptResult, id string, seq int64) store.Factory {
	f := sr.Factory
	return store.Factory{
		ScriptKey:       sr.Key,
		ID:              id,
		BuildID:         res.ID,
		Target:          res.Target,
		ScriptName:      sr.Name,
		TopBlockID:      sr.TopBlockID,
		Name:            f.Name,
		FunctionName:    f.FunctionName,
		Source:          f.Source,
		Warp:            f.Warp,
		Yields:          f.Yields,
		Procedure:       f.Procedure,
		Arity:           f.Arity,
		SetupBindings:   f.SetupBindings,
		YieldPoints:     f.YieldPoints,
		CompilerVersion: ir.CompilerVersion,
		Seq:             seq,
	}
}
