package ir

import (
	"maps"
	"slices"
)

// Program is the front end's output for one target: its top-level script
// and every procedure variant reachable from it.
type Program struct {
	Target     Target             `json:"target"`
	Entry      *Script            `json:"entry,omitempty"`
	Procedures map[string]*Script `json:"procedures,omitempty"`
}

// Target describes the sprite or stage the scripts run on.
type Target struct {
	Name    string `json:"name"`
	IsStage bool   `json:"is_stage,omitempty"`

	// AssetNames lists costume and sound names across all original targets.
	// A constant equal to one of these is never emitted as a bare number.
	AssetNames []string `json:"asset_names,omitempty"`
}

// Script is one compilable unit.
type Script struct {
	TopBlockID string `json:"top_block_id"`
	Stack      Stack  `json:"stack"`

	IsWarp      bool `json:"is_warp,omitempty"`
	IsOptimized bool `json:"is_optimized,omitempty"`
	IsProcedure bool `json:"is_procedure,omitempty"`
	Yields      bool `json:"yields,omitempty"`

	// WarpTimer makes warp loops check for lack of forward progress.
	WarpTimer bool `json:"warp_timer,omitempty"`

	// Procedure-only.
	ProcedureCode string   `json:"procedure_code,omitempty"`
	Arguments     []string `json:"arguments,omitempty"`
}

// Arity is the number of positional parameters the unit accepts.
func (s *Script) Arity() int {
	return len(s.Arguments)
}

// IsEmpty reports whether the script has no statements.
func (s *Script) IsEmpty() bool {
	return len(s.Stack) == 0
}

// Procedure looks up a procedure variant. A missing variant or one with no
// statements reports false.
func (p *Program) Procedure(variant string) (*Script, bool) {
	s, ok := p.Procedures[variant]
	if !ok || s == nil || s.IsEmpty() {
		return nil, false
	}
	return s, true
}

// Scripts returns every script in the program in a stable order: the entry
// first, then procedures sorted by variant.
func (p *Program) Scripts() []NamedScript {
	var out []NamedScript
	if p.Entry != nil {
		out = append(out, NamedScript{Name: EntryName, Script: p.Entry})
	}
	for _, k := range slices.Sorted(maps.Keys(p.Procedures)) {
		out = append(out, NamedScript{Name: k, Script: p.Procedures[k]})
	}
	return out
}

// EntryName names the top-level script in build results.
const EntryName = "entry"

// NamedScript pairs a script with the name it is reported under.
type NamedScript struct {
	Name   string
	Script *Script
}
