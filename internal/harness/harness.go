package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/blockc/internal/build"
	"github.com/roach88/blockc/internal/compiler"
	"github.com/roach88/blockc/internal/loader"
	"github.com/roach88/blockc/internal/names"
	"github.com/roach88/blockc/internal/store"
	"github.com/roach88/blockc/internal/testutil"
)

// Harness is the scenario execution engine.
// It builds programs with deterministic names, clock and record IDs.
type Harness struct {
	store    *store.Store
	clock    *testutil.DeterministicClock
	ids      *testutil.SequentialIDs
	logger   *slog.Logger
	registry *compiler.Registry
}

// Option configures a Harness.
type Option func(*Harness)

// WithRegistry runs scenarios with extension hooks installed.
func WithRegistry(r *compiler.Registry) Option {
	return func(h *Harness) {
		h.registry = r
	}
}

// WithLogger sets the logger passed to the builder. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create fresh in-memory store
// 2. Load and validate the program document
// 3. Build every script with a fresh name set
// 4. Evaluate assertions against the factories and failures
//
// The returned error covers problems running the scenario itself (an
// unreadable program, a store failure). Failed assertions are reported
// through Result.Pass and Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		ids:    testutil.NewSequentialIDs("build"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	loaded, err := loader.Load(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	buildOpts := []build.Option{
		build.WithStore(h.store),
		build.WithClock(h.clock),
		build.WithIDs(h.ids),
		build.WithLogger(h.logger),
		build.WithNames(names.NewSet()),
		build.WithJobs(1),
	}
	if h.registry != nil {
		buildOpts = append(buildOpts, build.WithRegistry(h.registry))
	}

	res, err := build.New(buildOpts...).Build(context.Background(), loaded.Program)
	if err != nil {
		return nil, fmt.Errorf("build program: %w", err)
	}

	result := NewResult()
	for _, sr := range res.Scripts {
		result.Scripts = append(result.Scripts, snapshot(sr))
	}

	for i, a := range scenario.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func snapshot(sr build.ScriptResult) ScriptSnapshot {
	s := ScriptSnapshot{Name: sr.Name}
	if sr.Err != nil {
		s.Code = sr.Err.Code
		s.Message = sr.Err.Err.Error()
		return s
	}
	f := sr.Factory
	s.FunctionName = f.FunctionName
	s.Source = f.Source
	s.Warp = f.Warp
	s.Yields = f.Yields
	s.Procedure = f.Procedure
	s.Arity = f.Arity
	s.SetupBindings = f.SetupBindings
	s.YieldPoints = f.YieldPoints
	return s
}
