package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/blockc/internal/compiler"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/names"
	"github.com/roach88/blockc/internal/store"
)

// DefaultJobs is the number of scripts compiled at once when WithJobs is
// not given.
const DefaultJobs = 4

// Builder compiles whole programs.
//
// Thread-safety: a Builder may run several builds at once. With a store
// attached, the store serializes its own writes.
type Builder struct {
	store    *store.Store
	noCache  bool
	jobs     int
	clock    Sequencer
	ids      IDGenerator
	logger   *slog.Logger
	registry *compiler.Registry
	names    *names.Set
}

// Option configures a Builder.
type Option func(*Builder)

// WithStore attaches a factory cache. Without one, every script compiles
// on every build and nothing is recorded.
func WithStore(s *store.Store) Option {
	return func(b *Builder) {
		b.store = s
	}
}

// WithoutCache keeps recording builds in the store but skips lookups, so
// every script is recompiled and its cached factory replaced.
func WithoutCache() Option {
	return func(b *Builder) {
		b.noCache = true
	}
}

// WithJobs sets how many scripts compile concurrently. Values below 1
// mean 1.
func WithJobs(n int) Option {
	return func(b *Builder) {
		b.jobs = max(n, 1)
	}
}

// WithClock sets the sequence source for store records.
func WithClock(c Sequencer) Option {
	return func(b *Builder) {
		b.clock = c
	}
}

// WithIDs sets the generator for build and record identifiers.
func WithIDs(g IDGenerator) Option {
	return func(b *Builder) {
		b.ids = g
	}
}

// WithLogger sets the logger for the builder and every compile it runs.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithRegistry sets the extension hooks passed to every compile.
func WithRegistry(r *compiler.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// WithNames shares one name set across all compiles of this builder.
// Without it the compiler's process-wide pools are used.
func WithNames(s *names.Set) Option {
	return func(b *Builder) {
		b.names = s
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		jobs: DefaultJobs,
		ids:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.clock == nil {
		b.clock = NewClock()
	}
	return b
}

// Build compiles every script of p.
//
// The returned error covers the build as a whole: an invalid program, a
// store failure, or a canceled context. Scripts that fail to compile are
// reported through Result.Failures and do not make Build return an error.
func (b *Builder) Build(ctx context.Context, p *ir.Program) (*Result, error) {
	if p == nil {
		return nil, errors.New("build: nil program")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scripts := p.Scripts()
	programHash, err := ir.ProgramHash(p)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	res := &Result{
		ID:          b.ids.Generate(),
		ProgramHash: programHash,
		Target:      p.Target.Name,
		Scripts:     make([]ScriptResult, len(scripts)),
	}

	if b.store != nil {
		err := b.store.BeginBuild(ctx, store.Build{
			ID:              res.ID,
			ProgramHash:     programHash,
			Target:          p.Target.Name,
			CompilerVersion: ir.CompilerVersion,
			IRVersion:       ir.IRVersion,
			Seq:             b.clock.Next(),
		})
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
	}

	hooks := b.registry.Fingerprint()
	queue := newJobQueue(len(scripts))
	for i, ns := range scripts {
		key, err := ir.ScriptKey(p, ns.Script, hooks)
		if err != nil {
			return nil, fmt.Errorf("build: script %s: %w", ns.Name, err)
		}
		res.Scripts[i] = ScriptResult{Name: ns.Name, Key: key, TopBlockID: ns.Script.TopBlockID}

		if f, ok, err := b.lookup(ctx, key); err != nil {
			return nil, fmt.Errorf("build: %w", err)
		} else if ok {
			res.Scripts[i].Factory = f
			res.Scripts[i].Cached = true
			continue
		}
		queue.Enqueue(job{slot: i, script: ns})
	}
	queue.Close()

	b.compileAll(ctx, p, queue, res.Scripts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.record(ctx, res); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	b.logger.Info("build finished",
		"build", res.ID,
		"target", res.Target,
		"scripts", len(res.Scripts),
		"cached", res.CachedCount(),
		"failures", len(res.Failures()),
	)
	return res, nil
}

// lookup returns the cached factory for key, if caching is enabled.
func (b *Builder) lookup(ctx context.Context, key string) (*compiler.Factory, bool, error) {
	if b.store == nil || b.noCache {
		return nil, false, nil
	}
	sf, ok, err := b.store.LookupFactory(ctx, key, ir.CompilerVersion)
	if err != nil || !ok {
		return nil, false, err
	}
	b.logger.Debug("factory cache hit", "key", key, "function", sf.FunctionName)
	return fromStored(sf), true, nil
}

// compileAll drains queue with up to b.jobs workers. Each job writes only
// its own slot of results.
func (b *Builder) compileAll(ctx context.Context, p *ir.Program, queue *jobQueue, results []ScriptResult) {
	workers := min(b.jobs, queue.Len())
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, ok := queue.TryDequeue()
				if !ok {
					return
				}
				b.compileOne(ctx, p, j, &results[j.slot])
			}
		}()
	}
	wg.Wait()
}

func (b *Builder) compileOne(ctx context.Context, p *ir.Program, j job, out *ScriptResult) {
	id := scriptName{name: j.script.Name, topBlockID: j.script.Script.TopBlockID}
	if err := ctx.Err(); err != nil {
		out.Err = newScriptError(id, err)
		return
	}

	opts := []compiler.Option{compiler.WithLogger(b.logger)}
	if b.registry != nil {
		opts = append(opts, compiler.WithRegistry(b.registry))
	}
	if b.names != nil {
		opts = append(opts, compiler.WithNames(b.names))
	}

	f, err := compiler.Compile(p, j.script.Script, opts...)
	if err != nil {
		out.Err = newScriptError(id, err)
		return
	}
	out.Factory = f
}

// record writes the build's new factories and failures to the store in
// script order, then closes the build record.
// CRITICAL: called only after every worker has returned.
func (b *Builder) record(ctx context.Context, res *Result) error {
	for i := range res.Scripts {
		sr := &res.Scripts[i]
		if sr.Err != nil {
			b.logger.Error("script failed",
				"build", res.ID,
				"script", sr.Name,
				"top_block", sr.TopBlockID,
				"code", sr.Err.Code,
				"error", sr.Err.Err,
			)
		}
		if b.store == nil || sr.Cached {
			continue
		}

		if sr.Err != nil {
			err := b.store.WriteFailure(ctx, store.Failure{
				ID:         b.ids.Generate(),
				BuildID:    res.ID,
				ScriptKey:  sr.Key,
				Target:     res.Target,
				ScriptName: sr.Name,
				TopBlockID: sr.TopBlockID,
				Code:       sr.Err.Code,
				Message:    sr.Err.Err.Error(),
				Seq:        b.clock.Next(),
			})
			if err != nil {
				return err
			}
			continue
		}

		if err := b.store.WriteFactory(ctx, toStored(res, sr, b.ids.Generate(), b.clock.Next())); err != nil {
			return err
		}
	}

	if b.store == nil {
		return nil
	}
	return b.store.FinishBuild(ctx, res.ID, len(res.Scripts), len(res.Failures()))
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
