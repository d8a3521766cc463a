package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/names"
)

// Generator compiles one script. Create one per compile with New.
type Generator struct {
	program *ir.Program
	script  *ir.Script

	src       *bytes.Buffer
	variables map[string]*Variable
	frames    frameStack
	locals    *names.Pool
	setup     *SetupCache
	names     *names.Set
	registry  *Registry
	logger    *slog.Logger
	assets    map[string]bool

	isWarp      bool
	isOptimized bool
	isProcedure bool
	warpTimer   bool

	// descendedIntoModulo is set by op.mod so motion blocks can drop
	// interpolation for wrapped coordinates.
	descendedIntoModulo bool
	inHat               bool

	yieldPoints int
	used        bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRegistry sets the extension registry consulted before the built-in
// rules. Default: no extensions.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) {
		g.registry = r
	}
}

// WithNames sets the pools for factory and function names.
// Default: names.Shared, unique across the process.
func WithNames(s *names.Set) Option {
	return func(g *Generator) {
		if s != nil {
			g.names = s
		}
	}
}

// New creates a generator for one script of program.
func New(program *ir.Program, script *ir.Script, opts ...Option) *Generator {
	g := &Generator{
		program:     program,
		script:      script,
		src:         new(bytes.Buffer),
		variables:   make(map[string]*Variable),
		locals:      names.NewPool(names.LocalPrefix),
		setup:       NewSetupCache(),
		names:       names.Shared,
		registry:    NewRegistry(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		assets:      make(map[string]bool),
		isWarp:      script.IsWarp,
		isOptimized: script.IsOptimized,
		isProcedure: script.IsProcedure,
		warpTimer:   script.WarpTimer,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = NewRegistry()
	}
	for _, name := range program.Target.AssetNames {
		g.assets[name] = true
	}
	return g
}

// Compile compiles program's script into a factory.
func Compile(program *ir.Program, script *ir.Script, opts ...Option) (*Factory, error) {
	return New(program, script, opts...).Compile()
}

// Compile walks the script and assembles its factory. A Generator compiles
// once; a second call is an error.
//
// Unknown node kinds and invariant violations abort the compile and are
// returned; failing extension hooks are logged and skipped.
func (g *Generator) Compile() (f *Factory, err error) {
	if g.used {
		return nil, errors.New("compiler: generator already used")
	}
	g.used = true

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()

	if len(g.script.Stack) > 0 {
		g.DescendStack(g.script.Stack, NewFrame(false, ""))
	}
	f = g.assemble()

	g.logger.Debug("compiled script",
		"target", g.program.Target.Name,
		"top_block", g.script.TopBlockID,
		"procedure", g.script.ProcedureCode,
		"function", f.FunctionName,
		"yields", f.Yields,
		"yield_points", f.YieldPoints,
		"setup_bindings", f.SetupBindings,
	)
	return f, nil
}

// Emit appends raw source text.
func (g *Generator) Emit(s string) {
	g.src.WriteString(s)
}

// Emitf appends formatted source text.
func (g *Generator) Emitf(format string, args ...any) {
	fmt.Fprintf(g.src, format, args...)
}

// capture runs fn against a fresh source buffer and returns what it emitted,
// leaving the enclosing buffer untouched.
func (g *Generator) capture(fn func()) string {
	outer := g.src
	g.src = new(bytes.Buffer)
	defer func() { g.src = outer }()
	fn()
	return g.src.String()
}

// Program returns the program being compiled.
func (g *Generator) Program() *ir.Program { return g.program }

// Script returns the script being compiled.
func (g *Generator) Script() *ir.Script { return g.script }

// IsWarp reports whether code emitted now runs without yielding. It can
// differ from the script's flag inside an all-at-once block.
func (g *Generator) IsWarp() bool { return g.isWarp }

// IsOptimized reports whether the script opted into faster, less exact
// host helpers.
func (g *Generator) IsOptimized() bool { return g.isOptimized }

// Locals is the per-script pool of local identifiers.
func (g *Generator) Locals() *names.Pool { return g.locals }

// CurrentFrame returns the innermost open frame, or nil outside any.
func (g *Generator) CurrentFrame() *Frame { return g.frames.top() }

// IsLastBlockInLoop reports whether the statement being compiled ends an
// iteration of the innermost loop.
func (g *Generator) IsLastBlockInLoop() bool { return g.frames.lastInLoop() }

// DescendStack compiles a statement list in a new frame. Cached variable
// types are discarded on entry and on exit.
func (g *Generator) DescendStack(stack ir.Stack, frame *Frame) {
	g.ResetVariables()
	g.frames.push(frame)

	for i, node := range stack {
		frame.IsLastBlock = i == len(stack)-1
		g.descendStackedBlock(node)
	}

	g.ResetVariables()
	g.frames.pop()
}

// ResetVariables forgets every cached variable type.
func (g *Generator) ResetVariables() {
	clear(g.variables)
}

// DescendVariable returns the tracked reference for a variable, creating one
// with nothing cached if this scope has not seen it.
func (g *Generator) DescendVariable(v *ir.Variable) *Variable {
	if v == nil {
		g.invariantf("", "missing variable operand")
	}
	if ref, ok := g.variables[v.ID]; ok {
		return ref
	}
	ref := NewVariable(g.ReferenceVariable(v) + ".value")
	g.variables[v.ID] = ref
	return ref
}

// ReferenceVariable returns the setup binding for a variable or list slot.
func (g *Generator) ReferenceVariable(v *ir.Variable) string {
	if v == nil {
		g.invariantf("", "missing variable operand")
	}
	if v.IsStage() {
		return g.EvaluateOnce(`stage.variables["` + Sanitize(v.ID) + `"]`)
	}
	return g.EvaluateOnce(`target.variables["` + Sanitize(v.ID) + `"]`)
}

// EvaluateOnce binds expr at factory setup and returns the binding's name.
func (g *Generator) EvaluateOnce(expr string) string {
	return g.setup.Bind(expr)
}

// RequestRedraw emits a redraw request.
func (g *Generator) RequestRedraw() {
	g.Emit("runtime.requestRedraw();\n")
}

// Retire ends the thread. Inside a procedure a plain return would only
// leave the procedure, so it yields back to the scheduler instead.
func (g *Generator) Retire() {
	if g.isProcedure {
		g.Emit("retire(); yield;\n")
	} else {
		g.Emit("retire(); return;\n")
	}
}

// safeConstant wraps a literal, marking costume and sound names unsafe so
// they are never emitted as bare numbers.
func (g *Generator) safeConstant(lit ir.Literal) *Constant {
	unsafe := lit.Kind == ir.LiteralString && g.assets[lit.Text]
	return NewConstant(lit, !unsafe)
}

// input descends a required named operand.
func (g *Generator) input(kind string, ops *ir.Operands, name string) Value {
	n := ops.Input(name)
	if n == nil {
		g.invariantf(kind, "missing input %q", name)
	}
	return g.DescendInput(n)
}

// callInputHook runs an extension input hook, converting a panic or a nil
// result into a logged HookError and an empty value.
func (g *Generator) callInputHook(ext, block string, hook InputHook, node *ir.InputNode) (v Value) {
	restore := g.checkpoint()
	defer func() {
		r := recover()
		if r == nil && v != nil {
			return
		}
		restore()
		g.hookFailed(&HookError{Extension: ext, Block: block, Cause: hookCause(r)})
		v = NewTyped(`""`, TypeUnknown)
	}()
	return hook(node, g, g.imports())
}

// callStackHook runs an extension statement hook. On failure everything the
// hook emitted is discarded.
func (g *Generator) callStackHook(ext, block string, hook StackHook, node *ir.StackNode) {
	restore := g.checkpoint()
	defer func() {
		if r := recover(); r != nil {
			restore()
			g.hookFailed(&HookError{Extension: ext, Block: block, Statement: true, Cause: hookCause(r)})
		}
	}()
	hook(node, g, g.imports())
}

// checkpoint snapshots the state a failing hook may have left half-changed.
func (g *Generator) checkpoint() (restore func()) {
	src := g.src
	n := src.Len()
	depth := len(g.frames)
	warp := g.isWarp
	yields := g.yieldPoints
	return func() {
		g.src = src
		src.Truncate(n)
		for len(g.frames) > depth {
			g.frames.pop()
		}
		g.isWarp = warp
		g.yieldPoints = yields
		g.ResetVariables()
	}
}

func (g *Generator) hookFailed(err *HookError) {
	g.logger.Warn("extension hook failed",
		"code", err.Code(),
		"extension", err.Extension,
		"block", err.Block,
		"top_block", g.script.TopBlockID,
		"error", err.Cause,
	)
}

func hookCause(r any) error {
	switch v := r.(type) {
	case nil:
		return errors.New("hook returned no value")
	case bailout:
		return v.err
	case error:
		return v
	default:
		return fmt.Errorf("%v", v)
	}
}
