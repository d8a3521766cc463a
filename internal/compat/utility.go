package compat

import (
	"context"
	"maps"
)

// StackFrame is scratch state a bridge block keeps across the polls of one
// call, such as a loop counter.
type StackFrame struct {
	Values map[string]any
}

// NewStackFrame creates an empty frame.
func NewStackFrame() *StackFrame {
	return &StackFrame{Values: make(map[string]any)}
}

// Arg is one named procedure argument.
type Arg struct {
	Name  string
	Value any
}

// Args is an ordered argument record. Order is the procedure's parameter
// order.
type Args []Arg

// Values returns the argument values in order.
func (a Args) Values() []any {
	out := make([]any, len(a))
	for i, arg := range a {
		out[i] = arg.Value
	}
	return out
}

// Interpreter invokes compiled procedures by procedure code.
type Interpreter interface {
	CallProcedure(ctx context.Context, code string, args []any) (any, error)
}

// Procedure is one compiled procedure body.
type Procedure func(ctx context.Context, args []any) (any, error)

// ProcedureTable is an Interpreter backed by a map.
type ProcedureTable map[string]Procedure

// CallProcedure runs the procedure registered under code.
func (p ProcedureTable) CallProcedure(ctx context.Context, code string, args []any) (any, error) {
	fn, ok := p[code]
	if !ok {
		return nil, newError(ErrCodeUnknownProcedure, "no procedure %q", code)
	}
	return fn(ctx, args)
}

// BlockFunc is the implementation of a block with no compiled form. A
// conditional or loop block reports the substack to run by calling
// util.StartBranch; other blocks return their value.
type BlockFunc func(ctx context.Context, args map[string]any, util *Utility) (any, error)

// Utility is the block utility handed to bridge blocks. One Utility serves
// every bridge call of a scheduler; Init rebinds it to the calling thread.
type Utility struct {
	thread     *Thread
	branchInfo *BranchInfo

	started       bool
	startedBranch int
	startedLoop   bool
}

// NewUtility creates an unbound utility.
func NewUtility() *Utility {
	return &Utility{}
}

// Init binds the utility to a bridge call: the thread making it, the ID of
// the block being emulated, that block's stack frame, and its branch record
// (nil for command blocks).
func (u *Utility) Init(t *Thread, fakeBlockID string, frame *StackFrame, info *BranchInfo) {
	u.thread = t
	u.branchInfo = info
	u.started = false
	u.startedBranch = 0
	u.startedLoop = false

	if len(t.Stack) == 0 {
		t.Stack = append(t.Stack, fakeBlockID)
	} else {
		t.Stack[0] = fakeBlockID
	}
	t.Frame = frame
}

// Thread returns the thread of the current call.
func (u *Utility) Thread() *Thread { return u.thread }

// StackFrame returns the current call's frame.
func (u *Utility) StackFrame() *StackFrame {
	if u.thread == nil {
		return nil
	}
	return u.thread.Frame
}

// StartBranch selects the substack to run after the block returns. onEnd,
// if non-nil, is queued on the call's branch record.
func (u *Utility) StartBranch(branch int, isLoop bool, onEnd OnEnd) {
	if u.branchInfo != nil && onEnd != nil {
		u.branchInfo.PushOnEnd(onEnd)
	}
	u.started = true
	u.startedBranch = branch
	u.startedLoop = isLoop
}

// StartedBranch reports the branch selected during the current call.
func (u *Utility) StartedBranch() (branch int, isLoop bool, ok bool) {
	return u.startedBranch, u.startedLoop, u.started
}

// StartProcedure runs a compiled procedure and returns its result, which is
// nil for procedures that report nothing. A nil args record calls the
// procedure without arguments.
func (u *Utility) StartProcedure(ctx context.Context, code string, args Args) (any, error) {
	if u.thread == nil {
		return nil, newError(ErrCodeNotInitialized, "StartProcedure(%q) before Init", code)
	}
	if u.thread.Procedures == nil {
		return nil, newError(ErrCodeUnknownProcedure, "no procedure %q: thread has no procedures", code)
	}
	var values []any
	if args != nil {
		values = args.Values()
	}
	return u.thread.Procedures.CallProcedure(ctx, code, values)
}

// Execute performs one bridge call. With a branch record the result is the
// started branch number, or 0 when the block started none, and the record's
// loop flag follows the block's choice. Without one it is the block's value.
//
// A nil frame gives the block a fresh one.
func (u *Utility) Execute(ctx context.Context, t *Thread, blockID string, frame *StackFrame, info *BranchInfo, block BlockFunc, args map[string]any) (any, error) {
	if frame == nil {
		frame = NewStackFrame()
	}
	u.Init(t, blockID, frame, info)

	result, err := block(ctx, maps.Clone(args), u)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return result, nil
	}
	branch, isLoop, ok := u.StartedBranch()
	if !ok {
		return 0, nil
	}
	info.IsLoop = isLoop
	return branch, nil
}

// Poll adapts a bridge block into a PollFunc for RunBranches. Each poll is
// one Execute call with the same thread, block and arguments, and every
// poll of one Poll shares a stack frame.
func (u *Utility) Poll(t *Thread, blockID string, block BlockFunc, args map[string]any) PollFunc {
	frame := NewStackFrame()
	return func(ctx context.Context, info *BranchInfo) (int, error) {
		v, err := u.Execute(ctx, t, blockID, frame, info, block, args)
		if err != nil {
			return 0, err
		}
		n, _ := v.(int)
		return n, nil
	}
}
