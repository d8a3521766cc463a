package compat

import "context"

// OnEnd runs once after a started branch finishes, before the block is
// polled again.
type OnEnd func(ctx context.Context, info *BranchInfo) error

// BranchInfo is the per-call record of a conditional or loop bridge block.
// Generated code creates one with createBranchInfo before its first poll.
type BranchInfo struct {
	// IsLoop keeps the caller polling after a branch completes.
	IsLoop bool

	// Branch is the number returned by the latest poll; 0 means done.
	Branch int

	onEnd []OnEnd
}

// NewBranchInfo creates a branch record.
func NewBranchInfo(isLoop bool) *BranchInfo {
	return &BranchInfo{IsLoop: isLoop}
}

// PushOnEnd queues a callback.
func (b *BranchInfo) PushOnEnd(fn OnEnd) {
	b.onEnd = append(b.onEnd, fn)
}

// ShiftOnEnd removes and returns the oldest queued callback.
func (b *BranchInfo) ShiftOnEnd() (OnEnd, bool) {
	if len(b.onEnd) == 0 {
		return nil, false
	}
	fn := b.onEnd[0]
	b.onEnd[0] = nil
	b.onEnd = b.onEnd[1:]
	return fn, true
}

// PendingOnEnd returns the number of queued callbacks.
func (b *BranchInfo) PendingOnEnd() int {
	return len(b.onEnd)
}

// PollFunc asks the block which branch to run next. 0 ends the block.
type PollFunc func(ctx context.Context, info *BranchInfo) (int, error)

// Arm runs one numbered substack.
type Arm func(ctx context.Context) error

// YieldFunc suspends the calling thread until the scheduler resumes it.
// A nil YieldFunc means the code runs atomically.
type YieldFunc func(ctx context.Context) error

// RunBranches drives the numbered-branch protocol the generated code
// implements with a while/switch:
//
//	while (info.branch = +poll()) {
//	    switch (info.branch) { case 1: ...; case 2: ... }
//	    if (info.onEnd[0]) yield info.onEnd.shift()(info);
//	    if (!info.isLoop) break;
//	    yield;
//	}
//
// Branch numbers are 1-based indexes into arms.
func RunBranches(ctx context.Context, info *BranchInfo, poll PollFunc, arms []Arm, yield YieldFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := poll(ctx, info)
		if err != nil {
			return err
		}
		info.Branch = n
		if n == 0 {
			return nil
		}
		if n < 0 || n > len(arms) {
			return newError(ErrCodeBadBranch, "branch %d selected, block has %d", n, len(arms))
		}

		if arm := arms[n-1]; arm != nil {
			if err := arm(ctx); err != nil {
				return err
			}
		}

		if fn, ok := info.ShiftOnEnd(); ok {
			if err := fn(ctx, info); err != nil {
				return err
			}
			if err := doYield(ctx, yield); err != nil {
				return err
			}
		}

		if !info.IsLoop {
			return nil
		}
		if err := doYield(ctx, yield); err != nil {
			return err
		}
	}
}

func doYield(ctx context.Context, yield YieldFunc) error {
	if yield == nil {
		return nil
	}
	return yield(ctx)
}
