package compiler

// Frame is the lexical context of one nested statement list.
type Frame struct {
	// IsLoop is set for bodies that run repeatedly (repeat, while, for).
	IsLoop bool

	// IsLastBlock is true while the frame's final statement is compiled.
	IsLastBlock bool

	// Parent is the kind of the block that opened the frame, or "" for a
	// script body and bridge branches.
	Parent string

	// Inherited from every enclosing frame.
	ContainedByLoop bool
	ContainedByCase bool

	// Parents lists the opening block kinds, outermost first.
	Parents []string
}

// NewFrame creates a frame for a statement list opened by parent.
func NewFrame(isLoop bool, parent string) *Frame {
	return &Frame{
		IsLoop:          isLoop,
		Parent:          parent,
		ContainedByLoop: isLoop,
		Parents:         []string{parent},
	}
}

// inherit folds the enclosing frame's context flags into f.
func (f *Frame) inherit(outer *Frame) {
	if outer == nil {
		return
	}
	f.ContainedByLoop = f.ContainedByLoop || outer.ContainedByLoop
	f.ContainedByCase = f.ContainedByCase || outer.ContainedByCase
	parents := make([]string, 0, len(outer.Parents)+len(f.Parents))
	parents = append(parents, outer.Parents...)
	f.Parents = append(parents, f.Parents...)
}

// frameStack is the generator's stack of open frames; the last is innermost.
type frameStack []*Frame

func (s *frameStack) push(f *Frame) {
	f.inherit(s.top())
	*s = append(*s, f)
}

func (s *frameStack) pop() {
	old := *s
	old[len(old)-1] = nil
	*s = old[:len(old)-1]
}

func (s frameStack) top() *Frame {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// lastInLoop reports whether the statement being compiled is the final one
// executed in an iteration of the innermost loop: it is last in its own
// frame and in every frame between it and that loop.
func (s frameStack) lastInLoop() bool {
	for i := len(s) - 1; i >= 0; i-- {
		f := s[i]
		if !f.IsLastBlock {
			return false
		}
		if f.IsLoop {
			return true
		}
	}
	return false
}
