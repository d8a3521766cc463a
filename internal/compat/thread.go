package compat

// State is where a thread is in its lifecycle.
type State int

const (
	// StateRunning: the scheduler is stepping the thread.
	StateRunning State = iota
	// StateYielded: the thread gave up control and waits to be resumed.
	StateYielded
	// StateRetired: the thread finished or was stopped. Terminal.
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateYielded:
		return "yielded"
	case StateRetired:
		return "retired"
	}
	return "unknown"
}

// Thread is one scheduled run of a compiled script.
//
// Not safe for concurrent use. Scheduling is cooperative: exactly one thread
// executes at a time, and only the scheduler changes its state.
type Thread struct {
	// TopBlock is the ID of the script's first block.
	TopBlock string

	// Stack holds the IDs of the blocks being executed; a bridge call
	// overwrites Stack[0] with the calling block's ID.
	Stack []string

	// Frame is the bridge stack frame of the block currently executing.
	Frame *StackFrame

	// Procedures runs the program's compiled procedures.
	Procedures Interpreter

	state  State
	resume int
}

// NewThread creates a running thread for the script starting at topBlock.
func NewThread(topBlock string, procedures Interpreter) *Thread {
	return &Thread{
		TopBlock:   topBlock,
		Stack:      []string{topBlock},
		Procedures: procedures,
		state:      StateRunning,
	}
}

// State returns the thread's current state.
func (t *Thread) State() State { return t.state }

// Resumes counts how often the thread came back from a yield.
func (t *Thread) Resumes() int { return t.resume }

// Yield moves a running thread to yielded.
func (t *Thread) Yield() error {
	return t.transition(StateYielded)
}

// Resume moves a yielded thread back to running.
func (t *Thread) Resume() error {
	if err := t.transition(StateRunning); err != nil {
		return err
	}
	t.resume++
	return nil
}

// Retire ends the thread from either live state. Retiring twice is an error.
func (t *Thread) Retire() error {
	return t.transition(StateRetired)
}

// transition applies the only legal moves:
//
//	running -> yielded, running -> retired
//	yielded -> running, yielded -> retired
func (t *Thread) transition(to State) error {
	from := t.state
	legal := false
	switch from {
	case StateRunning:
		legal = to == StateYielded || to == StateRetired
	case StateYielded:
		legal = to == StateRunning || to == StateRetired
	}
	if !legal {
		return newError(ErrCodeIllegalTransition, "thread %s: %s -> %s", t.TopBlock, from, to)
	}
	t.state = to
	return nil
}
