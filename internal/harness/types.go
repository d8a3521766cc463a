package harness

// ScriptSnapshot is the outcome for one script of a scenario's program.
type ScriptSnapshot struct {
	Name         string `json:"name"`
	FunctionName string `json:"function_name,omitempty"`
	Source       string `json:"source,omitempty"`

	Warp          bool `json:"warp,omitempty"`
	Yields        bool `json:"yields,omitempty"`
	Procedure     bool `json:"procedure,omitempty"`
	Arity         int  `json:"arity,omitempty"`
	SetupBindings int  `json:"setup_bindings,omitempty"`
	YieldPoints   int  `json:"yield_points,omitempty"`

	// Code and Message are set when the script failed to compile.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the script did not compile.
func (s ScriptSnapshot) Failed() bool {
	return s.Code != "" || s.Message != ""
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Scripts holds one snapshot per script, entry first, then procedures
	// sorted by variant.
	Scripts []ScriptSnapshot `json:"scripts"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Scripts: []ScriptSnapshot{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Script returns the snapshot for the named script.
func (r *Result) Script(name string) (ScriptSnapshot, bool) {
	for _, s := range r.Scripts {
		if s.Name == name {
			return s, true
		}
	}
	return ScriptSnapshot{}, false
}
