package ir

// Stack is an ordered statement list; order is execution order.
// A nil Stack and an empty Stack both compile to nothing.
type Stack []*StackNode

// Variable identifies a variable or list slot.
// Scope "stage" resolves against the stage; anything else against the target.
type Variable struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Scope   string `json:"scope,omitempty"`
	IsCloud bool   `json:"is_cloud,omitempty"`
}

// IsStage reports whether the slot lives on the stage.
func (v *Variable) IsStage() bool {
	return v.Scope == "stage"
}

// Compat carries what the bridge needs to run a block that has no compiled
// emission rule.
type Compat struct {
	Opcode    string  `json:"opcode"`
	BlockID   string  `json:"id"`
	BlockType string  `json:"block_type,omitempty"` // "command", "hat", "conditional", "loop", "reporter", "boolean"
	Mutation  Record  `json:"mutation,omitempty"`
	Substacks []Stack `json:"substacks,omitempty"`
}

// Operands holds the kind-specific payload shared by both node families.
// Which entries are meaningful depends on the node kind.
type Operands struct {
	Inputs   map[string]*InputNode `json:"inputs,omitempty"`
	Stacks   map[string]Stack      `json:"stacks,omitempty"`
	Args     []*InputNode          `json:"args,omitempty"`
	Fields   Record                `json:"fields,omitempty"`
	Variable *Variable             `json:"variable,omitempty"`
	List     *Variable             `json:"list,omitempty"`
	Compat   *Compat               `json:"compat,omitempty"`
}

// Input returns the named operand, or nil.
func (o *Operands) Input(name string) *InputNode {
	return o.Inputs[name]
}

// Stack returns the named nested statement list, or nil.
func (o *Operands) Stack(name string) Stack {
	return o.Stacks[name]
}

// Field returns the textual value of a field, or "".
func (o *Operands) Field(name string) string {
	s, _ := o.Fields.Scalar(name)
	return s
}

// FieldBool reports whether a field is a true boolean (or the text "true").
func (o *Operands) FieldBool(name string) bool {
	switch v := o.Fields[name].(type) {
	case Flag:
		return bool(v)
	case Text:
		return v == "true"
	}
	return false
}

// InputNode is a value-producing node.
type InputNode struct {
	Kind string `json:"kind"`

	// Value is set for "constant" nodes only.
	Value *Literal `json:"value,omitempty"`

	// Index selects the procedure parameter for "args.*" nodes.
	Index int `json:"index,omitempty"`

	Operands
}

// StackNode is a statement node.
type StackNode struct {
	Kind string `json:"kind"`
	Operands
}
