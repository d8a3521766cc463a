// Package testutil holds helpers shared by tests: terse IR builders and
// deterministic sequence and ID sources.
package testutil

import "github.com/roach88/blockc/internal/ir"

// Inputs names the operands of a node.
type Inputs map[string]*ir.InputNode

// Stacks names the nested statement lists of a node.
type Stacks map[string]ir.Stack

// Str is a string constant.
func Str(s string) *ir.InputNode {
	return &ir.InputNode{Kind: "constant", Value: ir.String(s)}
}

// Num is a number constant written as text, e.g. Num("1.5").
func Num(text string) *ir.InputNode {
	return &ir.InputNode{Kind: "constant", Value: ir.Number(text)}
}

// Bool is a boolean constant.
func Bool(b bool) *ir.InputNode {
	return &ir.InputNode{Kind: "constant", Value: ir.Bool(b)}
}

// In builds an input node.
func In(kind string, inputs Inputs) *ir.InputNode {
	return &ir.InputNode{Kind: kind, Operands: ir.Operands{Inputs: inputs}}
}

// Op builds a binary operator node with left and right operands.
func Op(kind string, left, right *ir.InputNode) *ir.InputNode {
	return In(kind, Inputs{"left": left, "right": right})
}

// Arg reads procedure parameter i without coercion.
func Arg(i int) *ir.InputNode {
	return &ir.InputNode{Kind: "args.stringNumber", Index: i}
}

// Var is a sprite-local variable.
func Var(id string) *ir.Variable {
	return &ir.Variable{ID: id, Name: id, Scope: "target"}
}

// StageVar is a variable or list on the stage.
func StageVar(id string) *ir.Variable {
	return &ir.Variable{ID: id, Name: id, Scope: "stage"}
}

// VarGet reads a variable. Its type is unknown until assigned.
func VarGet(v *ir.Variable) *ir.InputNode {
	return &ir.InputNode{Kind: "var.get", Operands: ir.Operands{Variable: v}}
}

// Stmt builds a statement node.
func Stmt(kind string, inputs Inputs) *ir.StackNode {
	return &ir.StackNode{Kind: kind, Operands: ir.Operands{Inputs: inputs}}
}

// Block builds a statement node with nested statement lists.
func Block(kind string, inputs Inputs, stacks Stacks) *ir.StackNode {
	return &ir.StackNode{Kind: kind, Operands: ir.Operands{Inputs: inputs, Stacks: stacks}}
}

// VarSet assigns a variable.
func VarSet(v *ir.Variable, value *ir.InputNode) *ir.StackNode {
	return &ir.StackNode{Kind: "var.set", Operands: ir.Operands{
		Inputs:   Inputs{"value": value},
		Variable: v,
	}}
}

// While loops over body while cond holds.
func While(cond *ir.InputNode, body ...*ir.StackNode) *ir.StackNode {
	return Block("control.while", Inputs{"condition": cond}, Stacks{"do": body})
}

// Repeat runs body times times.
func Repeat(times *ir.InputNode, body ...*ir.StackNode) *ir.StackNode {
	return Block("control.repeat", Inputs{"times": times}, Stacks{"do": body})
}

// If runs then or otherwise depending on cond.
func If(cond *ir.InputNode, then, otherwise ir.Stack) *ir.StackNode {
	return Block("control.if", Inputs{"condition": cond}, Stacks{"whenTrue": then, "whenFalse": otherwise})
}

// Wait pauses for a number of seconds.
func Wait(seconds *ir.InputNode) *ir.StackNode {
	return Stmt("control.wait", Inputs{"seconds": seconds})
}

// Compat is a command executed through the compatibility bridge.
func Compat(opcode, id string, inputs Inputs) *ir.StackNode {
	return &ir.StackNode{Kind: "compat", Operands: ir.Operands{
		Inputs: inputs,
		Compat: &ir.Compat{Opcode: opcode, BlockID: id, BlockType: "command"},
	}}
}

// Call invokes a procedure variant as a statement.
func Call(variant string, args ...*ir.InputNode) *ir.StackNode {
	return &ir.StackNode{Kind: "procedures.call", Operands: ir.Operands{
		Args:   args,
		Fields: ir.Record{"code": ir.Text(variant), "variant": ir.Text(variant)},
	}}
}

// Script is a yielding, non-warp top-level script.
func Script(stack ...*ir.StackNode) *ir.Script {
	return &ir.Script{TopBlockID: "top", Stack: stack, Yields: true}
}

// WarpScript is an atomic top-level script.
func WarpScript(stack ...*ir.StackNode) *ir.Script {
	return &ir.Script{TopBlockID: "top", Stack: stack, IsWarp: true}
}

// Procedure is a procedure variant whose code is its variant name.
func Procedure(variant string, yields bool, arguments []string, stack ...*ir.StackNode) *ir.Script {
	return &ir.Script{
		TopBlockID:    variant,
		Stack:         stack,
		IsProcedure:   true,
		Yields:        yields,
		ProcedureCode: variant,
		Arguments:     arguments,
	}
}

// Program wraps an entry script for a sprite named "Sprite1".
func Program(entry *ir.Script) *ir.Program {
	return &ir.Program{Target: ir.Target{Name: "Sprite1"}, Entry: entry}
}
