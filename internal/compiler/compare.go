package compiler

import (
	"github.com/roach88/blockc/internal/cast"
	"github.com/roach88/blockc/internal/ir"
)

// Comparisons choose, in order: a direct numeric operator when both sides
// are provably numbers, a lowercase string comparison when either side is
// never a number, and the runtime's generic comparator otherwise. Two
// constants fold to a boolean constant.
//
// A safe constant (one whose text is its canonical number) only earns the
// direct operator against a provably numeric operand, which the first rule
// already covers. NaN-capable operands go to compareEqual, since it treats
// NaN as equal to NaN and === does not.

// foldCompare evaluates a comparison of two constants at compile time.
func foldCompare(left, right Value, accept func(int) bool) (*Constant, bool) {
	l, lok := left.(*Constant)
	r, rok := right.(*Constant)
	if !lok || !rok {
		return nil, false
	}
	result := accept(cast.Compare(l.Literal(), r.Literal()))
	return NewConstant(*ir.Bool(result), true), true
}

func (g *Generator) equals(left, right Value) Value {
	if c, ok := foldCompare(left, right, func(n int) bool { return n == 0 }); ok {
		return c
	}

	if left.IsAlwaysNumber() && right.IsAlwaysNumber() {
		return NewTyped("("+left.AsNumber()+" === "+right.AsNumber()+")", TypeBoolean)
	}
	if left.IsNeverNumber() || right.IsNeverNumber() {
		return NewTyped("("+left.AsString()+".toLowerCase() === "+right.AsString()+".toLowerCase())", TypeBoolean)
	}
	return NewTyped("compareEqual("+left.AsUnknown()+", "+right.AsUnknown()+")", TypeBoolean)
}

func (g *Generator) greater(left, right Value) Value {
	if c, ok := foldCompare(left, right, func(n int) bool { return n > 0 }); ok {
		return c
	}

	if left.IsAlwaysNumber() && right.IsAlwaysNumberOrNaN() {
		return NewTyped("("+left.AsNumber()+" > "+right.AsNumberOrNaN()+")", TypeBoolean)
	}
	// NaN compares false either way, so negate the opposite test.
	if left.IsAlwaysNumberOrNaN() && right.IsAlwaysNumber() {
		return NewTyped("!("+left.AsNumberOrNaN()+" <= "+right.AsNumber()+")", TypeBoolean)
	}
	if left.IsNeverNumber() || right.IsNeverNumber() {
		return NewTyped("("+left.AsString()+".toLowerCase() > "+right.AsString()+".toLowerCase())", TypeBoolean)
	}
	return NewTyped("compareGreaterThan("+left.AsUnknown()+", "+right.AsUnknown()+")", TypeBoolean)
}

func (g *Generator) less(left, right Value) Value {
	if c, ok := foldCompare(left, right, func(n int) bool { return n < 0 }); ok {
		return c
	}

	if left.IsAlwaysNumberOrNaN() && right.IsAlwaysNumber() {
		return NewTyped("("+left.AsNumberOrNaN()+" < "+right.AsNumber()+")", TypeBoolean)
	}
	if left.IsAlwaysNumber() && right.IsAlwaysNumberOrNaN() {
		return NewTyped("!("+left.AsNumber()+" >= "+right.AsNumberOrNaN()+")", TypeBoolean)
	}
	if left.IsNeverNumber() || right.IsNeverNumber() {
		return NewTyped("("+left.AsString()+".toLowerCase() < "+right.AsString()+".toLowerCase())", TypeBoolean)
	}
	return NewTyped("compareLessThan("+left.AsUnknown()+", "+right.AsUnknown()+")", TypeBoolean)
}
