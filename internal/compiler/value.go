package compiler

import (
	"math"
	"strconv"

	"github.com/dlclark/regexp2"

	"github.com/roach88/blockc/internal/cast"
	"github.com/roach88/blockc/internal/ir"
)

// Value is the compile-time view of an input: emittable renderings in each
// representation plus what is provably known about its runtime type.
//
// Implemented by *Constant, *Typed and *Variable only.
type Value interface {
	AsNumber() string
	// AsNumberOrNaN is AsNumber without the fallback to 0, for callers that
	// tolerate NaN.
	AsNumberOrNaN() string
	AsString() string
	AsBoolean() string
	AsColor() string
	AsUnknown() string
	// AsSafe renders the value for places where a bare number would be
	// misread, such as costume and sound names.
	AsSafe() string

	IsAlwaysNumber() bool
	IsAlwaysNumberOrNaN() bool
	IsNeverNumber() bool

	sealed()
}

var hexColor = regexp2.MustCompile(`^#[0-9a-f]{6,8}$`, regexp2.ECMAScript|regexp2.IgnoreCase)

// Constant is a literal whose conversions are all computed at compile time.
type Constant struct {
	lit  ir.Literal
	safe bool
}

// NewConstant wraps a literal. An unsafe constant is always emitted as a
// string where the host would otherwise accept either.
func NewConstant(lit ir.Literal, safe bool) *Constant {
	return &Constant{lit: lit, safe: safe}
}

// Literal returns the wrapped literal.
func (c *Constant) Literal() ir.Literal { return c.lit }

// Safe reports whether the constant may be emitted as a bare number.
func (c *Constant) Safe() bool { return c.safe }

func (c *Constant) AsNumber() string {
	// Render the parsed number, never the literal text: "010" is 10, and as
	// source it would be octal.
	n := cast.Number(c.lit)
	switch {
	case n != 0 && !math.IsNaN(n):
		return cast.NumberToString(n)
	case cast.IsNegativeZero(n):
		return "-0"
	}
	return "0"
}

func (c *Constant) AsNumberOrNaN() string { return c.AsNumber() }

func (c *Constant) AsString() string {
	return quote(cast.Text(c.lit))
}

func (c *Constant) AsBoolean() string {
	return strconv.FormatBool(cast.Boolean(c.lit))
}

func (c *Constant) AsColor() string {
	text := cast.Text(c.lit)
	if ok, _ := hexColor.MatchString(text); ok {
		if v, err := strconv.ParseUint(text[1:], 16, 64); err == nil {
			return strconv.FormatUint(v, 10)
		}
	}
	return c.AsUnknown()
}

func (c *Constant) AsUnknown() string {
	if c.lit.Kind == ir.LiteralNumber {
		return cast.NumberToString(cast.Number(c.lit))
	}
	if c.lit.Kind == ir.LiteralString && cast.NumberToString(cast.ToNumber(c.lit.Text)) == c.lit.Text {
		return c.lit.Text
	}
	return c.AsString()
}

func (c *Constant) AsSafe() string {
	if c.safe {
		return c.AsUnknown()
	}
	return c.AsString()
}

// IsAlwaysNumber is false for NaN and for empty or whitespace-only text,
// which coerces to 0 but compares as a string.
func (c *Constant) IsAlwaysNumber() bool {
	n := cast.Number(c.lit)
	if math.IsNaN(n) {
		return false
	}
	if n == 0 {
		return cast.TrimSpace(cast.Text(c.lit)) != ""
	}
	return true
}

func (c *Constant) IsAlwaysNumberOrNaN() bool { return c.IsAlwaysNumber() }

func (c *Constant) IsNeverNumber() bool {
	return math.IsNaN(cast.Number(c.lit)) || cast.IsWhiteSpace(c.lit)
}

func (*Constant) sealed() {}

// Typed is emitted source text with a known type bound.
type Typed struct {
	src string
	typ Type
}

// NewTyped wraps source text. The type must be a sound upper bound on what
// the expression evaluates to at runtime.
func NewTyped(src string, typ Type) *Typed {
	return &Typed{src: src, typ: typ}
}

// Source returns the wrapped expression.
func (t *Typed) Source() string { return t.src }

// Type returns the type bound.
func (t *Typed) Type() Type { return t.typ }

func (t *Typed) AsNumber() string { return asNumber(t.src, t.typ) }

func (t *Typed) AsNumberOrNaN() string { return asNumberOrNaN(t.src, t.typ) }

func (t *Typed) AsString() string { return asString(t.src, t.typ) }

func (t *Typed) AsBoolean() string {
	switch t.typ {
	case TypeBoolean:
		return t.src
	case TypeNumber:
		return "(" + t.src + " !== 0)"
	case TypeNumberNaN:
		return "((" + t.src + " || 0) !== 0)"
	}
	return "toBoolean(" + t.src + ")"
}

func (t *Typed) AsColor() string   { return t.src }
func (t *Typed) AsUnknown() string { return t.src }
func (t *Typed) AsSafe() string    { return t.src }

func (t *Typed) IsAlwaysNumber() bool { return t.typ == TypeNumber }

func (t *Typed) IsAlwaysNumberOrNaN() bool {
	return t.typ == TypeNumber || t.typ == TypeNumberNaN
}

func (t *Typed) IsNeverNumber() bool { return false }

func (*Typed) sealed() {}

// Variable is a storage slot plus what was last assigned to it within the
// current invalidation scope. The generator hands out a fresh Variable after
// every reset, so the cached value never survives a yield.
type Variable struct {
	src   string
	typ   Type
	value Value
}

// NewVariable wraps a storage access expression with nothing cached.
func NewVariable(src string) *Variable {
	return &Variable{src: src, typ: TypeUnknown}
}

// Source returns the storage access expression.
func (v *Variable) Source() string { return v.src }

// Type returns the type of the cached value, or TypeUnknown.
func (v *Variable) Type() Type { return v.typ }

// Cached returns the last assigned value, or nil.
func (v *Variable) Cached() Value { return v.value }

// SetInput records an assignment. Assigning another Variable copies its
// cached value so references never chain; with nothing cached the slot
// becomes unknown.
func (v *Variable) SetInput(in Value) {
	if other, ok := in.(*Variable); ok {
		if other.value == nil {
			v.typ = TypeUnknown
			v.value = nil
			return
		}
		in = other.value
	}
	v.value = in
	if t, ok := in.(*Typed); ok {
		v.typ = t.typ
	} else {
		v.typ = TypeUnknown
	}
}

func (v *Variable) AsNumber() string { return asNumber(v.src, v.typ) }

func (v *Variable) AsNumberOrNaN() string { return asNumberOrNaN(v.src, v.typ) }

func (v *Variable) AsString() string { return asString(v.src, v.typ) }

func (v *Variable) AsBoolean() string {
	if v.typ == TypeBoolean {
		return v.src
	}
	return "toBoolean(" + v.src + ")"
}

func (v *Variable) AsColor() string   { return v.src }
func (v *Variable) AsUnknown() string { return v.src }
func (v *Variable) AsSafe() string    { return v.src }

func (v *Variable) IsAlwaysNumber() bool {
	return v.value != nil && v.value.IsAlwaysNumber()
}

func (v *Variable) IsAlwaysNumberOrNaN() bool {
	return v.value != nil && v.value.IsAlwaysNumberOrNaN()
}

func (v *Variable) IsNeverNumber() bool {
	return v.value != nil && v.value.IsNeverNumber()
}

func (*Variable) sealed() {}

func asNumber(src string, typ Type) string {
	switch typ {
	case TypeNumber:
		return src
	case TypeNumberNaN:
		return "(" + src + " || 0)"
	}
	return "(+" + src + " || 0)"
}

func asNumberOrNaN(src string, typ Type) string {
	if typ == TypeNumber || typ == TypeNumberNaN {
		return src
	}
	return "(+" + src + ")"
}

func asString(src string, typ Type) string {
	if typ == TypeString {
		return src
	}
	return `("" + ` + src + ")"
}
