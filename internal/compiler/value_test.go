package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
)

func TestConstantConversions(t *testing.T) {
	tests := []struct {
		name    string
		lit     *ir.Literal
		number  string
		str     string
		boolean string
		unknown string
	}{
		{"integer string", ir.String("10"), "10", `"10"`, "true", "10"},
		{"leading zero", ir.String("010"), "10", `"010"`, "true", `"010"`},
		{"decimal", ir.String("1.5"), "1.5", `"1.5"`, "true", "1.5"},
		{"empty", ir.String(""), "0", `""`, "false", `""`},
		{"text", ir.String("abc"), "0", `"abc"`, "true", `"abc"`},
		{"false text", ir.String("FALSE"), "0", `"FALSE"`, "false", `"FALSE"`},
		{"negative zero", ir.String("-0"), "-0", `"-0"`, "true", `"-0"`},
		{"number literal", ir.Number("1e3"), "1000", `"1000"`, "true", "1000"},
		{"bool literal", ir.Bool(true), "1", `"true"`, "true", `"true"`},
		{"quotes", ir.String("say \"hi\"\n"), "0", `"say \"hi\"\n"`, "true", `"say \"hi\"\n"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConstant(*tt.lit, true)
			assert.Equal(t, tt.number, c.AsNumber())
			assert.Equal(t, tt.number, c.AsNumberOrNaN())
			assert.Equal(t, tt.str, c.AsString())
			assert.Equal(t, tt.boolean, c.AsBoolean())
			assert.Equal(t, tt.unknown, c.AsUnknown())
		})
	}
}

func TestConstantWhitespaceIsNeverNumber(t *testing.T) {
	for _, text := range []string{"", " ", "\t\n", "\u00a0"} {
		c := NewConstant(*ir.String(text), true)
		assert.False(t, c.IsAlwaysNumber(), "%q", text)
		assert.False(t, c.IsAlwaysNumberOrNaN(), "%q", text)
		assert.True(t, c.IsNeverNumber(), "%q", text)
		assert.Equal(t, "0", c.AsNumber(), "%q still coerces to zero", text)
	}
}

func TestConstantTypeQueries(t *testing.T) {
	zero := NewConstant(*ir.String("0"), true)
	assert.True(t, zero.IsAlwaysNumber())
	assert.False(t, zero.IsNeverNumber())

	padded := NewConstant(*ir.String(" 10"), true)
	assert.True(t, padded.IsAlwaysNumber())
	assert.False(t, padded.IsNeverNumber())

	nan := NewConstant(*ir.String("NaN"), true)
	assert.False(t, nan.IsAlwaysNumber())
	assert.True(t, nan.IsNeverNumber())
}

func TestConstantColor(t *testing.T) {
	assert.Equal(t, "16711680", NewConstant(*ir.String("#FF0000"), true).AsColor())
	assert.Equal(t, "4278190208", NewConstant(*ir.String("#ff000080"), true).AsColor())
	assert.Equal(t, `"#abc"`, NewConstant(*ir.String("#abc"), true).AsColor())
	assert.Equal(t, "5", NewConstant(*ir.String("5"), true).AsColor())
}

func TestConstantSafe(t *testing.T) {
	safe := NewConstant(*ir.String("1"), true)
	unsafe := NewConstant(*ir.String("1"), false)

	assert.Equal(t, "1", safe.AsSafe())
	assert.Equal(t, `"1"`, unsafe.AsSafe())
	assert.Equal(t, "1", unsafe.AsUnknown())
}

func TestTypedConversions(t *testing.T) {
	tests := []struct {
		typ     Type
		number  string
		orNaN   string
		str     string
		boolean string
	}{
		{TypeNumber, "x", "x", `("" + x)`, "(x !== 0)"},
		{TypeNumberNaN, "(x || 0)", "x", `("" + x)`, "((x || 0) !== 0)"},
		{TypeString, "(+x || 0)", "(+x)", "x", "toBoolean(x)"},
		{TypeBoolean, "(+x || 0)", "(+x)", `("" + x)`, "x"},
		{TypeUnknown, "(+x || 0)", "(+x)", `("" + x)`, "toBoolean(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			v := NewTyped("x", tt.typ)
			assert.Equal(t, tt.number, v.AsNumber())
			assert.Equal(t, tt.orNaN, v.AsNumberOrNaN())
			assert.Equal(t, tt.str, v.AsString())
			assert.Equal(t, tt.boolean, v.AsBoolean())
			assert.Equal(t, "x", v.AsUnknown())
			assert.Equal(t, "x", v.AsSafe())
			assert.Equal(t, "x", v.AsColor())
			assert.False(t, v.IsNeverNumber())
		})
	}

	assert.True(t, NewTyped("x", TypeNumber).IsAlwaysNumber())
	assert.False(t, NewTyped("x", TypeNumberNaN).IsAlwaysNumber())
	assert.True(t, NewTyped("x", TypeNumberNaN).IsAlwaysNumberOrNaN())
}

func TestVariableSetInput(t *testing.T) {
	v := NewVariable("b0.value")
	assert.Equal(t, TypeUnknown, v.Type())
	assert.False(t, v.IsAlwaysNumber())
	assert.Equal(t, "(+b0.value || 0)", v.AsNumber())

	v.SetInput(NewTyped("(target.x)", TypeNumber))
	assert.Equal(t, TypeNumber, v.Type())
	assert.True(t, v.IsAlwaysNumber())
	assert.Equal(t, "b0.value", v.AsNumber())

	t.Run("copies through another variable", func(t *testing.T) {
		w := NewVariable("b1.value")
		w.SetInput(v)
		assert.Equal(t, TypeNumber, w.Type())
		_, nested := w.Cached().(*Variable)
		assert.False(t, nested)
	})

	t.Run("variable with nothing cached degrades to unknown", func(t *testing.T) {
		w := NewVariable("b1.value")
		w.SetInput(NewTyped("1", TypeNumber))
		w.SetInput(NewVariable("b2.value"))
		assert.Equal(t, TypeUnknown, w.Type())
		assert.Nil(t, w.Cached())
	})

	t.Run("constant keeps its predicates", func(t *testing.T) {
		w := NewVariable("b1.value")
		w.SetInput(NewConstant(*ir.String("5"), true))
		assert.Equal(t, TypeUnknown, w.Type())
		assert.True(t, w.IsAlwaysNumber())
		require.NotNil(t, w.Cached())
	})

	t.Run("self assignment", func(t *testing.T) {
		w := NewVariable("b1.value")
		w.SetInput(NewTyped("1", TypeString))
		w.SetInput(w)
		assert.Equal(t, TypeString, w.Type())
		assert.False(t, w.IsNeverNumber())
	})
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `a\"b`, Sanitize(`a"b`))
	assert.Equal(t, `line\nnext`, Sanitize("line\nnext"))
	assert.Equal(t, `back\\slash`, Sanitize(`back\slash`))
	assert.Equal(t, `<tag>&`, Sanitize("<tag>&"))
	assert.Equal(t, `\u0001`, Sanitize("\x01"))
}
