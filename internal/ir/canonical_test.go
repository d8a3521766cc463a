package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", Text("hello"), `"hello"`},
		{"empty string", Text(""), `""`},
		{"number", Num("42"), "42"},
		{"float number", Num("1.25"), "1.25"},
		{"bool true", Flag(true), "true"},
		{"null", Nil{}, "null"},
		{"go nil", nil, "null"},
		{"empty array", List{}, "[]"},
		{"empty object", Record{}, "{}"},
		{"simple object", Record{"a": Num("1")}, `{"a":1}`},
		{"go map", map[string]any{"b": "x", "a": true}, `{"a":true,"b":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Record{
		"z": Record{"b": Num("1"), "a": Num("2")},
		"a": Num("3"),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(Text("<script>a & b</script>"))
	require.NoError(t, err)
	assert.Equal(t, `"<script>a & b</script>"`, string(result))
}

func TestMarshalCanonicalLineSeparatorsLiteral(t *testing.T) {
	result, err := MarshalCanonical(Text("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(Text(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalKeepsNormalizationForm(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	r1, err := MarshalCanonical(Record{composed: Text(composed)})
	require.NoError(t, err)
	r2, err := MarshalCanonical(Record{decomposed: Text(decomposed)})
	require.NoError(t, err)

	assert.NotEqual(t, r1, r2, "composed and decomposed text are distinct values")
	assert.Contains(t, string(r2), decomposed)
}

func TestMarshalCanonicalRejectsUnsupported(t *testing.T) {
	_, err := MarshalCanonical(make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}
