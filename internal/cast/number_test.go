package cast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"  10\n", 10},
		{"", 0},
		{"   ", 0},
		{"-0.5", -0.5},
		{"+.5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"0x1A", 26},
		{"0b101", 5},
		{"0o17", 15},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumber(tt.in))
		})
	}
}

func TestToNumberNaN(t *testing.T) {
	for _, in := range []string{"abc", "10px", ".", "-0x10", "1_000", "inf", "NaN", "0x"} {
		assert.True(t, math.IsNaN(ToNumber(in)), "expected NaN for %q", in)
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{0.1, "0.1"},
		{123456789, "123456789"},
		{1e21, "1e+21"},
		{1e20, "100000000000000000000"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{sum(0.1, 0.2), "0.30000000000000004"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{2.5e25, "2.5e+25"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberToString(tt.in))
		})
	}
}

func TestIsSpace(t *testing.T) {
	assert.True(t, IsSpace('\u00a0'))
	assert.True(t, IsSpace('\u3000'))
	assert.True(t, IsSpace('\ufeff'))
	assert.False(t, IsSpace('x'))
	assert.Equal(t, "a b", TrimSpace("  a b\t"))
}

func TestIsNegativeZero(t *testing.T) {
	assert.True(t, IsNegativeZero(math.Copysign(0, -1)))
	assert.False(t, IsNegativeZero(0))
}

// sum adds at run time; constant expressions are folded exactly.
func sum(a, b float64) float64 {
	return a + b
}
