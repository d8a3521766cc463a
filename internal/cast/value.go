package cast

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/blockc/internal/ir"
)

// lower is the host's locale-independent toLowerCase.
var lower = cases.Lower(language.Und)

// Lower lowercases s without locale tailoring.
func Lower(s string) string {
	return lower.String(s)
}

// Number returns the host numeric value of a literal (unary plus).
func Number(l ir.Literal) float64 {
	switch l.Kind {
	case ir.LiteralNumber:
		f, err := strconv.ParseFloat(l.Text, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return f
			}
			return math.NaN()
		}
		return f
	case ir.LiteralBool:
		if l.Text == "true" {
			return 1
		}
		return 0
	default:
		return ToNumber(l.Text)
	}
}

// Text returns the host string form of a literal (String(v)).
func Text(l ir.Literal) string {
	if l.Kind == ir.LiteralNumber {
		return NumberToString(Number(l))
	}
	return l.Text
}

// Boolean returns the host truthiness of a literal as the runtime's
// toBoolean computes it: "", "0" and any casing of "false" are false.
func Boolean(l ir.Literal) bool {
	switch l.Kind {
	case ir.LiteralBool:
		return l.Text == "true"
	case ir.LiteralNumber:
		f := Number(l)
		return f != 0 && !math.IsNaN(f)
	default:
		if l.Text == "" || l.Text == "0" || Lower(l.Text) == "false" {
			return false
		}
		return true
	}
}

// IsWhiteSpace reports whether l is a string made only of host whitespace.
func IsWhiteSpace(l ir.Literal) bool {
	return l.Kind == ir.LiteralString && TrimSpace(l.Text) == ""
}

// IsInt reports whether l would be treated as an integer by random and
// similar blocks: a number with no fractional part, a boolean, or a string
// without a decimal point.
func IsInt(l ir.Literal) bool {
	switch l.Kind {
	case ir.LiteralBool:
		return true
	case ir.LiteralNumber:
		f := Number(l)
		if math.IsNaN(f) {
			return true
		}
		return f == math.Trunc(f)
	default:
		return !strings.Contains(l.Text, ".")
	}
}

// Compare orders two literals the way the runtime's compare does.
// The result is negative, zero or positive. Values that are not both
// numeric compare as lowercased strings in UTF-16 order.
func Compare(a, b ir.Literal) int {
	n1 := Number(a)
	n2 := Number(b)
	if n1 == 0 && IsWhiteSpace(a) {
		n1 = math.NaN()
	} else if n2 == 0 && IsWhiteSpace(b) {
		n2 = math.NaN()
	}

	if math.IsNaN(n1) || math.IsNaN(n2) {
		return ir.CompareUTF16(Lower(Text(a)), Lower(Text(b)))
	}

	switch {
	case math.IsInf(n1, 1) && math.IsInf(n2, 1), math.IsInf(n1, -1) && math.IsInf(n2, -1):
		return 0
	case n1 < n2:
		return -1
	case n1 > n2:
		return 1
	}
	return 0
}
