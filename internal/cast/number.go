// Package cast reproduces the block host's value coercions in Go so the
// compiler can fold constant expressions to exactly what the runtime would
// compute: numeric parsing, number formatting, truthiness, and comparison.
package cast

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

var (
	decimalLiteral = regexp2.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`, regexp2.ECMAScript)
	radixLiteral   = regexp2.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`, regexp2.ECMAScript)
)

// matches runs re over s, which has already been trimmed, so the '$'
// anchors cannot match before a trailing newline.
func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// IsSpace reports whether r is whitespace or a line terminator to the host.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// TrimSpace strips host whitespace from both ends.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// ToNumber converts a string the way the host's unary plus does.
// Empty and whitespace-only strings are 0; anything unparsable is NaN.
func ToNumber(s string) float64 {
	s = TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if matches(radixLiteral, s) {
		base := 16
		switch s[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		n, err := strconv.ParseUint(s[2:], base, 64)
		if err != nil {
			// Too large for uint64; fall back to float accumulation.
			f := 0.0
			for _, c := range s[2:] {
				d, _ := strconv.ParseUint(string(c), base, 8)
				f = f*float64(base) + float64(d)
			}
			return f
		}
		return float64(n)
	}

	if !matches(decimalLiteral, s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports out-of-range values with ±Inf or ±0 already set.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// NumberToString formats f the way the host's Number#toString does:
// shortest round-trip digits, plain notation for exponents in [-7, 21),
// and "1e+21" style otherwise.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// "d.ddddde±XX"
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expText, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(expText)

	k := len(digits)
	n := exp + 1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		e := n - 1
		expSign := "+"
		if e < 0 {
			expSign = "-"
			e = -e
		}
		if k == 1 {
			out = digits + "e" + expSign + strconv.Itoa(e)
		} else {
			out = digits[:1] + "." + digits[1:] + "e" + expSign + strconv.Itoa(e)
		}
	}
	return sign + out
}

// IsNegativeZero reports whether f is -0.
func IsNegativeZero(f float64) bool {
	return f == 0 && math.Signbit(f)
}
