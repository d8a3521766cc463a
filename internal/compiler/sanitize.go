package compiler

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Sanitize escapes s for use between double quotes in generated source.
// The result is the body of a JSON string literal, which is also a valid
// host string literal body.
func Sanitize(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Encoding a string cannot fail.
		panic(err)
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// quote returns s as a double-quoted host string literal.
func quote(s string) string {
	return `"` + Sanitize(s) + `"`
}
