package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LiteralKind is the host type a constant was written with.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
)

// Literal is the payload of a constant node. Text is the literal as written
// by the front end; numbers keep their JSON spelling.
type Literal struct {
	Text string
	Kind LiteralKind
}

// String creates a string literal.
func String(s string) *Literal {
	return &Literal{Text: s, Kind: LiteralString}
}

// Number creates a numeric literal from its text.
func Number(text string) *Literal {
	return &Literal{Text: text, Kind: LiteralNumber}
}

// Bool creates a boolean literal.
func Bool(b bool) *Literal {
	return &Literal{Text: strconv.FormatBool(b), Kind: LiteralBool}
}

// UnmarshalJSON accepts a JSON string, number, or boolean.
func (l *Literal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty literal")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Literal{Text: s, Kind: LiteralString}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*l = Literal{Text: strconv.FormatBool(b), Kind: LiteralBool}
	case 'n':
		return fmt.Errorf("constant value must not be null")
	case '[', '{':
		return fmt.Errorf("constant value must be a string, number or boolean")
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*l = Literal{Text: n.String(), Kind: LiteralNumber}
	}
	return nil
}

// MarshalJSON writes the literal back in its original JSON type.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LiteralNumber:
		if !json.Valid([]byte(l.Text)) {
			return nil, fmt.Errorf("malformed number literal %q", l.Text)
		}
		return []byte(l.Text), nil
	case LiteralBool:
		return []byte(l.Text), nil
	default:
		return json.Marshal(l.Text)
	}
}
