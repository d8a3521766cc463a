package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Datum is a field or mutation payload carried by an IR node. The set of
// implementations is closed: Nil, Text, Num, Flag, List and Record.
type Datum interface {
	datum()
}

// Nil represents a JSON null value in the IR.
type Nil struct{}

func (Nil) datum() {}

// MarshalJSON implements json.Marshaler for Nil.
func (Nil) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Text represents a string value in the IR.
type Text string

func (Text) datum() {}

// Num represents a numeric value in the IR.
// The literal text is kept verbatim ("10", "1.5", "1e3") so decoding never
// rounds and the host sees exactly what the front end wrote.
type Num string

func (Num) datum() {}

// Float parses the number. Malformed text yields an error.
func (n Num) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Flag represents a boolean value in the IR.
type Flag bool

func (Flag) datum() {}

// List represents an array of Datum elements.
type List []Datum

func (List) datum() {}

// Record represents a map of string keys to Datum elements.
// Use SortedKeys() for deterministic iteration.
type Record map[string]Datum

func (Record) datum() {}

// RecordEntry represents a key-value pair for typed Record construction.
type RecordEntry struct {
	Key   string
	Value Datum
}

// O is a shorthand for RecordEntry.
// Example: NewRecordFromPairs(O("property", Text("x position")))
func O(key string, value Datum) RecordEntry {
	return RecordEntry{Key: key, Value: value}
}

// NewRecordFromPairs creates a Record from typed key-value pairs.
func NewRecordFromPairs(pairs ...RecordEntry) Record {
	obj := make(Record, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a different order.
func (obj Record) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareUTF16)
	return keys
}

// Scalar returns an entry as text. Strings and numbers come back as
// written, booleans as "true" or "false"; other kinds report false.
func (obj Record) Scalar(key string) (string, bool) {
	switch v := obj[key].(type) {
	case Text:
		return string(v), true
	case Num:
		return string(v), true
	case Flag:
		return strconv.FormatBool(bool(v)), true
	}
	return "", false
}

// CompareUTF16 compares strings by UTF-16 code units.
// This is both the RFC 8785 key order and the host's native string ordering.
func CompareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// UnmarshalJSON decodes a JSON object. Numbers keep their literal text.
func (obj *Record) UnmarshalJSON(data []byte) error {
	d, err := UnmarshalDatum(data)
	if err != nil {
		return err
	}
	if _, isNil := d.(Nil); isNil {
		*obj = nil
		return nil
	}
	rec, ok := d.(Record)
	if !ok {
		return fmt.Errorf("expected object, got %T", d)
	}
	*obj = rec
	return nil
}

// UnmarshalJSON decodes a JSON array. Numbers keep their literal text.
func (arr *List) UnmarshalJSON(data []byte) error {
	d, err := UnmarshalDatum(data)
	if err != nil {
		return err
	}
	if _, isNil := d.(Nil); isNil {
		*arr = nil
		return nil
	}
	list, ok := d.(List)
	if !ok {
		return fmt.Errorf("expected array, got %T", d)
	}
	*arr = list
	return nil
}

// MarshalJSON writes keys in SortedKeys order. This is not the hashing
// form; see MarshalCanonical.
func (obj Record) MarshalJSON() ([]byte, error) {
	return appendDatum(nil, obj)
}

func (arr List) MarshalJSON() ([]byte, error) {
	return appendDatum(nil, arr)
}

// MarshalDatum encodes a payload as JSON.
// The output is also a valid host expression, which is how the code
// generator embeds field and mutation payloads.
func MarshalDatum(v Datum) ([]byte, error) {
	return appendDatum(nil, v)
}

func appendDatum(dst []byte, v Datum) ([]byte, error) {
	switch val := v.(type) {
	case nil, Nil:
		return append(dst, "null"...), nil
	case Flag:
		return strconv.AppendBool(dst, bool(val)), nil
	case Num:
		if !json.Valid([]byte(val)) {
			return nil, fmt.Errorf("malformed number %q", string(val))
		}
		return append(dst, val...), nil
	case Text:
		b, err := json.Marshal(string(val))
		if err != nil {
			return nil, err
		}
		return append(dst, b...), nil
	case List:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendDatum(dst, elem); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return append(dst, ']'), nil
	case Record:
		dst = append(dst, '{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				dst = append(dst, ',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			dst = append(append(dst, key...), ':')
			if dst, err = appendDatum(dst, val[k]); err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("unknown payload type %T", v)
	}
}

// UnmarshalDatum decodes one JSON value. Numbers keep their literal text;
// null becomes Nil.
func UnmarshalDatum(data []byte) (Datum, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return ToDatum(raw)
}

// ToDatum converts a decoded Go value (as produced by encoding/json with
// UseNumber, or by yaml.v3).
func ToDatum(v any) (Datum, error) {
	switch val := v.(type) {
	case nil:
		return Nil{}, nil
	case Datum:
		return val, nil
	case bool:
		return Flag(val), nil
	case string:
		return Text(val), nil
	case json.Number:
		return Num(val.String()), nil
	case int:
		return Num(strconv.Itoa(val)), nil
	case int64:
		return Num(strconv.FormatInt(val, 10)), nil
	case float64:
		return Num(strconv.FormatFloat(val, 'g', -1, 64)), nil
	case []any:
		list := make(List, 0, len(val))
		for i, elem := range val {
			d, err := ToDatum(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, d)
		}
		return list, nil
	case map[string]any:
		rec := make(Record, len(val))
		for k, elem := range val {
			d, err := ToDatum(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			rec[k] = d
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
