package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeJSON decodes a Program from JSON. Unknown fields are rejected so a
// front end that is newer than this compiler fails loudly.
func DecodeJSON(data []byte) (*Program, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Program
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

// YAMLToJSON converts a YAML document to JSON with the same structure.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// DecodeYAML decodes a Program from YAML.
func DecodeYAML(data []byte) (*Program, error) {
	js, err := YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(js)
}

// check enforces the structural rules the JSON shape alone cannot express.
func (p *Program) check() error {
	if p.Entry != nil && p.Entry.IsProcedure {
		return fmt.Errorf("entry script must not be a procedure")
	}
	for variant, s := range p.Procedures {
		if s == nil {
			continue
		}
		if !s.IsProcedure {
			return fmt.Errorf("procedure %q: is_procedure must be set", variant)
		}
	}
	return nil
}
