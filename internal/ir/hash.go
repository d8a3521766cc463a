package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainScript  = "blockc/script/v1"
	DomainProgram = "blockc/program/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ScriptKey computes the cache identity of one script within its program.
//
// The key covers everything that influences the emitted source: the script
// itself (statements and flags), the target it runs on, and the signatures
// (yields flag and arity) of every procedure in the program, since calls
// compile differently depending on whether the callee yields.
//
// hooks fingerprints the extension hooks the compiler will consult. An empty
// fingerprint leaves the key as it is without any hooks installed.
func ScriptKey(p *Program, s *Script, hooks string) (string, error) {
	script, err := canonicalTree(s)
	if err != nil {
		return "", fmt.Errorf("ScriptKey: script: %w", err)
	}
	target, err := canonicalTree(p.Target)
	if err != nil {
		return "", fmt.Errorf("ScriptKey: target: %w", err)
	}

	signatures := make(Record, len(p.Procedures))
	for variant, proc := range p.Procedures {
		if proc == nil {
			signatures[variant] = Nil{}
			continue
		}
		signatures[variant] = Record{
			"yields": Flag(proc.Yields),
			"arity":  Num(fmt.Sprint(proc.Arity())),
			"empty":  Flag(proc.IsEmpty()),
		}
	}

	obj := Record{
		"script":     script,
		"target":     target,
		"procedures": signatures,
		"ir_version": Text(IRVersion),
	}
	if hooks != "" {
		obj["hooks"] = Text(hooks)
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ScriptKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScript, canonical), nil
}

// ProgramHash identifies a whole program by the keys of its scripts.
func ProgramHash(p *Program) (string, error) {
	var keys List
	for _, ns := range p.Scripts() {
		k, err := ScriptKey(p, ns.Script, "")
		if err != nil {
			return "", err
		}
		keys = append(keys, List{Text(ns.Name), Text(k)})
	}
	slices.SortFunc(keys, func(a, b Datum) int {
		return CompareUTF16(string(a.(List)[0].(Text)), string(b.(List)[0].(Text)))
	})
	canonical, err := MarshalCanonical(keys)
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// MustScriptKey is like ScriptKey without extension hooks but panics on
// error. Use only in tests or when inputs are known to be valid.
func MustScriptKey(p *Program, s *Script) string {
	key, err := ScriptKey(p, s, "")
	if err != nil {
		panic(err)
	}
	return key
}

// canonicalTree round-trips a Go value through JSON into the Datum family
// so MarshalCanonical can apply key ordering to it.
func canonicalTree(v any) (Datum, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return UnmarshalDatum(data)
}
