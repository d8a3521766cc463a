package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBuild inserts a build with minimal required fields.
func createTestBuild(t *testing.T, s *Store, id string, seq int64) {
	t.Helper()
	err := s.BeginBuild(context.Background(), Build{
		ID:              id,
		ProgramHash:     "program-hash",
		Target:          "Sprite1",
		CompilerVersion: "0.3.0",
		IRVersion:       "1",
		Seq:             seq,
	})
	if err != nil {
		t.Fatalf("BeginBuild() failed: %v", err)
	}
}

// createTestFactory creates a factory record with minimal required fields.
func createTestFactory(scriptKey, buildID string, seq int64) Factory {
	return Factory{
		ScriptKey:       scriptKey,
		ID:              "factory-" + scriptKey,
		BuildID:         buildID,
		Target:          "Sprite1",
		ScriptName:      "entry",
		TopBlockID:      "top",
		Name:            "factory0",
		FunctionName:    "gen0",
		Source:          "(function factory0(thread) {})",
		Yields:          true,
		CompilerVersion: "0.3.0",
		Seq:             seq,
	}
}
