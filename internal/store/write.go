package store

import (
	"context"
	"fmt"
)

// Build is one whole-program build.
type Build struct {
	ID              string
	ProgramHash     string
	Target          string
	CompilerVersion string
	IRVersion       string
	Seq             int64

	// Set by FinishBuild.
	Scripts  int
	Failures int
	Finished bool
}

// Factory is a cached compiled script.
type Factory struct {
	ScriptKey  string
	ID         string
	BuildID    string
	Target     string
	ScriptName string
	TopBlockID string

	Name         string
	FunctionName string
	Source       string

	Warp          bool
	Yields        bool
	Procedure     bool
	Arity         int
	SetupBindings int
	YieldPoints   int

	CompilerVersion string
	Seq             int64
}

// Failure records a script that did not compile.
type Failure struct {
	ID         string
	BuildID    string
	ScriptKey  string
	Target     string
	ScriptName string
	TopBlockID string
	Code       string
	Message    string
	Seq        int64
}

// BeginBuild inserts a build record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) BeginBuild(ctx context.Context, b Build) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds
		(id, program_hash, target, compiler_version, ir_version, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		b.ID,
		b.ProgramHash,
		b.Target,
		b.CompilerVersion,
		b.IRVersion,
		b.Seq,
	)
	if err != nil {
		return fmt.Errorf("begin build: %w", err)
	}
	return nil
}

// FinishBuild records a build's script and failure counts.
// Returns an error if the build does not exist.
func (s *Store) FinishBuild(ctx context.Context, id string, scripts, failures int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE builds SET scripts = ?, failures = ?, finished = 1
		WHERE id = ?
	`, scripts, failures, id)
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish build: no build %q", id)
	}
	return nil
}

// WriteFactory stores a compiled factory, replacing any earlier factory for
// the same script key.
//
// Note: The build referenced by BuildID must exist (foreign key constraint).
func (s *Store) WriteFactory(ctx context.Context, f Factory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO factories
		(script_key, id, build_id, target, script_name, top_block_id,
		 name, function_name, source,
		 warp, yields, is_procedure, arity, setup_bindings, yield_points,
		 compiler_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(script_key) DO UPDATE SET
			id = excluded.id,
			build_id = excluded.build_id,
			target = excluded.target,
			script_name = excluded.script_name,
			top_block_id = excluded.top_block_id,
			name = excluded.name,
			function_name = excluded.function_name,
			source = excluded.source,
			warp = excluded.warp,
			yields = excluded.yields,
			is_procedure = excluded.is_procedure,
			arity = excluded.arity,
			setup_bindings = excluded.setup_bindings,
			yield_points = excluded.yield_points,
			compiler_version = excluded.compiler_version,
			seq = excluded.seq
	`,
		f.ScriptKey,
		f.ID,
		f.BuildID,
		f.Target,
		f.ScriptName,
		f.TopBlockID,
		f.Name,
		f.FunctionName,
		f.Source,
		f.Warp,
		f.Yields,
		f.Procedure,
		f.Arity,
		f.SetupBindings,
		f.YieldPoints,
		f.CompilerVersion,
		f.Seq,
	)
	if err != nil {
		return fmt.Errorf("write factory: %w", err)
	}
	return nil
}

// WriteFailure records a compile failure.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteFailure(ctx context.Context, f Failure) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compile_failures
		(id, build_id, script_key, target, script_name, top_block_id, code, message, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		f.ID,
		f.BuildID,
		f.ScriptKey,
		f.Target,
		f.ScriptName,
		f.TopBlockID,
		f.Code,
		f.Message,
		f.Seq,
	)
	if err != nil {
		return fmt.Errorf("write failure: %w", err)
	}
	return nil
}

// Clear deletes every build, factory and failure in one transaction and
// returns how many factories were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("clear: begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM factories`)
	if err != nil {
		return 0, fmt.Errorf("clear: factories: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear: factories: %w", err)
	}

	// Children first: both tables reference builds.
	if _, err := tx.ExecContext(ctx, `DELETE FROM compile_failures`); err != nil {
		return 0, fmt.Errorf("clear: failures: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM builds`); err != nil {
		return 0, fmt.Errorf("clear: builds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clear: commit: %w", err)
	}
	return removed, nil
}
