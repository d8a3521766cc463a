package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const factoryColumns = `
	script_key, id, build_id, target, script_name, top_block_id,
	name, function_name, source,
	warp, yields, is_procedure, arity, setup_bindings, yield_points,
	compiler_version, seq`

// LookupFactory returns the cached factory for a script key if one was
// compiled by the given compiler version.
func (s *Store) LookupFactory(ctx context.Context, scriptKey, compilerVersion string) (Factory, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+factoryColumns+`
		FROM factories
		WHERE script_key = ? AND compiler_version = ?
	`, scriptKey, compilerVersion)

	f, err := scanFactory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Factory{}, false, nil
	}
	if err != nil {
		return Factory{}, false, err
	}
	return f, true, nil
}

// ListFactories returns every cached factory.
// Ordered by seq ASC, script_key ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the cache is empty.
func (s *Store) ListFactories(ctx context.Context) ([]Factory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+factoryColumns+`
		FROM factories
		ORDER BY seq ASC, script_key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query factories: %w", err)
	}
	defer rows.Close()

	factories := []Factory{}
	for rows.Next() {
		f, err := scanFactory(rows)
		if err != nil {
			return nil, err
		}
		factories = append(factories, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factories: %w", err)
	}
	return factories, nil
}

// ReadFailures returns the compile failures of a build.
// Ordered by seq ASC, id ASC COLLATE BINARY.
func (s *Store) ReadFailures(ctx context.Context, buildID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, build_id, script_key, target, script_name, top_block_id, code, message, seq
		FROM compile_failures
		WHERE build_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	failures := []Failure{}
	for rows.Next() {
		var f Failure
		if err := rows.Scan(
			&f.ID, &f.BuildID, &f.ScriptKey, &f.Target, &f.ScriptName,
			&f.TopBlockID, &f.Code, &f.Message, &f.Seq,
		); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return failures, nil
}

// ReadBuild returns one build record.
func (s *Store) ReadBuild(ctx context.Context, id string) (Build, bool, error) {
	var b Build
	err := s.db.QueryRowContext(ctx, `
		SELECT id, program_hash, target, compiler_version, ir_version, seq, scripts, failures, finished
		FROM builds
		WHERE id = ?
	`, id).Scan(
		&b.ID, &b.ProgramHash, &b.Target, &b.CompilerVersion, &b.IRVersion,
		&b.Seq, &b.Scripts, &b.Failures, &b.Finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, fmt.Errorf("read build: %w", err)
	}
	return b, true, nil
}

// MaxSeq returns the highest sequence number recorded in any table, or 0
// for an empty store. Callers resume their clock from it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM builds
			UNION ALL SELECT seq FROM factories
			UNION ALL SELECT seq FROM compile_failures
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFactory(r rowScanner) (Factory, error) {
	var f Factory
	err := r.Scan(
		&f.ScriptKey, &f.ID, &f.BuildID, &f.Target, &f.ScriptName, &f.TopBlockID,
		&f.Name, &f.FunctionName, &f.Source,
		&f.Warp, &f.Yields, &f.Procedure, &f.Arity, &f.SetupBindings, &f.YieldPoints,
		&f.CompilerVersion, &f.Seq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Factory{}, err
	}
	if err != nil {
		return Factory{}, fmt.Errorf("scan factory: %w", err)
	}
	return f, nil
}
