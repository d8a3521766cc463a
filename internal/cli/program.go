package cli

import (
	"context"
	"fmt"

	"github.com/roach88/blockc/internal/build"
	"github.com/roach88/blockc/internal/loader"
	"github.com/roach88/blockc/internal/store"
)

// loadProgram loads and schema-checks a program document, printing every
// load error on failure. The returned error is an ExitError with
// ExitCommandError.
func loadProgram(formatter *OutputFormatter, path string) (*loader.LoadResult, error) {
	loaded, err := loader.Load(path)
	if err != nil {
		return nil, outputLoadErrors(formatter, loader.LoadErrors(err))
	}
	formatter.VerboseLog("Loaded %s (%s, %d file(s))", path, loaded.Format, loaded.FileCount)
	return loaded, nil
}

// outputLoadErrors prints load errors with their document positions.
func outputLoadErrors(formatter *OutputFormatter, errs []*loader.LoadError) error {
	if formatter.IsJSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, le := range errs {
			cliErrors[i] = CLIError{Code: le.Code, Message: le.Message}
			if le.Pos.IsValid() {
				cliErrors[i].Details = map[string]any{
					"file":   le.Pos.Filename(),
					"line":   le.Pos.Line(),
					"column": le.Pos.Column(),
				}
			}
		}
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Loading failed")
	fmt.Fprintln(formatter.Writer)
	for _, le := range errs {
		if le.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", le.Pos.Filename(), le.Pos.Line(), le.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", le.Code, le.Message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
}

// openStore opens the factory cache and returns a clock that resumes after
// its newest record.
func openStore(ctx context.Context, formatter *OutputFormatter, path string) (*store.Store, *build.Clock, error) {
	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("opening store %s: %v", path, err), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	seq, err := st.MaxSeq(ctx)
	if err != nil {
		st.Close()
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("reading store %s: %v", path, err), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to read store", err)
	}
	formatter.VerboseLog("Opened store %s at seq %d", path, seq)
	return st, build.NewClockAt(seq), nil
}
