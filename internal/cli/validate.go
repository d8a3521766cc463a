package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/build"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Scripts int               `json:"scripts"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one script that failed to compile.
type ValidationError struct {
	Script     string `json:"script"`
	TopBlockID string `json:"top_block_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program>",
		Short: "Check that a program loads and every script compiles",
		Long: `Load an IR program, check it against the schema and compile every script
without writing output or touching a factory cache.

Every failing script is reported with its error code, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	loaded, err := loadProgram(formatter, path)
	if err != nil {
		return err
	}

	res, err := build.New(build.WithLogger(formatter.Logger())).Build(ctx, loaded.Program)
	if err != nil {
		_ = formatter.Error(ErrCodeBuild, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build failed", err)
	}

	result := ValidationResult{Valid: true, Scripts: len(res.Scripts)}
	for _, sr := range res.Failures() {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Script:     sr.Name,
			TopBlockID: sr.TopBlockID,
			Code:       sr.Err.Code,
			Message:    sr.Err.Err.Error(),
		})
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result, path)
}

// outputValidateSuccess outputs successful validation.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult, path string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %d script(s) compile\n", path, result.Scripts)
	return nil
}

// outputValidationErrors outputs every failing script.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.IsJSON() {
		first := result.Errors[0]
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "%s (top block %s)\n", e.Script, e.TopBlockID)
		fmt.Fprintf(formatter.Writer, "  %s\n\n", e.Message)
	}
	fmt.Fprintf(formatter.Writer, "%d of %d script(s) failed\n", len(result.Errors), result.Scripts)
	return exitErr
}
