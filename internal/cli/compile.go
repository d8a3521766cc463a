package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dlclark/regexp2"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/build"
	"github.com/roach88/blockc/internal/ir"
)

// LockFileName is the lock taken inside an output directory while factory
// files are written.
const LockFileName = ".blockc.lock"

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string // output directory for .js files
	DB        string // factory cache path
	Procedure string // only report this procedure variant
	NoCache   bool
	Jobs      int
}

// CompiledScript is the per-script part of the compile output.
type CompiledScript struct {
	Name         string `json:"name"`
	Key          string `json:"key"`
	TopBlockID   string `json:"top_block_id"`
	FunctionName string `json:"function_name,omitempty"`
	Warp         bool   `json:"warp"`
	Yields       bool   `json:"yields"`
	Cached       bool   `json:"cached"`
	File         string `json:"file,omitempty"`
	Source       string `json:"source,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
}

// CompileOutput is the JSON payload of the compile command.
type CompileOutput struct {
	BuildID  string           `json:"build_id"`
	Target   string           `json:"target"`
	Scripts  []CompiledScript `json:"scripts"`
	Compiled int              `json:"compiled"`
	Cached   int              `json:"cached"`
	Failed   int              `json:"failed"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <program>",
		Short: "Compile a program's scripts to factories",
		Long: `Compile every script of an IR program (.json, .yaml, .yml, .cue or a
CUE package directory) into host source factories.

Without --output the factories are printed. With --output each script is
written to its own .js file. With --db compiled factories are cached and
reused by later builds of unchanged scripts.

Exit codes:
  0 - Every script compiled
  1 - One or more scripts failed to compile
  2 - Command error (unreadable program, store or output errors)

Examples:
  blockc compile sprite.json
  blockc compile sprite.json -o out/ --db cache.db
  blockc compile sprite.yaml --procedure "jump %s" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory for .js files")
	cmd.Flags().StringVar(&opts.DB, "db", "", "factory cache database path")
	cmd.Flags().StringVar(&opts.Procedure, "procedure", "", "only output this procedure variant")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "recompile every script, replacing cached factories")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", build.DefaultJobs, "scripts compiled concurrently")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadProgram(formatter, path)
	if err != nil {
		return err
	}

	buildOpts := []build.Option{
		build.WithJobs(opts.Jobs),
		build.WithLogger(formatter.Logger()),
	}
	if opts.DB != "" {
		st, clock, err := openStore(ctx, formatter, opts.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		buildOpts = append(buildOpts, build.WithStore(st), build.WithClock(clock))
	}
	if opts.NoCache {
		buildOpts = append(buildOpts, build.WithoutCache())
	}

	res, err := build.New(buildOpts...).Build(ctx, loaded.Program)
	if err != nil {
		_ = formatter.Error(ErrCodeBuild, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build failed", err)
	}
	formatter.VerboseLog("Build %s: %d script(s), %d cached", res.ID, len(res.Scripts), res.CachedCount())

	scripts := res.Scripts
	if opts.Procedure != "" {
		sr, ok := findProcedure(res, loaded.Program, opts.Procedure)
		if !ok {
			msg := fmt.Sprintf("no procedure %q in %s", opts.Procedure, path)
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		scripts = []build.ScriptResult{sr}
	}

	out := CompileOutput{BuildID: res.ID, Target: res.Target}
	for i, sr := range scripts {
		cs := CompiledScript{Name: sr.Name, Key: sr.Key, TopBlockID: sr.TopBlockID, Cached: sr.Cached}
		if sr.Err != nil {
			cs.Code = sr.Err.Code
			cs.Message = sr.Err.Err.Error()
			out.Failed++
		} else {
			cs.FunctionName = sr.Factory.FunctionName
			cs.Warp = sr.Factory.Warp
			cs.Yields = sr.Factory.Yields
			cs.Source = sr.Factory.Source
			if opts.Output != "" {
				cs.File = scriptFileName(i, sr.Name)
			}
			if sr.Cached {
				out.Cached++
			} else {
				out.Compiled++
			}
		}
		out.Scripts = append(out.Scripts, cs)
	}

	if opts.Output != "" {
		if err := writeFactories(opts.Output, out.Scripts); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output failed", err)
		}
		for i := range out.Scripts {
			out.Scripts[i].Source = ""
		}
	}

	return outputCompile(formatter, out, opts.Output)
}

// findProcedure picks a procedure's result, skipping the entry script in
// case a procedure shares its name.
func findProcedure(res *build.Result, p *ir.Program, variant string) (build.ScriptResult, bool) {
	if _, ok := p.Procedures[variant]; !ok {
		return build.ScriptResult{}, false
	}
	scripts := res.Scripts
	if p.Entry != nil {
		scripts = scripts[1:]
	}
	for _, sr := range scripts {
		if sr.Name == variant {
			return sr, true
		}
	}
	return build.ScriptResult{}, false
}

// writeFactories writes one .js file per compiled script into dir while
// holding the directory lock, so concurrent compiles into the same
// directory don't interleave.
func writeFactories(dir string, scripts []CompiledScript) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	defer lock.Unlock()

	for _, cs := range scripts {
		if cs.File == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, cs.File), []byte(cs.Source+"\n"), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", cs.File, err)
		}
	}
	return nil
}

var unsafeFileChars = regexp2.MustCompile(`[^a-zA-Z0-9_-]+`, regexp2.ECMAScript)

// scriptFileName names the output file of the i-th script. The index keeps
// names unique when two variants sanitize to the same text.
func scriptFileName(i int, name string) string {
	slug, err := unsafeFileChars.Replace(name, "_", -1, -1)
	if err != nil || slug == "" {
		slug = "script"
	}
	return fmt.Sprintf("%02d_%s.js", i, slug)
}

func outputCompile(formatter *OutputFormatter, out CompileOutput, outputDir string) error {
	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: out, BuildID: out.BuildID}
		if out.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    firstFailureCode(out.Scripts),
				Message: fmt.Sprintf("%d script(s) failed to compile", out.Failed),
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
		return compileExit(out)
	}

	w := formatter.Writer
	for _, cs := range out.Scripts {
		switch {
		case cs.Code != "":
			fmt.Fprintf(w, "✗ %s (top block %s)\n  %s\n", cs.Name, cs.TopBlockID, cs.Message)
		case cs.File != "":
			suffix := ""
			if cs.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(w, "✓ %s → %s%s\n", cs.Name, filepath.Join(outputDir, cs.File), suffix)
		default:
			fmt.Fprintf(w, "// %s\n%s\n", cs.Name, cs.Source)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Compiled %d script(s), %d cached, %d failed\n", out.Compiled, out.Cached, out.Failed)
	return compileExit(out)
}

func compileExit(out CompileOutput) error {
	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d script(s) failed to compile", out.Failed))
	}
	return nil
}

func firstFailureCode(scripts []CompiledScript) string {
	for _, cs := range scripts {
		if cs.Code != "" {
			return cs.Code
		}
	}
	return ErrCodeGeneric
}
