package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// CacheOptions holds flags shared by the cache subcommands.
type CacheOptions struct {
	*RootOptions
	DB string
}

// CachedFactory is one row of `cache list`.
type CachedFactory struct {
	Key          string `json:"key"`
	Target       string `json:"target"`
	Script       string `json:"script"`
	FunctionName string `json:"function_name"`
	BuildID      string `json:"build_id"`
	Compiler     string `json:"compiler_version"`
	Seq          int64  `json:"seq"`
}

// NewCacheCommand creates the cache command and its list/clear
// subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the factory cache",
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "factory cache database path (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	listCmd := &cobra.Command{
		Use:           "list",
		Short:         "List cached factories, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(cmd.Context(), opts, cmd)
		},
	}

	clearCmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every cached factory and recorded failure",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.Context(), opts, cmd)
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func runCacheList(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, _, err := openStore(ctx, formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	factories, err := st.ListFactories(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list factories", err)
	}

	rows := make([]CachedFactory, len(factories))
	for i, f := range factories {
		rows[i] = CachedFactory{
			Key:          f.ScriptKey,
			Target:       f.Target,
			Script:       f.ScriptName,
			FunctionName: f.FunctionName,
			BuildID:      f.BuildID,
			Compiler:     f.CompilerVersion,
			Seq:          f.Seq,
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "Cache is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tKEY\tTARGET\tSCRIPT\tFUNCTION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Seq, shortKey(r.Key), r.Target, r.Script, r.FunctionName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "\n%d cached factory(ies)\n", len(rows))
	return nil
}

func runCacheClear(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, _, err := openStore(ctx, formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Clear(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to clear cache", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(map[string]int64{"removed": n})
	}
	fmt.Fprintf(formatter.Writer, "Removed %d cached factory(ies)\n", n)
	return nil
}

// shortKey trims a hex script key for table output.
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
