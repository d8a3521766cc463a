// Command blockc compiles block-script IR programs into host source
// factories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/blockc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		// stdout carries the command's own report; stderr gets the summary.
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
