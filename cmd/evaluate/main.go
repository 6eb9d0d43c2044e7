package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:          "evaluate",
		Short:        "Score the document pipeline against the built-in gold dataset",
		SilenceUsage: true,
	}

	root.AddCommand(runCMD(), latestCMD(), datasetCMD())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
