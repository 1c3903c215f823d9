package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	historycmder "github.com/papercomputeco/neural/cmd/neural/history"
	mergecmder "github.com/papercomputeco/neural/cmd/neural/merge"
	servecmder "github.com/papercomputeco/neural/cmd/neural/serve"
)

const rootLongDesc string = `Neural AI backend.

Serves POST /api/chat and POST /api/generate-image, forwarding each request
to the OpenAI API. Optionally records exchanges to a transcript database
that the history and merge commands operate on.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "neural",
		Short:        "Neural AI backend proxy",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(mergecmder.NewMergeCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
