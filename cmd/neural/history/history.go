package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/neural/pkg/merkle"
	"github.com/papercomputeco/neural/proxy"
)

const historyLongDesc string = `Print recorded exchanges from a transcript database.

Without a hash, prints one history per leaf (every distinct exchange).
With a hash, prints the history leading up to that node.

Examples:
  neural history --db ~/.neural/transcripts.db
  neural history --db ~/.neural/transcripts.db --json 3f9a...`

const historyShortDesc string = "Print recorded exchanges"

type historyCommander struct {
	dbPath  string
	asJSON  bool
	preview int
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [hash]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := ""
			if len(args) == 1 {
				hash = args[0]
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), hash)
		},
	}

	cmd.Flags().StringVarP(&cmder.dbPath, "db", "d", "", "Path to the transcript database")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print JSON instead of text")
	cmd.Flags().IntVar(&cmder.preview, "preview", 120, "Truncate message content to this many characters (0 = no limit)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, out io.Writer, hash string) error {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(c.dbPath); err != nil {
		return fmt.Errorf("could not open transcript database: %w", err)
	}

	storer, err := merkle.NewSQLiteStorer(c.dbPath)
	if err != nil {
		return fmt.Errorf("could not open transcript database %s: %w", c.dbPath, err)
	}
	defer storer.Close()

	var heads []string
	if hash != "" {
		heads = []string{hash}
	} else {
		leaves, err := storer.Leaves(ctx)
		if err != nil {
			return fmt.Errorf("could not list leaves: %w", err)
		}
		for _, leaf := range leaves {
			heads = append(heads, leaf.Hash)
		}
	}

	histories := make([]*proxy.HistoryResponse, 0, len(heads))
	for _, h := range heads {
		history, err := proxy.BuildHistory(ctx, storer, h)
		if err != nil {
			return fmt.Errorf("could not build history for %s: %w", h, err)
		}
		histories = append(histories, history)
	}

	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(histories)
	}

	if len(histories) == 0 {
		fmt.Fprintln(out, "No recorded exchanges.")
		return nil
	}

	for i, h := range histories {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d messages)\n", short(h.HeadHash), h.Depth)
		for _, m := range h.Messages {
			fmt.Fprintf(out, "  [%s] %s\n", label(m), c.truncate(m.Content))
		}
	}
	return nil
}

func (c *historyCommander) truncate(s string) string {
	if c.preview <= 0 || len(s) <= c.preview {
		return s
	}
	return s[:c.preview] + "..."
}

func label(m proxy.HistoryMessage) string {
	if m.Type == merkle.TypeImage {
		return m.Role + " image"
	}
	return m.Role
}

func short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
