package mergecmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/neural/pkg/merkle"
)

const mergeLongDesc string = `Merge one or more transcript databases into a target.

Transcripts are content-addressed, so merging is a union: exchanges that
already exist in the target are skipped. Useful for combining the record
databases of several backend instances.

Examples:
  neural merge --db merged.db node1.db node2.db`

const mergeShortDesc string = "Merge transcript databases"

type mergeCommander struct {
	dbPath string
}

func NewMergeCmd() *cobra.Command {
	cmder := &mergeCommander{}

	cmd := &cobra.Command{
		Use:   "merge [sources...]",
		Short: mergeShortDesc,
		Long:  mergeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.dbPath, "db", "d", "", "Path to the target transcript database")
	cmd.MarkFlagRequired("db")

	return cmd
}

func (c *mergeCommander) run(ctx context.Context, cmd *cobra.Command, sources []string) error {
	target, err := merkle.NewSQLiteStorer(c.dbPath)
	if err != nil {
		return fmt.Errorf("could not open target database %s: %w", c.dbPath, err)
	}
	defer target.Close()

	var totalNew, totalDuped int

	for _, srcPath := range sources {
		srcNew, srcDuped, err := mergeSource(ctx, target, srcPath)
		if err != nil {
			return err
		}

		totalNew += srcNew
		totalDuped += srcDuped

		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d new, %d already existed\n", srcPath, srcNew, srcDuped)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d new nodes from %d sources (%d already existed) into %s\n",
		totalNew, len(sources), totalDuped, c.dbPath)

	return nil
}

func mergeSource(ctx context.Context, target merkle.Storer, srcPath string) (int, int, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return 0, 0, fmt.Errorf("could not open source database: %w", err)
	}

	source, err := merkle.NewSQLiteStorer(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open source database %s: %w", srcPath, err)
	}
	defer source.Close()

	nodes, err := source.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("could not list nodes from %s: %w", srcPath, err)
	}

	// Nodes arrive in hash order; parents are not required to exist first.
	var isNewCount, dupedCount int
	for _, n := range nodes {
		isNew, err := target.Put(ctx, n)
		if err != nil {
			return 0, 0, fmt.Errorf("could not put node %s: %w", n.Hash, err)
		}
		if isNew {
			isNewCount++
		} else {
			dupedCount++
		}
	}
	return isNewCount, dupedCount, nil
}
