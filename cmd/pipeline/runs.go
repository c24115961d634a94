package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-worldstats/internal/store"
)

type runsMain struct {
	Ledger string
	Limit  int
}

// NewRunsCommand lists the run ledger, or shows one run in full
func NewRunsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &runsMain{}
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "list cleaning runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := store.Open(m.Ledger)
			if err != nil {
				return err
			}
			defer ledger.Close()

			if len(args) == 1 {
				run, err := ledger.GetRun(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}

			runs, err := ledger.ListRuns(m.Limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTATUS\tVERSION\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Version, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.Ledger, "ledger", "worldstats.db", "SQLite run ledger")
	flags.IntVar(&m.Limit, "limit", 20, "runs to list")
	return cmd
}

func init() {
	subcommandFns["runs"] = NewRunsCommand
}
