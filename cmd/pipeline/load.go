package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-worldstats/internal/export"
	"go-worldstats/internal/facttable"
)

type loadMain struct {
	Input string
	DSN   string
	Table string
}

// NewLoadCommand copies the current fact table version into Postgres
func NewLoadCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &loadMain{}
	cmd := &cobra.Command{
		Use:   "load-postgres",
		Short: "copy the current fact table version into a Postgres table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if m.DSN == "" {
				return fmt.Errorf("--dsn is required")
			}
			snap, err := facttable.Open(m.Input)
			if err != nil {
				return err
			}
			records, err := snap.Records(cmd.Context())
			if err != nil {
				return err
			}

			loader, err := export.NewPostgresLoader(cmd.Context(), m.DSN, m.Table)
			if err != nil {
				return err
			}
			defer loader.Close()

			n, err := loader.Load(cmd.Context(), snap.Version, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "🐘 Loaded %d records of version %s into %s\n", n, snap.Version, m.Table)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.Input, "input", "data/facts", "fact table root")
	flags.StringVar(&m.DSN, "dsn", "", "Postgres connection string")
	flags.StringVar(&m.Table, "table", "country_year_facts", "destination table")
	return cmd
}

func init() {
	subcommandFns["load-postgres"] = NewLoadCommand
}
