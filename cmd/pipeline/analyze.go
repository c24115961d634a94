package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-worldstats/internal/analysis"
	"go-worldstats/internal/export"
	"go-worldstats/internal/facttable"
	"go-worldstats/internal/model"
	"go-worldstats/pkg/utils"
)

type analyzeMain struct {
	Input    string
	OutDir   string
	Version  string
	Cutoff   int
	MinYears int
	Events   string
	DuckDB   bool
}

// NewAnalyzeCommand computes the analytical tables of a published version
func NewAnalyzeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &analyzeMain{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "compute classifications, period comparisons, shocks, growth and summaries",
		Long: `Reads one published fact table version (the current one unless
--version is given) and writes every analytical table as CSV plus a
report.json into <out-dir>/<version>/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.run(cmd.Context(), stdout)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.Input, "input", "data/facts", "fact table root")
	flags.StringVar(&m.OutDir, "out-dir", "data/analysis", "directory the tables are written to")
	flags.StringVar(&m.Version, "version", "", "fact table version (current when empty)")
	flags.IntVar(&m.Cutoff, "cutoff", analysis.DefaultCutoff, "first year of the later period")
	flags.IntVar(&m.MinYears, "min-years", analysis.DefaultMinYears, "non-null years needed for a period mean")
	flags.StringVar(&m.Events, "events", "2008,2019", "comma separated shock years")
	flags.BoolVar(&m.DuckDB, "duckdb", false, "read the fact table through DuckDB")
	return cmd
}

func (m *analyzeMain) run(ctx context.Context, stdout io.Writer) error {
	events, err := utils.ParseYearList(m.Events)
	if err != nil {
		return fmt.Errorf("invalid --events: %w", err)
	}

	var snap *facttable.Snapshot
	if m.Version != "" {
		snap, err = facttable.OpenVersion(m.Input, m.Version)
	} else {
		snap, err = facttable.Open(m.Input)
	}
	if errors.Is(err, model.ErrNoTable) {
		return fmt.Errorf("%s: %w (run clean first)", m.Input, err)
	}
	if err != nil {
		return err
	}

	records, err := m.read(ctx, snap)
	if err != nil {
		return err
	}

	report := analysis.BuildReport(snap.Version, records, analysis.Params{
		Cutoff:     m.Cutoff,
		MinYears:   m.MinYears,
		EventYears: events,
	})
	fmt.Fprintf(stdout, "📊 Version %s: %d records, %d countries\n", snap.Version, len(records), len(report.Classifications))

	var failed int
	for _, r := range export.NewExportManager(m.OutDir).ExportReport(report) {
		if !r.Success {
			failed++
			fmt.Fprintf(stdout, "❌ %s: %s\n", r.Path, r.Error)
			continue
		}
		fmt.Fprintf(stdout, "💾 %s (%d rows)\n", r.Path, r.RecordCount)
	}
	if failed > 0 {
		return fmt.Errorf("%d exports failed", failed)
	}
	return nil
}

func (m *analyzeMain) read(ctx context.Context, snap *facttable.Snapshot) ([]model.CountryYearRecord, error) {
	if !m.DuckDB {
		return snap.Records(ctx)
	}
	reader, err := facttable.NewDuckDBReader(snap)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.Records(ctx)
}

func init() {
	subcommandFns["analyze"] = NewAnalyzeCommand
}
