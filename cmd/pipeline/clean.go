package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"go-worldstats/internal/countries"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/metrics"
	"go-worldstats/internal/model"
	"go-worldstats/internal/pipeline"
	"go-worldstats/internal/store"
)

type cleanMain struct {
	Spec        model.RunSpec
	Ledger      string
	MetricsFile string
	Verbose     bool
}

// NewCleanCommand runs the cleaning engine and publishes a fact table version
func NewCleanCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &cleanMain{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "clean and join the raw files into a new fact table version",
		Long: `Loads the population and GDP files (wide or long layout), drops
rows that cannot be cleaned, joins both metrics on (country_id, year)
and publishes the result as a new version under --output.

Dropped rows are counted per reason and printed; they never fail the run.
A structural problem with an input or a failed write exits non-zero and
leaves the previously published version in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.run(cmd, stdout)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.Spec.PopulationPath, "population", "data/raw/population.csv", "population CSV")
	flags.StringVar(&m.Spec.GDPPath, "gdp", "data/raw/gdp.csv", "GDP CSV")
	flags.StringVar(&m.Spec.OutputPath, "output", "data/facts", "fact table root")
	flags.StringVar(&m.Spec.CountriesFile, "countries", "", "YAML country table (embedded table when empty)")
	flags.IntVar(&m.Spec.RetainVersions, "retain-versions", 2, "published versions to keep")
	flags.IntVar(&m.Spec.MaxRowsPerFile, "max-rows-per-file", 0, "split year partitions above this many rows (0 = one file per year)")
	flags.StringVar(&m.Spec.Compression, "compression", "snappy", "parquet codec: snappy, zstd, gzip or none")
	flags.IntVar(&m.Spec.Workers.Reshape, "reshape-workers", 4, "reshape workers per source")
	flags.IntVar(&m.Spec.Workers.Partition, "partition-workers", 4, "partitions written in parallel")
	flags.IntVar(&m.Spec.Validation.MinYear, "min-year", 1900, "earliest accepted year")
	flags.IntVar(&m.Spec.Validation.MaxYear, "max-year", 0, "latest accepted year (0 = current year)")
	flags.StringVar(&m.Spec.Timeout, "timeout", "10m", "run timeout")
	flags.StringVar(&m.Ledger, "ledger", "worldstats.db", "SQLite run ledger (empty disables it)")
	flags.StringVar(&m.MetricsFile, "metrics-file", "", "write Prometheus metrics of the run to this textfile")
	flags.BoolVar(&m.Verbose, "verbose", false, "print stage progress")
	return cmd
}

func (m *cleanMain) run(cmd *cobra.Command, stdout io.Writer) error {
	logger := logging.NewComponentLogger("clean", Version)

	resolver, err := countries.Load(m.Spec.CountriesFile)
	if err != nil {
		return err
	}
	if m.Spec.Validation.MaxYear == 0 {
		m.Spec.Validation.MaxYear = model.DefaultValidationRules().MaxYear
	}

	runner := &pipeline.Runner{
		Resolver: resolver,
		Metrics:  metrics.New(false),
		Logger:   logger,
		Verbose:  m.Verbose,
	}
	if m.Ledger != "" {
		ledger, err := store.Open(m.Ledger)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer ledger.Close()
		runner.Ledger = ledger
	}

	summary, err := runner.Run(cmd.Context(), m.Spec)
	if m.MetricsFile != "" {
		if werr := runner.Metrics.WriteTextfile(m.MetricsFile); werr != nil {
			logger.Warn().Err(werr).Str("path", m.MetricsFile).Msg("Failed to write metrics textfile")
		}
	}
	if err != nil {
		return err
	}
	printSummary(stdout, summary)
	return nil
}

func printSummary(w io.Writer, s *model.RunSummary) {
	fmt.Fprintf(w, "✅ Published version %s to %s\n", s.Version, s.OutputPath)
	fmt.Fprintf(w, "   records=%d partial=%d countries=%d partitions=%d duration=%v\n",
		s.RecordsWritten, s.PartialRecords, s.Countries, s.Partitions, s.Duration)
	for _, src := range s.Sources {
		fmt.Fprintf(w, "📄 %s (%s, %s layout): rows=%d values=%d dropped=%d\n",
			src.Source, src.Metric, src.Layout, src.RowsRead, src.ValuesEmitted, src.DroppedTotal())
		reasons := make([]string, 0, len(src.Drops))
		for r := range src.Drops {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(w, "   %-18s %d\n", r, src.Drops[model.DropReason(r)])
		}
	}
}

func init() {
	subcommandFns["clean"] = NewCleanCommand
}
