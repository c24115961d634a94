package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-worldstats/internal/ingest"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/model"
)

type fetchMain struct {
	RawDir        string
	Force         bool
	PopulationURL string
	GDPURL        string
	Attempts      int
}

// NewFetchCommand downloads the raw population and GDP tables
func NewFetchCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := &fetchMain{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "download the raw population and GDP CSV files",
		Long: `Downloads the population and GDP tables into --raw-dir.
Files already present are reused unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewComponentLogger("fetch", Version)
			f := ingest.NewFetcher(m.RawDir, logger)
			f.Force = m.Force
			if m.Attempts > 0 {
				f.Retry.MaxAttempts = m.Attempts
			}

			sources := []ingest.Source{
				{Metric: model.MetricPopulation, URL: m.PopulationURL, File: ingest.DefaultSources[0].File},
				{Metric: model.MetricGDP, URL: m.GDPURL, File: ingest.DefaultSources[1].File},
			}
			results, err := f.FetchAll(cmd.Context(), sources)
			for _, r := range results {
				state := "downloaded"
				if r.Cached {
					state = "cached"
				}
				fmt.Fprintf(stdout, "📥 %-10s %-10s %s (%d bytes)\n", r.Source.Metric, state, r.Path, r.Bytes)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.RawDir, "raw-dir", "data/raw", "directory the raw files are written to")
	flags.BoolVar(&m.Force, "force", false, "download even when the file exists")
	flags.StringVar(&m.PopulationURL, "population-url", ingest.DefaultSources[0].URL, "population CSV location")
	flags.StringVar(&m.GDPURL, "gdp-url", ingest.DefaultSources[1].URL, "GDP CSV location")
	flags.IntVar(&m.Attempts, "attempts", 0, "download attempts per file (0 keeps the default)")
	return cmd
}

func init() {
	subcommandFns["fetch"] = NewFetchCommand
}
