package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go-worldstats/internal/api"
	"go-worldstats/internal/api/handler"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/metrics"
	"go-worldstats/internal/store"
	"go-worldstats/pkg/router"
)

// Version is filled in by ldflags
var Version = "v0.0.0"

// @title World Stats API
// @version 1.0
// @description Query API over the cleaned population/GDP fact table and its analytical views.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	flags := pflag.NewFlagSet("pipeline-api", pflag.ExitOnError)
	flags.String("addr", ":8080", "listen address")
	flags.String("facts", "data/facts", "fact table root")
	flags.String("ledger", "worldstats.db", "SQLite run ledger (empty disables the runs endpoints)")
	flags.Bool("duckdb", false, "read facts through DuckDB")
	flags.Parse(os.Args[1:])

	// WORLDSTATS_<FLAG> applies when the flag was not given
	v := viper.New()
	v.BindPFlags(flags)
	v.SetEnvPrefix("WORLDSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	logger := logging.NewComponentLogger("pipeline-api", Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, v, logger); err != nil {
		logger.Error().Err(err).Msg("Server stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper, logger *logging.ComponentLogger) error {
	h := &handler.Handler{
		Root:      v.GetString("facts"),
		UseDuckDB: v.GetBool("duckdb"),
		Logger:    logger,
	}
	if p := v.GetString("ledger"); p != "" {
		ledger, err := store.Open(p)
		if err != nil {
			return fmt.Errorf("open run ledger %s: %w", p, err)
		}
		defer ledger.Close()
		h.Ledger = ledger
	}

	r := router.New(logger.Zerolog())
	api.RegisterRoutes(r, h, metrics.New(true))

	logger.Info().Str("facts", h.Root).Bool("duckdb", h.UseDuckDB).Msg("Serving fact table")
	return r.Start(ctx, v.GetString("addr"))
}
