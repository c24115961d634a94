package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"go-worldstats/internal/model"
)

// ComponentLogger provides structured logging for pipeline components
type ComponentLogger struct {
	logger zerolog.Logger
}

// NewComponentLogger creates a component-specific logger with consistent context.
// LOG_LEVEL selects the level; outside ENVIRONMENT=production output is human readable.
func NewComponentLogger(componentName, version string) *ComponentLogger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var out io.Writer = os.Stderr
	if os.Getenv("ENVIRONMENT") != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("component", componentName).
		Str("version", version).
		Logger()
	return &ComponentLogger{logger: logger}
}

// New wraps an arbitrary writer, used by tests to capture output
func New(w io.Writer, componentName string) *ComponentLogger {
	return &ComponentLogger{logger: zerolog.New(w).With().Str("component", componentName).Logger()}
}

// Nop discards everything
func Nop() *ComponentLogger {
	return &ComponentLogger{logger: zerolog.Nop()}
}

// With returns a child logger carrying an extra string field
func (cl *ComponentLogger) With(key, value string) *ComponentLogger {
	return &ComponentLogger{logger: cl.logger.With().Str(key, value).Logger()}
}

// Zerolog returns the underlying logger for packages outside internal/
func (cl *ComponentLogger) Zerolog() zerolog.Logger {
	return cl.logger
}

func (cl *ComponentLogger) Info() *zerolog.Event {
	return cl.logger.Info()
}

func (cl *ComponentLogger) Error() *zerolog.Event {
	return cl.logger.Error()
}

func (cl *ComponentLogger) Warn() *zerolog.Event {
	return cl.logger.Warn()
}

func (cl *ComponentLogger) Debug() *zerolog.Event {
	return cl.logger.Debug()
}

// LogRowDrop logs a dropped row or cell at debug level
func (cl *ComponentLogger) LogRowDrop(e *model.RowDataError) {
	cl.Debug().
		Str("source", e.Source).
		Int("line", e.Line).
		Str("country", e.Country).
		Int("year", e.Year).
		Str("reason", string(e.Reason)).
		Str("value", e.Value).
		Msg("Dropped value")
}

// LogSourceSummary logs what the cleaning run kept and dropped for one input
func (cl *ComponentLogger) LogSourceSummary(s model.SourceSummary) {
	ev := cl.Info().
		Str("source", s.Source).
		Str("metric", string(s.Metric)).
		Str("layout", s.Layout).
		Int("rows_read", s.RowsRead).
		Int("year_columns", s.YearColumns).
		Int("values_emitted", s.ValuesEmitted).
		Int("dropped", s.DroppedTotal())
	for reason, n := range s.Drops {
		ev = ev.Int("dropped_"+string(reason), n)
	}
	ev.Msg("Source cleaned")
}

// LogRunSummary logs the outcome of a completed cleaning run
func (cl *ComponentLogger) LogRunSummary(s model.RunSummary) {
	cl.Info().
		Str("run_id", s.RunID).
		Str("version", s.Version).
		Str("output", s.OutputPath).
		Int("records", s.RecordsWritten).
		Int("partial_records", s.PartialRecords).
		Int("partitions", s.Partitions).
		Int("countries", s.Countries).
		Dur("duration", s.Duration).
		Msg("Cleaning run completed")
}
