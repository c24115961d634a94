package metrics

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"go-worldstats/internal/model"
)

func TestRecordSourceAndRun(t *testing.T) {
	m := New(false)
	m.RecordSource(model.SourceSummary{
		Metric:        model.MetricGDP,
		RowsRead:      10,
		ValuesEmitted: 40,
		Drops:         map[model.DropReason]int{model.DropMissingValue: 3, model.DropUnmappedCountry: 2},
	})
	m.RecordRun(2*time.Second, &model.RunSummary{RecordsWritten: 40, Partitions: 4, StartedAt: time.Unix(1000, 0)})
	m.RecordRun(time.Second, nil)

	require.Equal(t, 10.0, testutil.ToFloat64(m.RowsRead.WithLabelValues("gdp")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.ValuesDropped.WithLabelValues("gdp", "missing_value")))
	require.Equal(t, 40.0, testutil.ToFloat64(m.RecordsWritten))
	require.Equal(t, 4.0, testutil.ToFloat64(m.Partitions))
	require.Equal(t, 1002.0, testutil.ToFloat64(m.LastRunStamp))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordStage("load", time.Second)
	m.RecordRequest("/x", 200, time.Millisecond)
	m.RecordRun(time.Second, nil)
	require.NoError(t, m.WriteTextfile("ignored"))
}

func TestHandlerAndTextfile(t *testing.T) {
	m := New(false)
	m.RecordRequest("/api/v1/facts", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `worldstats_http_requests_total{code="200",route="/api/v1/facts"} 1`)

	path := filepath.Join(t.TempDir(), "worldstats.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "worldstats_query_duration_seconds")
}
