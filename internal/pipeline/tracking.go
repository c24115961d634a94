package pipeline

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go-worldstats/internal/metrics"
	"go-worldstats/internal/store"
)

// StageMetrics tracks metrics for individual pipeline stages
type StageMetrics struct {
	Name             string        `json:"name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	RecordsProcessed int           `json:"records_processed"`
	RecordsPerSecond float64       `json:"records_per_second"`
	WorkerCount      int           `json:"worker_count"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// RunTracker records stage timings of one cleaning run and forwards them to
// the ledger and the metrics registry. Both sinks are optional.
type RunTracker struct {
	RunID   string
	mu      sync.Mutex
	stages  map[string]*StageMetrics
	ledger  *store.Store
	metrics *metrics.Metrics
	verbose bool
}

// NewRunTracker creates a tracker for runID
func NewRunTracker(runID string, ledger *store.Store, m *metrics.Metrics, verbose bool) *RunTracker {
	return &RunTracker{
		RunID:   runID,
		stages:  make(map[string]*StageMetrics),
		ledger:  ledger,
		metrics: m,
		verbose: verbose,
	}
}

// StartStage marks the start of a pipeline stage
func (rt *RunTracker) StartStage(stage string, workerCount int) {
	rt.mu.Lock()
	rt.stages[stage] = &StageMetrics{
		Name:        stage,
		StartTime:   time.Now(),
		WorkerCount: workerCount,
		Status:      "running",
	}
	rt.mu.Unlock()

	if rt.verbose {
		fmt.Printf("📊 Stage '%s' started with %d workers\n", stage, workerCount)
	}
}

// EndStage marks the end of a pipeline stage
func (rt *RunTracker) EndStage(stage string, recordsProcessed int) {
	rt.finish(stage, recordsProcessed, "completed")
	if rt.verbose {
		fmt.Printf("📊 Stage '%s' completed: %d records processed\n", stage, recordsProcessed)
	}
}

// FailStage marks a stage as failed
func (rt *RunTracker) FailStage(stage string) {
	rt.finish(stage, 0, "failed")
	if rt.verbose {
		fmt.Printf("❌ Stage '%s' failed\n", stage)
	}
}

func (rt *RunTracker) finish(stage string, records int, status string) {
	rt.mu.Lock()
	sm, ok := rt.stages[stage]
	if !ok {
		sm = &StageMetrics{Name: stage, StartTime: time.Now()}
		rt.stages[stage] = sm
	}
	now := time.Now()
	sm.EndTime = &now
	sm.Duration = now.Sub(sm.StartTime)
	sm.RecordsProcessed = records
	sm.Status = status
	if sm.Duration > 0 && records > 0 {
		sm.RecordsPerSecond = float64(records) / sm.Duration.Seconds()
	}
	snapshot := *sm
	rt.mu.Unlock()

	rt.metrics.RecordStage(stage, snapshot.Duration)
	if rt.ledger != nil {
		rt.ledger.SaveStageProgress(rt.RunID, store.StageProgress{
			Stage:      stage,
			Status:     status,
			Records:    records,
			StartedAt:  snapshot.StartTime,
			DurationMS: snapshot.Duration.Milliseconds(),
		})
	}
}

// Stages returns a copy of all stage metrics ordered by start time
func (rt *RunTracker) Stages() []StageMetrics {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]StageMetrics, 0, len(rt.stages))
	for _, sm := range rt.stages {
		out = append(out, *sm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
