package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-worldstats/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	spec := model.RunSpec{PopulationPath: "pop.csv", GDPPath: "gdp.csv", OutputPath: "out", RetainVersions: 2}

	require.NoError(t, s.SaveRun("run-1", spec))
	require.NoError(t, s.UpdateRunStatus("run-1", StatusCleaning))
	require.NoError(t, s.SaveStageProgress("run-1", StageProgress{
		Stage: "load", Status: "completed", Records: 12, StartedAt: time.Now(), DurationMS: 5,
	}))
	require.NoError(t, s.CompleteRun("run-1", model.RunSummary{RunID: "run-1", Version: "v1", RecordsWritten: 3}))

	run, err := s.GetRun("run-1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, run.Status)
	require.Equal(t, "v1", run.Version)
	require.Equal(t, "pop.csv", run.Spec.PopulationPath)
	require.NotNil(t, run.Summary)
	require.Equal(t, 3, run.Summary.RecordsWritten)
	require.Len(t, run.Stages, 1)
	require.Equal(t, "load", run.Stages[0].Stage)
	require.Equal(t, 12, run.Stages[0].Records)
	require.Empty(t, run.Errors)
}

func TestFailedRunKeepsErrors(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveRun("run-2", model.RunSpec{}))
	require.NoError(t, s.UpdateRunStatus("run-2", StatusFailed))
	require.NoError(t, s.SaveRunError("run-2", errors.New("structural error: pop.csv: file is empty")))
	require.NoError(t, s.SaveRunError("run-2", nil))

	run, err := s.GetRun("run-2")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, run.Status)
	require.Nil(t, run.Summary)
	require.Equal(t, []string{"structural error: pop.csv: file is empty"}, run.Errors)
}

func TestListRunsAndMissing(t *testing.T) {
	s := openTestStore(t)
	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Empty(t, runs)

	require.NoError(t, s.SaveRun("a", model.RunSpec{}))
	require.NoError(t, s.SaveRun("b", model.RunSpec{}))
	runs, err = s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	runs, err = s.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	_, err = s.GetRun("nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.UpdateRunStatus("nope", StatusRunning), ErrNotFound)
}
