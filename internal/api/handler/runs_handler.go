package handler

import (
	"errors"
	"net/http"

	"go-worldstats/internal/store"
	"go-worldstats/pkg/router"
)

var errNoLedger = errors.New("run ledger not configured")

// ListRuns retrieves recent cleaning runs
// @Summary List runs
// @Description Get the most recent cleaning runs with their status, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} store.Run
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		h.fail(w, http.StatusServiceUnavailable, errNoLedger)
		return
	}
	limit, err := queryInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	runs, err := h.Ledger.ListRuns(limit)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves one cleaning run
// @Summary Get run
// @Description Retrieve the parameters, summary, stages and errors of one cleaning run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} store.Run
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		h.fail(w, http.StatusServiceUnavailable, errNoLedger)
		return
	}
	runID := router.PathParam(r, 3)
	if runID == "" {
		h.fail(w, http.StatusBadRequest, errors.New("run id is required"))
		return
	}
	run, err := h.Ledger.GetRun(runID)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
