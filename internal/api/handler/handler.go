// Package handler serves the fact table and the analytical queries over HTTP.
// Every request pins the version CURRENT points at when it starts.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go-worldstats/internal/analysis"
	"go-worldstats/internal/facttable"
	"go-worldstats/internal/logging"
	"go-worldstats/internal/model"
	"go-worldstats/internal/store"
	"go-worldstats/pkg/utils"
)

// Handler holds the dependencies of the API endpoints
type Handler struct {
	Root      string       // fact table root
	Ledger    *store.Store // optional; runs endpoints return 503 without it
	UseDuckDB bool         // read facts through DuckDB instead of the Parquet reader
	Logger    *logging.ComponentLogger
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}

// snapshot loads the records of the current version restricted to the
// from/to/country query parameters.
func (h *Handler) snapshot(ctx context.Context, r *http.Request) (string, []model.CountryYearRecord, int, error) {
	q := r.URL.Query()
	from, err := queryYear(q.Get("from"), 0)
	if err != nil {
		return "", nil, http.StatusBadRequest, err
	}
	to, err := queryYear(q.Get("to"), 9999)
	if err != nil {
		return "", nil, http.StatusBadRequest, err
	}
	if from > to {
		return "", nil, http.StatusBadRequest, fmt.Errorf("invalid year range %d..%d", from, to)
	}
	ranged := q.Get("from") != "" || q.Get("to") != ""

	snap, err := facttable.Open(h.Root)
	if errors.Is(err, model.ErrNoTable) {
		return "", nil, http.StatusNotFound, err
	}
	if err != nil {
		return "", nil, http.StatusInternalServerError, err
	}

	var records []model.CountryYearRecord
	if h.UseDuckDB {
		records, err = h.readDuckDB(ctx, snap, ranged, from, to)
	} else if ranged {
		records, err = snap.ReadYears(ctx, from, to)
	} else {
		records, err = snap.Records(ctx)
	}
	if err != nil {
		return "", nil, http.StatusInternalServerError, err
	}

	records = analysis.FilterCountries(records, countryList(q.Get("country")))
	return snap.Version, records, http.StatusOK, nil
}

func (h *Handler) readDuckDB(ctx context.Context, snap *facttable.Snapshot, ranged bool, from, to int) ([]model.CountryYearRecord, error) {
	reader, err := facttable.NewDuckDBReader(snap)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	if ranged {
		return reader.ReadYears(ctx, from, to)
	}
	return reader.Records(ctx)
}

// countryList normalizes a comma separated country query parameter
func countryList(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func queryYear(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	y, ok := utils.ParseYear(s)
	if !ok {
		return 0, errors.New("invalid year " + strconv.Quote(s))
	}
	return y, nil
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid number " + strconv.Quote(s))
	}
	return n, nil
}

func (h *Handler) fail(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error().Err(err).Msg("Request failed")
	}
	writeError(w, code, err.Error())
}
