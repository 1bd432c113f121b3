// Package httpapi serves the collected history over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cloudpico-climate/internal/store"
	"cloudpico-climate/internal/types"
)

const (
	defaultReadingsLimit = 500
	maxReadingsLimit     = 5000
)

type History interface {
	GetLatest(ctx context.Context, stationID string) (types.Telemetry, error)
	GetReadings(ctx context.Context, stationID string, from, to time.Time, limit int) ([]types.Telemetry, error)
	GetStats(ctx context.Context, stationID string, from, to time.Time) (types.Stats, error)
	GetAlerts(ctx context.Context, stationID string, from, to time.Time) ([]types.Alert, error)
}

// Pinger reports database health for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type API struct {
	history History
	db      Pinger
	logger  *slog.Logger
	now     func() time.Time
}

func NewAPI(history History, db Pinger, logger *slog.Logger) *API {
	return &API{history: history, db: db, logger: logger, now: time.Now}
}

func (a *API) NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /api/stations/{id}/latest", a.handleLatest)
	mux.HandleFunc("GET /api/stations/{id}/readings", a.handleReadings)
	mux.HandleFunc("GET /api/stations/{id}/stats", a.handleStats)
	mux.HandleFunc("GET /api/stations/{id}/alerts", a.handleAlerts)
	mux.HandleFunc("GET /stations/{id}", a.handleDashboard)
	return mux
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Error("failed to check database connectivity", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleLatest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	latest, err := a.history.GetLatest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "no readings for station "+strconv.Quote(id))
		return
	}
	if err != nil {
		a.internalError(w, "latest", err)
		return
	}
	WriteJSON(w, http.StatusOK, latest)
}

func (a *API) handleReadings(w http.ResponseWriter, r *http.Request) {
	from, to, err := a.window(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := a.history.GetReadings(r.Context(), r.PathValue("id"), from, to, limit)
	if err != nil {
		a.internalError(w, "readings", err)
		return
	}
	if readings == nil {
		readings = []types.Telemetry{}
	}
	WriteJSON(w, http.StatusOK, readings)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := a.window(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := a.history.GetStats(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		a.internalError(w, "stats", err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	from, to, err := a.window(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := a.history.GetAlerts(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		a.internalError(w, "alerts", err)
		return
	}
	if alerts == nil {
		alerts = []types.Alert{}
	}
	WriteJSON(w, http.StatusOK, alerts)
}

func (a *API) internalError(w http.ResponseWriter, what string, err error) {
	a.logger.Error("history query failed", "query", what, "error", err)
	WriteError(w, http.StatusInternalServerError, "failed to load "+what)
}

// window resolves ?window= into a [from, to] range ending now.
func (a *API) window(r *http.Request) (from, to time.Time, err error) {
	d, err := types.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to = a.now().UTC()
	return to.Add(-d), to, nil
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultReadingsLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'limit' (expected integer)")
	}
	if n <= 0 || n > maxReadingsLimit {
		return 0, errors.New("'limit' must be between 1 and " + strconv.Itoa(maxReadingsLimit))
	}
	return n, nil
}
