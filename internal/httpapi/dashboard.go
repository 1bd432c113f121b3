package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"cloudpico-climate/internal/store"
	"cloudpico-climate/internal/types"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"fixed2": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}).ParseFS(templatesFS, "templates/*.html"))

type dashboardData struct {
	StationID string
	Window    string
	Latest    *types.Telemetry
	Stats     types.Stats
	Alerts    []types.Alert
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	from, to, err := a.window(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := dashboardData{StationID: id, Window: to.Sub(from).String()}

	latest, err := a.history.GetLatest(r.Context(), id)
	switch {
	case err == nil:
		data.Latest = &latest
	case !errors.Is(err, store.ErrNotFound):
		a.internalError(w, "latest", err)
		return
	}
	if data.Stats, err = a.history.GetStats(r.Context(), id, from, to); err != nil {
		a.internalError(w, "stats", err)
		return
	}
	if data.Alerts, err = a.history.GetAlerts(r.Context(), id, from, to); err != nil {
		a.internalError(w, "alerts", err)
		return
	}

	// Render into a buffer so a template error can still become a 500.
	var buf bytes.Buffer
	if err := dashboardTmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		a.logger.Error("dashboard template render failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
