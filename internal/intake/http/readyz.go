package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe returning uptime, version and the state of the database, search index and event sink.
//	@Description	Only the database is critical; search falls back to SQL and events are best effort.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	intakesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	intakesdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	index search.Index,
	eventsMode string,
) http.HandlerFunc {
	if eventsMode == "" {
		eventsMode = "disabled"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &intakesdk.HealthChecks{
			Database: "ok",
			Search:   "ok",
			Events:   eventsMode,
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		switch index.(type) {
		case nil, search.Disabled:
			checks.Search = "disabled"
		default:
			if !index.Healthy() {
				checks.Search = "unavailable: using database fallback"
			}
		}

		httpx.WriteJSON(w, statusCode, intakesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
