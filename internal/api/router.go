package api

import (
	"net/http"
	"route-schedule-service/internal/api/handlers"
	"route-schedule-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(builder *services.Builder, recalc *services.Recalculator) http.Handler {
	mux := http.NewServeMux()

	scheduleHandler := &handlers.ScheduleHandler{
		Builder: builder,
		Recalc:  recalc,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/schedules", scheduleHandler.Build)
	mux.HandleFunc("/schedules/ics", scheduleHandler.ExportICS)
	mux.HandleFunc("/schedules/pin", scheduleHandler.Pin)
	mux.HandleFunc("/schedules/operational-items", scheduleHandler.Operational)

	return loggingMiddleware(mux)
}
