package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/export"
	"route-schedule-service/internal/services"
	"time"
)

// ScheduleHandler exposes timeline synthesis and live-edit endpoints.
// Handlers are stateless: each request carries the full build input, the
// timeline is rebuilt from persisted state, the edit (if any) is applied, and
// the refreshed timeline is returned.
type ScheduleHandler struct {
	Builder *services.Builder
	Recalc  *services.Recalculator
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func toBuildRequest(req dto.RouteRequest) (services.BuildRequest, error) {
	if req.ManagerID == "" || req.Day == "" {
		return services.BuildRequest{}, fmt.Errorf("manager_id and day are required")
	}
	if req.DayStart.IsZero() {
		return services.BuildRequest{}, fmt.Errorf("day_start is required")
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for i, s := range req.Stops {
		if s.ID == "" {
			return services.BuildRequest{}, fmt.Errorf("stop at index %d has no id", i)
		}
		stops = append(stops, domain.Stop{
			ID:       s.ID,
			Name:     s.Name,
			Postcode: s.Postcode,
			Lat:      s.Lat,
			Lon:      s.Lon,
		})
	}

	var home *domain.ManagerHome
	if req.Home != nil {
		home = &domain.ManagerHome{
			Coordinates: domain.Coordinates{Lat: req.Home.Lat, Lon: req.Home.Lon},
			Address:     req.Home.Address,
		}
	}

	return services.BuildRequest{
		Key:      domain.RouteKey{ManagerID: req.ManagerID, Day: req.Day, Area: req.Area},
		Stops:    stops,
		Home:     home,
		DayStart: req.DayStart,
	}, nil
}

func scheduleResponse(tl *domain.Timeline, excluded int) dto.ScheduleResponse {
	res := dto.ScheduleResponse{
		Day:           tl.Key.Day,
		Version:       tl.Version,
		ExcludedStops: excluded,
		Items:         make([]dto.ScheduleItemResponse, 0, len(tl.Items)),
	}
	for _, it := range tl.Items {
		res.Items = append(res.Items, dto.ScheduleItemResponse{
			ID:              it.ID,
			Kind:            string(it.Kind),
			Start:           it.Start,
			End:             it.End,
			StopID:          it.StopID,
			FromStopID:      it.FromStopID,
			ToStopID:        it.ToStopID,
			Title:           it.Title,
			Location:        it.Location,
			DistanceKm:      it.DistanceKm,
			DurationMinutes: int(it.Duration / time.Minute),
			Pinned:          it.Pinned,
			OperationalID:   it.OperationalID,
		})
	}
	return res
}

// Build synthesizes the day timeline from the supplied stops and persisted
// route state.
func (h *ScheduleHandler) Build(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	buildReq, err := toBuildRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Builder.Build(r.Context(), buildReq)
	if err != nil {
		log.Printf("build schedule failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(res.Timeline, res.ExcludedStops))
}

// ExportICS renders the built timeline as a calendar document.
func (h *ScheduleHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	buildReq, err := toBuildRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Builder.Build(r.Context(), buildReq)
	if err != nil {
		log.Printf("build schedule for ics failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=route_%s.ics", req.Day))
	export.WriteICS(w, req.Day, res.Timeline.Items)
}

// Pin fixes one visit's window and reflows the rest of the day.
func (h *ScheduleHandler) Pin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PinVisitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.StopID == "" {
		writeError(w, r, http.StatusBadRequest, "stop_id is required")
		return
	}

	buildReq, err := toBuildRequest(req.RouteRequest)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Builder.Build(r.Context(), buildReq)
	if err != nil {
		log.Printf("build schedule for pin failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	tl, err := h.Recalc.PinVisit(r.Context(), res.Timeline, req.StopID, req.Start, req.End)
	if err != nil {
		log.Printf("pin visit failed: %v", err)
		if tl == nil {
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		// Persistence failed but the edit was applied; the caller sees the
		// optimistic timeline and recovers with a rebuild.
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(tl, res.ExcludedStops))
}
