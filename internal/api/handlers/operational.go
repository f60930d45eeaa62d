package handlers

import (
	"log"
	"net/http"
	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
)

// Operational dispatches add/edit/delete of fixed blocks on one path.
func (h *ScheduleHandler) Operational(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.addOperational(w, r)
	case http.MethodPut:
		h.editOperational(w, r)
	case http.MethodDelete:
		h.deleteOperational(w, r)
	default:
		w.Header().Set("Allow", "POST, PUT, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func operationalFromRequest(req dto.OperationalItemRequest) domain.OperationalItem {
	return domain.OperationalItem{
		ID:              req.ID,
		Title:           req.Title,
		Location:        req.Location,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
	}
}

func (h *ScheduleHandler) addOperational(w http.ResponseWriter, r *http.Request) {
	var req dto.OperationalItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	buildReq, err := toBuildRequest(req.RouteRequest)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Builder.Build(r.Context(), buildReq)
	if err != nil {
		log.Printf("build schedule for operational add failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	tl, _, err := h.Recalc.AddOperationalItem(r.Context(), res.Timeline, operationalFromRequest(req))
	if err != nil {
		log.Printf("add operational item failed: %v", err)
		if tl == nil {
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(tl, res.ExcludedStops))
}

func (h *ScheduleHandler) editOperational(w http.ResponseWriter, r *http.Request) {
	var req dto.OperationalItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == 0 {
		writeError(w, r, http.StatusBadRequest, "id is required")
		return
	}

	buildReq, err := toBuildRequest(req.RouteRequest)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Recalc.EditOperationalItem(r.Context(), buildReq, operationalFromRequest(req))
	if err != nil {
		log.Printf("edit operational item failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(res.Timeline, res.ExcludedStops))
}

func (h *ScheduleHandler) deleteOperational(w http.ResponseWriter, r *http.Request) {
	var req dto.OperationalItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == 0 {
		writeError(w, r, http.StatusBadRequest, "id is required")
		return
	}

	buildReq, err := toBuildRequest(req.RouteRequest)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Recalc.DeleteOperationalItem(r.Context(), buildReq, req.ID)
	if err != nil {
		log.Printf("delete operational item failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(res.Timeline, res.ExcludedStops))
}
