package dashboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/transport"
)

type ServiceAPI interface {
	Stats(ctx context.Context, eventID *int64) (Stats, error)
	RecentActivity(ctx context.Context, eventID *int64, limit int) ([]Activity, error)
	Shifts(ctx context.Context, eventID *int64, date string) ([]ShiftEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Stats handles GET /api/stats?eventId=
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.QueryID(r, "eventId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	stats, err := h.Service.Stats(r.Context(), eventID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// RecentActivity handles GET /api/recent-activity?eventId=&limit=
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.QueryID(r, "eventId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 100 {
			h.WriteAppError(w, internal.NewValidationFieldError("limit", "limit must be between 1 and 100", internal.ErrCodeValidationFailed))
			return
		}
	}

	activity, err := h.Service.RecentActivity(r.Context(), eventID, limit)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, activity)
}

// Shifts handles GET /api/shifts?eventId=&date=
func (h *Handler) Shifts(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.QueryID(r, "eventId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	shifts, err := h.Service.Shifts(r.Context(), eventID, r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, shifts)
}
