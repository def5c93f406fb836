package timerecord

import (
	"context"
	"net/http"
	"time"

	"github.com/eventstaff/attendance/internal/attendance"
	"github.com/eventstaff/attendance/internal/transport"
)

type ServiceAPI interface {
	RecordAction(ctx context.Context, dto CreateTimeRecordDTO) (*Result, error)
	Scan(ctx context.Context, dto ScanDTO) (*ScanResult, error)
	List(ctx context.Context, filter ListFilter) ([]attendance.TimeRecord, error)
	DayBounds(date string) (time.Time, time.Time, error)
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

// List handles GET /api/time-records?employeeId=&eventId=&date=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	records, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) parseFilter(r *http.Request) (ListFilter, error) {
	var filter ListFilter

	employeeID, err := h.QueryID(r, "employeeId")
	if err != nil {
		return filter, err
	}
	eventID, err := h.QueryID(r, "eventId")
	if err != nil {
		return filter, err
	}
	filter.EmployeeID = employeeID
	filter.EventID = eventID

	if date := r.URL.Query().Get("date"); date != "" {
		from, to, err := h.Service.DayBounds(date)
		if err != nil {
			return filter, err
		}
		filter.From = &from
		filter.To = &to
	}
	return filter, nil
}

// Create handles POST /api/time-records
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateTimeRecordDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.RecordAction(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Employee-Status", string(result.Status))
	h.WriteJSON(w, http.StatusCreated, result.Record)
}

// Scan handles POST /api/scan
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var dto ScanDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Scan(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}
