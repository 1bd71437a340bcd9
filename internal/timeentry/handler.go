package timeentry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/transport"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

type ServiceAPI interface {
	ClockIn(ctx context.Context, employeeID int64) (*TimeEntry, error)
	ClockOut(ctx context.Context, employeeID int64) (*TimeEntry, error)
	GetActiveEntry(ctx context.Context, employeeID int64) (*TimeEntry, error)
	ListEntries(ctx context.Context, employeeID int64, from, to time.Time, limit, offset int) ([]*TimeEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok || emp == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entry, err := h.Service.ClockIn(r.Context(), emp.ID)
	if err != nil {
		h.Logger.Error("ClockIn: service error", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok || emp == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entry, err := h.Service.ClockOut(r.Context(), emp.ID)
	if err != nil {
		h.Logger.Error("ClockOut: service error", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

// Status returns the caller's open entry, or clocked_in=false when none.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok || emp == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entry, err := h.Service.GetActiveEntry(r.Context(), emp.ID)
	if err != nil {
		h.Logger.Error("Status: service error", "error", err, "employee_id", emp.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"clocked_in": entry != nil,
		"entry":      entry,
	})
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok || emp == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employeeID := emp.ID
	if idStr := r.URL.Query().Get("employee_id"); idStr != "" {
		// viewing someone else's timeline requires the admin flag
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee_id")
			return
		}
		if id != emp.ID && !emp.IsAdmin {
			h.WriteError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		employeeID = id
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	var from, to time.Time
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = t
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if t, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = t
		}
	}

	entries, err := h.Service.ListEntries(r.Context(), employeeID, from, to, limit, offset)
	if err != nil {
		h.Logger.Error("ListEntries: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}
