package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/transport"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

type ServiceAPI interface {
	BuildReport(ctx context.Context, employeeID int64, year int, month *int) (*Report, error)
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

// GetReport aggregates an employee's worked hours for a year, or a single
// month when the month query param is present. Employees may only query
// themselves; admins may query anyone.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.EmployeeFromContext(r.Context())
	if !ok || current == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employeeIDStr := chi.URLParam(r, "id")
	employeeID, err := strconv.ParseInt(employeeIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	if employeeID != current.ID && !current.IsAdmin {
		h.WriteError(w, http.StatusForbidden, "cannot view another employee's report")
		return
	}

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		h.WriteError(w, http.StatusBadRequest, "year is required")
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		h.WriteError(w, http.StatusBadRequest, "invalid year")
		return
	}

	var month *int
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = &m
	}

	rep, err := h.Service.BuildReport(r.Context(), employeeID, year, month)
	if err != nil {
		h.Logger.Error("GetReport: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}
