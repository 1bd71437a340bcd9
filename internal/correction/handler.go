package correction

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/timeentry"
	"github.com/frahmantamala/timeclock/internal/transport"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

type ServiceAPI interface {
	CorrectEntry(ctx context.Context, entryID, adminID int64, dto CorrectionDTO) (*timeentry.TimeEntry, error)
	BatchCorrect(ctx context.Context, adminID int64, dto BatchCorrectionDTO) (int, error)
	GroupNeedingReview(ctx context.Context, employeeID *int64) (*ReviewSummary, error)
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

func (h *Handler) CorrectEntry(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.EmployeeFromContext(r.Context())
	if !ok || admin == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryIDStr := chi.URLParam(r, "id")
	entryID, err := strconv.ParseInt(entryIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	var dto CorrectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CorrectEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.CorrectEntry(r.Context(), entryID, admin.ID, dto)
	if err != nil {
		h.Logger.Error("CorrectEntry: service error", "error", err, "entry_id", entryID, "admin_id", admin.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) BatchCorrect(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.EmployeeFromContext(r.Context())
	if !ok || admin == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto BatchCorrectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("BatchCorrect: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	modified, err := h.Service.BatchCorrect(r.Context(), admin.ID, dto)
	if err != nil {
		h.Logger.Error("BatchCorrect: service error", "error", err, "admin_id", admin.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"action":         dto.Action,
		"requested":      len(dto.EntryIDs),
		"modified_count": modified,
	})
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var employeeID *int64
	if idStr := r.URL.Query().Get("employee_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee_id")
			return
		}
		employeeID = &id
	}

	summary, err := h.Service.GroupNeedingReview(r.Context(), employeeID)
	if err != nil {
		h.Logger.Error("Review: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
