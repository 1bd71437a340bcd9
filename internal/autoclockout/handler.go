package autoclockout

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/transport"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

type ServiceAPI interface {
	Run(ctx context.Context, targetTime time.Time, dryRun bool) (*Result, error)
	RunSelective(ctx context.Context, items []SelectiveItem, adminID int64) (*Result, error)
	EnforceNow(ctx context.Context) (*Result, error)
	ListOpen(ctx context.Context) ([]OpenEntry, error)
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

type runRequest struct {
	TargetTime *time.Time `json:"target_time,omitempty"`
	DryRun     bool       `json:"dry_run"`
}

type selectiveRequest struct {
	Entries []SelectiveItem `json:"entries"`
}

// Run closes every open entry at a target time. With dry_run no writes
// happen; the response reports what would be closed.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Logger.Error("Run: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	target := time.Now()
	if req.TargetTime != nil {
		target = *req.TargetTime
	}

	result, err := h.Service.Run(r.Context(), target, req.DryRun)
	if err != nil {
		h.Logger.Error("Run: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RunSelective(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.EmployeeFromContext(r.Context())
	if !ok || admin == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req selectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("RunSelective: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Entries) == 0 {
		h.WriteError(w, http.StatusBadRequest, "entries is required")
		return
	}

	result, err := h.Service.RunSelective(r.Context(), req.Entries, admin.ID)
	if err != nil {
		h.Logger.Error("RunSelective: service error", "error", err, "admin_id", admin.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// EnforceNow closes open entries at today's scheduled closing time.
func (h *Handler) EnforceNow(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.EnforceNow(r.Context())
	if err != nil {
		h.Logger.Error("EnforceNow: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.ListOpen(r.Context())
	if err != nil {
		h.Logger.Error("ListOpen: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"open_entries": entries,
		"count":        len(entries),
	})
}
