package auth

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/timeclock/internal/transport"
	"github.com/frahmantamala/timeclock/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Login: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Login: employee authenticated", "employee_id", resp.Employee.ID)
	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware validates the bearer token and loads the current employee
// into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		emp, err := h.Service.GetEmployee(r.Context(), claims.EmployeeID)
		if err != nil {
			h.Logger.Warn("auth middleware: employee behind token no longer exists", "employee_id", claims.EmployeeID)
			h.WriteError(w, http.StatusUnauthorized, "employee not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithEmployee(r.Context(), emp)))
	})
}

// RequireAdmin gates a route on the current employee's admin flag. The flag
// comes from the database via AuthMiddleware, not from the token, so a
// revoked admin loses access immediately.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emp, ok := EmployeeFromContext(r.Context())
		if !ok || emp == nil {
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !emp.IsAdmin {
			h.WriteError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
