package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/httpx"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// Audit actions written for auth events.
const (
	ActionRegister     = "auth.register"
	ActionLoginSuccess = "auth.login.success"
	ActionLoginFailure = "auth.login.failure"
)

// AuditRecorder receives auth events. activity.Recorder satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, e models.LogEntry) (string, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	service     *Service
	audit       AuditRecorder
	strictRoles bool
	logger      logging.Logger
}

// NewHandler returns a Handler. audit may be nil to disable auth auditing.
func NewHandler(service *Service, audit AuditRecorder, strictRoles bool, logger logging.Logger) *Handler {
	return &Handler{service: service, audit: audit, strictRoles: strictRoles, logger: logger}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := req.Validate(h.strictRoles); err != nil {
		httpx.WriteValidation(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password, req.Role)
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeUserAlreadyExists, "User already exists")
		return
	case errors.Is(err, ErrPasswordTooLong):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, err.Error())
		return
	case err != nil:
		h.logger.Error(r.Context(), "register failed", "username", req.Username, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}

	h.logger.Info(r.Context(), "user registered", "username", user.Username, "role", user.Role)
	h.record(r, user.Username, ActionRegister, "role="+string(user.Role))

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User created successfully",
		"user":    user.Username,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.record(r, req.Username, ActionLoginFailure, "")
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidCreds, "Invalid username or password")
		return
	case err != nil:
		h.logger.Error(r.Context(), "login failed", "username", req.Username, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}

	h.record(r, req.Username, ActionLoginSuccess, "")

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
		"role":         string(res.Role),
	})
}

// Profile returns the authenticated user. Requires the Authenticate guard.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, ErrUnauthenticated.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome!",
		"user":    user.Username,
		"role":    string(user.Role),
	})
}

// AdminDashboard confirms admin access. Requires the admin guard.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, ErrUnauthenticated.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Admin Panel Access Granted",
		"user":    user.Username,
	})
}

func (h *Handler) record(r *http.Request, username, action, details string) {
	if h.audit == nil {
		return
	}
	_, err := h.audit.Record(r.Context(), models.LogEntry{
		Username:  username,
		Action:    action,
		Details:   details,
		IPAddress: httpx.ClientIP(r),
		Device:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Warn(r.Context(), "auth audit record failed", "action", action, "error", err)
	}
}
