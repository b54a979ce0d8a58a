package activity

import (
	"net/http"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/httpx"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// Handler holds activity log HTTP handlers.
type Handler struct {
	recorder *Recorder
	archiver *Archiver
	logger   logging.Logger
}

// NewHandler returns a Handler. archiver may be nil, in which case Archive
// is not offered.
func NewHandler(recorder *Recorder, archiver *Archiver, logger logging.Logger) *Handler {
	return &Handler{recorder: recorder, archiver: archiver, logger: logger}
}

// CanArchive reports whether an object store is configured.
func (h *Handler) CanArchive() bool { return h.archiver != nil }

// Collect appends a client-submitted entry.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	var req models.CollectLogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}

	ip := req.IPAddress
	if ip == "" {
		ip = httpx.ClientIP(r)
	}

	id, err := h.recorder.Record(r.Context(), models.LogEntry{
		Username:  req.Username,
		Action:    req.Action,
		Details:   req.Details,
		IPAddress: ip,
		Device:    req.Device,
	})
	if err != nil {
		h.logger.Error(r.Context(), "collect log failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Log received",
		"log_id":  id,
	})
}

// List returns every entry.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.recorder.List(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "list logs failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

// Archive writes a snapshot of the log to object storage.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, httpx.CodeInternal, "archive storage not configured")
		return
	}

	key, n, err := h.archiver.Archive(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "archive logs failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
		return
	}

	h.logger.Info(r.Context(), "logs archived", "key", key, "entries", n)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Logs archived",
		"key":     key,
		"entries": n,
	})
}
