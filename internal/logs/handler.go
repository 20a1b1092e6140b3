package logs

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/api"
	"github.com/pametni-paketnik/locker-api/internal/auth"
)

type Handler struct {
	repository Repository
	log        *zap.Logger
}

func NewHandler(repository Repository, log *zap.Logger) *Handler {
	return &Handler{
		repository: repository,
		log:        log,
	}
}

type CreateRequest struct {
	BoxID        *int   `json:"boxId"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseCode *int   `json:"responseCode"`
}

// Create appends an access-log entry for an unlock attempt reported by a
// client after talking to the unlock vendor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BoxID == nil || req.Status == "" || req.Message == "" || req.ResponseCode == nil {
		api.Error(w, http.StatusBadRequest, "missing required fields: boxId, status, message, responseCode")
		return
	}
	if req.Status != StatusSuccess && req.Status != StatusFailure {
		api.Error(w, http.StatusBadRequest, "status must be SUCCESS or FAILURE")
		return
	}

	entry := &Entry{
		BoxID:        *req.BoxID,
		Status:       req.Status,
		Message:      req.Message,
		ResponseCode: *req.ResponseCode,
		UserID:       claims.UserID,
	}

	if err := h.repository.Append(entry); err != nil {
		h.log.Error("failed to create log entry", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to create log entry")
		return
	}

	api.JSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Log     *Entry `json:"log"`
	}{Success: true, Message: "Log created successfully", Log: entry})
}

// List returns the calling user's access log, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := h.repository.ListByUser(claims.UserID)
	if err != nil {
		h.log.Error("failed to list logs", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to list logs")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool    `json:"success"`
		Logs    []Entry `json:"logs"`
	}{Success: true, Logs: entries})
}
