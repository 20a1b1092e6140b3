package box

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
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

type ClaimRequest struct {
	BoxID      int    `json:"boxId"`
	CustomName string `json:"customName"`
}

type CreateRequest struct {
	BoxID    int    `json:"boxId"`
	Location string `json:"location"`
}

// Claim assigns an existing unowned locker to the calling user.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BoxID == 0 || req.CustomName == "" {
		api.Error(w, http.StatusBadRequest, "boxId and customName are required")
		return
	}

	box, err := h.repository.GetByBoxID(req.BoxID)
	if err != nil {
		if errors.Is(err, ErrBoxNotFound) {
			api.Error(w, http.StatusNotFound, "no box with that id exists")
			return
		}
		h.log.Error("failed to look up box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to claim box")
		return
	}

	if box.UserID != nil {
		if *box.UserID == claims.UserID {
			api.Error(w, http.StatusConflict, "this box is already yours")
		} else {
			api.Error(w, http.StatusConflict, "box is already owned by another user")
		}
		return
	}

	box.UserID = &claims.UserID
	box.CustomName = req.CustomName
	if err := h.repository.Save(box); err != nil {
		h.log.Error("failed to claim box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to claim box")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Box     *Box   `json:"box"`
	}{Success: true, Message: "Box claimed successfully", Box: box})
}

// ListOwn returns the lockers owned by the calling user, newest first.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	boxes, err := h.repository.ListByUser(claims.UserID)
	if err != nil {
		h.log.Error("failed to list boxes", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to list boxes")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool  `json:"success"`
		Boxes   []Box `json:"boxes"`
	}{Success: true, Boxes: boxes})
}

// Disown releases ownership of a locker held by the calling user.
func (h *Handler) Disown(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid box id")
		return
	}

	box, err := h.repository.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, ErrBoxNotFound) {
			api.Error(w, http.StatusNotFound, "box not found")
			return
		}
		h.log.Error("failed to look up box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to disown box")
		return
	}

	if box.UserID == nil || *box.UserID != claims.UserID {
		api.Error(w, http.StatusForbidden, "you do not own this box")
		return
	}

	box.UserID = nil
	box.CustomName = ""
	if err := h.repository.Save(box); err != nil {
		h.log.Error("failed to disown box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to disown box")
		return
	}

	api.JSON(w, http.StatusOK, api.Response{Success: true, Message: "Box ownership released"})
}

// Create registers a new locker in the system. Admin only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BoxID == 0 {
		api.Error(w, http.StatusBadRequest, "boxId is required")
		return
	}

	if _, err := h.repository.GetByBoxID(req.BoxID); err == nil {
		api.Error(w, http.StatusConflict, "a box with that id already exists")
		return
	}

	box := &Box{BoxID: req.BoxID, Location: req.Location}
	if err := h.repository.CreateBox(box); err != nil {
		if errors.Is(err, ErrBoxExists) {
			api.Error(w, http.StatusConflict, "a box with that id already exists")
			return
		}
		h.log.Error("failed to create box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to create box")
		return
	}

	api.JSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Box     *Box   `json:"box"`
	}{Success: true, Message: "Box created successfully", Box: box})
}

// ListAll returns every locker. Admin only.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.repository.ListAll()
	if err != nil {
		h.log.Error("failed to list boxes", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to list boxes")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool  `json:"success"`
		Boxes   []Box `json:"boxes"`
	}{Success: true, Boxes: boxes})
}

// Delete removes a locker. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid box id")
		return
	}

	if err := h.repository.Delete(uint(id)); err != nil {
		if errors.Is(err, ErrBoxNotFound) {
			api.Error(w, http.StatusNotFound, "box not found")
			return
		}
		h.log.Error("failed to delete box", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to delete box")
		return
	}

	api.JSON(w, http.StatusOK, api.Response{Success: true, Message: "Box deleted"})
}
