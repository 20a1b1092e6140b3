package face

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/api"
	"github.com/pametni-paketnik/locker-api/internal/auth"
)

// maxImageSize bounds uploaded face captures.
const maxImageSize = 10 << 20 // 10 MiB

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

type VerifyResponse struct {
	Success         bool    `json:"success"`
	Verified        bool    `json:"verified"`
	Message         string  `json:"message"`
	SimilarityScore float64 `json:"similarity_score"`
	Threshold       float64 `json:"threshold"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	image, ok := readImage(w, r)
	if !ok {
		return
	}

	result, err := h.service.Register(r.Context(), claims.UserID, image)
	if err != nil {
		h.respondServiceError(w, err, "face registration failed")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success         bool   `json:"success"`
		Message         string `json:"message"`
		EmbeddingsCount int    `json:"embeddings_count"`
	}{
		Success:         true,
		Message:         "Face registered successfully for 2FA",
		EmbeddingsCount: result.EmbeddingsCount,
	})
}

// Verify is deliberately not session-authenticated: it is the step-up
// credential a blocked login presents before a session can be trusted.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	image, ok := readImage(w, r)
	if !ok {
		return
	}

	result, err := h.service.Verify(r.Context(), userID, image)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, ErrNotRegistered) {
			api.Error(w, http.StatusBadRequest, "user has not registered a face for 2FA")
			return
		}
		h.respondServiceError(w, err, "face verification failed")
		return
	}

	if !result.Verified {
		api.JSON(w, http.StatusUnauthorized, VerifyResponse{
			Success:         false,
			Verified:        false,
			Message:         "Face verification failed, face does not match",
			SimilarityScore: result.SimilarityScore,
			Threshold:       result.Threshold,
		})
		return
	}

	api.JSON(w, http.StatusOK, VerifyResponse{
		Success:         true,
		Verified:        true,
		Message:         "Face verification successful",
		SimilarityScore: result.SimilarityScore,
		Threshold:       result.Threshold,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.service.Status(claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("failed to read face status", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to read face status")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*Status
	}{Success: true, Status: status})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID); err != nil {
		h.log.Error("face deletion failed",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "face deletion failed")
		return
	}

	api.JSON(w, http.StatusOK, api.Response{
		Success: true,
		Message: "Face registration deleted successfully",
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrTimeout):
		api.Error(w, http.StatusServiceUnavailable, "face recognition service timed out, please retry")
	case errors.Is(err, ErrServiceUnavailable):
		api.Error(w, http.StatusServiceUnavailable, "face recognition service unavailable")
	case errors.Is(err, ErrRejected):
		api.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(fallback, zap.Error(err))
		api.Error(w, http.StatusInternalServerError, fallback)
	}
}

// readImage extracts the uploaded image from the multipart form, writing
// the error response itself when no usable file is present.
func readImage(w http.ResponseWriter, r *http.Request) (Image, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "no image file provided")
		return Image{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "could not read image file")
		return Image{}, false
	}

	return Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
