package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/api"
)

type Handler struct {
	service *Service
	policy  *Policy
	log     *zap.Logger
}

func NewHandler(service *Service, policy *Policy, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		policy:  policy,
		log:     log,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}

// StepUpResponse is the 403 login answer telling the client a face
// registration or re-verification must happen before a token is issued.
type StepUpResponse struct {
	Success                  bool       `json:"success"`
	RequiresFaceVerification bool       `json:"requiresFaceVerification"`
	Message                  string     `json:"message"`
	UserID                   string     `json:"userId"`
	FaceRegistered           bool       `json:"faceRegistered"`
	LastFaceVerification     *time.Time `json:"lastFaceVerification"`
	FreshnessWindowSeconds   int64      `json:"freshnessWindowSeconds"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateRegisterRequest(&req); msg != "" {
		h.log.Warn("invalid register request",
			zap.String("error", msg),
			zap.String("username", req.Username))
		api.Error(w, http.StatusBadRequest, msg)
		return
	}

	h.log.Info("handling register request", zap.String("username", req.Username))

	// Check if user already exists
	if _, err := h.service.repository.GetUserByUsername(req.Username); err == nil {
		api.Error(w, http.StatusConflict, "username already taken")
		return
	}

	// Check if email already exists
	if _, err := h.service.repository.GetUserByEmail(req.Email); err == nil {
		api.Error(w, http.StatusConflict, "email already registered")
		return
	}

	user, err := h.service.RegisterUser(req.Username, req.Password, req.Email, req.Name, req.LastName)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			api.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.log.Error("failed to register user", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	api.JSON(w, http.StatusCreated, struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		User    UserView `json:"user"`
	}{
		Success: true,
		Message: "User registered successfully",
		User:    user.View(),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) {
			api.Error(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.log.Error("login failed",
			zap.String("username", req.Username),
			zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	now := time.Now()
	decision := h.policy.Evaluate(user, ClientTypeFromHeader(r.Header.Get(ClientTypeHeader)), now)

	if decision.Kind != DecisionAllow {
		// Leave a note for the mobile app so it can prompt the user.
		if err := h.service.repository.SetPendingNotification(user.ID, decision.Message, now); err != nil {
			h.log.Error("failed to set pending notification",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}

		h.log.Info("login blocked pending face verification",
			zap.String("username", user.Username),
			zap.Bool("face_registered", user.FaceRegistered))

		api.JSON(w, http.StatusForbidden, StepUpResponse{
			Success:                  false,
			RequiresFaceVerification: true,
			Message:                  decision.Message,
			UserID:                   user.ID,
			FaceRegistered:           user.FaceRegistered,
			LastFaceVerification:     user.LastFaceVerification,
			FreshnessWindowSeconds:   int64(h.policy.FreshnessWindow() / time.Second),
		})
		return
	}

	token, err := h.service.GenerateToken(user)
	if err != nil {
		h.log.Error("failed to generate token",
			zap.String("username", user.Username),
			zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	api.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   "Bearer " + token,
		User:    user.View(),
	})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, err := GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.repository.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("failed to load user profile", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool     `json:"success"`
		User    UserView `json:"user"`
	}{Success: true, User: user.View()})
}

// Notifications drains the one-shot mailbox written by blocked logins.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	claims, err := GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notification, err := h.service.repository.DrainNotification(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("failed to drain notification", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to fetch notifications")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		Success      bool          `json:"success"`
		Notification *Notification `json:"notification"`
	}{Success: true, Notification: notification})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.repository.ListUsers()
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}

	api.JSON(w, http.StatusOK, struct {
		Success bool       `json:"success"`
		Users   []UserView `json:"users"`
	}{Success: true, Users: views})
}

func (h *Handler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	claims, err := GetClaimsFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")

	// An admin must not be able to revoke their own privileges.
	if claims.UserID == targetID {
		api.Error(w, http.StatusForbidden, "cannot change your own admin privileges")
		return
	}

	user, err := h.service.repository.GetUserByID(targetID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("failed to load user", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	if err := h.service.repository.SetAdmin(user.ID, !user.IsAdmin); err != nil {
		h.log.Error("failed to toggle admin status", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	user.IsAdmin = !user.IsAdmin
	api.JSON(w, http.StatusOK, struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		User    UserView `json:"user"`
	}{
		Success: true,
		Message: "Admin status updated for " + user.Username,
		User:    user.View(),
	})
}

func validateRegisterRequest(req *RegisterRequest) string {
	if req.Username == "" {
		return "username is required"
	}
	if len(req.Username) < 3 || len(req.Username) > 32 {
		return "username must be between 3 and 32 characters"
	}
	if req.Password == "" {
		return "password is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if req.Email == "" {
		return "email is required"
	}
	if !isValidEmail(req.Email) {
		return "invalid email format"
	}
	return ""
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
