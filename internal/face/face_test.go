package face

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/auth"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func testImage() Image {
	return Image{
		Filename:    "capture.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("not-really-a-jpeg"),
	}
}

// fakeUsers is a minimal in-memory auth.Repository for gateway tests.
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*auth.User)}
}

func (r *fakeUsers) addUser(user *auth.User) *auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUsers) CreateUser(user *auth.User) error {
	r.addUser(user)
	return nil
}

func (r *fakeUsers) GetUserByUsername(username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *fakeUsers) GetUserByEmail(email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *fakeUsers) GetUserByID(id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[id]
	if !exists {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUsers) UpdateFaceState(userID string, update auth.FaceStateUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[userID]
	if !exists {
		return auth.ErrUserNotFound
	}

	if update.Clear {
		user.FaceRegistered = false
		user.FaceRegisteredAt = nil
		user.LastFaceVerification = nil
		return nil
	}
	if update.FaceRegistered != nil {
		user.FaceRegistered = *update.FaceRegistered
	}
	if update.FaceRegisteredAt != nil {
		at := *update.FaceRegisteredAt
		user.FaceRegisteredAt = &at
	}
	if update.LastFaceVerification != nil {
		at := *update.LastFaceVerification
		user.LastFaceVerification = &at
	}
	return nil
}

func (r *fakeUsers) SetPendingNotification(userID, message string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[userID]
	if !exists {
		return auth.ErrUserNotFound
	}
	user.PendingNotification = &message
	user.NotificationTimestamp = &at
	return nil
}

func (r *fakeUsers) DrainNotification(userID string) (*auth.Notification, error) {
	return nil, nil
}

func (r *fakeUsers) ListUsers() ([]auth.User, error) {
	return nil, nil
}

func (r *fakeUsers) SetAdmin(userID string, isAdmin bool) error {
	return nil
}

// fakeRecognition is a scripted RecognitionClient.
type fakeRecognition struct {
	registerResult *RegisterResult
	verifyResult   *VerifyResult
	err            error
	deleted        []string
}

func (c *fakeRecognition) Register(ctx context.Context, userID string, image Image) (*RegisterResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.registerResult, nil
}

func (c *fakeRecognition) Verify(ctx context.Context, userID string, image Image) (*VerifyResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.verifyResult, nil
}

func (c *fakeRecognition) DeleteProfile(ctx context.Context, userID string) error {
	c.deleted = append(c.deleted, userID)
	return c.err
}
