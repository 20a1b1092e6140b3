package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockRepository struct {
	users        map[string]*User
	usersByEmail map[string]*User
	usersByID    map[string]*User
	mu           sync.RWMutex
}

func newMockRepository() Repository {
	return &mockRepository{
		users:        make(map[string]*User),
		usersByEmail: make(map[string]*User),
		usersByID:    make(map[string]*User),
	}
}

func (r *mockRepository) CreateUser(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return ErrUserExists
	}
	if _, exists := r.usersByEmail[user.Email]; exists {
		return ErrUserExists
	}

	// Clone the user to prevent external modifications
	newUser := &User{
		ID:           uuid.NewString(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		LastName:     user.LastName,
		IsAdmin:      user.IsAdmin,
	}

	user.ID = newUser.ID
	r.users[newUser.Username] = newUser
	r.usersByEmail[newUser.Email] = newUser
	r.usersByID[newUser.ID] = newUser
	return nil
}

func (r *mockRepository) GetUserByUsername(username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetUserByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetUserByID(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByID[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) UpdateFaceState(userID string, update FaceStateUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.usersByID[userID]
	if !exists {
		return ErrUserNotFound
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

func (r *mockRepository) SetPendingNotification(userID, message string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.usersByID[userID]
	if !exists {
		return ErrUserNotFound
	}

	user.PendingNotification = &message
	user.NotificationTimestamp = &at
	return nil
}

func (r *mockRepository) DrainNotification(userID string) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.usersByID[userID]
	if !exists {
		return nil, ErrUserNotFound
	}

	if user.PendingNotification == nil {
		return nil, nil
	}

	notification := &Notification{Message: *user.PendingNotification}
	if user.NotificationTimestamp != nil {
		notification.Timestamp = *user.NotificationTimestamp
	}

	user.PendingNotification = nil
	user.NotificationTimestamp = nil
	return notification, nil
}

func (r *mockRepository) ListUsers() ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.usersByID))
	for _, u := range r.usersByID {
		users = append(users, *u)
	}
	return users, nil
}

func (r *mockRepository) SetAdmin(userID string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.usersByID[userID]
	if !exists {
		return ErrUserNotFound
	}

	user.IsAdmin = isAdmin
	return nil
}
