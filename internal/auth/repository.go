package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")
)

// FaceStateUpdate is a partial read-modify-write of the face 2FA fields.
// Nil fields are left untouched; Clear resets all of them (face deletion).
type FaceStateUpdate struct {
	FaceRegistered       *bool
	FaceRegisteredAt     *time.Time
	LastFaceVerification *time.Time
	Clear                bool
}

type Notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Repository interface {
	CreateUser(user *User) error
	GetUserByUsername(username string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id string) (*User, error)
	UpdateFaceState(userID string, update FaceStateUpdate) error
	SetPendingNotification(userID, message string, at time.Time) error
	// DrainNotification returns the pending notification and clears it
	// in the same operation. Returns nil when the mailbox is empty.
	DrainNotification(userID string) (*Notification, error)
	ListUsers() ([]User, error)
	SetAdmin(userID string, isAdmin bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *repository) GetUserByUsername(username string) (*User, error) {
	var user User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByID(id string) (*User, error) {
	var user User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateFaceState(userID string, update FaceStateUpdate) error {
	fields := map[string]interface{}{}

	if update.Clear {
		fields["face_registered"] = false
		fields["face_registered_at"] = nil
		fields["last_face_verification"] = nil
	} else {
		if update.FaceRegistered != nil {
			fields["face_registered"] = *update.FaceRegistered
		}
		if update.FaceRegisteredAt != nil {
			fields["face_registered_at"] = *update.FaceRegisteredAt
		}
		if update.LastFaceVerification != nil {
			fields["last_face_verification"] = *update.LastFaceVerification
		}
	}

	if len(fields) == 0 {
		return nil
	}

	result := r.db.Model(&User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) SetPendingNotification(userID, message string, at time.Time) error {
	result := r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"pending_notification":   message,
		"notification_timestamp": at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) DrainNotification(userID string) (*Notification, error) {
	var notification *Notification

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if user.PendingNotification == nil {
			return nil
		}

		notification = &Notification{Message: *user.PendingNotification}
		if user.NotificationTimestamp != nil {
			notification.Timestamp = *user.NotificationTimestamp
		}

		return tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"pending_notification":   nil,
			"notification_timestamp": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return notification, nil
}

func (r *repository) ListUsers() ([]User, error) {
	var users []User
	if err := r.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) SetAdmin(userID string, isAdmin bool) error {
	result := r.db.Model(&User{}).Where("id = ?", userID).Update("is_admin", isAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
