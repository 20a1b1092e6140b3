package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	LastName     string
	IsAdmin      bool `gorm:"default:false"`

	// Face 2FA state. FaceRegisteredAt is set iff FaceRegistered is true;
	// LastFaceVerification is only ever written by a successful verification
	// and cleared by face deletion.
	FaceRegistered       bool `gorm:"default:false"`
	FaceRegisteredAt     *time.Time
	LastFaceVerification *time.Time

	// One-shot mailbox for out-of-band alerts, cleared on first read.
	PendingNotification   *string
	NotificationTimestamp *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserView is the user projection returned to clients. It never carries
// the password hash.
type UserView struct {
	ID                   string     `json:"id"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	Name                 string     `json:"name,omitempty"`
	LastName             string     `json:"lastName,omitempty"`
	IsAdmin              bool       `json:"isAdmin"`
	FaceRegistered       bool       `json:"faceRegistered"`
	FaceRegisteredAt     *time.Time `json:"faceRegisteredAt"`
	LastFaceVerification *time.Time `json:"lastFaceVerification"`
}

func (u *User) View() UserView {
	return UserView{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		Name:                 u.Name,
		LastName:             u.LastName,
		IsAdmin:              u.IsAdmin,
		FaceRegistered:       u.FaceRegistered,
		FaceRegisteredAt:     u.FaceRegisteredAt,
		LastFaceVerification: u.LastFaceVerification,
	}
}
