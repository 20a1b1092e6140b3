package box

import (
	"time"

	"gorm.io/gorm"
)

// Box is a physical smart locker. BoxID is the identifier printed in the
// locker's QR code; UserID is set once a user claims the locker.
type Box struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	BoxID      int     `gorm:"uniqueIndex;not null" json:"boxId"`
	CustomName string  `json:"customName,omitempty"`
	Location   string  `gorm:"default:'unknown'" json:"location"`
	UserID     *string `gorm:"index" json:"userId,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Box) TableName() string {
	return "boxes"
}
