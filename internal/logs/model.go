package logs

import "time"

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Entry records the outcome of an unlock attempt against a locker.
// Entries are append-only and never mutated.
type Entry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BoxID        int       `gorm:"not null;index" json:"boxId"`
	Status       string    `gorm:"not null" json:"status"`
	Message      string    `gorm:"not null" json:"message"`
	ResponseCode int       `gorm:"not null" json:"responseCode"`
	UserID       string    `gorm:"not null;index" json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Entry) TableName() string {
	return "access_logs"
}
