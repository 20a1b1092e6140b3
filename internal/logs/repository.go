package logs

import "gorm.io/gorm"

type Repository interface {
	Append(entry *Entry) error
	ListByUser(userID string) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(entry *Entry) error {
	return r.db.Create(entry).Error
}

func (r *repository) ListByUser(userID string) ([]Entry, error) {
	var entries []Entry
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
