package box

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrBoxNotFound = errors.New("box not found")
	ErrBoxExists   = errors.New("box already exists")
)

type Repository interface {
	CreateBox(box *Box) error
	GetByBoxID(boxID int) (*Box, error)
	GetByID(id uint) (*Box, error)
	ListByUser(userID string) ([]Box, error)
	ListAll() ([]Box, error)
	Save(box *Box) error
	Delete(id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBox(box *Box) error {
	if err := r.db.Create(box).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrBoxExists
		}
		return err
	}
	return nil
}

func (r *repository) GetByBoxID(boxID int) (*Box, error) {
	var box Box
	if err := r.db.Where("box_id = ?", boxID).First(&box).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoxNotFound
		}
		return nil, err
	}
	return &box, nil
}

func (r *repository) GetByID(id uint) (*Box, error) {
	var box Box
	if err := r.db.First(&box, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoxNotFound
		}
		return nil, err
	}
	return &box, nil
}

func (r *repository) ListByUser(userID string) ([]Box, error) {
	var boxes []Box
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&boxes).Error; err != nil {
		return nil, err
	}
	return boxes, nil
}

func (r *repository) ListAll() ([]Box, error) {
	var boxes []Box
	if err := r.db.Order("created_at desc").Find(&boxes).Error; err != nil {
		return nil, err
	}
	return boxes, nil
}

func (r *repository) Save(box *Box) error {
	return r.db.Save(box).Error
}

func (r *repository) Delete(id uint) error {
	result := r.db.Delete(&Box{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoxNotFound
	}
	return nil
}
