// Package internship provides database operations for internship postings.
package internship

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrInternshipNotFound is returned when an internship posting is not found.
	ErrInternshipNotFound = errors.New("internship not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Query      string
	Location   string
	OpenOnly   bool
	PostedByID uint64

	Limit  int
	Offset int
}

// Create stores a new internship posting.
func Create(db *gorm.DB, internship *models.Internship) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(internship).Error
}

// GetByID loads one posting.
func GetByID(db *gorm.DB, id uint64) (*models.Internship, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var internship models.Internship

	result := db.First(&internship, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInternshipNotFound
		}

		return nil, result.Error
	}

	return &internship, nil
}

// List returns postings matching the filter, newest first, together with the
// total count before pagination.
func List(db *gorm.DB, f Filter) ([]models.Internship, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.Internship{})

	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("title LIKE ? OR company LIKE ?", like, like)
	}

	if f.Location != "" {
		query = query.Where("location LIKE ?", "%"+f.Location+"%")
	}

	if f.OpenOnly {
		query = query.Where("open = ?", true)
	}

	if f.PostedByID != 0 {
		query = query.Where("posted_by_id = ?", f.PostedByID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var internships []models.Internship

	result := query.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&internships)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return internships, total, nil
}

// Update persists changes to an already-loaded posting.
func Update(db *gorm.DB, internship *models.Internship) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(internship).Error
}

// Delete removes a posting by id.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Internship{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrInternshipNotFound
	}

	return nil
}

// Count returns the total number of postings.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Internship{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
