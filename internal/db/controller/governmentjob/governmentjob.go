// Package governmentjob provides database operations for government-job
// listings.
package governmentjob

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrListingNotFound is returned when a listing is not found.
	ErrListingNotFound = errors.New("government job not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	// Query matches against title and department, substring style.
	Query    string
	Location string
	OpenOnly bool

	Limit  int
	Offset int
}

// Create stores a new listing.
func Create(db *gorm.DB, listing *models.GovernmentJob) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(listing).Error
}

// GetByID loads one listing.
func GetByID(db *gorm.DB, id uint64) (*models.GovernmentJob, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var listing models.GovernmentJob

	result := db.First(&listing, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, result.Error
	}

	return &listing, nil
}

// List returns listings matching the filter, newest first, together with the
// total count before pagination.
func List(db *gorm.DB, f Filter) ([]models.GovernmentJob, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.GovernmentJob{})

	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("title LIKE ? OR department LIKE ?", like, like)
	}

	if f.Location != "" {
		query = query.Where("location LIKE ?", "%"+f.Location+"%")
	}

	if f.OpenOnly {
		query = query.Where("open = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.GovernmentJob

	result := query.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&listings)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return listings, total, nil
}

// Update persists changes to an already-loaded listing.
func Update(db *gorm.DB, listing *models.GovernmentJob) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(listing).Error
}

// Delete removes a listing by id.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.GovernmentJob{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}

	return nil
}

// Count returns the total number of listings.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.GovernmentJob{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
