// Package job provides database operations for job postings.
package job

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrJobNotFound is returned when a job posting is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	// Query matches against title and company, substring style.
	Query string
	// Location matches the posting location, substring style.
	Location string
	// Type filters by employment type.
	Type models.EmploymentType
	// OpenOnly restricts to postings still accepting applications.
	OpenOnly bool
	// PostedByID restricts to one owner's postings.
	PostedByID uint64

	Limit  int
	Offset int
}

// Create stores a new job posting.
func Create(db *gorm.DB, job *models.Job) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(job).Error
}

// GetByID loads one posting.
func GetByID(db *gorm.DB, id uint64) (*models.Job, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var job models.Job

	result := db.First(&job, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, result.Error
	}

	return &job, nil
}

// List returns postings matching the filter, newest first, together with the
// total count before pagination.
func List(db *gorm.DB, f Filter) ([]models.Job, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.Job{})

	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("title LIKE ? OR company LIKE ?", like, like)
	}

	if f.Location != "" {
		query = query.Where("location LIKE ?", "%"+f.Location+"%")
	}

	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
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

	var jobs []models.Job

	result := query.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&jobs)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return jobs, total, nil
}

// Update persists changes to an already-loaded posting.
func Update(db *gorm.DB, job *models.Job) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(job).Error
}

// Delete removes a posting by id.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Job{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// Count returns the total number of postings.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Job{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
