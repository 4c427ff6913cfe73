// Package application provides database operations for job applications.
package application

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrApplicationNotFound is returned when an application is not found.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrAlreadyApplied is returned when the applicant already applied to the
	// same posting.
	ErrAlreadyApplied = errors.New("already applied to this posting")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create stores a new application. A duplicate for the same applicant and
// posting maps to ErrAlreadyApplied; the composite unique index backs the
// pre-check up against races.
func Create(db *gorm.DB, application *models.Application) error {
	if db == nil {
		return ErrDBNil
	}

	var existing models.Application

	result := db.Where("applicant_id = ? AND target_kind = ? AND target_id = ?",
		application.ApplicantID, application.TargetKind, application.TargetID).
		First(&existing)
	if result.Error == nil {
		return ErrAlreadyApplied
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if err := db.Create(application).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyApplied
		}

		return err
	}

	return nil
}

// GetByID loads one application.
func GetByID(db *gorm.DB, id uint64) (*models.Application, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var application models.Application

	result := db.First(&application, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}

		return nil, result.Error
	}

	return &application, nil
}

// ListByApplicant returns one job seeker's applications, newest first.
func ListByApplicant(db *gorm.DB, applicantID uint64) ([]models.Application, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var applications []models.Application

	result := db.Where("applicant_id = ?", applicantID).
		Order("id DESC").Find(&applications)
	if result.Error != nil {
		return nil, result.Error
	}

	return applications, nil
}

// ListByTarget returns all applications for one posting, oldest first.
func ListByTarget(db *gorm.DB, kind models.ApplicationTarget, targetID uint64) ([]models.Application, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var applications []models.Application

	result := db.Where("target_kind = ? AND target_id = ?", kind, targetID).
		Order("id ASC").Find(&applications)
	if result.Error != nil {
		return nil, result.Error
	}

	return applications, nil
}

// UpdateStatus moves an application to a new review state.
func UpdateStatus(db *gorm.DB, id uint64, status models.ApplicationStatus) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// DeleteByTarget removes all applications pointing at a posting. Used when a
// posting is deleted so applications never dangle.
func DeleteByTarget(db *gorm.DB, kind models.ApplicationTarget, targetID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Where("target_kind = ? AND target_id = ?", kind, targetID).
		Delete(&models.Application{}).Error
}

// Count returns the total number of applications.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Application{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
