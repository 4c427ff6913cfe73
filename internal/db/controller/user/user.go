// Package user provides database operations for identity records. The
// authorization decisions live in the callers; this package only moves rows.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	// Role filters by coarse role.
	Role models.Role
	// Query matches against name and email, substring style.
	Query string

	Limit  int
	Offset int
}

// GetByID loads one user.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail loads one user by normalized email.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.Where("email = ?", models.NormalizeEmail(email)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// List returns users matching the filter, oldest first, together with the
// total count before pagination.
func List(db *gorm.DB, f Filter) ([]models.User, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.User{})

	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}

	if f.Query != "" {
		like := "%" + f.Query + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User

	result := query.Order("id ASC").Limit(f.Limit).Offset(f.Offset).Find(&users)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return users, total, nil
}

// Update persists changes to an already-loaded user.
func Update(db *gorm.DB, user *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(user).Error
}

// Delete removes a user by id.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountByRole returns the number of users per coarse role.
func CountByRole(db *gorm.DB) (map[models.Role]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	type row struct {
		Role  models.Role
		Total int64
	}

	var rows []row

	result := db.Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, r := range rows {
		counts[r.Role] = r.Total
	}

	return counts, nil
}
