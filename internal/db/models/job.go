package models

import "time"

// EmploymentType classifies a posting.
type EmploymentType string

const (
	// EmploymentFullTime is a full-time position.
	EmploymentFullTime EmploymentType = "full-time"
	// EmploymentPartTime is a part-time position.
	EmploymentPartTime EmploymentType = "part-time"
	// EmploymentContract is a fixed-term contract position.
	EmploymentContract EmploymentType = "contract"
)

// Job is a job posting created by an employer (or an administrator on an
// employer's behalf). Skill requirements are normalized to a comma-separated
// string at the HTTP boundary.
type Job struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Company     string         `gorm:"size:255;not null" json:"company"`
	Description string         `gorm:"size:5000" json:"description"`
	Location    string         `gorm:"size:255" json:"location"`
	Type        EmploymentType `gorm:"type:varchar(20);not null;default:'full-time'" json:"type"`
	SalaryMin   uint           `json:"salaryMin"`
	SalaryMax   uint           `json:"salaryMax"`
	Skills      string         `gorm:"size:1000" json:"-"`
	// PostedByID is the identity that owns the posting.
	PostedByID uint64 `gorm:"column:posted_by_id;index;not null" json:"postedById"`
	// Open indicates whether the posting still accepts applications.
	Open      bool      `gorm:"default:true" json:"open"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SkillList returns the required skills as a list.
func (j *Job) SkillList() []string {
	return SplitList(j.Skills)
}
