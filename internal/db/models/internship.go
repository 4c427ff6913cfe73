package models

import "time"

// Internship is an internship posting. It shares the shape of Job plus a
// duration and a stipend instead of a salary band.
type Internship struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Company     string `gorm:"size:255;not null" json:"company"`
	Description string `gorm:"size:5000" json:"description"`
	Location    string `gorm:"size:255" json:"location"`
	// DurationMonths is the length of the internship.
	DurationMonths uint `json:"durationMonths"`
	// Stipend is the monthly stipend, zero for unpaid internships.
	Stipend    uint      `json:"stipend"`
	Skills     string    `gorm:"size:1000" json:"-"`
	PostedByID uint64    `gorm:"column:posted_by_id;index;not null" json:"postedById"`
	Open       bool      `gorm:"default:true" json:"open"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SkillList returns the required skills as a list.
func (i *Internship) SkillList() []string {
	return SplitList(i.Skills)
}
