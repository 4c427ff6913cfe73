package models

import "time"

// GovernmentJob is a government-job listing. These are curated by
// administrators rather than employer accounts.
type GovernmentJob struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Department  string `gorm:"size:255;not null" json:"department"`
	Description string `gorm:"size:5000" json:"description"`
	Location    string `gorm:"size:255" json:"location"`
	SalaryMin   uint   `json:"salaryMin"`
	SalaryMax   uint   `json:"salaryMax"`
	// LastApplyDate is the official application deadline.
	LastApplyDate time.Time `json:"lastApplyDate"`
	PostedByID    uint64    `gorm:"column:posted_by_id;index;not null" json:"postedById"`
	Open          bool      `gorm:"default:true" json:"open"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
