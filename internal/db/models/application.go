package models

import "time"

// ApplicationTarget names the collection an application points at.
type ApplicationTarget string

const (
	// TargetJob is an application to a Job posting.
	TargetJob ApplicationTarget = "job"
	// TargetInternship is an application to an Internship posting.
	TargetInternship ApplicationTarget = "internship"
	// TargetGovernmentJob is an application to a GovernmentJob listing.
	TargetGovernmentJob ApplicationTarget = "government-job"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	// StatusSubmitted is the initial state after applying.
	StatusSubmitted ApplicationStatus = "submitted"
	// StatusShortlisted means the posting owner shortlisted the applicant.
	StatusShortlisted ApplicationStatus = "shortlisted"
	// StatusRejected means the posting owner rejected the application.
	StatusRejected ApplicationStatus = "rejected"
	// StatusHired means the applicant was hired.
	StatusHired ApplicationStatus = "hired"
)

// Application links an applicant to a posting in one of the three posting
// collections. An applicant may apply to a given posting at most once,
// enforced by the composite unique index.
type Application struct {
	ID uint64 `gorm:"primaryKey" json:"id"`
	// ApplicantID is the job seeker who applied.
	ApplicantID uint64 `gorm:"index;not null;uniqueIndex:idx_applicant_target" json:"applicantId"`
	// TargetKind and TargetID identify the posting applied to.
	TargetKind  ApplicationTarget `gorm:"type:varchar(20);not null;uniqueIndex:idx_applicant_target" json:"targetKind"`
	TargetID    uint64            `gorm:"not null;index;uniqueIndex:idx_applicant_target" json:"targetId"`
	CoverLetter string            `gorm:"size:5000" json:"coverLetter"`
	// ResumeURL points at the uploaded resume in the asset store.
	ResumeURL string            `gorm:"size:512" json:"resumeUrl,omitempty"`
	Status    ApplicationStatus `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
