package domain

import "time"

// ExtractStatus tracks the resume text extraction of one application.
type ExtractStatus string

const (
	ExtractQueued     ExtractStatus = "queued"
	ExtractProcessing ExtractStatus = "processing"
	ExtractCompleted  ExtractStatus = "completed"
	ExtractFailed     ExtractStatus = "failed"
)

// ResumeExtract is the derived plain-text view of an application's resume.
// It is kept apart from Application so the submission itself stays immutable.
type ResumeExtract struct {
	ApplicationID string        `gorm:"primaryKey;size:36" json:"applicationId"`
	Status        ExtractStatus `gorm:"size:16;not null;default:'queued'" json:"status"`
	Text          string        `gorm:"type:text" json:"text,omitempty"`
	CharCount     int           `json:"charCount"`
	Error         string        `gorm:"size:1024" json:"error,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ApplicationSubmitted is published after an application is stored.
type ApplicationSubmitted struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
}

// ApplicationView is an application as seen by the job's owner.
type ApplicationView struct {
	Application
	Extract *ResumeExtract `json:"resumeExtract,omitempty"`
}
