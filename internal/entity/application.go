package entity

import "time"

type JobApplication struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_job_applications_user_job,priority:1" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	JobID           uint      `gorm:"not null;index;uniqueIndex:idx_job_applications_user_job,priority:2" json:"job_id"`
	Job             *Job      `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	ResumePath      string    `gorm:"size:512;not null" json:"resume_path"`
	CoverLetterPath *string   `gorm:"size:512" json:"cover_letter_path"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Interview struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	JobApplicationID uint            `gorm:"not null;index" json:"job_application_id"`
	JobApplication   *JobApplication `gorm:"constraint:OnDelete:CASCADE" json:"job_application,omitempty"`
	// EmployerID records who scheduled the interview, which is an admin's own
	// id when an admin schedules on an employer's behalf.
	EmployerID  uint      `gorm:"not null;index" json:"employer_id"`
	Employer    *User     `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
