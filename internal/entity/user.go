package entity

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Description  *string   `gorm:"type:text" json:"description"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsEmployer   bool      `gorm:"not null;default:false" json:"is_employer"`
	ProfilePhoto *string   `gorm:"size:512" json:"profile_photo"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SavedJob is the saved_jobs pivot between users and jobs.
type SavedJob struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	JobID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"job_id"`
	Job       *Job      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
