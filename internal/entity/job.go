package entity

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EmployerID  uint      `gorm:"not null;index" json:"employer_id"`
	Employer    *User     `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"employer,omitempty"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Type        JobType   `gorm:"size:20;not null" json:"type"`
	Salary      *float64  `gorm:"type:decimal(10,2)" json:"salary"`
	CompanyName string    `gorm:"size:255;not null" json:"company_name"`
	CompanyLogo *string   `gorm:"size:512" json:"company_logo"`
	Category    *string   `gorm:"size:255;index" json:"category"`
	Complete    bool      `gorm:"not null;default:false" json:"complete"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
