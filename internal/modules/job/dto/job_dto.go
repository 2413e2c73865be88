package dto

import (
	"time"

	"anoa.com/jobboard/internal/entity"
	commonDto "anoa.com/jobboard/pkg/dto"
)

// CreateJobRequest binds from JSON or multipart form. The logo travels as
// the company_logo file part.
type CreateJobRequest struct {
	EmployerID  uint     `json:"employer_id" form:"employer_id"`
	Title       string   `json:"title" form:"title" binding:"required,max=255"`
	Description string   `json:"description" form:"description" binding:"required"`
	Location    string   `json:"location" form:"location" binding:"required,max=255"`
	Type        string   `json:"type" form:"type" binding:"required,oneof=Full-time Part-time Contract Internship"`
	Salary      *float64 `json:"salary" form:"salary" binding:"omitempty,gte=0"`
	CompanyName string   `json:"company_name" form:"company_name" binding:"required,max=255"`
	Category    *string  `json:"category" form:"category" binding:"omitempty,max=255"`
	Complete    bool     `json:"complete" form:"complete"`
}

// UpdateJobRequest only changes the fields that are present.
type UpdateJobRequest struct {
	Title       *string  `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description" form:"description" binding:"omitempty,min=1"`
	Location    *string  `json:"location" form:"location" binding:"omitempty,min=1,max=255"`
	Type        *string  `json:"type" form:"type" binding:"omitempty,oneof=Full-time Part-time Contract Internship"`
	Salary      *float64 `json:"salary" form:"salary" binding:"omitempty,gte=0"`
	CompanyName *string  `json:"company_name" form:"company_name" binding:"omitempty,min=1,max=255"`
	Category    *string  `json:"category" form:"category" binding:"omitempty,max=255"`
	Complete    *bool    `json:"complete" form:"complete"`
}

type JobResponse struct {
	ID          uint                   `json:"id"`
	EmployerID  uint                   `json:"employer_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	Type        entity.JobType         `json:"type"`
	Salary      *float64               `json:"salary"`
	CompanyName string                 `json:"company_name"`
	CompanyLogo *string                `json:"company_logo"`
	Category    *string                `json:"category"`
	Complete    bool                   `json:"complete"`
	Views       int64                  `json:"views"`
	Employer    *commonDto.UserSummary `json:"employer,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func NewJobResponse(j *entity.Job) *JobResponse {
	return &JobResponse{
		ID:          j.ID,
		EmployerID:  j.EmployerID,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		Type:        j.Type,
		Salary:      j.Salary,
		CompanyName: j.CompanyName,
		CompanyLogo: j.CompanyLogo,
		Category:    j.Category,
		Complete:    j.Complete,
		Views:       j.Views,
		Employer:    commonDto.NewUserSummary(j.Employer),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func NewJobList(items []*entity.Job) []*JobResponse {
	out := make([]*JobResponse, 0, len(items))
	for _, j := range items {
		out = append(out, NewJobResponse(j))
	}
	return out
}

type JobMessageResponse struct {
	Message string       `json:"message"`
	Job     *JobResponse `json:"job"`
}
