package dto

import (
	"time"

	"anoa.com/jobboard/internal/entity"
	commonDto "anoa.com/jobboard/pkg/dto"
)

// UpdateUserRequest binds from JSON or multipart form; absent fields are left
// unchanged. The photo travels as the profile_photo file part.
type UpdateUserRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=1,max=255"`
	Email       *string `json:"email" form:"email" binding:"omitempty,email,max=255"`
	Description *string `json:"description" form:"description"`
	IsAdmin     *bool   `json:"is_admin" form:"is_admin"`
	IsEmployer  *bool   `json:"is_employer" form:"is_employer"`
}

// ChangesProfile reports whether any non-role field is present.
func (r UpdateUserRequest) ChangesProfile() bool {
	return r.Name != nil || r.Email != nil || r.Description != nil
}

func (r UpdateUserRequest) ChangesRoles() bool {
	return r.IsAdmin != nil || r.IsEmployer != nil
}

type EmployerRoleRequest struct {
	Message string `json:"message" binding:"required,min=10"`
}

type SaveJobRequest struct {
	JobID uint `json:"job_id" binding:"required"`
}

type UserResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Description     *string   `json:"description"`
	IsAdmin         bool      `json:"is_admin"`
	IsEmployer      bool      `json:"is_employer"`
	ProfilePhoto    *string   `json:"profile_photo"`
	ProfilePhotoURL string    `json:"profile_photo_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Description:     u.Description,
		IsAdmin:         u.IsAdmin,
		IsEmployer:      u.IsEmployer,
		ProfilePhoto:    u.ProfilePhoto,
		ProfilePhotoURL: commonDto.PhotoURL(u),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func NewUserList(users []*entity.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UserProfile is a user together with the jobs they saved and posted.
type UserProfile struct {
	User       *entity.User
	SavedJobs  []*entity.Job
	PostedJobs []*entity.Job
}

type ProfileResponse struct {
	*UserResponse
	SavedJobs  []*commonDto.JobSummary `json:"saved_jobs"`
	PostedJobs []*commonDto.JobSummary `json:"posted_jobs"`
}

func NewProfileResponse(p *UserProfile) *ProfileResponse {
	return &ProfileResponse{
		UserResponse: NewUserResponse(p.User),
		SavedJobs:    JobSummaries(p.SavedJobs),
		PostedJobs:   JobSummaries(p.PostedJobs),
	}
}

func JobSummaries(jobs []*entity.Job) []*commonDto.JobSummary {
	out := make([]*commonDto.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, commonDto.NewJobSummary(j))
	}
	return out
}
