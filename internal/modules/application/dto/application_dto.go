package dto

import (
	"io"
	"time"

	"anoa.com/jobboard/internal/entity"
	commonDto "anoa.com/jobboard/pkg/dto"
)

type ApplicationResponse struct {
	ID             uint                   `json:"id"`
	UserID         uint                   `json:"user_id"`
	JobID          uint                   `json:"job_id"`
	HasCoverLetter bool                   `json:"has_cover_letter"`
	Applicant      *commonDto.UserSummary `json:"applicant,omitempty"`
	Job            *commonDto.JobSummary  `json:"job,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func NewApplicationResponse(app *entity.JobApplication) *ApplicationResponse {
	return &ApplicationResponse{
		ID:             app.ID,
		UserID:         app.UserID,
		JobID:          app.JobID,
		HasCoverLetter: app.CoverLetterPath != nil,
		Applicant:      commonDto.NewUserSummary(app.User),
		Job:            commonDto.NewJobSummary(app.Job),
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

func NewApplicationList(apps []*entity.JobApplication) []*ApplicationResponse {
	out := make([]*ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, NewApplicationResponse(a))
	}
	return out
}

type SubmitApplicationResponse struct {
	Message     string               `json:"message"`
	Application *ApplicationResponse `json:"application"`
}

// Document is a private blob opened for download. Callers must close Body.
type Document struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
}
