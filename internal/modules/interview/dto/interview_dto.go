package dto

import (
	"time"

	"anoa.com/jobboard/internal/entity"
	commonDto "anoa.com/jobboard/pkg/dto"
)

// ScheduleInterviewRequest is checked by the service, after the application
// lookup and authorization, so a missing application is reported first.
type ScheduleInterviewRequest struct {
	Title       string `json:"title"`
	ScheduledAt string `json:"scheduled_at"`
}

type InterviewResponse struct {
	ID               uint                   `json:"id"`
	JobApplicationID uint                   `json:"job_application_id"`
	EmployerID       uint                   `json:"employer_id"`
	Title            string                 `json:"title"`
	ScheduledAt      time.Time              `json:"scheduled_at"`
	Applicant        *commonDto.UserSummary `json:"applicant,omitempty"`
	Job              *commonDto.JobSummary  `json:"job,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func NewInterviewResponse(i *entity.Interview) *InterviewResponse {
	res := &InterviewResponse{
		ID:               i.ID,
		JobApplicationID: i.JobApplicationID,
		EmployerID:       i.EmployerID,
		Title:            i.Title,
		ScheduledAt:      i.ScheduledAt,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
	if app := i.JobApplication; app != nil {
		res.Applicant = commonDto.NewUserSummary(app.User)
		res.Job = commonDto.NewJobSummary(app.Job)
	}
	return res
}

func NewInterviewList(items []*entity.Interview) []*InterviewResponse {
	out := make([]*InterviewResponse, 0, len(items))
	for _, i := range items {
		out = append(out, NewInterviewResponse(i))
	}
	return out
}

type ScheduleInterviewResponse struct {
	Message   string             `json:"message"`
	Interview *InterviewResponse `json:"interview"`
}
