package dto

import (
	"net/url"

	"anoa.com/jobboard/internal/entity"
)

// UserSummary is the public projection of a user embedded in other
// resources (message senders, conversation partners, applicants).
type UserSummary struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	ProfilePhoto    *string `json:"profile_photo"`
	ProfilePhotoURL string  `json:"profile_photo_url"`
}

type JobSummary struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	CompanyName string         `json:"company_name"`
	CompanyLogo *string        `json:"company_logo"`
	Location    string         `json:"location"`
	Type        entity.JobType `json:"type"`
	Complete    bool           `json:"complete"`
}

// PhotoURL returns the stored photo or a generated initials avatar.
func PhotoURL(u *entity.User) string {
	if u.ProfilePhoto != nil && *u.ProfilePhoto != "" {
		return *u.ProfilePhoto
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(u.Name) + "&color=7F9CF5&background=EBF4FF"
}

func NewUserSummary(u *entity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		ProfilePhoto:    u.ProfilePhoto,
		ProfilePhotoURL: PhotoURL(u),
	}
}

func NewJobSummary(j *entity.Job) *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		CompanyName: j.CompanyName,
		CompanyLogo: j.CompanyLogo,
		Location:    j.Location,
		Type:        j.Type,
		Complete:    j.Complete,
	}
}
