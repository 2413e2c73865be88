package repository

import (
	"context"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewRepository interface {
	Create(ctx context.Context, interview *entity.Interview) error
	// ForJobsPostedBy returns interviews whose application targets a job
	// owned by employerID.
	ForJobsPostedBy(ctx context.Context, employerID uint) ([]*entity.Interview, error)
	// ForApplicant returns interviews for applications submitted by userID.
	ForApplicant(ctx context.Context, userID uint) ([]*entity.Interview, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, interview *entity.Interview) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(interview).Error
}

func (r *interviewRepository) listWhere(ctx context.Context, where string, id uint) ([]*entity.Interview, error) {
	var interviews []*entity.Interview
	err := r.db.WithContext(ctx).
		Preload("JobApplication.Job").
		Preload("JobApplication.User").
		Joins("JOIN job_applications ON job_applications.id = interviews.job_application_id").
		Joins("JOIN jobs ON jobs.id = job_applications.job_id").
		Where(where, id).
		Order("interviews.scheduled_at ASC").Order("interviews.id ASC").
		Find(&interviews).Error
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

func (r *interviewRepository) ForJobsPostedBy(ctx context.Context, employerID uint) ([]*entity.Interview, error) {
	return r.listWhere(ctx, "jobs.employer_id = ?", employerID)
}

func (r *interviewRepository) ForApplicant(ctx context.Context, userID uint) ([]*entity.Interview, error) {
	return r.listWhere(ctx, "job_applications.user_id = ?", userID)
}
