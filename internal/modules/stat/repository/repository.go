package repository

import (
	"context"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
)

type Totals struct {
	Users        int64 `json:"total_users"`
	Employers    int64 `json:"total_employers"`
	Jobs         int64 `json:"total_jobs"`
	OpenJobs     int64 `json:"open_jobs"`
	Applications int64 `json:"total_applications"`
	Interviews   int64 `json:"total_interviews"`
}

type StatRepository interface {
	Totals(ctx context.Context) (*Totals, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Totals(ctx context.Context) (*Totals, error) {
	db := r.db.WithContext(ctx)
	t := &Totals{}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&entity.User{}), &t.Users},
		{db.Model(&entity.User{}).Where("is_employer = ?", true), &t.Employers},
		{db.Model(&entity.Job{}), &t.Jobs},
		{db.Model(&entity.Job{}).Where("complete = ?", false), &t.OpenJobs},
		{db.Model(&entity.JobApplication{}), &t.Applications},
		{db.Model(&entity.Interview{}), &t.Interviews},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return t, nil
}
