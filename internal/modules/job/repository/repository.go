package repository

import (
	"context"
	"strings"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobFilter struct {
	Category   string
	Type       string
	Search     string
	Complete   *bool
	EmployerID uint
}

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uint) (*entity.Job, error)
	FindAll(ctx context.Context, filter JobFilter) ([]*entity.Job, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id uint) error
	// SavedBy returns the users who saved the job.
	SavedBy(ctx context.Context, jobID uint) ([]*entity.User, error)
	// AddViews increments the stored view count without touching other columns.
	AddViews(ctx context.Context, jobID uint, n int64) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).Preload("Employer").First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindAll(ctx context.Context, filter JobFilter) ([]*entity.Job, error) {
	var jobs []*entity.Job
	query := r.db.WithContext(ctx).Model(&entity.Job{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Complete != nil {
		query = query.Where("complete = ?", *filter.Complete)
	}
	if filter.EmployerID != 0 {
		query = query.Where("employer_id = ?", filter.EmployerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(location) LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) FindByIDs(ctx context.Context, ids []uint) ([]*entity.Job, error) {
	var jobs []*entity.Job
	if len(ids) == 0 {
		return jobs, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) Update(ctx context.Context, job *entity.Job) error {
	// views are owned by AddViews
	return r.db.WithContext(ctx).Omit(clause.Associations, "Views").Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Job{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *jobRepository) SavedBy(ctx context.Context, jobID uint) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN saved_jobs ON saved_jobs.user_id = users.id").
		Where("saved_jobs.job_id = ?", jobID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *jobRepository) AddViews(ctx context.Context, jobID uint, n int64) error {
	res := r.db.WithContext(ctx).Model(&entity.Job{}).
		Where("id = ?", jobID).
		UpdateColumn("views", gorm.Expr("views + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
