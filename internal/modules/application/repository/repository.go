package repository

import (
	"context"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.JobApplication) error
	// FindByID loads the application with its job, which authorization needs.
	FindByID(ctx context.Context, id uint) (*entity.JobApplication, error)
	Exists(ctx context.Context, userID, jobID uint) (bool, error)
	FindByJob(ctx context.Context, jobID uint) ([]*entity.JobApplication, error)
	FindByUser(ctx context.Context, userID uint) ([]*entity.JobApplication, error)
	Update(ctx context.Context, app *entity.JobApplication) error
	Delete(ctx context.Context, id uint) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *entity.JobApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*entity.JobApplication, error) {
	var app entity.JobApplication
	if err := r.db.WithContext(ctx).Preload("Job").Preload("User").First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Exists(ctx context.Context, userID, jobID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.JobApplication{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) FindByJob(ctx context.Context, jobID uint) ([]*entity.JobApplication, error) {
	var apps []*entity.JobApplication
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("job_id = ?", jobID).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) FindByUser(ctx context.Context, userID uint) ([]*entity.JobApplication, error) {
	var apps []*entity.JobApplication
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *entity.JobApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(app).Error
}

func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.JobApplication{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
