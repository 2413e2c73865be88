package repository

import (
	"context"
	"strings"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
)

// Category is a distinct job category with the number of open jobs in it.
type Category struct {
	Name     string `gorm:"column:name"`
	OpenJobs int64  `gorm:"column:open_jobs"`
}

type CategoryRepository interface {
	FindAll(ctx context.Context, filter string) ([]*Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindAll groups jobs by category. Completed jobs still contribute their
// category but not to the open count.
func (r *categoryRepository) FindAll(ctx context.Context, filter string) ([]*Category, error) {
	var categories []*Category
	query := r.db.WithContext(ctx).Model(&entity.Job{}).
		Select("category AS name, SUM(CASE WHEN complete THEN 0 ELSE 1 END) AS open_jobs").
		Where("category IS NOT NULL AND category <> ''")

	if filter = strings.TrimSpace(filter); filter != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	if err := query.Group("category").Order("category").Scan(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
