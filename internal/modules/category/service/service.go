package service

import (
	"context"

	"anoa.com/jobboard/internal/modules/category/repository"
	"anoa.com/jobboard/pkg/apperror"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context, search string) ([]*repository.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetAllCategories(ctx context.Context, search string) ([]*repository.Category, error) {
	categories, err := s.repo.FindAll(ctx, search)
	if err != nil {
		return nil, apperror.Storage("failed to load categories", err)
	}
	return categories, nil
}
