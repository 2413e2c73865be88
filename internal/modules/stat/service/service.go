package service

import (
	"context"

	"anoa.com/jobboard/internal/modules/stat/repository"
	"anoa.com/jobboard/pkg/apperror"
)

type StatService interface {
	Totals(ctx context.Context) (*repository.Totals, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{
		repo: repo,
	}
}

func (s *statService) Totals(ctx context.Context) (*repository.Totals, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, apperror.Storage("failed to load statistics", err)
	}
	return totals, nil
}
