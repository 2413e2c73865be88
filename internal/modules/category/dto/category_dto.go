package dto

import (
	"strings"

	"anoa.com/jobboard/internal/modules/category/repository"
)

type CategoryFilter struct {
	Search string `form:"search" binding:"omitempty,max=255"`
}

type CategoryResponse struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	OpenJobs int64  `json:"open_jobs"`
}

func NewCategoryList(categories []*repository.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, CategoryResponse{
			Name:     cat.Name,
			Slug:     strings.ReplaceAll(strings.ToLower(cat.Name), " ", "-"),
			OpenJobs: cat.OpenJobs,
		})
	}
	return out
}
