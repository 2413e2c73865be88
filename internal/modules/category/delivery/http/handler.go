package handler

import (
	"net/http"

	"anoa.com/jobboard/internal/modules/category/dto"
	categoryService "anoa.com/jobboard/internal/modules/category/service"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service categoryService.CategoryService
}

func NewCategoryHandler(service categoryService.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	var filter dto.CategoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	categories, err := h.service.GetAllCategories(c.Request.Context(), filter.Search)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCategoryList(categories))
}
