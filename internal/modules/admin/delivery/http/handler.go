package handler

import (
	"net/http"

	"anoa.com/jobboard/internal/modules/admin/dto"
	adminService "anoa.com/jobboard/internal/modules/admin/service"
	userDto "anoa.com/jobboard/internal/modules/user/dto"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	user, err := h.adminService.CreateUser(c.Request.Context(), actor, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userDto.NewUserResponse(user))
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	users, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, userDto.NewUserList(users))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "User deleted successfully")
}
