package handler

import (
	"net/http"

	jobDto "anoa.com/jobboard/internal/modules/job/dto"
	"anoa.com/jobboard/internal/modules/user/dto"
	userService "anoa.com/jobboard/internal/modules/user/service"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/upload"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService userService.AuthService
}

func NewAuthHandler(authService userService.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Logout revokes the bearer token that authenticated the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	tokenID, expiresAt := response.GetToken(c)
	if err := h.authService.Logout(c.Request.Context(), actor, tokenID, expiresAt); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "logged out successfully")
}

type UserHandler struct {
	userService userService.UserService
}

func NewUserHandler(userService userService.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(actor))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserList(users))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}
	photo, err := upload.FormFile(c, upload.PhotoRule, false)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, req, photo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) RemoveProfilePhoto(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.RemoveProfilePhoto(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Profile photo removed successfully")
}

func (h *UserHandler) SaveJob(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	userID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.SaveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	if err := h.userService.SaveJob(c.Request.Context(), actor, userID, req.JobID); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Job saved successfully")
}

func (h *UserHandler) UnsaveJob(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	userID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	jobID, ok := response.ParamID(c, "jobId")
	if !ok {
		return
	}

	if err := h.userService.UnsaveJob(c.Request.Context(), actor, userID, jobID); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Job unsaved successfully")
}

func (h *UserHandler) SavedJobIDs(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	userID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	ids, err := h.userService.SavedJobIDs(c.Request.Context(), actor, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *UserHandler) PostedJobs(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	userID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	jobs, err := h.userService.PostedJobs(c.Request.Context(), actor, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobDto.NewJobList(jobs))
}

func (h *UserHandler) RequestEmployerRole(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.EmployerRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	if err := h.userService.RequestEmployerRole(c.Request.Context(), actor, req.Message); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Your request has been sent! We will review it shortly.")
}
