package handler

import (
	"net/http"

	"anoa.com/jobboard/internal/modules/interview/dto"
	interviewService "anoa.com/jobboard/internal/modules/interview/service"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	service interviewService.InterviewService
}

func NewInterviewHandler(service interviewService.InterviewService) *InterviewHandler {
	return &InterviewHandler{service: service}
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	applicationID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	interview, err := h.service.Schedule(c.Request.Context(), actor, applicationID, req.Title, req.ScheduledAt)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ScheduleInterviewResponse{
		Message:   "Interview scheduled successfully!",
		Interview: dto.NewInterviewResponse(interview),
	})
}

func (h *InterviewHandler) List(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.ListFor(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInterviewList(items))
}

func (h *InterviewHandler) ListScheduled(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.ListScheduled(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInterviewList(items))
}
