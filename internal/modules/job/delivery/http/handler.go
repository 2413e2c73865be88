package handler

import (
	"net/http"
	"strconv"

	"anoa.com/jobboard/internal/modules/job/dto"
	"anoa.com/jobboard/internal/modules/job/repository"
	jobService "anoa.com/jobboard/internal/modules/job/service"
	viewService "anoa.com/jobboard/internal/modules/view/service"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/upload"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	service jobService.JobService
	views   viewService.ViewCounter
}

func NewJobHandler(service jobService.JobService, views viewService.ViewCounter) *JobHandler {
	return &JobHandler{service: service, views: views}
}

// List supports ?category=, ?type=, ?search= and ?complete= filters.
func (h *JobHandler) List(c *gin.Context) {
	filter := repository.JobFilter{
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("complete"); raw != "" {
		complete, err := strconv.ParseBool(raw)
		if err != nil {
			response.ResponseError(c, apperror.Validation("the given data was invalid",
				map[string]string{"complete": "complete must be true or false"}))
			return
		}
		filter.Complete = &complete
	}

	jobs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobList(jobs))
}

func (h *JobHandler) Search(c *gin.Context) {
	jobs, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobList(jobs))
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	job, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.views.RecordView(c.Request.Context(), job.ID, c.ClientIP()); err != nil {
		response.Logger(c).WithError(err).WithField("job_id", job.ID).Warn("failed to record job view")
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job))
}

func (h *JobHandler) Create(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}
	logo, err := upload.FormFile(c, upload.LogoRule, false)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	job, err := h.service.Create(c.Request.Context(), actor, req, logo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.JobMessageResponse{Message: "Job created successfully", Job: dto.NewJobResponse(job)})
}

func (h *JobHandler) Update(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}
	logo, err := upload.FormFile(c, upload.LogoRule, false)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	job, err := h.service.Update(c.Request.Context(), actor, id, req, logo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.JobMessageResponse{Message: "Job updated successfully", Job: dto.NewJobResponse(job)})
}

func (h *JobHandler) Delete(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Job deleted successfully")
}
