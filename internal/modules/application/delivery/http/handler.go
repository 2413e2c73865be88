package handler

import (
	"context"
	"fmt"
	"net/http"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/application/dto"
	appService "anoa.com/jobboard/internal/modules/application/service"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/upload"
	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	service appService.ApplicationService
}

func NewApplicationHandler(service appService.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	jobID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	resume := upload.Lookup(c, upload.ResumeRule.Field)
	coverLetter := upload.Lookup(c, upload.CoverLetterRule.Field)

	app, err := h.service.Submit(c.Request.Context(), actor, jobID, resume, coverLetter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitApplicationResponse{
		Message:     "Application submitted successfully!",
		Application: dto.NewApplicationResponse(app),
	})
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	jobID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	apps, err := h.service.ListForJob(c.Request.Context(), actor, jobID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewApplicationList(apps))
}

func (h *ApplicationHandler) ListSubmitted(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.ListSubmitted(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewApplicationList(apps))
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	app, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
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
	response.Message(c, http.StatusOK, "Application deleted successfully")
}

func (h *ApplicationHandler) DownloadResume(c *gin.Context) {
	h.download(c, h.service.OpenResume)
}

func (h *ApplicationHandler) DownloadCoverLetter(c *gin.Context) {
	h.download(c, h.service.OpenCoverLetter)
}

func (h *ApplicationHandler) DeleteCoverLetter(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCoverLetter(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Cover letter deleted successfully")
}

type openFunc func(ctx context.Context, actor *entity.User, id uint) (*dto.Document, error)

func (h *ApplicationHandler) download(c *gin.Context, open openFunc) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := open(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer doc.Body.Close()

	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, doc.FileName),
	})
}
