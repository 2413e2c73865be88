package http

import (
	"net/http"

	statService "anoa.com/jobboard/internal/modules/stat/service"
	"anoa.com/jobboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

// GetTotals serves the admin dashboard counters.
func (h *StatHandler) GetTotals(c *gin.Context) {
	totals, err := h.statService.Totals(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
