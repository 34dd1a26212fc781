package handler

import (
	"net/http"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SiteHandler struct {
	svc *service.SiteService
	log *zap.Logger
}

func NewSiteHandler(svc *service.SiteService, log *zap.Logger) *SiteHandler {
	return &SiteHandler{svc: svc, log: orNop(log)}
}

// Data handles GET /api/site-data.
func (h *SiteHandler) Data(c *gin.Context) {
	d, err := h.svc.Data(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
