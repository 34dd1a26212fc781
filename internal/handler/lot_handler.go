package handler

import (
	"net/http"
	"strconv"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LotHandler struct {
	svc *service.LotService
	log *zap.Logger
}

func NewLotHandler(svc *service.LotService, log *zap.Logger) *LotHandler {
	return &LotHandler{svc: svc, log: orNop(log)}
}

// List handles GET /api/lotes?status=&limit=&offset=.
func (h *LotHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := h.svc.List(c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "limit": limit, "offset": offset})
}

// Public handles GET /api/lotes/public.
func (h *LotHandler) Public(c *gin.Context) {
	list, err := h.svc.Available()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *LotHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lot, err := h.svc.Get(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Create(c *gin.Context) {
	var req service.LotFields
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lot, err := h.svc.Create(actorFrom(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (h *LotHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.LotFields
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lot, err := h.svc.Update(actorFrom(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(actorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lot deleted"})
}

// SetStatus handles POST /api/lotes/:id/status.
func (h *LotHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lot, err := h.svc.SetStatus(actorFrom(c), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// Stats handles GET /api/lotes/stats/summary.
func (h *LotHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
