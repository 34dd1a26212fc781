package handler

import (
	"net/http"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConfigHandler struct {
	svc *service.ConfigService
	log *zap.Logger
}

func NewConfigHandler(svc *service.ConfigService, log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{svc: svc, log: orNop(log)}
}

// List handles GET /api/configuracoes: decoded values plus the raw rows.
func (h *ConfigHandler) List(c *gin.Context) {
	values, rows, err := h.svc.All()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configuracoes": values, "detalhes": rows})
}

func (h *ConfigHandler) Public(c *gin.Context) {
	values, err := h.svc.Public()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

func (h *ConfigHandler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Param("chave"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *ConfigHandler) Create(c *gin.Context) {
	var req service.ConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.svc.Create(actorFrom(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *ConfigHandler) Update(c *gin.Context) {
	var req service.ConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.svc.Update(actorFrom(c), c.Param("chave"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *ConfigHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(actorFrom(c), c.Param("chave")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "config entry deleted"})
}

// Bulk handles POST /api/configuracoes/bulk with {"configuracoes": {chave: valor}}.
func (h *ConfigHandler) Bulk(c *gin.Context) {
	var req struct {
		Values map[string]any `json:"configuracoes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Bulk(actorFrom(c), req.Values)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
