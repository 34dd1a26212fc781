package handler

import (
	"net/http"
	"strconv"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CarouselHandler struct {
	svc *service.CarouselService
	log *zap.Logger
}

func NewCarouselHandler(svc *service.CarouselService, log *zap.Logger) *CarouselHandler {
	return &CarouselHandler{svc: svc, log: orNop(log)}
}

// List handles GET /api/carrossel?ativo=.
func (h *CarouselHandler) List(c *gin.Context) {
	var active *bool
	if v := c.Query("ativo"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ativo must be true or false"})
			return
		}
		active = &b
	}
	list, err := h.svc.List(active)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CarouselHandler) Public(c *gin.Context) {
	list, err := h.svc.Active()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CarouselHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sl, err := h.svc.Get(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sl)
}

func (h *CarouselHandler) Create(c *gin.Context) {
	var req service.SlideFields
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sl, err := h.svc.Create(actorFrom(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sl)
}

func (h *CarouselHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.SlideFields
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sl, err := h.svc.Update(actorFrom(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sl)
}

func (h *CarouselHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(actorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "slide deleted"})
}

// Toggle handles POST /api/carrossel/:id/toggle.
func (h *CarouselHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sl, err := h.svc.Toggle(actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sl)
}

// Reorder handles POST /api/carrossel/reorder with {"slides":[{id, ordem}]}.
func (h *CarouselHandler) Reorder(c *gin.Context) {
	var req struct {
		Slides []service.SlideOrder `json:"slides" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Reorder(actorFrom(c), req.Slides); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}
