package handler

import (
	"net/http"
	"strconv"

	"loteamento/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	repo *repository.ActivityRepository
	log  *zap.Logger
}

func NewActivityHandler(repo *repository.ActivityRepository, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{repo: repo, log: orNop(log)}
}

// List handles GET /api/atividades?acao=&tabela=&usuario_id=&page=&limit=.
func (h *ActivityHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	f := repository.ActivityFilter{Action: c.Query("acao"), Table: c.Query("tabela")}
	if v := c.Query("usuario_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid usuario_id"})
			return
		}
		uid := uint(id)
		f.UserID = &uid
	}
	list, total, err := h.repo.List(f, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}
