package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"loteamento/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImportSize bounds the request body of an import.
const maxImportSize = 50 << 20

type BackupHandler struct {
	svc *service.BackupService
	log *zap.Logger
}

func NewBackupHandler(svc *service.BackupService, log *zap.Logger) *BackupHandler {
	return &BackupHandler{svc: svc, log: orNop(log)}
}

type ExportRequest struct {
	Name        string `json:"nome" binding:"max=100"`
	IncludeLogs bool   `json:"incluir_logs"`
}

type ImportRequest struct {
	Data      json.RawMessage `json:"backup_data"`
	Overwrite bool            `json:"sobrescrever"`
}

type ResetRequest struct {
	Confirmation string `json:"confirmar"`
}

func (h *BackupHandler) List(c *gin.Context) {
	list, err := h.svc.List()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Export handles POST /api/backup/export.
func (h *BackupHandler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	b, err := h.svc.Export(c.Request.Context(), actorFrom(c), service.ExportOptions{
		Name:        req.Name,
		IncludeLogs: req.IncludeLogs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "backup created", "backup": b})
}

// Download handles GET /api/backup/download/:id and streams the snapshot file.
func (h *BackupHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, size, b, err := h.svc.Open(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, size, "application/json", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, b.File),
	})
}

// Import handles POST /api/backup/import.
func (h *BackupHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	raw, err := service.SnapshotPayload(req.Data)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	sum, err := h.svc.Import(c.Request.Context(), actorFrom(c), raw, req.Overwrite)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup imported", "resultado": sum})
}

func (h *BackupHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup deleted"})
}

// Reset handles POST /api/backup/reset; the body must carry the confirmation token.
func (h *BackupHandler) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sum, err := h.svc.Reset(c.Request.Context(), actorFrom(c), req.Confirmation)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "system reset to defaults", "resultado": sum})
}

func (h *BackupHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
