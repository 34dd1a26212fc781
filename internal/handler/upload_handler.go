package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"loteamento/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type UploadHandler struct {
	cloud  cloudinary.Client
	folder string
	log    *zap.Logger
}

// NewUploadHandler accepts a nil client; uploads then answer 503.
func NewUploadHandler(cloud cloudinary.Client, folder string, log *zap.Logger) *UploadHandler {
	return &UploadHandler{cloud: cloud, folder: folder, log: orNop(log)}
}

// UploadImage handles POST /api/uploads/image with a multipart "file" and
// an optional "destino" (lotes or carrossel).
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image larger than 10MB"})
		return
	}
	if !imageExts[strings.ToLower(filepath.Ext(file.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg, png, webp and gif images are accepted"})
		return
	}
	dest := c.DefaultPostForm("destino", "lotes")
	if dest != "lotes" && dest != "carrossel" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destino must be lotes or carrossel"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	res, err := h.cloud.UploadImage(c.Request.Context(), f, h.folder+"/"+dest, publicID)
	if err != nil {
		h.log.Error("image upload failed", zap.String("file", file.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, res)
}
