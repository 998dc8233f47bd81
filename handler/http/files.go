package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"govector/src/core/conversion"
)

var downloadContentTypes = map[string]string{
	".svg":  "image/svg+xml",
	".eps":  "application/postscript",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".heic": "image/heic",
}

// FileHandler serves stored job artifacts for download.
type FileHandler struct {
	storage conversion.Storage
}

func NewFileHandler(storage conversion.Storage) *FileHandler {
	return &FileHandler{storage: storage}
}

func (h *FileHandler) Download(c *gin.Context) {
	jobID := c.Param("job_id")
	filename := c.Param("filename")

	// Artifacts are addressed by logical name only; path traversal is not
	// a valid logical name.
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	data, err := h.storage.ReadFile(jobID, filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("file not found: %s", filename)})
		return
	}

	contentType := downloadContentTypes[strings.ToLower(filepath.Ext(filename))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
