package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"govector/src/core/conversion"
	"govector/src/log"
	"govector/src/mailer"
)

var formatFilenames = map[string]string{
	"svg": "output.svg",
	"eps": "output.eps",
	"pdf": "output.pdf",
}

// EmailHandler mails a finished artifact to a recipient.
type EmailHandler struct {
	orchestrator *conversion.Orchestrator
	storage      conversion.Storage
	mailer       *mailer.Mailer
}

func NewEmailHandler(orch *conversion.Orchestrator, storage conversion.Storage, m *mailer.Mailer) *EmailHandler {
	return &EmailHandler{
		orchestrator: orch,
		storage:      storage,
		mailer:       m,
	}
}

type EmailRequest struct {
	JobID          string `json:"job_id" binding:"required"`
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
	FileFormat     string `json:"file_format" binding:"required"`
}

func (h *EmailHandler) Send(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !h.mailer.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email service not configured"})
		return
	}

	job, err := h.orchestrator.GetStatus(req.JobID)
	if err != nil {
		if conversion.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read job status"})
		return
	}
	if job.Status != conversion.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not completed yet"})
		return
	}

	format := strings.ToLower(req.FileFormat)
	filename, ok := formatFilenames[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid format: %s", req.FileFormat)})
		return
	}

	data, err := h.storage.ReadFile(req.JobID, filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("File not found: %s", filename)})
		return
	}

	if err := h.mailer.SendArtifact(c.Request.Context(), req.RecipientEmail, format, data); err != nil {
		log.Error(err, "failed to send email", "job_id", req.JobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("File sent to %s", req.RecipientEmail),
	})
}
