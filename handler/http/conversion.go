package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"govector/src/core/conversion"
	"govector/src/imaging"
	"govector/src/infrastructure/queue"
	"govector/src/log"
)

// ConversionHandler serves the upload/status/result endpoints. Uploads
// are validated before a job is created; with a queue configured the
// pipeline runs asynchronously, otherwise it runs on the request path.
type ConversionHandler struct {
	orchestrator *conversion.Orchestrator
	queue        *queue.Queue
	maxFileSize  int64
	uploadDir    string
	node         *snowflake.Node
}

func NewConversionHandler(orch *conversion.Orchestrator, q *queue.Queue, maxFileSize int64, uploadDir string) (*ConversionHandler, error) {
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "govector-uploads")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Snowflake ids keep concurrent uploads from colliding in the shared
	// upload directory.
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &ConversionHandler{
		orchestrator: orch,
		queue:        q,
		maxFileSize:  maxFileSize,
		uploadDir:    uploadDir,
		node:         node,
	}, nil
}

func (h *ConversionHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code":    conversion.CodeValidation,
			"error_message": "no file uploaded",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	// Content sniffing and size bounds run before any job exists; a bad
	// upload never gets a job id.
	ftype, err := imaging.ValidateType(content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code":    conversion.CodeOf(err),
			"error_message": err.Error(),
		})
		return
	}
	size, err := imaging.ValidateSize(content, h.maxFileSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code":    conversion.CodeOf(err),
			"error_message": err.Error(),
		})
		return
	}

	originalFilename := header.Filename
	if originalFilename == "" {
		originalFilename = "upload"
	}
	jobID, err := h.orchestrator.Create(originalFilename, size)
	if err != nil {
		log.Error(err, "failed to create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	uploadPath := filepath.Join(h.uploadDir, fmt.Sprintf("upload_%s%s", h.node.Generate(), ftype.Ext()))
	if err := os.WriteFile(uploadPath, content, 0o644); err != nil {
		log.Error(err, "failed to persist upload", "job_id", jobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
		return
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(jobID, uploadPath); err != nil {
			log.Error(err, "failed to enqueue job", "job_id", jobID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
			return
		}
	} else {
		// Synchronous mode blocks the request until the job is terminal.
		_ = h.orchestrator.Run(c.Request.Context(), jobID, uploadPath)
	}

	job, err := h.orchestrator.GetStatus(jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read job status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":     jobID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}

func (h *ConversionHandler) Status(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.orchestrator.GetStatus(jobID)
	if err != nil {
		if conversion.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read job status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"progress":   job.Progress,
		"stage":      job.Stage,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	})
}

func (h *ConversionHandler) Result(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.orchestrator.GetStatus(jobID)
	if err != nil {
		if conversion.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read job status"})
		return
	}

	switch job.Status {
	case conversion.StatusFailed:
		c.JSON(http.StatusOK, gin.H{
			"job_id":        job.ID,
			"status":        job.Status,
			"error_code":    job.ErrorCode,
			"error_message": job.ErrorMessage,
		})
	case conversion.StatusCompleted:
		c.JSON(http.StatusOK, gin.H{
			"job_id":       job.ID,
			"status":       job.Status,
			"files":        job.Files,
			"metadata":     job.Metadata,
			"created_at":   job.CreatedAt,
			"completed_at": job.CompletedAt,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"job_id":  job.ID,
			"status":  job.Status,
			"message": "Job is still processing. Check /api/status/{job_id} for progress.",
		})
	}
}
