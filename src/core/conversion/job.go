package conversion

import "time"

// Status defines the lifecycle state of a conversion job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition may occur from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Logical output names under which artifacts of a completed job are
// resolvable through the storage gateway.
const (
	FileOriginal = "original"
	FileSVG      = "svg"
	FileEPS      = "eps"
	FilePDF      = "pdf"
)

// Metadata describes a completed conversion.
type Metadata struct {
	OriginalFormat        string  `json:"original_format"`
	OriginalWidth         int     `json:"original_width"`
	OriginalHeight        int     `json:"original_height"`
	BackgroundRemoved     bool    `json:"background_removed"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// Job is one submitted image's conversion request and its tracked
// lifecycle. Jobs are mutated exclusively by the orchestrator; readers
// always receive copies.
type Job struct {
	ID                string            `json:"job_id"`
	Status            Status            `json:"status"`
	Progress          int               `json:"progress"`
	Stage             string            `json:"stage"`
	OriginalFilename  string            `json:"original_filename"`
	OriginalFormat    string            `json:"original_format,omitempty"`
	OriginalSizeBytes int64             `json:"original_size_bytes,omitempty"`
	BackgroundRemoved bool              `json:"background_removed"`
	Files             map[string]string `json:"files,omitempty"`
	Metadata          *Metadata         `json:"metadata,omitempty"`
	ErrorCode         string            `json:"error_code,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
}

// clone returns a copy that shares no mutable state with the receiver.
func (j Job) clone() Job {
	out := j
	if j.Files != nil {
		out.Files = make(map[string]string, len(j.Files))
		for k, v := range j.Files {
			out.Files[k] = v
		}
	}
	if j.Metadata != nil {
		meta := *j.Metadata
		out.Metadata = &meta
	}
	if j.CompletedAt != nil {
		at := *j.CompletedAt
		out.CompletedAt = &at
	}
	return out
}
