package conversion

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"govector/src/log"
)

// PreprocessResult reports what the preprocessing stage produced.
type PreprocessResult struct {
	NormalizedPath    string
	PreprocessedPath  string
	OriginalFormat    string
	Width             int
	Height            int
	BackgroundRemoved bool
}

// Preprocessor normalizes an uploaded raster image into the canonical
// intermediate image used for tracing.
type Preprocessor interface {
	Preprocess(ctx context.Context, inputPath, outputDir, jobID string) (*PreprocessResult, error)
}

// VectorResult holds the artifact paths produced by the vectorization
// stage.
type VectorResult struct {
	SVGPath string
	EPSPath string
	PDFPath string
}

// Vectorizer traces the canonical intermediate image into SVG and
// transcodes it into the secondary vector formats.
type Vectorizer interface {
	Vectorize(ctx context.Context, inputPath, outputDir string) (*VectorResult, error)
}

// Storage is the narrow gateway through which the orchestrator persists
// job artifacts. Artifacts are addressed purely by job id and logical
// filename; the medium behind the gateway is opaque to the core.
type Storage interface {
	JobDir(jobID string) (string, error)
	WriteFile(jobID, name string, data []byte) (string, error)
	CopyFileInto(jobID, sourcePath, name string) (string, error)
	ReadFile(jobID, name string) ([]byte, error)
	ListFiles(jobID string) ([]string, error)
	Remove(jobID, name string) error
}

// Orchestrator drives jobs through the preprocess and vectorize stages,
// updating status and progress as it goes. Every failure is converted
// into a terminal failed job; no error escapes a run with the job still
// marked processing.
type Orchestrator struct {
	store             JobStore
	storage           Storage
	preprocessor      Preprocessor
	vectorizer        Vectorizer
	keepIntermediates bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIntermediateCleanup makes successful runs delete the normalized and
// preprocessed artifacts, keeping only the original and the outputs.
func WithIntermediateCleanup() Option {
	return func(o *Orchestrator) { o.keepIntermediates = false }
}

func NewOrchestrator(store JobStore, storage Storage, pre Preprocessor, vec Vectorizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:             store,
		storage:           storage,
		preprocessor:      pre,
		vectorizer:        vec,
		keepIntermediates: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Create allocates a fresh job in the queued state and returns its id.
func (o *Orchestrator) Create(originalFilename string, sizeBytes int64) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	job := Job{
		ID:                id,
		Status:            StatusQueued,
		Progress:          0,
		Stage:             "Queued for processing",
		OriginalFilename:  originalFilename,
		OriginalSizeBytes: sizeBytes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := o.store.Create(job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// GetStatus returns a read-only snapshot of the job. Unknown ids yield a
// JOB_NOT_FOUND error, never an empty job.
func (o *Orchestrator) GetStatus(jobID string) (Job, error) {
	job, ok := o.store.Get(jobID)
	if !ok {
		return Job{}, &Error{Code: CodeJobNotFound, Message: fmt.Sprintf("job not found: %s", jobID)}
	}
	return job, nil
}

// Run executes the full pipeline for an already-created job, exactly
// once. It blocks until the job reaches a terminal state and returns the
// classified error on failure. Callers must not invoke Run twice for the
// same id.
func (o *Orchestrator) Run(ctx context.Context, jobID, inputPath string) error {
	start := time.Now()

	err := o.run(ctx, jobID, inputPath, start)
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == CodeUnexpected {
		log.Error(err, "unexpected error while processing job", "job_id", jobID)
	}
	message := err.Error()
	if _, updateErr := o.store.Update(jobID, func(j *Job) {
		j.Status = StatusFailed
		j.Progress = 0
		j.Stage = "Failed"
		j.ErrorCode = code
		j.ErrorMessage = message
		j.Files = nil
		j.Metadata = nil
	}); updateErr != nil {
		log.Error(updateErr, "failed to mark job as failed", "job_id", jobID)
	}
	return err
}

func (o *Orchestrator) run(ctx context.Context, jobID, inputPath string, start time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), "panic while processing job",
				"job_id", jobID, "stack", string(debug.Stack()))
			err = &Error{Code: CodeUnexpected, Message: fmt.Sprintf("an unexpected error occurred: %v", r)}
		}
	}()

	o.update(jobID, 5, "Starting...")

	if _, statErr := os.Stat(inputPath); statErr != nil {
		return Processingf(statErr, "input file not found: %s", inputPath)
	}

	jobDir, err := o.storage.JobDir(jobID)
	if err != nil {
		return Storagef(err, "failed to resolve job directory")
	}

	// Persist the original upload under a canonical name derived from its
	// extension.
	o.update(jobID, 10, "Saving original...")
	originalName := "original" + strings.ToLower(filepath.Ext(inputPath))
	originalLocator, err := o.storage.CopyFileInto(jobID, inputPath, originalName)
	if err != nil {
		return Storagef(err, "failed to save original file")
	}

	o.update(jobID, 20, "Removing background...")
	pre, err := o.preprocessor.Preprocess(ctx, inputPath, jobDir, jobID)
	if err != nil {
		return err
	}
	if _, err := o.store.Update(jobID, func(j *Job) {
		j.Progress = 40
		j.Stage = "Image preprocessed"
		j.OriginalFormat = pre.OriginalFormat
		j.BackgroundRemoved = pre.BackgroundRemoved
	}); err != nil {
		return Storagef(err, "failed to record preprocess result")
	}

	// Intermediates live in the job namespace too so that a swapped
	// storage backend still holds the full artifact set.
	if _, err := o.storage.CopyFileInto(jobID, pre.NormalizedPath, filepath.Base(pre.NormalizedPath)); err != nil {
		return Storagef(err, "failed to save normalized image")
	}
	if _, err := o.storage.CopyFileInto(jobID, pre.PreprocessedPath, filepath.Base(pre.PreprocessedPath)); err != nil {
		return Storagef(err, "failed to save preprocessed image")
	}

	o.update(jobID, 50, "Converting to vectors...")
	vec, err := o.vectorizer.Vectorize(ctx, pre.PreprocessedPath, jobDir)
	if err != nil {
		return err
	}
	o.update(jobID, 80, "Vectorization complete")

	o.update(jobID, 90, "Finalizing...")
	files := map[string]string{FileOriginal: originalLocator}
	for name, path := range map[string]string{
		FileSVG: vec.SVGPath,
		FileEPS: vec.EPSPath,
		FilePDF: vec.PDFPath,
	} {
		locator, err := o.storage.CopyFileInto(jobID, path, filepath.Base(path))
		if err != nil {
			return Storagef(err, "failed to save %s output", name)
		}
		files[name] = locator
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100
	meta := &Metadata{
		OriginalFormat:        pre.OriginalFormat,
		OriginalWidth:         pre.Width,
		OriginalHeight:        pre.Height,
		BackgroundRemoved:     pre.BackgroundRemoved,
		ProcessingTimeSeconds: elapsed,
	}

	now := time.Now().UTC()
	if _, err := o.store.Update(jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Stage = "Complete"
		j.Files = files
		j.Metadata = meta
		j.CompletedAt = &now
	}); err != nil {
		return Storagef(err, "failed to complete job")
	}

	if !o.keepIntermediates {
		o.cleanupIntermediates(jobID, pre)
	}

	log.Info("job completed", "job_id", jobID, "processing_time_seconds", elapsed)
	return nil
}

func (o *Orchestrator) update(jobID string, progress int, stage string) {
	if _, err := o.store.Update(jobID, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = progress
		j.Stage = stage
	}); err != nil {
		log.Error(err, "failed to update job status", "job_id", jobID, "stage", stage)
	}
}

func (o *Orchestrator) cleanupIntermediates(jobID string, pre *PreprocessResult) {
	for _, path := range []string{pre.NormalizedPath, pre.PreprocessedPath} {
		if err := o.storage.Remove(jobID, filepath.Base(path)); err != nil {
			log.Error(err, "failed to remove intermediate artifact", "job_id", jobID, "name", filepath.Base(path))
		}
	}
}
