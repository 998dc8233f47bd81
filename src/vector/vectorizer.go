package vector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"govector/src/core/conversion"
)

// Canonical output filenames inside a job's storage namespace.
const (
	SVGFilename = "output.svg"
	EPSFilename = "output.eps"
	PDFFilename = "output.pdf"
)

// Vectorizer runs the tracing stage and then transcodes the resulting
// SVG into EPS and PDF. The whole call is atomic from the job's point of
// view: any failure fails the stage, and there are no retries here.
type Vectorizer struct {
	tracer     Tracer
	transcoder Transcoder
}

func NewVectorizer(tracer Tracer, transcoder Transcoder) *Vectorizer {
	return &Vectorizer{tracer: tracer, transcoder: transcoder}
}

func (v *Vectorizer) Vectorize(ctx context.Context, inputPath, outputDir string) (*conversion.VectorResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, conversion.Vectorizationf(err, "failed to create output directory")
	}

	svgPath := filepath.Join(outputDir, SVGFilename)
	if err := v.tracer.Trace(ctx, inputPath, svgPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, conversion.Timeoutf(err, "tracing timed out")
		}
		return nil, conversion.Vectorizationf(err, "tracing failed")
	}
	if err := requireOutput(svgPath); err != nil {
		return nil, conversion.Vectorizationf(err, "tracing produced no output")
	}

	epsPath := filepath.Join(outputDir, EPSFilename)
	pdfPath := filepath.Join(outputDir, PDFFilename)
	for _, target := range []struct {
		path   string
		format string
	}{
		{epsPath, "eps"},
		{pdfPath, "pdf"},
	} {
		if err := v.transcoder.Transcode(ctx, svgPath, target.path, target.format); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, conversion.Timeoutf(err, "%s transcode timed out", target.format)
			}
			return nil, conversion.Vectorizationf(err, "failed to convert SVG to %s", target.format)
		}
		if err := requireOutput(target.path); err != nil {
			return nil, conversion.Vectorizationf(err, "%s transcode produced no output", target.format)
		}
	}

	return &conversion.VectorResult{
		SVGPath: svgPath,
		EPSPath: epsPath,
		PDFPath: pdfPath,
	}, nil
}

// requireOutput distinguishes "tool reported success" from "tool actually
// produced a usable file".
func requireOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output file missing: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty: %s", path)
	}
	return nil
}
