package vector

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Transcoder converts an already-vector SVG into another vector format.
type Transcoder interface {
	Transcode(ctx context.Context, svgPath, outputPath, format string) error
}

// DefaultTranscodeTimeout bounds a single transcode run.
const DefaultTranscodeTimeout = 30 * time.Second

// CairoSVG shells out to the cairosvg CLI for SVG to EPS/PDF conversion.
type CairoSVG struct {
	bin     string
	timeout time.Duration
}

func NewCairoSVG(bin string, timeout time.Duration) *CairoSVG {
	if bin == "" {
		bin = "cairosvg"
	}
	if timeout <= 0 {
		timeout = DefaultTranscodeTimeout
	}
	return &CairoSVG{bin: bin, timeout: timeout}
}

func (t *CairoSVG) Transcode(ctx context.Context, svgPath, outputPath, format string) error {
	// cairosvg names EPS output "ps".
	outputFormat := format
	if outputFormat == "eps" {
		outputFormat = "ps"
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.bin, svgPath, "-f", outputFormat, "-o", outputPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("cairosvg timed out after %s: %w", t.timeout, context.DeadlineExceeded)
		}
		return fmt.Errorf("cairosvg failed: %v: %s", err, out)
	}
	return nil
}
