package vector

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Tracer produces a vector SVG from a raster image.
type Tracer interface {
	Trace(ctx context.Context, inputPath, outputPath string) error
}

// DefaultTraceTimeout bounds a single tracing run.
const DefaultTraceTimeout = 30 * time.Second

// VTracer shells out to the vtracer CLI. The quality parameters are
// fixed per deployment: they trade output size against fidelity and are
// never varied per request.
type VTracer struct {
	bin     string
	timeout time.Duration
}

func NewVTracer(bin string, timeout time.Duration) *VTracer {
	if bin == "" {
		bin = "vtracer"
	}
	if timeout <= 0 {
		timeout = DefaultTraceTimeout
	}
	return &VTracer{bin: bin, timeout: timeout}
}

func (t *VTracer) Trace(ctx context.Context, inputPath, outputPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.bin,
		"--input", inputPath,
		"--output", outputPath,
		"--colormode", "color",
		"--hierarchical", "stacked",
		"--mode", "spline",
		"--filter_speckle", "1",
		"--color_precision", "8",
		"--corner_threshold", "120",
		"--segment_length", "4",
		"--splice_threshold", "90",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("vtracer timed out after %s: %w", t.timeout, context.DeadlineExceeded)
		}
		return fmt.Errorf("vtracer failed: %v: %s", err, out)
	}
	return nil
}
