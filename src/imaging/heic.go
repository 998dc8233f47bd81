package imaging

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"govector/src/log"
)

// HeifConverter converts HEIC/HEIF uploads into PNG via an external tool
// so the rest of the pipeline only ever sees formats the standard decoders
// handle. Like background removal it is an optional capability; without
// it HEIC uploads fail preprocessing.
type HeifConverter struct {
	bin       string
	timeout   time.Duration
	available bool
}

func NewHeifConverter(bin string, timeout time.Duration) *HeifConverter {
	if bin == "" {
		bin = "heif-convert"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		log.Info("heif-convert not available, HEIC uploads will be rejected", "bin", bin)
		return &HeifConverter{bin: bin, timeout: timeout}
	}
	return &HeifConverter{bin: path, timeout: timeout, available: true}
}

func (h *HeifConverter) Available() bool {
	return h.available
}

// Convert writes a PNG rendition of the HEIC file at inputPath to
// outputPath.
func (h *HeifConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if !h.available {
		return fmt.Errorf("heif-convert is not available")
	}

	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, h.bin, inputPath, outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("heif-convert failed: %v: %s", err, out)
	}
	return nil
}
