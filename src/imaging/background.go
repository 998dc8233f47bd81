package imaging

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"govector/src/log"
)

// BackgroundRemover is the optional background-removal capability. It is
// best-effort: absence at runtime is a valid state, not an error.
type BackgroundRemover interface {
	Available() bool
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// RembgRemover removes image backgrounds by shelling out to the rembg
// CLI. Availability is probed once at construction and injected, not
// re-checked per call.
type RembgRemover struct {
	bin       string
	timeout   time.Duration
	available bool
}

func NewRembgRemover(bin string, timeout time.Duration) *RembgRemover {
	if bin == "" {
		bin = "rembg"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		log.Info("rembg not available, background removal disabled", "bin", bin)
		return &RembgRemover{bin: bin, timeout: timeout}
	}
	return &RembgRemover{bin: path, timeout: timeout, available: true}
}

func (r *RembgRemover) Available() bool {
	return r.available
}

// Remove writes img to a temporary PNG, runs rembg over it, and decodes
// the result. The returned image may carry transparency; callers are
// expected to composite it.
func (r *RembgRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if !r.available {
		return nil, fmt.Errorf("rembg is not available")
	}

	dir, err := os.MkdirTemp("", "govector-rembg-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input.png")
	outPath := filepath.Join(dir, "output.png")

	in, err := os.Create(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := png.Encode(in, img); err != nil {
		in.Close()
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.bin, "i", inPath, outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("rembg failed: %v: %s", err, out)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("rembg produced no output: %w", err)
	}
	defer f.Close()

	result, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rembg output: %w", err)
	}
	return result, nil
}
