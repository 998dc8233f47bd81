package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"govector/src/core/conversion"
	"govector/src/log"
)

// DefaultMaxDimension bounds the longer side of the canonical
// intermediate image. Larger inputs are downscaled, never upscaled.
const DefaultMaxDimension = 2000

// Preprocessor turns an uploaded raster image into the canonical
// intermediate image: opaque RGB on white, metadata-free, size-bounded.
type Preprocessor struct {
	maxDimension     int
	remover          BackgroundRemover
	heif             *HeifConverter
	removeBackground bool
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithMaxDimension overrides the default downscale bound.
func WithMaxDimension(px int) PreprocessorOption {
	return func(p *Preprocessor) {
		if px > 0 {
			p.maxDimension = px
		}
	}
}

// WithBackgroundRemover wires the optional background-removal capability.
func WithBackgroundRemover(r BackgroundRemover) PreprocessorOption {
	return func(p *Preprocessor) { p.remover = r }
}

// WithHeifConverter wires the optional HEIC decode capability.
func WithHeifConverter(h *HeifConverter) PreprocessorOption {
	return func(p *Preprocessor) { p.heif = h }
}

// WithBackgroundRemovalDisabled turns the removal step off regardless of
// capability availability.
func WithBackgroundRemovalDisabled() PreprocessorOption {
	return func(p *Preprocessor) { p.removeBackground = false }
}

func NewPreprocessor(opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		maxDimension:     DefaultMaxDimension,
		removeBackground: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preprocess loads the image at inputPath, normalizes it, and writes the
// normalized and preprocessed PNG artifacts into outputDir. Background
// removal is best-effort: any failure there is logged and the unmodified
// image is used instead.
func (p *Preprocessor) Preprocess(ctx context.Context, inputPath, outputDir, jobID string) (*conversion.PreprocessResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, conversion.Processingf(err, "failed to create output directory")
	}

	img, format, err := p.load(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	result := &conversion.PreprocessResult{
		OriginalFormat: format,
		Width:          img.Bounds().Dx(),
		Height:         img.Bounds().Dy(),
	}

	// Compositing onto white both flattens transparency and strips any
	// embedded metadata: only pixel data survives into the new container.
	flat := flattenOnWhite(img)
	flat = p.resizeIfNeeded(flat)

	normalizedPath := filepath.Join(outputDir, fmt.Sprintf("%s_normalized.png", jobID))
	if err := writePNG(normalizedPath, flat); err != nil {
		return nil, conversion.Processingf(err, "failed to save normalized image")
	}
	result.NormalizedPath = normalizedPath

	if p.removeBackground && p.remover != nil && p.remover.Available() {
		removed, err := p.remover.Remove(ctx, flat)
		if err != nil {
			log.Info("background removal failed, continuing without it", "job_id", jobID, "error", err.Error())
		} else {
			flat = flattenOnWhite(removed)
			result.BackgroundRemoved = true
		}
	}

	preprocessedPath := filepath.Join(outputDir, fmt.Sprintf("%s_preprocessed.png", jobID))
	if err := writePNG(preprocessedPath, flat); err != nil {
		return nil, conversion.Processingf(err, "failed to save preprocessed image")
	}
	result.PreprocessedPath = preprocessedPath

	return result, nil
}

func (p *Preprocessor) load(ctx context.Context, inputPath string) (image.Image, string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, "", conversion.Processingf(err, "failed to read image: %s", inputPath)
	}

	ftype := DetectType(data)
	decodePath := inputPath

	if ftype == TypeHEIC {
		if p.heif == nil || !p.heif.Available() {
			return nil, "", conversion.Processingf(nil, "HEIC support is not available")
		}
		converted := inputPath + ".png"
		if err := p.heif.Convert(ctx, inputPath, converted); err != nil {
			return nil, "", conversion.Processingf(err, "failed to convert HEIC image")
		}
		defer os.Remove(converted)
		decodePath = converted
	}

	f, err := os.Open(decodePath)
	if err != nil {
		return nil, "", conversion.Processingf(err, "failed to open image: %s", decodePath)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, "", conversion.Processingf(err, "failed to open image: %s", inputPath)
	}

	format := strings.TrimPrefix(ftype.Ext(), ".")
	if ftype == TypeUnknown {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(inputPath)), ".")
	}
	return img, format, nil
}

// resizeIfNeeded downscales with CatmullRom resampling when either
// dimension exceeds the bound, preserving aspect ratio. It never upsizes.
func (p *Preprocessor) resizeIfNeeded(img *image.RGBA) *image.RGBA {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width <= p.maxDimension && height <= p.maxDimension {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = p.maxDimension
		newHeight = height * p.maxDimension / width
	} else {
		newHeight = p.maxDimension
		newWidth = width * p.maxDimension / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// flattenOnWhite composites img onto an opaque white background. Alpha
// and palette modes collapse into plain RGB.
func flattenOnWhite(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
