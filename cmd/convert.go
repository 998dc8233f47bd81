package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"govector/src/imaging"
	"govector/src/vector"
)

var convertOutputDir string

// convertCmd runs the pipeline once for a local file, without a server
// or job tracking.
var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert a single image to SVG, EPS, and PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", "", "output directory (defaults to the input file's directory)")

	settingDefaultConfig()
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("validating"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
	)

	if _, err := imaging.ValidateType(content); err != nil {
		return err
	}
	maxFileSize := viper.GetInt64("upload.max_file_size_mb") * 1024 * 1024
	if _, err := imaging.ValidateSize(content, maxFileSize); err != nil {
		return err
	}
	bar.Set(10)

	outputDir := convertOutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}

	bar.Describe("preprocessing")
	preprocessor := buildPreprocessor()
	pre, err := preprocessor.Preprocess(context.Background(), inputPath, outputDir, "convert")
	if err != nil {
		return err
	}
	bar.Set(40)

	bar.Describe("vectorizing")
	vectorizer := vector.NewVectorizer(
		vector.NewVTracer(viper.GetString("tools.vtracer"), viper.GetDuration("pipeline.trace_timeout")),
		vector.NewCairoSVG(viper.GetString("tools.cairosvg"), viper.GetDuration("pipeline.transcode_timeout")),
	)
	result, err := vectorizer.Vectorize(context.Background(), pre.PreprocessedPath, outputDir)
	if err != nil {
		return err
	}
	bar.Set(100)
	fmt.Println()

	fmt.Printf("svg: %s\neps: %s\npdf: %s\n", result.SVGPath, result.EPSPath, result.PDFPath)
	return nil
}
