package vector_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"govector/src/core/conversion"
	"govector/src/vector"
)

type stubTracer struct {
	err        error
	skipOutput bool
	emptyFile  bool
}

func (t *stubTracer) Trace(ctx context.Context, inputPath, outputPath string) error {
	if t.err != nil {
		return t.err
	}
	if t.skipOutput {
		return nil
	}
	data := []byte("<svg/>")
	if t.emptyFile {
		data = nil
	}
	return os.WriteFile(outputPath, data, 0o644)
}

type stubTranscoder struct {
	err        error
	skipOutput bool
}

func (t *stubTranscoder) Transcode(ctx context.Context, svgPath, outputPath, format string) error {
	if t.err != nil {
		return t.err
	}
	if t.skipOutput {
		return nil
	}
	return os.WriteFile(outputPath, []byte(format+" bytes"), 0o644)
}

func TestVectorizeSuccess(t *testing.T) {
	dir := t.TempDir()
	v := vector.NewVectorizer(&stubTracer{}, &stubTranscoder{})

	result, err := v.Vectorize(context.Background(), filepath.Join(dir, "in.png"), dir)
	if err != nil {
		t.Fatalf("Vectorize failed: %v", err)
	}

	for _, path := range []string{result.SVGPath, result.EPSPath, result.PDFPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("output missing: %s", path)
		}
		if info.Size() == 0 {
			t.Errorf("output empty: %s", path)
		}
	}
	if filepath.Base(result.SVGPath) != "output.svg" {
		t.Errorf("svg filename = %s, want output.svg", filepath.Base(result.SVGPath))
	}
}

func TestVectorizeFailures(t *testing.T) {
	tests := []struct {
		name       string
		tracer     *stubTracer
		transcoder *stubTranscoder
		wantCode   string
	}{
		{
			name:       "tracer fails",
			tracer:     &stubTracer{err: errors.New("vtracer failed: exit status 1")},
			transcoder: &stubTranscoder{},
			wantCode:   conversion.CodeVectorization,
		},
		{
			name:       "tracer times out",
			tracer:     &stubTracer{err: context.DeadlineExceeded},
			transcoder: &stubTranscoder{},
			wantCode:   conversion.CodeProcessingTimeout,
		},
		{
			name:       "tracer reports success but writes nothing",
			tracer:     &stubTracer{skipOutput: true},
			transcoder: &stubTranscoder{},
			wantCode:   conversion.CodeVectorization,
		},
		{
			name:       "tracer writes an empty file",
			tracer:     &stubTracer{emptyFile: true},
			transcoder: &stubTranscoder{},
			wantCode:   conversion.CodeVectorization,
		},
		{
			name:       "transcoder fails",
			tracer:     &stubTracer{},
			transcoder: &stubTranscoder{err: errors.New("cairosvg failed")},
			wantCode:   conversion.CodeVectorization,
		},
		{
			name:       "transcoder times out",
			tracer:     &stubTracer{},
			transcoder: &stubTranscoder{err: context.DeadlineExceeded},
			wantCode:   conversion.CodeProcessingTimeout,
		},
		{
			name:       "transcoder produces no output",
			tracer:     &stubTracer{},
			transcoder: &stubTranscoder{skipOutput: true},
			wantCode:   conversion.CodeVectorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			v := vector.NewVectorizer(tt.tracer, tt.transcoder)

			_, err := v.Vectorize(context.Background(), filepath.Join(dir, "in.png"), dir)
			if err == nil {
				t.Fatal("Vectorize succeeded, want failure")
			}
			if code := conversion.CodeOf(err); code != tt.wantCode {
				t.Errorf("error code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}
