package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	httpHdlr "govector/handler/http"
	"govector/src/core/conversion"
)

type stubStorage struct {
	dir string
}

func (s *stubStorage) JobDir(jobID string) (string, error) {
	dir := filepath.Join(s.dir, jobID)
	return dir, os.MkdirAll(dir, 0o755)
}

func (s *stubStorage) WriteFile(jobID, name string, data []byte) (string, error) {
	return "/api/files/" + jobID + "/" + name, nil
}

func (s *stubStorage) CopyFileInto(jobID, sourcePath, name string) (string, error) {
	return "/api/files/" + jobID + "/" + name, nil
}

func (s *stubStorage) ReadFile(jobID, name string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func (s *stubStorage) ListFiles(jobID string) ([]string, error) { return nil, nil }

func (s *stubStorage) Remove(jobID, name string) error { return nil }

type stubPreprocessor struct{}

func (stubPreprocessor) Preprocess(ctx context.Context, inputPath, outputDir, jobID string) (*conversion.PreprocessResult, error) {
	return &conversion.PreprocessResult{
		NormalizedPath:   filepath.Join(outputDir, jobID+"_normalized.png"),
		PreprocessedPath: filepath.Join(outputDir, jobID+"_preprocessed.png"),
		OriginalFormat:   "png",
		Width:            10,
		Height:           10,
	}, nil
}

type stubVectorizer struct{}

func (stubVectorizer) Vectorize(ctx context.Context, inputPath, outputDir string) (*conversion.VectorResult, error) {
	return &conversion.VectorResult{
		SVGPath: filepath.Join(outputDir, "output.svg"),
		EPSPath: filepath.Join(outputDir, "output.eps"),
		PDFPath: filepath.Join(outputDir, "output.pdf"),
	}, nil
}

func newTestRouter(t *testing.T, maxFileSize int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch := conversion.NewOrchestrator(
		conversion.NewMemoryStore(),
		&stubStorage{dir: t.TempDir()},
		stubPreprocessor{},
		stubVectorizer{},
	)
	handler, err := httpHdlr.NewConversionHandler(orch, nil, maxFileSize, t.TempDir())
	if err != nil {
		t.Fatalf("NewConversionHandler failed: %v", err)
	}

	r := gin.New()
	r.POST("/api/upload", handler.Upload)
	r.GET("/api/status/:job_id", handler.Status)
	r.GET("/api/result/:job_id", handler.Result)
	return r
}

func uploadRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngUpload(size int) []byte {
	data := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 8)...)
	for len(data) < size {
		data = append(data, 0x00)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestUploadValidFile(t *testing.T) {
	r := newTestRouter(t, 1024)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, pngUpload(64)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatal("response has no job_id")
	}

	// Sync mode runs the pipeline on the request path, so the job is
	// already terminal when the poll arrives.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", rec.Code)
	}
	status := decodeBody(t, rec)
	if status["status"] != string(conversion.StatusCompleted) {
		t.Errorf("job status = %v, want %s", status["status"], conversion.StatusCompleted)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/result/"+jobID, nil))
	result := decodeBody(t, rec)
	files, ok := result["files"].(map[string]interface{})
	if !ok {
		t.Fatalf("result has no files map: %v", result)
	}
	for _, name := range []string{"original", "svg", "eps", "pdf"} {
		if files[name] == "" || files[name] == nil {
			t.Errorf("files missing %q", name)
		}
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	r := newTestRouter(t, 1024)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, []byte("GIF89a not a supported format")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error_code"] != conversion.CodeInvalidFileType {
		t.Errorf("error_code = %v, want %s", body["error_code"], conversion.CodeInvalidFileType)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	r := newTestRouter(t, 32)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, pngUpload(64)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error_code"] != conversion.CodeFileTooLarge {
		t.Errorf("error_code = %v, want %s", body["error_code"], conversion.CodeFileTooLarge)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	r := newTestRouter(t, 1024)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error_code"] != conversion.CodeValidation {
		t.Errorf("error_code = %v, want %s", body["error_code"], conversion.CodeValidation)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	r := newTestRouter(t, 1024)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status/no-such-job", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
