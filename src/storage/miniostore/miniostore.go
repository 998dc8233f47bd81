// Package miniostore is the object-storage gateway backend. Artifacts
// are stored as jobs/<job_id>/<name> objects in a single bucket; a local
// staging directory gives the pipeline stages a place to write before
// upload.
package miniostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Gateway struct {
	client  *minio.Client
	bucket  string
	staging string
}

func New(endpoint, accessKeyID, secretAccessKey, bucket string, useSSL bool) (*Gateway, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	g := &Gateway{
		client:  client,
		bucket:  bucket,
		staging: filepath.Join(os.TempDir(), "govector-staging"),
	}
	if err := g.ensureBucketExists(context.Background()); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.staging, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %v", err)
	}
	return g, nil
}

func (g *Gateway) ensureBucketExists(ctx context.Context) error {
	exists, err := g.client.BucketExists(ctx, g.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}
	if !exists {
		if err := g.client.MakeBucket(ctx, g.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
	}
	return nil
}

// JobDir resolves the local staging directory for a job. Stages write
// their artifacts here before the orchestrator copies them into the
// bucket.
func (g *Gateway) JobDir(jobID string) (string, error) {
	dir := filepath.Join(g.staging, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %v", err)
	}
	return dir, nil
}

func (g *Gateway) WriteFile(jobID, name string, data []byte) (string, error) {
	reader := bytes.NewReader(data)
	_, err := g.client.PutObject(context.Background(), g.bucket, objectName(jobID, name), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %v", err)
	}
	return locator(jobID, name), nil
}

func (g *Gateway) CopyFileInto(jobID, sourcePath, name string) (string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %v", err)
	}
	return g.WriteFile(jobID, name, data)
}

func (g *Gateway) ReadFile(jobID, name string) ([]byte, error) {
	obj, err := g.client.GetObject(context.Background(), g.bucket, objectName(jobID, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %v", err)
	}
	return data, nil
}

func (g *Gateway) ListFiles(jobID string) ([]string, error) {
	prefix := fmt.Sprintf("jobs/%s/", jobID)
	var names []string
	for obj := range g.client.ListObjects(context.Background(), g.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", obj.Err)
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	return names, nil
}

func (g *Gateway) Remove(jobID, name string) error {
	if err := g.client.RemoveObject(context.Background(), g.bucket, objectName(jobID, name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

func objectName(jobID, name string) string {
	return fmt.Sprintf("jobs/%s/%s", jobID, name)
}

func locator(jobID, name string) string {
	return fmt.Sprintf("/api/files/%s/%s", jobID, name)
}
