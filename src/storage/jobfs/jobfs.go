// Package jobfs is the local-disk storage gateway. Every job gets its
// own namespace directory under <base>/jobs/<job_id>; artifacts are
// addressed by job id and logical filename and exposed to clients as
// /api/files locators.
package jobfs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"govector/src/fsutil"
	"govector/src/log"
)

type Gateway struct {
	basePath string
	jobsPath string
	fs       fsutil.FileStore
}

func New(basePath string, fs fsutil.FileStore) (*Gateway, error) {
	if basePath == "" {
		basePath = "storage"
	}
	jobsPath := filepath.Join(basePath, "jobs")
	if err := fs.MakeDirectory(jobsPath); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Gateway{
		basePath: basePath,
		jobsPath: jobsPath,
		fs:       fs,
	}, nil
}

// JobDir resolves the namespace directory for a job, creating it if
// absent.
func (g *Gateway) JobDir(jobID string) (string, error) {
	dir := filepath.Join(g.jobsPath, jobID)
	if err := g.fs.MakeDirectory(dir); err != nil {
		return "", fmt.Errorf("failed to create job directory: %w", err)
	}
	return dir, nil
}

func (g *Gateway) WriteFile(jobID, name string, data []byte) (string, error) {
	dir, err := g.JobDir(jobID)
	if err != nil {
		return "", err
	}
	if err := g.fs.WriteFile(filepath.Join(dir, name), data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return locator(jobID, name), nil
}

// CopyFileInto places an existing file into the job namespace. Copying a
// file that already lives at its destination is a no-op, which lets the
// orchestrator treat staging-dir artifacts and external files uniformly.
func (g *Gateway) CopyFileInto(jobID, sourcePath, name string) (string, error) {
	dir, err := g.JobDir(jobID)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(dir, name)
	absSrc, _ := filepath.Abs(sourcePath)
	absDest, _ := filepath.Abs(dest)
	if absSrc == absDest {
		return locator(jobID, name), nil
	}

	if err := g.fs.CopyFile(sourcePath, dest); err != nil {
		return "", fmt.Errorf("failed to copy %s into job %s: %w", name, jobID, err)
	}
	return locator(jobID, name), nil
}

func (g *Gateway) ReadFile(jobID, name string) ([]byte, error) {
	data, err := g.fs.ReadFile(filepath.Join(g.jobsPath, jobID, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (g *Gateway) ListFiles(jobID string) ([]string, error) {
	names, err := g.fs.ListDir(filepath.Join(g.jobsPath, jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}
	return names, nil
}

func (g *Gateway) Remove(jobID, name string) error {
	if err := g.fs.Remove(filepath.Join(g.jobsPath, jobID, name)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// DeleteJob removes a job's whole namespace.
func (g *Gateway) DeleteJob(jobID string) error {
	return g.fs.RemoveAll(filepath.Join(g.jobsPath, jobID))
}

// CleanupOlderThan deletes job namespaces whose directory mtime is older
// than maxAge and returns how many were removed.
func (g *Gateway) CleanupOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(g.jobsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := g.fs.RemoveAll(filepath.Join(g.jobsPath, entry.Name())); err != nil {
				log.Error(err, "failed to delete expired job", "job_id", entry.Name())
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}

// Stats reports aggregate job count, file count, and total size.
func (g *Gateway) Stats() (jobs int, files int, bytes int64, err error) {
	entries, err := os.ReadDir(g.jobsPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		jobs++
		count, size, err := g.fs.GetFileStats(filepath.Join(g.jobsPath, entry.Name()))
		if err != nil {
			return 0, 0, 0, err
		}
		files += count
		bytes += size
	}
	return jobs, files, bytes, nil
}

func locator(jobID, name string) string {
	return fmt.Sprintf("/api/files/%s/%s", jobID, name)
}
