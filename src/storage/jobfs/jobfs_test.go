package jobfs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"govector/src/fsutil"
	"govector/src/storage/jobfs"
)

func newGateway(t *testing.T) *jobfs.Gateway {
	t.Helper()
	g, err := jobfs.New(t.TempDir(), fsutil.NewLocalFileStore())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestWriteAndReadFile(t *testing.T) {
	g := newGateway(t)

	locator, err := g.WriteFile("job1", "output.svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if locator != "/api/files/job1/output.svg" {
		t.Errorf("locator = %s", locator)
	}

	data, err := g.ReadFile("job1", "output.svg")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, []byte("<svg/>")) {
		t.Errorf("read back %q", data)
	}
}

func TestReadMissingFile(t *testing.T) {
	g := newGateway(t)

	if _, err := g.ReadFile("job1", "nope.svg"); err == nil {
		t.Fatal("ReadFile returned data for a missing file")
	}
}

func TestCopyFileInto(t *testing.T) {
	g := newGateway(t)

	src := filepath.Join(t.TempDir(), "upload.png")
	if err := os.WriteFile(src, []byte("png bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	locator, err := g.CopyFileInto("job1", src, "original.png")
	if err != nil {
		t.Fatalf("CopyFileInto failed: %v", err)
	}
	if locator != "/api/files/job1/original.png" {
		t.Errorf("locator = %s", locator)
	}

	data, err := g.ReadFile("job1", "original.png")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, []byte("png bytes")) {
		t.Errorf("read back %q", data)
	}
}

func TestCopyFileIntoSamePathIsNoop(t *testing.T) {
	g := newGateway(t)

	dir, err := g.JobDir("job1")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "job1_normalized.png")
	if err := os.WriteFile(path, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := g.CopyFileInto("job1", path, "job1_normalized.png"); err != nil {
		t.Fatalf("CopyFileInto failed on an in-place copy: %v", err)
	}

	data, err := g.ReadFile("job1", "job1_normalized.png")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("already here")) {
		t.Errorf("in-place copy corrupted the file: %q", data)
	}
}

func TestListFiles(t *testing.T) {
	g := newGateway(t)

	if names, err := g.ListFiles("nope"); err != nil || len(names) != 0 {
		t.Errorf("ListFiles on unknown job: names=%v err=%v", names, err)
	}

	g.WriteFile("job1", "output.svg", []byte("a"))
	g.WriteFile("job1", "output.pdf", []byte("b"))

	names, err := g.ListFiles("job1")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("ListFiles = %v, want 2 entries", names)
	}
}

func TestRemoveAndDeleteJob(t *testing.T) {
	g := newGateway(t)

	g.WriteFile("job1", "a.png", []byte("a"))
	g.WriteFile("job1", "b.png", []byte("b"))

	if err := g.Remove("job1", "a.png"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := g.ReadFile("job1", "a.png"); err == nil {
		t.Error("removed file still readable")
	}
	if _, err := g.ReadFile("job1", "b.png"); err != nil {
		t.Error("Remove deleted a sibling file")
	}

	if err := g.DeleteJob("job1"); err != nil {
		t.Fatalf("DeleteJob failed: %v", err)
	}
	names, _ := g.ListFiles("job1")
	if len(names) != 0 {
		t.Errorf("DeleteJob left files behind: %v", names)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	g := newGateway(t)

	g.WriteFile("old-job", "a.png", []byte("a"))
	time.Sleep(20 * time.Millisecond)

	deleted, err := g.CleanupOlderThan(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("CleanupOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	deleted, err = g.CleanupOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("CleanupOlderThan failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestStats(t *testing.T) {
	g := newGateway(t)

	g.WriteFile("job1", "a.png", []byte("aaaa"))
	g.WriteFile("job2", "b.png", []byte("bb"))

	jobs, files, size, err := g.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if jobs != 2 || files != 2 || size != 6 {
		t.Errorf("Stats = %d jobs, %d files, %d bytes; want 2, 2, 6", jobs, files, size)
	}
}
