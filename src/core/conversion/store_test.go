package conversion

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestJob(id string) Job {
	now := time.Now().UTC()
	return Job{
		ID:        id,
		Status:    StatusQueued,
		Stage:     "Queued for processing",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Create(newTestJob("a")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(newTestJob("a")); err == nil {
		t.Fatal("Create accepted a duplicate id")
	}

	job, ok := store.Get("a")
	if !ok {
		t.Fatal("Get did not find created job")
	}
	if job.Status != StatusQueued {
		t.Errorf("status = %s, want %s", job.Status, StatusQueued)
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Get found a job that was never created")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(newTestJob("a")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Update("a", func(j *Job) {
		j.Status = StatusProcessing
		j.Files = map[string]string{"svg": "/api/files/a/output.svg"}
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	job, _ := store.Get("a")
	job.Files["svg"] = "tampered"
	job.Progress = 99

	fresh, _ := store.Get("a")
	if fresh.Files["svg"] != "/api/files/a/output.svg" {
		t.Error("mutating a returned snapshot leaked into the store")
	}
	if fresh.Progress == 99 {
		t.Error("mutating a returned snapshot leaked into the store")
	}
}

func TestMemoryStoreTerminalImmutable(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(newTestJob("a")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Update("a", func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := store.Update("a", func(j *Job) {
		j.Status = StatusProcessing
	}); err == nil {
		t.Fatal("Update mutated a terminal job")
	}

	job, _ := store.Get("a")
	if job.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", job.Status, StatusCompleted)
	}
}

func TestMemoryStoreProgressMonotonic(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(newTestJob("a")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Update("a", func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = 50
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	job, err := store.Update("a", func(j *Job) {
		j.Progress = 20
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if job.Progress != 50 {
		t.Errorf("progress regressed to %d while processing", job.Progress)
	}

	// A failed job resets progress; the clamp only applies while a job
	// stays processing.
	job, err = store.Update("a", func(j *Job) {
		j.Status = StatusFailed
		j.Progress = 0
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if job.Progress != 0 {
		t.Errorf("progress = %d after failure, want 0", job.Progress)
	}
}

func TestMemoryStoreConcurrentJobs(t *testing.T) {
	store := NewMemoryStore()

	const jobs = 16
	const updates = 50

	for i := 0; i < jobs; i++ {
		if err := store.Create(newTestJob(fmt.Sprintf("job-%d", i))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		id := fmt.Sprintf("job-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 1; p <= updates; p++ {
				if _, err := store.Update(id, func(j *Job) {
					j.Status = StatusProcessing
					j.Progress = p * 2
				}); err != nil {
					t.Errorf("Update(%s) failed: %v", id, err)
					return
				}
				store.Get(id)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < jobs; i++ {
		id := fmt.Sprintf("job-%d", i)
		job, ok := store.Get(id)
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if job.Progress != updates*2 {
			t.Errorf("job %s progress = %d, want %d", id, job.Progress, updates*2)
		}
	}
}
