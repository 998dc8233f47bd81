package conversion

import (
	"fmt"
	"sync"
	"time"
)

// JobStore keeps job state for the lifetime of the process. Implementations
// must be safe for concurrent reads and updates of independent job ids.
type JobStore interface {
	Create(job Job) error
	Get(id string) (Job, bool)
	Update(id string, mutate func(*Job)) (Job, error)
}

// MemoryStore is the in-process JobStore used by the service. It is a
// mutex-guarded map; readers always receive copies so an in-flight run
// can never expose partially assembled state.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

func (s *MemoryStore) Create(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job already exists: %s", job.ID)
	}
	s.jobs[job.ID] = job.clone()
	return nil
}

func (s *MemoryStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.clone(), true
}

// Update applies mutate to the stored job and stamps updated_at. Terminal
// jobs are immutable: attempting to mutate one is an error and leaves the
// stored state untouched. Progress may never decrease while a job stays
// processing.
func (s *MemoryStore) Update(id string, mutate func(*Job)) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("job not found: %s", id)
	}
	if current.Status.Terminal() {
		return current.clone(), fmt.Errorf("job %s is already %s", id, current.Status)
	}

	next := current.clone()
	mutate(&next)
	if next.Status == StatusProcessing && current.Status == StatusProcessing && next.Progress < current.Progress {
		next.Progress = current.Progress
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()

	s.jobs[id] = next
	return next.clone(), nil
}
