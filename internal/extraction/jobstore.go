package extraction

import (
	"fmt"
	"sync"
	"time"
)

// JobStatus is the lifecycle state of an async receipt-upload job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// UploadJob tracks one receipt upload through acquisition, extraction, and
// refinement. Result is set only on completion.
type UploadJob struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Filename  string         `json:"filename"`
	Status    JobStatus      `json:"status"`
	Result    *SanitizedSale `json:"result,omitempty"`
	RawText   string         `json:"rawText,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// JobStore manages in-memory async upload jobs. The store never shares an
// UploadJob with its callers: Create and Update keep their own copy, and Get
// hands back a snapshot, so the goroutine driving a job and the handlers
// polling it never touch the same struct.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*UploadJob
	ttl  time.Duration
	done chan struct{}
}

// NewJobStore creates a new job store with background cleanup.
func NewJobStore(ttl time.Duration) *JobStore {
	js := &JobStore{
		jobs: make(map[string]*UploadJob),
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go js.cleanup()
	return js
}

// Create stores a new upload job.
func (js *JobStore) Create(job *UploadJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	stored := *job
	js.jobs[job.ID] = &stored
	return nil
}

// Get retrieves a snapshot of a job by ID. Mutating the returned job has no
// effect on the store.
func (js *JobStore) Get(id string) (*UploadJob, error) {
	js.mu.RLock()
	defer js.mu.RUnlock()
	job, ok := js.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	snapshot := *job
	return &snapshot, nil
}

// Update replaces the stored job with a copy of the given one.
func (js *JobStore) Update(job *UploadJob) error {
	js.mu.Lock()
	defer js.mu.Unlock()
	if _, ok := js.jobs[job.ID]; !ok {
		return fmt.Errorf("job not found: %s", job.ID)
	}
	job.UpdatedAt = time.Now()
	stored := *job
	js.jobs[job.ID] = &stored
	return nil
}

// Stop signals the background cleanup goroutine to exit.
func (js *JobStore) Stop() {
	close(js.done)
}

func (js *JobStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-js.done:
			return
		case <-ticker.C:
			js.mu.Lock()
			now := time.Now()
			for id, job := range js.jobs {
				if now.Sub(job.CreatedAt) > js.ttl {
					delete(js.jobs, id)
				}
			}
			js.mu.Unlock()
		}
	}
}

// NewUploadJob creates a pending job for a freshly received file.
func NewUploadJob(id, userID, filename string) *UploadJob {
	now := time.Now()
	return &UploadJob{
		ID:        id,
		UserID:    userID,
		Filename:  filename,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
