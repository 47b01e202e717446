package extraction

import (
	"sync"
	"testing"
	"time"
)

func TestJobStoreLifecycle(t *testing.T) {
	js := NewJobStore(time.Hour)
	defer js.Stop()

	job := NewUploadJob("job-1", "user-1", "receipt.pdf")
	if job.Status != JobPending {
		t.Fatalf("new job status = %q, want pending", job.Status)
	}
	if err := js.Create(job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := js.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "receipt.pdf" || got.UserID != "user-1" {
		t.Errorf("got %+v", got)
	}

	got.Status = JobCompleted
	if err := js.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := js.Get("job-1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if updated.Status != JobCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
}

// A job is driven forward by a pipeline goroutine while HTTP handlers poll
// it. Get must hand out snapshots so the two never share a struct; this test
// fails under the race detector if they do.
func TestJobStoreConcurrentPolling(t *testing.T) {
	js := NewJobStore(time.Hour)
	defer js.Stop()

	if err := js.Create(NewUploadJob("job-1", "user-1", "receipt.pdf")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		job, err := js.Get("job-1")
		if err != nil {
			t.Errorf("Get: %v", err)
			return
		}
		job.Status = JobProcessing
		if err := js.Update(job); err != nil {
			t.Errorf("Update: %v", err)
			return
		}
		for i := 0; i < 100; i++ {
			job.Error = "transient failure"
			job.Status = JobFailed
			job.Error = ""
			job.Status = JobCompleted
			if err := js.Update(job); err != nil {
				t.Errorf("Update: %v", err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			job, err := js.Get("job-1")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			_ = job.Status
			_ = job.Error
		}
	}()

	wg.Wait()

	final, err := js.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != JobCompleted || final.Error != "" {
		t.Errorf("final state = %q / %q, want completed with no error", final.Status, final.Error)
	}
}

// Mutating a job returned by Get must not leak into the store.
func TestJobStoreGetReturnsSnapshot(t *testing.T) {
	js := NewJobStore(time.Hour)
	defer js.Stop()

	if err := js.Create(NewUploadJob("job-1", "user-1", "receipt.pdf")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := js.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first.Status = JobFailed
	first.Error = "scribbled by caller"

	second, err := js.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if second.Status != JobPending || second.Error != "" {
		t.Errorf("stored job changed to %q / %q after caller mutation", second.Status, second.Error)
	}
}

func TestJobStoreErrors(t *testing.T) {
	js := NewJobStore(time.Hour)
	defer js.Stop()

	if err := js.Create(&UploadJob{}); err == nil {
		t.Error("Create accepted a job without an ID")
	}
	if _, err := js.Get("missing"); err == nil {
		t.Error("Get returned a missing job")
	}
	if err := js.Update(&UploadJob{ID: "missing"}); err == nil {
		t.Error("Update accepted a missing job")
	}
}
