package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/job"
	"github.com/akolanti/DermaRAG/internal/rag"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnProcessJob   func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
	return rag.AskResult{}, nil
}

func (m *MockRagService) ProcessJob(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcessJob != nil {
		return m.OnProcessJob(ctx, j)
	}
	j.JobPayload.Answer = "done"
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return j
}

func (m *MockRagService) Wait() {}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerPool_Flow(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	jobStore := &MockJobStore{}
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
	})
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 2 })
	})

	t.Run("Worker completes an ask job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeAsk}
		waitFor(t, func() bool {
			j, ok := jobStore.GetJob(context.Background(), "test-1")
			return ok && j.Status == jobModel.JobStatusComplete
		})
		j, _ := jobStore.GetJob(context.Background(), "test-1")
		if j.JobPayload.Answer != "done" || j.EndTime.IsZero() || j.CurrentStep != jobModel.Complete {
			t.Errorf("unexpected final job %+v", j)
		}
	})

	t.Run("Failed job keeps error status", func(t *testing.T) {
		mockRag.OnProcessJob = func(ctx context.Context, j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: 500, Message: "llm down", Retry: true}
			return j
		}
		jobSvc.JobChannel <- jobModel.Job{Id: "test-2", JobType: jobModel.JobTypeAsk}
		waitFor(t, func() bool {
			j, ok := jobStore.GetJob(context.Background(), "test-2")
			return ok && j.EndTime.After(time.Time{})
		})
		j, _ := jobStore.GetJob(context.Background(), "test-2")
		if j.Status != jobModel.JobStatusError || j.Error.Message != "llm down" {
			t.Errorf("unexpected final job %+v", j)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if n := atomic.LoadInt64(&currentWorkerCount); n != 0 {
			t.Errorf("worker count after stop = %d", n)
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	prev := idleTimeout
	idleTimeout = 20 * time.Millisecond
	t.Cleanup(func() { idleTimeout = prev })

	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job),
		DispatcherChannel: make(chan bool),
		JobStore:          &MockJobStore{},
	})
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	createWorker()
	createWorker()

	// idle workers retire until only the minimum is left
	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 1 })
	time.Sleep(3 * idleTimeout)
	if n := atomic.LoadInt64(&currentWorkerCount); n != 1 {
		t.Errorf("pool shrank below its minimum: %d", n)
	}

	close(stopChan)
	wg.Wait()
}
