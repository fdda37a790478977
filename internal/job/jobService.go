package job

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/metrics"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

var ErrQueueUnavailable = errors.New("job queue is unavailable")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Submit stores the queued job and hands it to the worker pool. The send
// blocks while the buffer is full so callers feel the back pressure; it gives
// up when ctx ends.
func (s *Service) Submit(ctx context.Context, newJob jobModel.Job) error {
	log := s.logger.FromContext(ctx).With("jobId", newJob.Id, "jobType", newJob.JobType)

	if err := s.JobStore.SaveJob(ctx, newJob); err != nil {
		log.Warn("Could not persist queued job", "err", err)
	}

	metrics.IncrementJobsInQueue()
	select {
	case s.JobChannel <- newJob:
	case <-ctx.Done():
		metrics.DecrementJobsInQueue()
		log.Warn("Gave up queueing job", "err", ctx.Err())
		return errors.Join(ErrQueueUnavailable, ctx.Err())
	}
	log.Info("Queued job")

	//a new worker every RequestsPerNewWorkerCount jobs, and one per ingestion
	//since ingest jobs hold a worker through slow batch embedding.
	//idle workers retire on their own so the pool shrinks back.
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || newJob.JobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
			log.Debug("Requested new worker", "requestCount", accurateCount)
		default:
			log.Debug("Dispatcher busy, skipping worker request")
		}
	}
	return nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}

func (s *Service) SaveJob(ctx context.Context, j jobModel.Job) {
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		s.logger.FromContext(ctx).Error("Failed to save job state", "jobId", j.Id, "err", err)
	}
}
