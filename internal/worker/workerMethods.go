package worker

import (
	"context"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	jobmodel "github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/metrics"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

const saveStateTimeout = 5 * time.Second

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	ctxTrace := logger_i.WithTraceID(context.Background(), job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()
	log := logger.FromContext(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job.CurrentStep = jobmodel.IngestProcessing
		job = _ragService.IngestDocument(ctx, job)
	default:
		job = _ragService.ProcessJob(ctx, job)
	}

	job.EndTime = time.Now()
	if !job.Failed() {
		job.Status = jobmodel.JobStatusComplete
		job.CurrentStep = jobmodel.Complete
	}
	saveJobState(ctx, job)
	log.Info("Finished job", "status", job.Status, "elapsed", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason)
}

// saveJobState writes even when the job context has expired so a timed out
// job still reports its final state.
func saveJobState(ctx context.Context, job jobmodel.Job) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveStateTimeout)
	defer cancel()
	_jobService.SaveJob(saveCtx, job)
}
