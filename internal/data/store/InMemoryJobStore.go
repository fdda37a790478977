package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore stands in for Redis when it is offline. Jobs expire after
// the same TTL Redis applies.
type InMemoryJobStore struct {
	jobMutex sync.Mutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	now      func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMap: make(map[string]storedJob),
		ttl:    config.RedisJobStoreTTL,
		now:    time.Now,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	now := store.now()
	store.evictExpired(now)
	store.jobMap[jobToStore.Id] = storedJob{job: jobToStore, expiresAt: now.Add(store.ttl)}
	inMemLogger.FromContext(ctx).Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	entry, found := store.jobMap[jobId]
	if !found {
		return jobModel.Job{}, false
	}
	if !store.now().Before(entry.expiresAt) {
		delete(store.jobMap, jobId)
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

// caller holds jobMutex
func (store *InMemoryJobStore) evictExpired(now time.Time) {
	for id, entry := range store.jobMap {
		if !now.Before(entry.expiresAt) {
			delete(store.jobMap, id)
		}
	}
}
