package store

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
)

func TestInMemoryJobStore_Expiry(t *testing.T) {
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := InitInMemoryJobStore()
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	_ = s.SaveJob(ctx, jobModel.Job{Id: "old"})
	clock = clock.Add(config.RedisJobStoreTTL - time.Second)
	if _, found := s.GetJob(ctx, "old"); !found {
		t.Fatal("job expired early")
	}

	clock = clock.Add(time.Second)
	if _, found := s.GetJob(ctx, "old"); found {
		t.Error("job should expire after the ttl")
	}

	// saving sweeps other expired entries
	_ = s.SaveJob(ctx, jobModel.Job{Id: "stale"})
	clock = clock.Add(config.RedisJobStoreTTL)
	_ = s.SaveJob(ctx, jobModel.Job{Id: "fresh"})
	if len(s.jobMap) != 1 {
		t.Errorf("expected only the fresh job, have %d", len(s.jobMap))
	}
}
