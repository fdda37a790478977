package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/akolanti/DermaRAG/internal/data/redisStore"
	"github.com/akolanti/DermaRAG/internal/data/store"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.NewRedisJobStore(redisStore.NewStore(client))

	ctx := logger_i.WithTraceID(context.Background(), "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			Question:     "Is this melanoma?",
			Conversation: "Patient: the mole changed colour",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.Conversation != testJob.JobPayload.Conversation {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.Conversation, testJob.JobPayload.Conversation)
		}
		if ttl := mr.TTL("job:" + jobID); ttl <= 0 {
			t.Errorf("expected a TTL on the job key, got %v", ttl)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt Job Payload", func(t *testing.T) {
		if err := mr.Set("job:corrupt", "{not json"); err != nil {
			t.Fatal(err)
		}
		if _, found := jobStore.GetJob(ctx, "corrupt"); found {
			t.Error("Expected found=false for undecodable job")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Concurrent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.NewRedisJobStore(redisStore.NewStore(client))

	ctx := context.Background()
	job := jobModel.Job{Id: "race-job"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job missing after concurrent writes")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	s := store.InitInMemoryJobStore()
	ctx := context.Background()

	_ = s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued})
	got, found := s.GetJob(ctx, "a")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("GetJob = %+v, %v", got, found)
	}

	s.DeleteJob(ctx, "a")
	if _, found := s.GetJob(ctx, "a"); found {
		t.Error("job should be deleted")
	}
}
