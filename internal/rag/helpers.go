package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/metrics"
	"github.com/akolanti/DermaRAG/internal/sanitizer"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/google/uuid"
)

const (
	StageEmbedding    = "EMBEDDING_FAILURE"
	StageVectorSearch = "VECTOR_DB_FAILURE"
	StagePrompt       = "PROMPT_FAILURE"
	StageLLM          = "LLM_GENERATION_FAILURE"

	cacheSaveTimeout = 10 * time.Second
)

// StageError names the pipeline step an ask failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Step() jobModel.InternalStatus {
	switch e.Stage {
	case StageEmbedding:
		return jobModel.EmbeddingAPICall
	case StageVectorSearch:
		return jobModel.VectorDBCall
	case StagePrompt:
		return jobModel.PromptBuild
	default:
		return jobModel.LLMCall
	}
}

func stageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

func newUUID() string {
	return uuid.New().String()
}

func jobError(job jobModel.Job, log *logger_i.Logger, err error, code int, canRetry bool) jobModel.Job {
	log.Error("Job failed", "step", job.CurrentStep, "error", err)

	message := "Internal Server Error"
	if code < 500 {
		message = err.Error()
	}
	job.Error = jobModel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func contents(refs []commonModels.Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Content != "" {
			out = append(out, r.Content)
		}
	}
	return out
}

func sources(refs []commonModels.Reference) []string {
	seen := make(map[string]struct{}, len(refs))
	var out []string
	for _, r := range refs {
		src := r.Source()
		if src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, question string) ([]float32, error) {
	log.Debug("Ask", "step", jobModel.EmbeddingAPICall)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, emb []float32) (string, bool) {
	log.Debug("Ask", "step", jobModel.CacheCall)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, err := s.vectorDB.GetCachedAnswer(ctx, emb)
	if err != nil {
		log.Warn("Cache lookup failed, continuing without cache", "error", err)
		return "", false
	}
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, emb []float32) ([]commonModels.Reference, error) {
	log.Debug("Ask", "step", jobModel.VectorDBCall)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Search(ctx, emb, s.topK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, formatted string) (string, error) {
	log.Debug("Ask", "step", jobModel.LLMCall, "promptLength", len(formatted))
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, formatted)
}

func (s *service) executeSanitizeStep(log *logger_i.Logger, raw string) string {
	cleaned := sanitizer.Clean(raw)
	log.Debug("Ask", "step", jobModel.Sanitize, "rawLength", len(raw), "cleanLength", len(cleaned))
	return cleaned
}

// saveToCache writes in the background on a context detached from the
// request, which is cancelled as soon as the answer is returned.
func (s *service) saveToCache(ctx context.Context, emb []float32, question string, answer string) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheSaveTimeout)
	id := s.newCacheId()
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()
		if err := s.vectorDB.SaveToCache(bg, id, emb, question, answer); err != nil {
			s.logger.FromContext(bg).Error("Failed to save to cache", "error", err)
		}
	}()
}

func (s *service) record(ctx context.Context, question, conversation string, res AskResult, err error, latency time.Duration) {
	if s.auditLog == nil {
		return
	}
	c := commonModels.Consultation{
		TraceId:      logger_i.TraceID(ctx),
		Question:     question,
		Conversation: conversation,
		Answer:       res.Answer,
		Sources:      res.Sources,
		Cached:       res.Cached,
		Latency:      latency,
		CreatedAt:    time.Now(),
	}
	if err != nil {
		c.Error = err.Error()
	}
	if recErr := s.auditLog.Record(ctx, c); recErr != nil {
		s.logger.FromContext(ctx).Warn("Could not record consultation", "error", recErr)
	}
}
