package rag

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/metrics"
	"github.com/akolanti/DermaRAG/internal/prompt"
	"github.com/akolanti/DermaRAG/internal/rag/embedding"
	"github.com/akolanti/DermaRAG/internal/rag/ingest"
	"github.com/akolanti/DermaRAG/internal/rag/llm"
	"github.com/akolanti/DermaRAG/internal/rag/vectorDB"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

/*
The worker and the handlers only see Service. The private service struct
holds the external clients (vector store, embedder, language model) so they
can be swapped for mocks in tests without touching callers.
*/

var (
	ErrEmptyQuestion = errors.New("message is empty")
	ErrNoProvider    = errors.New("rag service is missing a dependency")
)

type AskRequest struct {
	Message      string
	Conversation string
}

type AskResult struct {
	Answer  string
	Sources []string
	Cached  bool
}

// Service Worker will only call this service - it doesn't need to know the llm or the vector
type Service interface {
	Ask(ctx context.Context, req AskRequest) (AskResult, error)
	ProcessJob(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	// Wait blocks until background cache writes have finished.
	Wait()
}

type Dependencies struct {
	VectorDB   vectorDB.DataProcessor
	LLM        llm.Provider
	Embedder   embedding.Embedder
	Prompt     *prompt.Builder
	AuditLog   commonModels.ConsultationRecorder
	TopK       uint64
	NewCacheId func() string
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	prompt      *prompt.Builder
	auditLog    commonModels.ConsultationRecorder
	topK        uint64
	newCacheId  func() string
	logger      *logger_i.Logger
	background  sync.WaitGroup
}

// NewService constructor
func NewService(deps Dependencies) (Service, error) {
	if deps.VectorDB == nil || deps.LLM == nil || deps.Embedder == nil {
		return nil, ErrNoProvider
	}
	s := &service{
		vectorDB:    deps.VectorDB,
		llmProvider: deps.LLM,
		embedder:    deps.Embedder,
		prompt:      deps.Prompt,
		auditLog:    deps.AuditLog,
		topK:        deps.TopK,
		newCacheId:  deps.NewCacheId,
		logger:      logger_i.NewLogger("RAG Service"),
	}
	if s.prompt == nil {
		s.prompt = prompt.Default()
	}
	if s.topK == 0 {
		s.topK = config.RetrievalTopK
	}
	if s.newCacheId == nil {
		s.newCacheId = newUUID
	}
	return s, nil
}

func (s *service) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	question := strings.TrimSpace(req.Message)
	conversation := strings.TrimSpace(req.Conversation)
	if question == "" {
		return AskResult{}, ErrEmptyQuestion
	}

	log := s.logger.FromContext(ctx)
	askCtx, cancel := context.WithTimeout(ctx, config.AskTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.ask(askCtx, log, question, conversation)
	s.record(ctx, question, conversation, result, err, time.Since(start))

	switch {
	case err != nil:
		metrics.CountAskOutcome("failed")
	case result.Cached:
		metrics.CountAskOutcome("cached")
	default:
		metrics.CountAskOutcome("answered")
	}
	return result, err
}

func (s *service) ask(ctx context.Context, log *logger_i.Logger, question string, conversation string) (AskResult, error) {
	emb, err := s.executeEmbeddingStep(ctx, log, question)
	if err != nil {
		return AskResult{}, stageError(StageEmbedding, err)
	}

	// a transcript changes the answer, so only bare questions use the cache
	cacheable := conversation == ""
	if cacheable {
		if cached, found := s.executeCacheCheckStep(ctx, log, emb); found {
			return AskResult{Answer: cached, Cached: true}, nil
		}
	}

	refs, err := s.executeVectorSearchStep(ctx, log, emb)
	if err != nil {
		return AskResult{}, stageError(StageVectorSearch, err)
	}

	formatted, err := s.prompt.Build(prompt.Input{
		TranslatedConversation: conversation,
		RaagReference:          prompt.JoinReferences(contents(refs)),
		Question:               question,
	})
	if err != nil {
		return AskResult{}, stageError(StagePrompt, err)
	}

	raw, err := s.executeLLMStep(ctx, log, formatted)
	if err != nil {
		return AskResult{}, stageError(StageLLM, err)
	}

	answer := s.executeSanitizeStep(log, raw)
	if cacheable && answer != "" {
		s.saveToCache(ctx, emb, question, answer)
	}
	return AskResult{Answer: answer, Sources: sources(refs)}, nil
}

func (s *service) ProcessJob(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.FromContext(ctx).With("jobId", job.Id)
	job.CurrentStep = jobModel.AskInit

	res, err := s.Ask(ctx, AskRequest{Message: job.JobPayload.Question, Conversation: job.JobPayload.Conversation})
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			job.CurrentStep = se.Step()
		}
		if errors.Is(err, ErrEmptyQuestion) {
			return jobError(job, log, err, http.StatusBadRequest, false)
		}
		return jobError(job, log, err, http.StatusInternalServerError, true)
	}

	job.JobPayload.Answer = res.Answer
	job.JobPayload.Sources = res.Sources
	job.JobPayload.Cached = res.Cached
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.FromContext(ctx).With("jobId", job.Id)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestProcessing
	if err := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.vectorDB); err != nil {
		return jobError(job, log, err, http.StatusInternalServerError, true)
	}
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) Wait() {
	s.background.Wait()
}
