package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/customHttpClient"
	"github.com/akolanti/DermaRAG/internal/data/auditStore"
	"github.com/akolanti/DermaRAG/internal/data/store"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	jobmodel "github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/handlers"
	"github.com/akolanti/DermaRAG/internal/job"
	"github.com/akolanti/DermaRAG/internal/mcpserver"
	"github.com/akolanti/DermaRAG/internal/middleware"
	"github.com/akolanti/DermaRAG/internal/prompt"
	"github.com/akolanti/DermaRAG/internal/rag"
	"github.com/akolanti/DermaRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DermaRAG/internal/rag/llm"
	"github.com/akolanti/DermaRAG/internal/rag/llm/gemini"
	"github.com/akolanti/DermaRAG/internal/rag/llm/openai"
	"github.com/akolanti/DermaRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DermaRAG/internal/server"
	"github.com/akolanti/DermaRAG/internal/worker"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	settings := config.Load()
	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
	}
	if redisJobs := store.GetRedisJobStore(serviceContext, settings); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, keeping jobs in memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	logger.Info("Starting job service")
	jobService := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQdrantClient(serviceContext, settings)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, settings.EmbeddingModel, settings.GoogleAPIKey)
	llmProvider := newLLMProvider(serviceContext, settings, logger)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	promptBuilder, err := prompt.Load(settings.PromptTemplateFile)
	if err != nil {
		logger.Error("Could not load prompt template", "file", settings.PromptTemplateFile, "err", err)
		return
	}

	deps := rag.Dependencies{
		VectorDB: vectorDB,
		LLM:      llmProvider,
		Embedder: embeddingService,
		Prompt:   promptBuilder,
	}
	if audit := openAuditLog(serviceContext, settings, logger); audit != nil {
		deps.AuditLog = audit
	}
	ragService, err := rag.NewService(deps)
	if err != nil {
		logger.Error("Could not create rag service", "err", err)
		return
	}

	//init worker pool
	worker.InitServices(jobService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		BackgroundWait:   ragService.Wait,
		CloseServices:    closeExternalServices,
	}
	routes := server.Routes{
		Handlers:   handlers.New(jobService, ragService, ""),
		Middleware: middleware.New(settings),
		MCP:        mcpserver.Handler(ragService),
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, routes)

	<-stopExecution
	logger.Info("Server stopped")
}

func newLLMProvider(ctx context.Context, settings config.Settings, logger *logger_i.Logger) llm.Provider {
	switch settings.LLMProvider {
	case config.LLMProviderOpenAI:
		p, err := openai.NewClient(openai.Settings{
			APIKey:     settings.OpenAIAPIKey,
			BaseURL:    settings.OpenAIBaseURL,
			Model:      settings.OpenAIModel,
			HTTPClient: customHttpClient.Shared(),
		})
		if err != nil {
			logger.Error("Could not create OpenAI client", "err", err)
			return nil
		}
		return p
	case config.LLMProviderGemini:
		return gemini.GetGeminiClient(ctx, settings.GoogleAPIKey, settings.GeminiModel)
	default:
		logger.Error("Unknown LLM provider", "provider", settings.LLMProvider)
		return nil
	}
}

// openAuditLog returns nil when auditing is disabled or Postgres is unreachable.
func openAuditLog(ctx context.Context, settings config.Settings, logger *logger_i.Logger) commonModels.ConsultationRecorder {
	if settings.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, consultation audit log disabled")
		return nil
	}
	audit, err := auditStore.Open(ctx, settings.DatabaseURL)
	if err != nil {
		logger.Error("Audit store unavailable, continuing without it", "err", err)
		return nil
	}
	return audit
}
