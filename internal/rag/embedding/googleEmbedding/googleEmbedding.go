package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/rag/embedding"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const (
	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	retryDelay       = 5 * time.Second
	batchPollEvery   = 30 * time.Second
)

var ErrNoEmbedding = errors.New("embedding response was empty")

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google Embedding client created", "model", modelName)
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		if apikey == "" {
			logger.Error("GOOGLE_API_KEY is not set")
			return
		}
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.FromContext(ctx)
	log.Debug("Embedding query", "length", len(query))

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskTypeQuery})
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, ErrNoEmbedding
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string, isLargeDataSet bool) ([][]float32, error) {
	log := logger.FromContext(ctx)

	if !isLargeDataSet {
		res, err := c.doCall(ctx, getContent(chunks))
		if err != nil && doRetry(err, log) {
			log.Debug("Retrying", "in", retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			res, err = c.doCall(ctx, getContent(chunks))
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}
		if res == nil {
			return nil, ErrNoEmbedding
		}
		embeddingResults := make([][]float32, 0, len(res.Embeddings))
		for _, r := range res.Embeddings {
			embeddingResults = append(embeddingResults, r.Values)
		}
		return embeddingResults, nil
	}

	src := genai.EmbeddingsBatchJobSource{InlinedRequests: getInlinedBatchRequests(chunks)}
	displayName := uuid.New().String()

	log = log.With("batchDisplayName", displayName, "chunks", len(chunks))
	conf := genai.CreateEmbeddingsBatchJobConfig{DisplayName: displayName}
	created, err := c.genAi.Batches.CreateEmbeddings(ctx, &c.model, &src, &conf)
	if err != nil {
		log.Error("Error creating batch embedding job", "error", err)
		return nil, err
	}

	answer, err := c.pollForAnswer(ctx, created.Name, log)
	if err != nil {
		return nil, err
	}
	return downloadAnswerFromClient(answer, log), nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskTypeDocument})
}
