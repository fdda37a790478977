package gemini

import (
	"context"
	"sync"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/rag/llm"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		if apikey == "" {
			logger.Error("GOOGLE_API_KEY is not set")
			return
		}
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
}

func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.ModelContext}},
		},
		Temperature: genai.Ptr(config.ModelTemperature),
	}
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), generateConfig())
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	log.Debug("Gemini generation done", "length", len(text))
	return text, nil
}
