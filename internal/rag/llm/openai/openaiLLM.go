package openai

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/rag/llm"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once

type llmClient struct {
	client openaisdk.Client
	model  string
}

// Settings configures an OpenAI compatible chat completion endpoint.
type Settings struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func NewClient(s Settings) (llm.Provider, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
	})
	if s.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}
	if s.Model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	logger.Info("OpenAI client created", "model", s.Model, "customBaseURL", s.BaseURL != "")
	return &llmClient{client: openaisdk.NewClient(opts...), model: s.Model}, nil
}

func chatParams(model string, prompt string) openaisdk.ChatCompletionNewParams {
	return openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(config.ModelContext),
			openaisdk.UserMessage(prompt),
		},
		Temperature: openaisdk.Float(float64(config.ModelTemperature)),
	}
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	resp, err := c.client.Chat.Completions.New(ctx, chatParams(c.model, prompt))
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
