package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Settings holds everything that may differ between deployments. Defaults come
// from the constants in this package.
type Settings struct {
	ListenAddr string

	AuthToken    string
	NoAuthBypass bool

	GoogleAPIKey   string
	GeminiModel    string
	EmbeddingModel string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	PromptTemplateFile string

	QdrantHost string
	QdrantPort int
	QdrantKey  string

	RedisAddr     string
	RedisPassword string

	DatabaseURL string
}

var (
	settings     Settings
	settingsOnce sync.Once
)

// Load reads the environment once; later calls return the same values.
func Load() Settings {
	settingsOnce.Do(func() {
		settings = Settings{
			ListenAddr: getenv("LISTEN_ADDR", ServerListenAddr),

			AuthToken:    os.Getenv("AUTH_TOKEN"),
			NoAuthBypass: getenvBool("NO_AUTH_BYPASS", false),

			GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
			GeminiModel:    getenv("GEMINI_MODEL", GeminiModelName),
			EmbeddingModel: getenv("EMBEDDING_MODEL", GoogleEmbeddingModel),

			LLMProvider:   strings.ToLower(getenv("LLM_PROVIDER", LLMProviderGemini)),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:   getenv("OPENAI_MODEL", OpenAIModelName),

			PromptTemplateFile: os.Getenv("PROMPT_TEMPLATE_FILE"),

			QdrantHost: getenv("QDRANT_HOST", QdrantHost),
			QdrantPort: getenvInt("QDRANT_PORT", QdrantGrpcPort),
			QdrantKey:  os.Getenv("QDRANT_API_KEY"),

			RedisAddr:     getenv("REDIS_ADDR", RedisAddr),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),

			DatabaseURL: os.Getenv("DATABASE_URL"),
		}
	})
	return settings
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
