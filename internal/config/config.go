package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// Context window: how many persisted messages seed a live session.
	MaxHistoryLength int

	// Transcript persistence.
	HistoryDriver string // file | sqlite | mysql | redis
	HistoryDir    string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Model gateway.
	AIProvider        string // gemini | ollama | openrouter
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	maxHistory := 20
	if v := os.Getenv("MAX_HISTORY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxHistory = n
		}
	}

	historyDriver := os.Getenv("HISTORY_DRIVER")
	if historyDriver == "" {
		historyDriver = "file"
	}
	historyDir := os.Getenv("HISTORY_DIR")
	if historyDir == "" {
		historyDir = "."
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "gemini"
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3:latest"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}

	return Config{
		HTTPAddr:         addr,
		MaxHistoryLength: maxHistory,

		HistoryDriver: historyDriver,
		HistoryDir:    historyDir,
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		AIProvider:        aiProvider,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       geminiModel,
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
		OllamaBaseURL:     ollamaBaseURL,
		OllamaModel:       ollamaModel,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
	}
}

// Validate enforces the startup-fatal requirements: no useful session can
// exist without a credential for the selected hosted provider.
func (c Config) Validate() error {
	switch strings.ToLower(c.AIProvider) {
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "openrouter":
		if strings.TrimSpace(c.OpenRouterAPIKey) == "" {
			return errors.New("OPENROUTER_API_KEY is required when AI_PROVIDER=openrouter")
		}
	case "ollama":
		// Local provider, no credential.
	default:
		return errors.New("unsupported AI_PROVIDER: " + c.AIProvider)
	}
	return nil
}
