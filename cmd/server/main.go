package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/proglot/tutor/internal/ai"
	"github.com/proglot/tutor/internal/config"
	"github.com/proglot/tutor/internal/httpapi"
	"github.com/proglot/tutor/internal/transcript"
	"github.com/proglot/tutor/internal/tutor"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := transcript.NewStore(transcript.Driver(cfg.HistoryDriver), transcript.Options{
		Dir:           cfg.HistoryDir,
		DSN:           cfg.DBDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("transcript store: %v", err)
	}

	reg := ai.NewRegistry()
	reg.Register("gemini", func(ctx context.Context, systemInstruction string) (ai.Provider, error) {
		_ = ctx
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, systemInstruction), nil
	})
	reg.Register("ollama", func(ctx context.Context, systemInstruction string) (ai.Provider, error) {
		_ = ctx
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, systemInstruction), nil
	})
	reg.Register("openrouter", func(ctx context.Context, systemInstruction string) (ai.Provider, error) {
		_ = ctx
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel,
			systemInstruction, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	svc := tutor.NewService(store, reg, cfg.AIProvider, cfg.MaxHistoryLength)

	r := httpapi.NewRouter(svc)

	log.Printf("server started addr=%s provider=%s driver=%s window=%d",
		cfg.HTTPAddr, cfg.AIProvider, cfg.HistoryDriver, cfg.MaxHistoryLength)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
