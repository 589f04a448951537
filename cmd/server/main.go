package main

import (
	"fmt"
	"log"

	"billex/internal/config"
	"billex/internal/extractor"
	"billex/internal/fetch"
	"billex/internal/handler"
	"billex/internal/llm"
	"billex/internal/llm/gemini"
	"billex/internal/llm/openai"
	"billex/internal/ocr/tesseract"
	"billex/internal/port"
	"billex/internal/router"
	"billex/internal/service"
	s3storage "billex/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	llm.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return openai.NewClient(cfg), nil
	})
	llm.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return gemini.NewClient(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registerProviders()

	// Object storage for s3:// document references; optional.
	var storage port.ObjectStorage
	if cfg.S3.AccessKey != "" || cfg.S3.Endpoint != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	primaryCfg := cfg.LLM.PrimaryConfig()
	completer, err := llm.NewCompleter(primaryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize completion provider: %w", err)
	}

	// Optional secondary provider: rate-limited or failing primary falls
	// through to it per call.
	if secondaryCfg := cfg.LLM.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := llm.NewCompleter(secondaryCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary completion provider: %w", err)
		}
		completer = llm.NewFallbackCompleter(
			[]port.Completer{completer, secondary},
			[]string{primaryCfg.Provider, secondaryCfg.Provider},
		)
	}

	fetcher := fetch.NewFetcher(&cfg.Fetch, storage)
	pageSource := tesseract.NewSource(&cfg.OCR)
	lineItems := extractor.New(completer)

	extractSvc := service.NewExtractService(fetcher, pageSource, lineItems, cfg.LLM.MaxRetries)

	extractH := handler.NewExtractHandler(extractSvc)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg, extractH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
