package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/extract"
	"ragchat/internal/llm"
	"ragchat/internal/logging"
	"ragchat/internal/service"
	"ragchat/internal/summarizer"
	"ragchat/internal/transcribe/openai"
	"ragchat/internal/vectorstore/memory"
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	svc    *service.RAGServiceImpl
}

func newLogger(cfg *config.AppConfig, w io.Writer) *slog.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Format, w)
}

// buildApp wires the service from cfg. withGenerator is false for commands
// that never call the language model.
func buildApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, withGenerator bool) (*app, error) {
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embedder init failed: %w", err)
	}

	var gen domain.Generator = unavailableGenerator{}
	if withGenerator {
		gen, err = llm.New(ctx, cfg.Generator)
		if err != nil {
			return nil, fmt.Errorf("generator init failed: %w", err)
		}
	}

	svc := service.NewRAGService(registry, emb, memory.NewStore(), gen, summarizer.New(), service.Options{
		DocumentsDir:        cfg.Documents.Dir,
		StorePath:           cfg.Store.Path,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		Logger:              logger,
	})
	return &app{cfg: cfg, logger: logger, svc: svc}, nil
}

// buildRegistry registers the PDF extractor and, when a transcriber is
// configured, the audio formats.
func buildRegistry(cfg *config.AppConfig, logger *slog.Logger) (*extract.Registry, error) {
	reg := extract.NewRegistry()
	reg.Register(".pdf", extract.NewPDF(
		extract.WithCommand(cfg.PDF.Command),
		extract.WithPageTimeout(time.Duration(cfg.PDF.TimeoutSecs)*time.Second),
		extract.WithStripTimestamps(cfg.Documents.StripTimestamps),
		extract.WithPDFLogger(logger),
	))

	switch cfg.Transcriber.Type {
	case "", "none":
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:           cfg.Transcriber.BaseURL,
			APIKeyEnv:         cfg.Transcriber.APIKeyEnv,
			Model:             cfg.Transcriber.Model,
			Timeout:           time.Duration(cfg.Transcriber.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.Transcriber.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("transcriber init failed: %w", err)
		}
		audio := extract.NewAudio(client)
		for _, ext := range extract.AudioExtensions {
			reg.Register(ext, audio)
		}
	default:
		return nil, fmt.Errorf("unknown transcriber type: %s", cfg.Transcriber.Type)
	}
	return reg, nil
}

// unavailableGenerator backs commands that only ingest.
type unavailableGenerator struct{}

func (unavailableGenerator) Name() string { return "none" }

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", &domain.GenerationError{Provider: "none", Err: fmt.Errorf("no generator configured")}
}
