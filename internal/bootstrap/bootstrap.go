package bootstrap

import (
	"context"
	"fmt"

	"github.com/noteground/noteground/internal/config"
	"github.com/noteground/noteground/internal/core/ports"
	"github.com/noteground/noteground/internal/core/usecase"
	"github.com/noteground/noteground/internal/infrastructure/llm/ollama"
	"github.com/noteground/noteground/internal/infrastructure/queue/nats"
	"github.com/noteground/noteground/internal/infrastructure/repository/postgres"
	"github.com/noteground/noteground/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.NoteRepository
	IngestUC ports.NoteIngestor
	AnswerUC ports.QueryAnswerer
	TagUC    ports.NoteTagger

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewNoteRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	resilienceCfg := resilience.DefaultConfig()
	if cfg.GenerationRetries > 0 {
		resilienceCfg.RetryMaxAttempts = cfg.GenerationRetries + 1
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel)
	generator := ollama.NewResilientGenerator(ollamaClient, resilienceCfg, cfg.GenerationTimeout)
	extractor := ollama.NewTagExtractor(ollamaClient)

	ingestUC := usecase.NewIngestNoteUseCase(repo, queue)
	answerUC := usecase.NewAnswerQueryUseCase(repo, generator, usecase.AnswerConfig{
		DefaultModel: cfg.OllamaGenModel,
		DefaultLimit: cfg.QueryDefaultLimit,
		MaxNotes:     cfg.QueryMaxNotes,
	})
	tagUC := usecase.NewTagNoteUseCase(repo, extractor, cfg.TagMinConfidence)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC: ingestUC,
		AnswerUC: answerUC,
		TagUC:    tagUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
