package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/adapters/driven/ai"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/metrics"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/postgres"
	redisstore "github.com/custodia-labs/coursemate/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/services"
	"github.com/custodia-labs/coursemate/internal/logger"
	"github.com/custodia-labs/coursemate/internal/normalisers"
	"github.com/custodia-labs/coursemate/internal/normalisers/course"
	"github.com/custodia-labs/coursemate/internal/normalisers/docx"
	"github.com/custodia-labs/coursemate/internal/normalisers/html"
	"github.com/custodia-labs/coursemate/internal/normalisers/markdown"
	"github.com/custodia-labs/coursemate/internal/normalisers/pdf"
	"github.com/custodia-labs/coursemate/internal/normalisers/plaintext"
	"github.com/custodia-labs/coursemate/internal/postprocessors/chunker"
)

// Commands declare how much they need wired with this annotation.
const wiringAnnotation = "coursemate/wiring"

const (
	// wiringNone wires nothing (version, help).
	wiringNone = "none"
	// wiringSettings wires only the settings service.
	wiringSettings = "settings"
	// wiringFull wires storage, AI providers and all services.
	wiringFull = "full"
)

// wiringLevel returns the annotation of cmd or its nearest annotated parent.
func wiringLevel(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if level, ok := c.Annotations[wiringAnnotation]; ok {
			return level
		}
	}
	return wiringFull
}

// resolveConfigDir returns --config-dir or the default directory.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return file.DefaultDir()
}

// wire builds the services the command needs.
func wire(ctx context.Context, level string) error {
	if level == wiringNone {
		return nil
	}

	dir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}
	if err := file.LoadDotEnv(dir); err != nil {
		logger.Warn("reading .env: %v", err)
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings := services.NewSettingsService(store)
	settingsService = settings
	if level == wiringSettings {
		return nil
	}

	cfg, err := settings.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	switch {
	case dataDir != "":
		cfg.Storage.DataDir = dataDir
	case cfg.Storage.DataDir == "":
		cfg.Storage.DataDir = filepath.Join(dir, "data")
	}
	appSettings = cfg

	if err := wireServices(ctx, dir, cfg); err != nil {
		closeAll()
		return err
	}
	wired = true
	return nil
}

// wireServices creates AI providers, storage and the core services.
func wireServices(ctx context.Context, dir string, cfg *domain.AppSettings) error {
	logger.Section("Wiring")

	aiResult, err := ai.Init(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		aiResult.Close()
		return nil
	})
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	vectors, history, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	metricsHandler = recorder.Handler()

	index := services.NewCourseIndex(vectors, aiResult.EmbeddingService)
	index.SetMetrics(recorder)

	registry := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
		docx.New(),
	)
	chunks := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	ingest := services.NewIngestService(registry, course.NewParser(), chunks, index)
	ingest.SetMetrics(recorder)

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	tools := services.NewToolRegistry(services.NewSearchTool(index, cfg.Search.MaxResults))
	query := services.NewQueryService(aiResult.LLMService, tools, history, prompts)
	query.SetGenerationOptions(cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	query.SetMetrics(recorder)

	ingestService = ingest
	searchService = index
	catalogService = index
	queryService = query

	logger.Debug("storage=%s history=%s embedding=%s llm=%s",
		cfg.Storage.Backend, cfg.History.Backend, cfg.Embedding.Provider, cfg.LLM.Provider)
	return nil
}

// openStorage opens the vector store and history store named by the settings.
// SQLite is opened once when both use it.
func openStorage(ctx context.Context, cfg *domain.AppSettings) (driven.VectorStore, driven.HistoryStore, error) {
	var db *sqlite.Store
	openSQLite := func() (*sqlite.Store, error) {
		if db != nil {
			return db, nil
		}
		s, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		closers = append(closers, s.Close)
		db = s
		return s, nil
	}

	var vectors driven.VectorStore
	switch cfg.Storage.Backend {
	case domain.StorageMemory:
		vectors = memory.NewVectorStore()
	case domain.StoragePostgres:
		if cfg.Storage.PostgresURL == "" {
			return nil, nil, errors.New("postgres storage requires " + services.EnvPostgresURL)
		}
		pg, err := postgres.NewVectorStore(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pg.Close)
		vectors = pg
	default:
		s, err := openSQLite()
		if err != nil {
			return nil, nil, err
		}
		vectors = s.VectorStore()
	}

	var history driven.HistoryStore
	switch cfg.History.Backend {
	case domain.HistoryRedis:
		rs, err := redisstore.NewHistoryStore(ctx, redisstore.Config{
			URL:          cfg.History.RedisURL,
			MaxExchanges: cfg.History.MaxExchanges,
		})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, rs.Close)
		history = rs
	case domain.HistorySQLite:
		s, err := openSQLite()
		if err != nil {
			return nil, nil, err
		}
		history = s.HistoryStore(cfg.History.MaxExchanges)
	default:
		history = memory.NewHistoryStore(cfg.History.MaxExchanges)
	}

	return vectors, history, nil
}
