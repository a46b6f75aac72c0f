package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/internal/assembler"
	"github.com/bfforex/EvolveUI/internal/config"
	"github.com/bfforex/EvolveUI/internal/embedder"
	"github.com/bfforex/EvolveUI/internal/engine"
	"github.com/bfforex/EvolveUI/internal/intent"
	"github.com/bfforex/EvolveUI/internal/knowledge"
	"github.com/bfforex/EvolveUI/internal/logging"
	"github.com/bfforex/EvolveUI/internal/mcp"
	"github.com/bfforex/EvolveUI/internal/rescache"
	"github.com/bfforex/EvolveUI/internal/websearch"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("EvolveUI Context Assembly Engine\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", knowledge.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", knowledge.DriverName)
		fmt.Printf("Vector Extension: %v\n", knowledge.VectorExtensionAvailable)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "evolveui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Stdout carries the MCP protocol; the logger writes to stderr.
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("version", version),
		zap.String("environment", cfg.App.Environment),
		zap.String("build_mode", knowledge.BuildMode),
		zap.Bool("vector_extension", knowledge.VectorExtensionAvailable))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}

	emb, err := embedder.New(ctx, embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()
	log.Info("embedder ready",
		zap.String("provider", emb.Provider()),
		zap.String("model", emb.Model()),
		zap.Int("dimension", emb.Dimension()))

	index, err := knowledge.Open(cfg.Knowledge.DBPath)
	if err != nil {
		return fmt.Errorf("open knowledge index: %w", err)
	}
	defer func() { _ = index.Close() }()

	registry, err := websearch.NewRegistry(cfg.Search.Providers)
	if err != nil {
		return fmt.Errorf("configure providers: %w", err)
	}
	limiter := websearch.NewLimiter(websearch.LimiterConfig{
		FailureThreshold: cfg.Search.FailureThreshold,
		Cooldown:         cfg.Search.Cooldown,
	})
	orchestrator := websearch.NewOrchestrator(registry, limiter, cache, log)
	orchestrator.SetCacheTTL(cfg.Cache.SearchTTL)

	ingestor := knowledge.NewIngestor(index, emb, log)

	eng := engine.New(engine.Options{
		Orchestrator: orchestrator,
		Detector: intent.NewDetector(intent.Options{
			Threshold: cfg.Intent.Threshold,
			Cache:     cache,
			CacheTTL:  cfg.Intent.CacheTTL,
			Log:       log,
		}),
		Retriever: knowledge.NewRetriever(index, emb, knowledge.RetrieverOptions{
			MaxDocuments:          cfg.Knowledge.MaxDocuments,
			MaxConversations:      cfg.Knowledge.MaxConversations,
			DocumentThreshold:     cfg.Knowledge.DocumentThreshold,
			ConversationThreshold: cfg.Knowledge.ConversationThreshold,
			Log:                   log,
		}),
		Ingestor: ingestor,
		Assembler: assembler.New(assembler.Options{
			Budget: assembler.Budget{
				MaxSources:    cfg.Assembler.MaxSources,
				MaxCharacters: cfg.Assembler.MaxContextLength,
			},
			MinSimilarity: cfg.Knowledge.DocumentThreshold,
			Logger:        log,
		}),
		Index: index,
		SearchOptions: websearch.SearchOptions{
			PerProviderLimit: cfg.Search.PerProviderLimit,
			OverallTimeout:   cfg.Search.OverallTimeout,
		},
		OverallTimeout: cfg.Engine.OverallTimeout,
		RecentTurns:    cfg.Engine.RecentTurns,
		Logger:         log,
	})

	if cfg.Metrics.Address != "" {
		go serveMetrics(cfg.Metrics.Address, log)
	}

	if cfg.Knowledge.WatchDir != "" {
		watcher, err := knowledge.NewWatcher(ingestor, log)
		if err != nil {
			return fmt.Errorf("init watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()
		// Watch blocks on its event loop until the context is cancelled.
		go func() {
			if err := watcher.Watch(ctx, cfg.Knowledge.WatchDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("knowledge watcher stopped", zap.Error(err))
			}
		}()
		log.Info("watching knowledge directory", zap.String("dir", cfg.Knowledge.WatchDir))
	}

	srv := mcp.NewServer(eng, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info("stopped")
	return nil
}

func buildCache(ctx context.Context, cfg *config.Config) (rescache.Cache, error) {
	if cfg.Cache.Backend == "redis" {
		cache, err := rescache.NewRedis(ctx, rescache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return cache, nil
	}
	return rescache.NewMemory(cfg.Cache.MaxEntries), nil
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("metrics listener started", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics listener failed", zap.Error(err))
	}
}
