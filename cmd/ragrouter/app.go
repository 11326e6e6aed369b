package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragrouter/internal/config"
	"github.com/kailas-cloud/ragrouter/internal/db"
	dbRedis "github.com/kailas-cloud/ragrouter/internal/db/redis"
	"github.com/kailas-cloud/ragrouter/internal/domain"
	domtool "github.com/kailas-cloud/ragrouter/internal/domain/tool"
	"github.com/kailas-cloud/ragrouter/internal/metrics"
	"github.com/kailas-cloud/ragrouter/internal/repository/embcache"
	"github.com/kailas-cloud/ragrouter/internal/repository/keyword"
	"github.com/kailas-cloud/ragrouter/internal/transport/azuresearch"
	openaiTransport "github.com/kailas-cloud/ragrouter/internal/transport/openai"
	docstoreuc "github.com/kailas-cloud/ragrouter/internal/usecase/docstore"
	healthuc "github.com/kailas-cloud/ragrouter/internal/usecase/health"
	intentuc "github.com/kailas-cloud/ragrouter/internal/usecase/intent"
	routeruc "github.com/kailas-cloud/ragrouter/internal/usecase/router"
	tooluc "github.com/kailas-cloud/ragrouter/internal/usecase/tool"
)

// app is the wired object graph shared by serve and ask.
type app struct {
	docs   *docstoreuc.Service
	tools  *tooluc.Set
	agent  *routeruc.Agent
	health *healthuc.Service
	store  db.Store
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	a := &app{}

	// Redis backs the embedding cache and the redis keyword driver.
	if cfg.NeedsRedis() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		a.store = store

		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	chat := openaiTransport.NewChatCompleter(providerConfig(cfg, cfg.OpenAI.ChatDeployment, 0, logger))

	requestDims := 0
	if cfg.OpenAI.SendDimensions {
		requestDims = cfg.OpenAI.Dimensions
	}
	baseEmbedder := openaiTransport.NewEmbedder(
		providerConfig(cfg, cfg.OpenAI.EmbeddingDeployment, requestDims, logger),
	)
	var embedder domain.Embedder = baseEmbedder
	if cfg.Cache.Enabled {
		embedder = embcache.New(
			baseEmbedder, a.store, cfg.OpenAI.EmbeddingDeployment, cfg.OpenAI.Dimensions,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger,
		)
	}

	a.docs = docstoreuc.New(embedder, cfg.OpenAI.Dimensions, logger).
		WithSizeObserver(metrics.StoreDocuments)

	// Pass nil interface (not typed nil pointer) when no keyword backend is configured.
	var kw tooluc.KeywordSearcher
	var kwHealth healthuc.Checker
	switch cfg.KeywordSearch.Driver {
	case config.KeywordDriverAzure:
		client, err := azuresearch.New(&azuresearch.Config{
			Endpoint:     cfg.KeywordSearch.Endpoint,
			APIKey:       cfg.KeywordSearch.APIKey,
			Index:        cfg.KeywordSearch.Index,
			APIVersion:   cfg.KeywordSearch.APIVersion,
			ContentField: cfg.KeywordSearch.ContentField,
			Logger:       logger,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create azure search client: %w", err)
		}
		kw, kwHealth = client, client
	case config.KeywordDriverRedis:
		repo := keyword.New(a.store, cfg.KeywordSearch.Index, cfg.KeywordSearch.Language)
		if err := repo.EnsureIndex(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure keyword index: %w", err)
		}
		a.docs.WithMirror(repo)
		kw = repo
	default:
		logger.Info("Keyword search disabled")
	}

	a.tools = tooluc.New(a.docs, chat, kw, metrics.ToolExecutionsTotal).WithConfig(tooluc.Config{
		SemanticK:             cfg.Router.SemanticK,
		KeywordTop:            cfg.Router.KeywordTop,
		ComparisonK:           cfg.Router.ComparisonK,
		SummaryTemperature:    cfg.Router.Temperature.Summarize,
		ComparisonTemperature: cfg.Router.Temperature.Compare,
	})

	classifier := intentuc.New(chat, metrics.IntentTotal).WithTemperature(cfg.Router.Temperature.Classify)

	a.agent = routeruc.New(classifier, a.tools, chat, logger).
		WithTemperature(cfg.Router.Temperature.Fuse).
		WithDuration(metrics.RouteDuration)

	var pinger healthuc.DBPinger
	if a.store != nil {
		pinger = a.store
	}
	a.health = healthuc.New(pinger).
		WithCheck("chat", chat).
		WithCheck("embedding", baseEmbedder).
		WithCheck("keyword_search", kwHealth)

	logger.Info("Router agent ready",
		zap.String("chat_deployment", cfg.OpenAI.ChatDeployment),
		zap.String("embedding_deployment", cfg.OpenAI.EmbeddingDeployment),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
		zap.String("keyword_driver", cfg.KeywordSearch.Driver),
		zap.Bool("embedding_cache", cfg.Cache.Enabled),
		zap.Strings("tools", toolNames(a.tools.Names())),
	)
	return a, nil
}

func providerConfig(cfg *config.Config, model string, dims int, logger *zap.Logger) *openaiTransport.Config {
	return &openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.Endpoint,
		APIVersion: cfg.OpenAI.APIVersion,
		Azure:      cfg.OpenAI.Azure,
		Model:      model,
		Dimensions: dims,
		Logger:     logger,
	}
}

func toolNames(ns []domtool.Name) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = string(n)
	}
	return out
}
