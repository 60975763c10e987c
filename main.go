package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/config"
	"github.com/Aman3189/soriva-backend-sub011/internal/consistency"
	"github.com/Aman3189/soriva-backend-sub011/internal/events"
	"github.com/Aman3189/soriva-backend-sub011/internal/health"
	"github.com/Aman3189/soriva-backend-sub011/internal/history"
	"github.com/Aman3189/soriva-backend-sub011/internal/httpapi"
	_ "github.com/Aman3189/soriva-backend-sub011/internal/metrics" // register collectors
	"github.com/Aman3189/soriva-backend-sub011/internal/orchestrator"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/quota"
	"github.com/Aman3189/soriva-backend-sub011/internal/risk"
	"github.com/Aman3189/soriva-backend-sub011/internal/search"
	"github.com/Aman3189/soriva-backend-sub011/internal/strict"
	"github.com/Aman3189/soriva-backend-sub011/internal/tracing"
	"github.com/Aman3189/soriva-backend-sub011/internal/webfetch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := tracing.Initialize(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
	}, logger); err != nil {
		logger.Warn("tracing init failed, continuing without", zap.Error(err))
	}

	// Risk classifier, optionally backed by an override file that hot
	// reloads.
	classifier := risk.NewSwapper(nil)
	if cfg.KeywordsPath != "" {
		if sets, err := config.LoadKeywords(cfg.KeywordsPath); err != nil {
			logger.Warn("keyword override load failed, using compiled-in sets",
				zap.String("path", cfg.KeywordsPath),
				zap.Error(err),
			)
		} else {
			classifier.Replace(risk.NewClassifierWithSets(sets))
			stop, err := config.WatchKeywords(cfg.KeywordsPath, logger, func(sets map[risk.Category][]string) {
				classifier.Replace(risk.NewClassifierWithSets(sets))
			})
			if err != nil {
				logger.Warn("keyword watch failed", zap.Error(err))
			} else {
				defer stop()
			}
		}
	}

	// Provider quota: daily counters in Redis plus a local limiter. Without
	// Redis the local limiter still applies and daily caps are skipped.
	var rdb *redis.Client
	var checkers []health.Checker
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checkers = append(checkers, health.NewRedisChecker(rdb))
	}
	limits := make(map[string]quota.Limits)
	for _, name := range []string{"brave", "serpapi", "tavily"} {
		limits[name] = quota.Limits{
			DailyCalls: cfg.Quota.DailyCalls,
			PerSecond:  cfg.Quota.PerSecond,
			Burst:      cfg.Quota.Burst,
		}
	}
	q := quota.NewStore(rdb, limits, logger)

	provs := buildProviders(cfg, logger)
	checkers = append(checkers, health.NewProvidersChecker(cfg.ConfiguredProviders()))
	logger.Info("providers configured", zap.Strings("providers", cfg.ConfiguredProviders()))

	emitter := events.NewZapEmitter(logger)
	engine := search.NewEngine(provs, q, emitter, logger)

	var strictPath *strict.Searcher
	if cfg.Providers.GroundedURL != "" {
		grounded := providers.NewGroundedClient(cfg.Providers.GroundedURL, cfg.Providers.StrictTimeout, logger)
		strictPath = strict.NewSearcher(grounded, firstProvider(provs), cfg.Providers.StrictTimeout, logger)
	} else {
		logger.Warn("grounded URL not set, strict path disabled; high-risk queries use the general pipeline")
	}

	var fetcher *webfetch.Fetcher
	if cfg.WebFetch.Enabled {
		fetcher = webfetch.NewFetcher(cfg.WebFetch.Timeout, cfg.WebFetch.ReaderURL, logger)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.DSN, logger)
		if err != nil {
			logger.Warn("history store unavailable", zap.Error(err))
		} else {
			defer store.Close()
		}
	}

	orch := orchestrator.New(orchestrator.Config{
		Classifier:  classifier,
		Engine:      engine,
		Consistency: consistency.NewEngine(logger),
		Strict:      strictPath,
		Fetcher:     fetcher,
		Emitter:     emitter,
		Logger:      logger,
	})

	defaults := orchestrator.DefaultOptions()
	defaults.EnableWebFetch = cfg.WebFetch.Enabled
	defaults.MaxContentChars = cfg.WebFetch.MaxContentChars

	hm := health.NewManager(logger, checkers...)
	api := httpapi.NewServer(orch, store, hm.Handler(), defaults, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.Logging.Level); err == nil {
		zc.Level = lvl
	}
	return zc.Build()
}

// buildProviders returns the configured web providers wrapped in circuit
// breakers, in the canonical priority order.
func buildProviders(cfg *config.Config, logger *zap.Logger) []providers.Provider {
	bc := providers.DefaultBreakerConfig()
	var out []providers.Provider
	if cfg.Providers.BraveAPIKey != "" {
		out = append(out, providers.WithBreaker(
			providers.NewBrave(cfg.Providers.BraveAPIKey, cfg.Providers.Timeout, logger), bc, logger))
	}
	if cfg.Providers.SerpAPIKey != "" {
		out = append(out, providers.WithBreaker(
			providers.NewSerpAPI(cfg.Providers.SerpAPIKey, cfg.Providers.Timeout, logger), bc, logger))
	}
	if cfg.Providers.TavilyAPIKey != "" {
		out = append(out, providers.WithBreaker(
			providers.NewTavily(cfg.Providers.TavilyAPIKey, cfg.Providers.Timeout, logger), bc, logger))
	}
	return out
}

// firstProvider picks the verification provider for the strict path.
func firstProvider(provs []providers.Provider) providers.Provider {
	if len(provs) == 0 {
		return nil
	}
	return provs[0]
}
