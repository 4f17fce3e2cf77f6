package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/catalog"
	"github.com/rianxlewis/routine-builder/internal/config"
	"github.com/rianxlewis/routine-builder/internal/gateway"
	"github.com/rianxlewis/routine-builder/internal/handlers"
	"github.com/rianxlewis/routine-builder/internal/providers"
	"github.com/rianxlewis/routine-builder/internal/routine"
	"github.com/rianxlewis/routine-builder/internal/router"
	"github.com/rianxlewis/routine-builder/internal/session"
	"github.com/rianxlewis/routine-builder/internal/store"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := newLogger(cfg.Env)
	log.Info().Msg("starting routine builder")

	// ──── Step 2: Open Preference Store ────
	prefStore, err := newStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("preference store initialization failed")
	}
	defer prefStore.Close()

	// ──── Step 3: Load Product Catalog ────
	// A missing or unparseable catalog degrades to an empty product list;
	// it never blocks startup.
	products, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("catalog load failed, starting with empty catalog")
		products = catalog.Empty()
	}
	log.Info().Int("products", products.Len()).Msg("catalog loaded")

	// ──── Step 4: Initialize Providers and Gateway ────
	primary := providers.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	secondary := providers.NewPerplexity(cfg.PerplexityAPIKey, cfg.PerplexityBaseURL)

	gatewayService := gateway.NewService(primary, secondary, cfg.SecondaryConfigured(), log)
	gatewayHandler := gateway.NewHandler(gatewayService, log)
	if cfg.SecondaryConfigured() {
		log.Info().Msg("web search provider configured")
	} else {
		log.Info().Msg("no web search provider key, all requests use the primary provider")
	}

	// ──── Step 5: Initialize Sessions and Handlers ────
	sessions := session.NewManager(prefStore, cfg.HistoryLimit, log)
	routineService := routine.NewService(gatewayService, sessions, log)

	productHandler := handlers.NewProductHandler(products)
	sessionHandler := handlers.NewSessionHandler(sessions, products, routineService, log)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(gatewayHandler, productHandler, sessionHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // upstream completions can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info().Str("port", cfg.Port).Msg("routine builder ready")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("no REDIS_URL set, using in-memory preference store")
		return store.NewMemory(), nil
	}
	st, err := store.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("redis connected")
	return st, nil
}
