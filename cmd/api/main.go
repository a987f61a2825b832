package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/clinaid/medassist/internal/adapters/cache"
	"github.com/clinaid/medassist/internal/adapters/database"
	"github.com/clinaid/medassist/internal/adapters/events"
	"github.com/clinaid/medassist/internal/adapters/providers/generation"
	"github.com/clinaid/medassist/internal/api/handlers"
	"github.com/clinaid/medassist/internal/api/middleware"
	"github.com/clinaid/medassist/internal/api/routes"
	"github.com/clinaid/medassist/internal/application/services"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/internal/infrastructure/clients/postgres"
	"github.com/clinaid/medassist/internal/infrastructure/clients/redis"
	"github.com/clinaid/medassist/internal/infrastructure/observability"
	"github.com/clinaid/medassist/pkg/config"
	"github.com/clinaid/medassist/pkg/secrets"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Pull deployment secrets (provider API keys, DB credentials) from Vault
	// before config parsing, when a Vault address is configured.
	vaultResult, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv("medassist/api"))
	if err != nil {
		log.Warn().Err(err).Str("path", vaultResult.Path).Msg("vault secrets unavailable, continuing with environment")
	} else if vaultResult.Enabled {
		log.Info().Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("vault secrets applied")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The service degrades to uncached,
	// event-less operation when Redis is unavailable.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Initialize adapters
	conversationAdapter := database.NewConversationAdapter(pgClient)
	analysisAdapter := database.NewAnalysisAdapter(pgClient)
	summaryAdapter := database.NewArticleSummaryAdapter(pgClient)

	// Initialize the provider router (primary backend plus fallback)
	generator, err := generation.NewRouter(&cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize generation providers")
	}

	// Load deterministic safety rules
	rules, err := services.LoadDrugSafetyRules(cfg.Safety.RulesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Safety.RulesPath).Msg("failed to load drug safety rules")
	}
	safetyService := services.NewSafetyService(cfg.Safety.EmergencyKeywordList(), rules)

	// Initialize services
	analysisService := services.NewClinicalAnalysisService(
		generator,
		services.NewPromptCompiler(cfg.AI.HistoryWindow),
		services.NewResponseExtractor(),
		safetyService,
		services.NewRiskAggregator(),
		conversationAdapter,
		analysisAdapter,
	)

	if eventBus != nil {
		analysisService.SetEventBus(eventBus)
	}

	// Invalidate cached summary responses when background generation
	// finishes
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	summaryService := services.NewArticleSummaryService(
		generator,
		summaryAdapter,
		eventBus,
		cfg.AI.SummaryWorkers,
	)
	defer summaryService.Close()

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	conversationHandler := handlers.NewConversationHandler(conversationAdapter, analysisAdapter)
	summaryHandler := handlers.NewArticleSummaryHandler(summaryService, summaryAdapter)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		analysisHandler,
		conversationHandler,
		summaryHandler,
		generator,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Stop cache invalidation before closing the bus
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
