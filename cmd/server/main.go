package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"onepager/internal/actions"
	"onepager/internal/auth"
	"onepager/internal/config"
	"onepager/internal/domain/repositories"
	"onepager/internal/handler"
	"onepager/internal/metrics"
	"onepager/internal/middleware"
	"onepager/internal/repository/postgres"
	redisstore "onepager/internal/repository/redis"
	"onepager/internal/service/analysis"
	"onepager/internal/service/llm"
	"onepager/internal/service/onepager"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging, mirrored to a file when LOG_DIR is set
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, logOut)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"ai_provider", cfg.AIProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verifier for Supabase authentication. Without it only guests are served.
	var jwtVerifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		v, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("SUPABASE_URL not set, accepting guest sessions only")
	}

	// User documents live in Postgres
	var userRepo repositories.OnePagerRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected", "table", tables.OnePagers)

		userRepo = postgres.NewOnePagerRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
	} else {
		logger.Warn("DATABASE_URL not set, user documents are kept in memory")
	}

	// Guest documents live in Redis with a sliding TTL
	var guestRepo repositories.GuestRepository
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		guestRepo = redisstore.NewGuestStore(client, cfg.TablePrefix, cfg.GuestTTL, logger)
		logger.Info("guest store connected", "ttl", cfg.GuestTTL)
	} else {
		logger.Warn("REDIS_URL not set, guest documents are kept in memory")
	}

	// Refine actions and AI backend
	catalog, err := actions.Load()
	if err != nil {
		log.Fatalf("Failed to load action catalog: %v", err)
	}
	generator, err := llm.SetupGenerator(cfg, catalog, logger)
	if err != nil {
		log.Fatalf("Failed to setup AI generator: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	service := onepager.NewService(onepager.Deps{
		Users:     userRepo,
		Guests:    guestRepo,
		Analyzer:  analysis.NewEngine(),
		Generator: generator,
		Catalog:   catalog,
		Metrics:   m,
		Debounce:  cfg.SaveDebounce,
		// Idle sessions leave memory; their documents stay in the stores
		IdleTimeout: cfg.GuestTTL,
		Logger:      logger,
	})
	onePagerHandler := handler.NewOnePagerHandler(service, logger)
	limiter := middleware.NewRateLimiter(cfg.AIRateRPS, cfg.AIRateBurst, m, logger)

	logger.Info("services initialized")

	// API routes (Go 1.22+ enhanced patterns), authenticated
	api := http.NewServeMux()
	handler.RegisterRoutes(api, onePagerHandler, limiter.Limit)

	// Public routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/api/", middleware.AuthMiddleware(jwtVerifier, logger)(api))

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.GuestHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second, // generate is synchronous
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	// Flush pending autosaves before the stores close
	if err := service.Shutdown(shutdownCtx); err != nil {
		logger.Error("one-pager service shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
