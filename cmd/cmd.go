package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption-backend/internal/auth"
	"pet-adoption-backend/internal/config"
	"pet-adoption-backend/internal/handlers"
	"pet-adoption-backend/internal/middleware"
	"pet-adoption-backend/internal/repository"
	"pet-adoption-backend/internal/repository/memory"
	"pet-adoption-backend/internal/repository/mongo"
	"pet-adoption-backend/internal/repository/postgres"
	"pet-adoption-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Open storage
	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open storage")
	}
	defer closeStore()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Storage ready")

	// Uploads are optional: without a bucket the upload endpoints answer 503
	var presigner services.Presigner
	if cfg.AWS.S3Bucket != "" {
		client, err := services.NewS3Presigner(context.Background(), cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 presigner")
		}
		presigner = client
	} else {
		log.Warn().Msg("No S3 bucket configured, uploads disabled")
	}
	uploads := services.NewUploadService(presigner, cfg.AWS)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	userService := services.NewUserService(store.Users, tokens, uploads)
	petService := services.NewPetService(store.Pets, store.PetFeatures, store.Users, uploads)
	svc := handlers.Services{
		Users:         userService,
		Profiles:      services.NewAdopterProfileService(store.AdopterProfiles, store.Users),
		Pets:          petService,
		Reports:       services.NewReportService(store.Reports, store.Pets),
		Adoptions:     services.NewAdoptionService(store.Adoptions, petService, store.AdopterProfiles, store.Reports),
		Conversations: services.NewConversationService(store.Conversations, store.Messages, store.Users, uploads),
	}

	limiter := middleware.NewLimiterStore(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, time.Minute)
	defer limiter.Stop()

	// Setup router
	r := handlers.NewRouter(svc, handlers.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StorageTimeout: cfg.Database.Timeout,
		AuthLimiter:    limiter,
		Metrics:        middleware.NewMetrics(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore connects the configured backend and returns its repositories
// along with a function releasing the connection
func openStore(cfg config.DatabaseConfig) (*repository.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), db.Close, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		if err := client.CreateIndexes(ctx); err != nil {
			client.Close(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}
		return mongo.NewStore(client.Database()), closeFn, nil

	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
