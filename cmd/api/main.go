package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/identity"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the client state repository
	stateRepo, closeState, err := newStateRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize state storage: %w", err)
	}
	defer closeState()
	state := repository.NewDeviceResolver(stateRepo)

	// Initialize the event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Info().Msg("checkout event publishing disabled")
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	tokens := identity.NewTokenParser(cfg.Auth.JWTSecret, logger)
	provider := identity.ContextProvider{}

	// Initialize services
	carts := cart.NewStore(state, logger)
	cartService := cart.NewService(carts, client, provider, cfg.Checkout.DeliveryFee, logger)
	handoff := payment.NewHandoff(state, client, logger)
	verifier := payment.NewVerifier(state, carts, client, provider, publisher, payment.VerifierOptions{
		PreserveCartOnFailure: cfg.Checkout.PreserveCartOnFailure,
	}, logger)
	profiles := checkout.NewProfileStore(state, logger)
	orchestrator := checkout.NewOrchestrator(carts, state, client, handoff, provider, publisher, cfg.Checkout.DeliveryFee, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(client, logger),
		Order:    handler.NewOrderHandler(client, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(orchestrator, logger),
		Payment:  handler.NewPaymentHandler(verifier, logger),
		Profile:  handler.NewProfileHandler(profiles, logger),
	}, tokens, cfg.Server.AllowedOrigins, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("backend", cfg.Backend.BaseURL).
			Str("storage", cfg.Storage.Driver).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newStateRepository opens the storage selected by STORAGE_DRIVER. The
// returned func releases its connections.
func newStateRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.StateRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresRepository(pool, logger), pool.Close, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
		return repository.NewRedisRepository(client, cfg.Redis.TTL, logger), func() { client.Close() }, nil

	case config.StorageS3:
		repo, err := repository.NewS3Repository(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil

	default:
		logger.Warn().Msg("using in-memory state storage; carts are lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil
	}
}
