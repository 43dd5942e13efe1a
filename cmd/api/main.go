package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/clinic-booking/internal/adapters/database"
	"github.com/clinicdesk/clinic-booking/internal/adapters/events"
	"github.com/clinicdesk/clinic-booking/internal/api/handlers"
	"github.com/clinicdesk/clinic-booking/internal/api/routes"
	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/domain/providers"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/postgres"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/redis"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
	"github.com/clinicdesk/clinic-booking/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client. The event side channel degrades gracefully
	// without it.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Redis client, event bus disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized successfully")
	}

	// Initialize adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	paymentAdapter := database.NewPaymentAdapter(pgClient)
	doctorAdapter := database.NewDoctorAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("Event bus initialized successfully")
	}

	// Initialize services
	sqlxDB := sqlx.NewDb(pgClient.DB(), "postgres")
	notificationService := services.NewNotificationService(sqlxDB, eventBus)

	slotService := services.NewSlotService()
	availabilityService := services.NewAvailabilityService(appointmentAdapter, cfg.Scheduling.SlotMinutes)
	appointmentService := services.NewAppointmentService(
		appointmentAdapter,
		doctorAdapter,
		availabilityService,
		notificationService,
	)
	paymentService := services.NewPaymentService(paymentAdapter, appointmentAdapter, notificationService)
	statsService := services.NewStatsService(appointmentAdapter, doctorAdapter, userAdapter)

	// Initialize handlers
	doctorHandler := handlers.NewDoctorHandler(doctorAdapter, slotService, availabilityService, cfg.Scheduling)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, metrics)
	paymentHandler := handlers.NewPaymentHandler(paymentService, metrics)
	statsHandler := handlers.NewStatsHandler(statsService)
	sseHandler := handlers.NewSSEHandler(eventBus)

	// Set up router
	router := routes.NewRouter(
		doctorHandler,
		appointmentHandler,
		paymentHandler,
		statsHandler,
		sseHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	}

	logger.Info().Msg("Server stopped")
}
