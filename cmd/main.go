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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"afrilink/internal/auth"
	"afrilink/internal/config"
	"afrilink/internal/events"
	httpapi "afrilink/internal/http"
	"afrilink/internal/infrastructure/postgres"
	"afrilink/internal/infrastructure/tracing"
	"afrilink/internal/repository"
	"afrilink/internal/service"

	_ "afrilink/docs"
)

// @title AfriLink Marketplace API
// @version 1.0
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	conf := config.CreateNewConfig()
	zerolog.SetGlobalLevel(conf.LogLevel)

	if conf.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	traceProvider, err := tracing.InitTracing(conf.TracingConfig.CollectorHost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracing")
	}
	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Str("component", "TracerShutdown").Msg("")
		}
	}()

	var (
		products      repository.ProductRepository
		notifications repository.NotificationRepository
	)
	switch conf.Store {
	case config.StorePostgres:
		db, err := postgres.GetDBInstance(conf.PostgreSQLConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer db.Close()
		if err := repository.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
		products = repository.NewPostgresProducts(db)
		notifications = repository.NewPostgresNotifications(db)
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		products = store
		notifications = repository.NewMemoryNotifications(store)
	default:
		log.Fatal().Str("store", conf.Store).Msg("Unknown STORE")
	}
	products = repository.NewBreakerProducts("products", products)

	var publisher events.Publisher = events.Nop{}
	if conf.KafkaConfig.BrokerAddress != "" {
		conn, err := events.CreateKafkaProducer(conf.KafkaConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Kafka")
		}
		defer conn.Close()
		publisher = events.NewKafkaPublisher(conn)
	}

	notificationsSvc := service.NewNotificationService(notifications, service.NewHub())
	productsSvc := service.NewProductService(products, publisher, notificationsSvc).WithStoreTimeout(conf.StoreTimeout)
	authn := auth.NewAuthenticator(conf.JWTSecret)
	metrics := httpapi.NewMetrics()

	srv := httpapi.NewServer(productsSvc, notificationsSvc, authn, metrics)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", conf.ServicePort),
		Handler: srv.Engine(),
	}
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", conf.MetricsPort),
		Handler: metricsMux(metrics),
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("store", conf.Store).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("metrics shutdown error")
	}
}

func metricsMux(m *httpapi.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
