// README: Entry point; loads config, wires services and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"go.uber.org/zap"

	"petcare/internal/config"
	httptransport "petcare/internal/http"
	"petcare/internal/infra"
	"petcare/internal/maps"
	"petcare/internal/modules/distance"
	"petcare/internal/modules/holiday"
	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Fatal("firebase init", zap.Error(err))
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var provider distance.Provider
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		provider = routes
	} else {
		logger.Warn("PETCARE_MAPS_API_KEY not set, distances will be estimated")
	}
	distanceSvc := distance.NewService(provider, distance.NewRedisCache(redisClient), distance.Config{
		CacheTTL:   cfg.Distance.CacheTTL,
		FallbackKm: cfg.Distance.FallbackKm,
		RoadFactor: cfg.Distance.RoadFactor,
	}, logger)

	holidaySvc := holiday.NewService(holiday.NewStore(dbPool), logger)
	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), holidaySvc, distanceSvc, cfg.Pricing.Currency, logger)

	var publisher reservation.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := infra.NewKafkaPublisher(cfg.Kafka.Brokers, nil)
		if err != nil {
			logger.Fatal("kafka init", zap.Error(err))
		}
		defer kafka.Close()
		publisher = kafka
	}
	reservationSvc := reservation.NewService(reservation.NewStore(dbPool), pricingSvc, publisher, cfg.Kafka.Topic, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:     pricingSvc,
		Holidays:    holidaySvc,
		Reservation: reservationSvc,
		Verifier:    verifier,
		Log:         logger,
		Location:    cfg.Pricing.Location,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, cfg.HTTP.ShutdownTimeout, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
