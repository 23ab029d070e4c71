package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	assethandler "brique/internal/asset/handler"
	assetmetrics "brique/internal/asset/metrics"
	assetservice "brique/internal/asset/service"
	assetstore "brique/internal/asset/store"
	factoryhandler "brique/internal/factory/handler"
	factorymetrics "brique/internal/factory/metrics"
	factoryservice "brique/internal/factory/service"
	factorystore "brique/internal/factory/store"
	identitycache "brique/internal/identity/cache"
	identityhandler "brique/internal/identity/handler"
	identitymetrics "brique/internal/identity/metrics"
	identityservice "brique/internal/identity/service"
	identitystore "brique/internal/identity/store"
	kychandler "brique/internal/kyc/handler"
	kycmetrics "brique/internal/kyc/metrics"
	kycservice "brique/internal/kyc/service"
	kycstore "brique/internal/kyc/store"
	"brique/internal/ledger"
	"brique/internal/platform/config"
	"brique/internal/platform/database"
	"brique/internal/platform/health"
	"brique/internal/platform/httpserver"
	"brique/internal/platform/kafka/producer"
	"brique/internal/platform/logger"
	"brique/internal/platform/redis"
	salehandler "brique/internal/sale/handler"
	salemetrics "brique/internal/sale/metrics"
	saleservice "brique/internal/sale/service"
	salestore "brique/internal/sale/store"
	"brique/internal/seeder"
	httptransport "brique/internal/transport/http"
	"brique/pkg/platform/events"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing brique ledger",
		"addr", cfg.Addr,
		"platform_owner", cfg.PlatformOwner.Hex(),
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}

	// Event trail: Kafka when brokers are configured, structured log otherwise.
	var publisher events.Publisher = &events.LogPublisher{Logger: log}
	var prod *producer.Producer
	if cfg.KafkaBrokers != "" {
		prod, err = producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Acks:            "all",
			Retries:         3,
			DeliveryTimeout: 30 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		publisher = events.NewKafkaPublisher(prod, cfg.EventsTopic, log)
	}

	// All mutations across the five registries share one serial transaction
	// scope, so cross-service writes commit or fail as a unit.
	tx := ledger.NewSerialTx()

	var (
		identityRecords identityservice.Store
		kycRequests     kycservice.Store
		assets          assetservice.Store
		sales           saleservice.Store
		factoryIndex    factoryservice.Store
	)
	if pool != nil {
		identityRecords = identitystore.NewPostgres(pool.DB())
		kycRequests = kycstore.NewPostgres(pool.DB())
		assets = assetstore.NewPostgres(pool.DB())
		sales = salestore.NewPostgres(pool.DB())
		factoryIndex = factorystore.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		identityRecords = identitystore.NewInMemory()
		kycRequests = kycstore.NewInMemory()
		assets = assetstore.NewInMemory()
		sales = salestore.NewInMemory()
		factoryIndex = factorystore.NewInMemory()
	}

	identityOpts := []identityservice.Option{
		identityservice.WithLogger(log),
		identityservice.WithEventPublisher(publisher),
		identityservice.WithMetrics(identitymetrics.New()),
	}
	if rdb != nil {
		identityOpts = append(identityOpts,
			identityservice.WithCache(identitycache.New(rdb.Client, cfg.VerificationCacheTTL)))
	}
	identitySvc := identityservice.New(identityRecords, cfg.PlatformOwner, tx, identityOpts...)

	kycSvc := kycservice.New(kycRequests, cfg.PlatformOwner, tx,
		kycservice.WithLogger(log),
		kycservice.WithEventPublisher(publisher),
		kycservice.WithMetrics(kycmetrics.New()),
	)

	assetSvc := assetservice.New(assets, identitySvc, cfg.PlatformOwner, tx,
		assetservice.WithLogger(log),
		assetservice.WithEventPublisher(publisher),
		assetservice.WithMetrics(assetmetrics.New()),
	)

	saleSvc := saleservice.New(sales, assetSvc, identitySvc, cfg.PlatformOwner, tx,
		saleservice.WithLogger(log),
		saleservice.WithEventPublisher(publisher),
		saleservice.WithMetrics(salemetrics.New()),
	)

	factorySvc := factoryservice.New(factoryIndex, assetSvc, cfg.PlatformOwner, tx,
		factoryservice.WithLogger(log),
		factoryservice.WithEventPublisher(publisher),
		factoryservice.WithMetrics(factorymetrics.New()),
	)

	if cfg.DevSeed {
		seed := seeder.New(cfg.PlatformOwner, identitySvc, kycSvc, assetSvc, factorySvc, saleSvc, log)
		if err := seed.SeedAll(context.Background()); err != nil {
			log.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	healthHandler := health.New()
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	if rdb != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Health(ctx)
		})
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Identity: identityhandler.New(identitySvc, cfg.PlatformOwner, log),
		KYC:      kychandler.New(kycSvc, cfg.PlatformOwner, log),
		Asset:    assethandler.New(assetSvc, log),
		Sale:     salehandler.New(saleSvc, cfg.PlatformOwner, log),
		Factory:  factoryhandler.New(factorySvc, cfg.PlatformOwner, log),
		Health:   healthHandler,
	}, httptransport.Config{
		AdminToken:    cfg.AdminToken,
		JWTSigningKey: cfg.JWTSigningKey,
	}, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if kp, ok := publisher.(*events.KafkaPublisher); ok {
		kp.Close()
	}
	if prod != nil {
		prod.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if pool != nil {
		_ = pool.Close()
	}

	log.Info("server stopped")
}
