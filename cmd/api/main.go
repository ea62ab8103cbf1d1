package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theroundhq/marketplace/config"
	httpDelivery "github.com/theroundhq/marketplace/internal/delivery/http"
	"github.com/theroundhq/marketplace/internal/delivery/kafka/consumer"
	"github.com/theroundhq/marketplace/internal/delivery/kafka/producer"
	"github.com/theroundhq/marketplace/internal/identity"
	"github.com/theroundhq/marketplace/internal/near"
	mongoRepo "github.com/theroundhq/marketplace/internal/repository/mongo"
	redisRepo "github.com/theroundhq/marketplace/internal/repository/redis"
	"github.com/theroundhq/marketplace/internal/service"
	pkgKafka "github.com/theroundhq/marketplace/pkg/kafka"
	pkgLog "github.com/theroundhq/marketplace/pkg/logger"
	pkgMongo "github.com/theroundhq/marketplace/pkg/mongo"
	pkgRedis "github.com/theroundhq/marketplace/pkg/redis"
)

// reconcileGuardTTL bounds how long a transaction hash is held in the fast
// duplicate filter. The Mongo purchase record covers anything older.
const reconcileGuardTTL = 24 * time.Hour

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	mongoCli, db, err := pkgMongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to MongoDB: %v", err)
	}
	defer pkgMongo.Disconnect(ctx, mongoCli)

	if err := mongoRepo.EnsureIndexes(ctx, db); err != nil {
		l.Fatalf(ctx, "Failed to ensure indexes: %v", err)
	}

	redisCli, err := pkgRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer pkgRedis.Disconnect(redisCli)

	// Repositories
	userRepo := mongoRepo.NewMongoUserRepository(db, l)
	venueRepo := mongoRepo.NewMongoVenueRepository(db, l)
	eventRepo := mongoRepo.NewMongoEventRepository(db, l)
	listingRepo := mongoRepo.NewMongoListingRepository(db, l)
	purchaseRepo := mongoRepo.NewMongoPurchaseRepository(db, l)
	guard := redisRepo.NewRedisReconcileGuard(redisCli, reconcileGuardTTL, l)

	// Ledger access
	nearCli := near.NewClient(cfg.Near)
	verifier := near.NewVerifier(nearCli)

	// Federated identity is optional; without credentials only NEAR
	// logins are accepted.
	var federated identity.TokenVerifier
	if cfg.Auth.FirebaseCredentialsFile != "" {
		federated, err = identity.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseCredentialsFile)
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize federated identity verifier: %v", err)
		}
	} else {
		federated = identity.Disabled()
		l.Warn(ctx, "Federated identity verifier disabled: no credentials file configured")
	}

	// Kafka
	var prod producer.Producer
	var cons *consumer.Consumer
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			RetryMax: cfg.Kafka.ProducerRetryMax,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}

		prod = producer.NewProducer(kafkaSyncProd, l)
		defer prod.Close()
	}

	// Services
	userSvc := service.NewUserService(userRepo, cfg.Auth, l)
	authSvc := service.NewAuthService(userSvc, verifier, federated, cfg.JWT, l)
	venueSvc := service.NewVenueService(venueRepo, l)
	eventSvc := service.NewEventService(eventRepo, venueRepo, l)
	listingSvc := service.NewListingService(
		listingRepo, purchaseRepo, eventRepo, venueRepo,
		guard, nearCli, prod,
		cfg.Near, cfg.Server.Domain, l,
	)

	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		cons = consumer.NewConsumer(kafkaConsGr, listingSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
	}

	// HTTP server
	handler := httpDelivery.NewHTTPHandler(
		authSvc, userSvc, venueSvc, eventSvc, listingSvc,
		cfg.Auth.WebhookToken, l,
	)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpDelivery.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf(ctx, "Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	cancel()
	if cons != nil {
		if err := cons.Close(); err != nil {
			l.Errorf(ctx, "Failed to close Kafka consumer: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(ctx, "Failed to shut down HTTP server: %v", err)
	}

	l.Info(ctx, "Server exited")
}
