package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/store"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	log := logger.Initialize(cfg.Environment)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	gw, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gw.EnsureDefaults(ctx); err != nil {
		log.Warn("defaults not ensured", zap.Error(err))
	}
	if cfg.SeedDemoUsers {
		created, err := store.SeedUsers(ctx, gw, store.DemoAccounts)
		if err != nil {
			log.Warn("demo users not seeded", zap.Error(err))
		} else {
			log.Info("demo users seeded", zap.Int("created", created))
		}
	}
	cancel()

	carts, closeCarts := openCartStore(cfg, log)
	defer closeCarts()

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	router := handlers.NewRouter(handlers.Dependencies{
		Store:          gw,
		Carts:          carts,
		Events:         publisher,
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		Location:       cfg.Location,
		LoginLimiter:   middleware.NewRateLimiter(cfg.LoginRatePerMinute, 10*time.Minute),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func openStore(cfg config.Config, log *zap.Logger) (store.Gateway, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(log, cfg.PostgresDSN, store.Tables()...)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(db), func() {
			if err := database.ClosePostgres(db); err != nil {
				log.Warn("postgres close failed", zap.Error(err))
			}
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	default:
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.DBName)
		log.Info("MongoDB connected", zap.String("db", db.Name()))

		if err := database.EnsureIndexes(db, log); err != nil {
			log.Warn("index warning", zap.Error(err))
		}
		return store.NewMongoStore(db), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}, nil
	}
}

// openCartStore prefers Redis and falls back to process memory when no
// REDIS_URL is set or Redis cannot be reached.
func openCartStore(cfg config.Config, log *zap.Logger) (cart.Store, func()) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, carts kept in memory")
		return cart.NewMemoryStore(cfg.CartTTL), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cart.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, carts kept in memory", zap.Error(err))
		return cart.NewMemoryStore(cfg.CartTTL), func() {}
	}
	return cart.NewRedisStore(client, cfg.CartTTL), func() {
		if err := client.Close(); err != nil {
			log.Warn("redis close failed", zap.Error(err))
		}
	}
}

func openPublisher(cfg config.Config, log *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(log)
	}
	log.Info("publishing order events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
}
