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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	config "github.com/phillip/culture-events-go/config"
	controllers "github.com/phillip/culture-events-go/controllers"
	"github.com/phillip/culture-events-go/logger"
	middleware "github.com/phillip/culture-events-go/middleware"
	routes "github.com/phillip/culture-events-go/routes"
	store "github.com/phillip/culture-events-go/store"
	utils "github.com/phillip/culture-events-go/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("[main] no .env file found, using the environment")
	}

	cfg := config.Load()
	logger.Init(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	if err := cfg.Validate(); err != nil {
		logger.Log.Error("[main] invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, err := connectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Log.Error("[main] mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Log.Error("[main] mongo disconnect failed", "error", err)
		}
	}()
	db := client.Database(cfg.DBName)

	if err := bootstrap(ctx, db); err != nil {
		logger.Log.Error("[main] database bootstrap failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db, cfg.MongoTransactions)

	// --- Redis (optional) ---
	var (
		limiter     middleware.Limiter
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = utils.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Error("[main] redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer redisClient.Close()
			limiter = middleware.NewRedisLimiter(redisClient, "culture-events:")
		}
	} else {
		logger.Log.Warn("[main] REDIS_URL not set, rate limiting disabled")
	}

	// --- Image storage ---
	var images utils.ImageStore = utils.NewLocalImageStore(cfg.UploadDir, "/uploads")
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryImageStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Log.Error("[main] cloudinary setup failed, using local uploads", "error", err)
		} else {
			images = cld
		}
	}

	env := controllers.NewEnv(cfg, st, images, limiter, middleware.NewAdminAuth(cfg, limiter))
	env.HealthChecks["mongo"] = func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
	if redisClient != nil {
		env.HealthChecks["redis"] = func(ctx context.Context) error {
			return utils.RedisHealthCheck(ctx, redisClient)
		}
	}

	// --- Router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := routes.NewEngine(cfg)
	if err != nil {
		logger.Log.Error("[main] router setup failed", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.Static("/uploads", cfg.UploadDir)
	routes.SetupRoutes(r, env)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("[main] listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("[main] server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("[main] shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Log.Error("[main] graceful shutdown failed", "error", err)
	}
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		return nil, err
	}
	logger.Log.Info("[main] connected to mongo")
	return client, nil
}

// bootstrap creates indexes, rewrites legacy event dates and seeds missing
// settings. Every step is safe to repeat on each start.
func bootstrap(ctx context.Context, db *mongo.Database) error {
	bctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := store.EnsureIndexes(bctx, db); err != nil {
		return err
	}

	migrated, err := store.NewEventStore(db).MigrateLegacyDates(bctx)
	if err != nil {
		return err
	}
	if migrated > 0 {
		logger.Log.Info("[main] migrated legacy event dates", "events", migrated)
	}

	seeded, err := store.NewSettingsStore(db).SeedDefaults(bctx)
	if err != nil {
		return err
	}
	if seeded > 0 {
		logger.Log.Info("[main] seeded default settings", "keys", seeded)
	}
	return nil
}
