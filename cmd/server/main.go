package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"movie-api/internal/auth"
	"movie-api/internal/cache"
	"movie-api/internal/config"
	"movie-api/internal/events"
	apphttp "movie-api/internal/http"
	"movie-api/internal/repository/sqlite"
	"movie-api/internal/service"
	"movie-api/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	movieRepo := sqlite.NewMovieRepository(db)
	reviewRepo := sqlite.NewReviewRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := movieRepo.Init(ctx); err != nil {
		logger.Fatalf("init movie repository: %v", err)
	}
	if err := reviewRepo.Init(ctx); err != nil {
		logger.Fatalf("init review repository: %v", err)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if cfg.Auth.TokenTTLMinutes == 0 {
		logger.Warn("token expiration disabled; issued tokens never expire")
	}

	var publisher service.ReviewEventPublisher
	if cfg.Events.URL != "" {
		publisher = events.NewPublisher(cfg.Events.URL, cfg.Events.Queue)
		logger.Infof("publishing review events to queue %s", cfg.Events.Queue)
	}

	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	movieService := service.NewMovieService(movieRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, publisher, logger)

	responseCache := buildCache(cfg, logger)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		movieService,
		reviewService,
		tokens,
		responseCache,
		storageSvc,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildCache(cfg config.Config, logger *logrus.Logger) *cache.ResponseCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	client := cache.NewClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if client == nil {
		logger.Warnf("redis unreachable at %s; response caching disabled", cfg.Cache.Addr)
		return nil
	}

	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		logger.Warnf("invalid cache ttl %q; using 30s", cfg.Cache.TTL)
		ttl = 30 * time.Second
	}

	logger.Infof("caching responses in redis at %s (ttl %s)", cfg.Cache.Addr, ttl)
	return cache.New(client, ttl, cfg.Cache.Prefix, logger)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not set; poster endpoints disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("storing posters in s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
