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
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SamuelFlet/hpdb/internal/auth"
	"github.com/SamuelFlet/hpdb/internal/config"
	"github.com/SamuelFlet/hpdb/internal/graph"
	apphttp "github.com/SamuelFlet/hpdb/internal/http"
	"github.com/SamuelFlet/hpdb/internal/media"
	"github.com/SamuelFlet/hpdb/internal/pubsub"
	"github.com/SamuelFlet/hpdb/internal/repository/sqlite"
	"github.com/SamuelFlet/hpdb/internal/service"
	"github.com/SamuelFlet/hpdb/internal/storage"
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
	productRepo := sqlite.NewProductRepository(db)
	listingRepo := sqlite.NewListingRepository(db)
	reviewRepo := sqlite.NewReviewRepository(db)

	for name, repo := range map[string]interface {
		Init(ctx context.Context) error
	}{
		"user":    userRepo,
		"product": productRepo,
		"listing": listingRepo,
		"review":  reviewRepo,
	} {
		if err := repo.Init(ctx); err != nil {
			logger.Fatalf("init %s repository: %v", name, err)
		}
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	pipeline := media.NewPipeline(storageSvc, cfg.Storage.Bucket, logger)
	bus := pubsub.NewListingBus()
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, userRepo)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	userService := service.NewUserService(userRepo, cfg.Auth.JWTSecret, tokenTTL)
	productService := service.NewProductService(productRepo, pipeline, logger)
	listingService := service.NewListingService(listingRepo, pipeline, bus, logger)
	reviewService := service.NewReviewService(reviewRepo)

	schema, err := graph.NewSchema()
	if err != nil {
		logger.Fatalf("build schema: %v", err)
	}
	builder := graph.NewContextBuilder(verifier, userService, productService, listingService, reviewService, bus)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(schema, builder, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("GraphQL API listening on %s", cfg.Server.Addr)
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

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.Storage.AccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		))
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
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Endpoint), nil
}
