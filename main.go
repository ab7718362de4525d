package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking_marketplace/internal/api"
	"parking_marketplace/internal/api/handler"
	"parking_marketplace/internal/api/middleware"
	"parking_marketplace/internal/config"
	"parking_marketplace/internal/events"
	"parking_marketplace/internal/repository"
	"parking_marketplace/internal/repository/file"
	"parking_marketplace/internal/repository/memory"
	"parking_marketplace/internal/repository/postgresql"
	"parking_marketplace/internal/service"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-xray-sdk-go/xray"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{ServiceVersion: "1.0.0"}); err != nil {
			log.Printf("Failed to configure X-Ray: %v", err)
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	ctx := context.Background()

	// 2. Blob store
	blobs, closeBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not open %s store: %v", cfg.StoreBackend, err)
	}
	defer closeBlobs()
	log.Printf("Using %s blob store.", cfg.StoreBackend)

	// 3. Publishers
	wsCtx, stopWS := context.WithCancel(ctx)
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start(wsCtx)

	publishers := service.MultiPublisher{webSocketManager}
	if cfg.SQSCatalogQueueURL == "" {
		log.Println("SQS_CATALOG_EVENT_QUEUE_URL not set, catalog events will not be sent to SQS.")
	} else {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(ctx, awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Could not load AWS SDK config: %v", err)
		}
		publishers = append(publishers, events.NewSQSPublisher(sqs.NewFromConfig(awsSDKCfg), cfg.SQSCatalogQueueURL))
		log.Println("Publishing catalog events to SQS queue:", cfg.SQSCatalogQueueURL)
	}

	// 4. Stores
	sessionStore, err := service.NewSessionStore(ctx, blobs, service.FixedLatency(cfg.AuthLatency))
	if err != nil {
		log.Fatalf("Could not initialise session store: %v", err)
	}
	catalogStore, err := service.NewCatalogStore(ctx, blobs, publishers)
	if err != nil {
		log.Fatalf("Could not initialise catalog store: %v", err)
	}

	// 5. HTTP
	authMiddleware := middleware.NewAuthMiddleware(sessionStore)
	router := api.SetupRouter(sessionStore, catalogStore, authMiddleware, webSocketManager)

	var httpHandler http.Handler = router
	if cfg.EnableTracing {
		httpHandler = xray.Handler(xray.NewFixedSegmentNamer("parking-marketplace"), router)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: httpHandler,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
	stopWS()

	log.Println("Server stopped.")
}

func newBlobStore(ctx context.Context, cfg *config.Config) (repository.BlobStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.NewMemBlobRepository(), func() {}, nil
	case config.BackendPostgres:
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgresql.EnsureSchema(ctx, db, cfg.DBBlobTable); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgresql.NewPgBlobRepository(db, cfg.DBBlobTable), func() { db.Close() }, nil
	default:
		store, err := file.NewFileBlobRepository(cfg.StoreFilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
