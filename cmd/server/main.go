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

	"go.uber.org/zap"

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/market"
	"trade-journal-go/internal/ocr"
	"trade-journal-go/internal/server"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret must be configured")
	}
	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	// OCR pipeline. A failed health probe is not fatal; scans report 503
	// until Tesseract becomes available.
	if err := os.MkdirAll(cfg.OCR.TempDir, 0o755); err != nil {
		log.Fatal("Failed to create OCR temp directory", zap.Error(err))
	}
	extractor := ocr.NewTesseractExtractor(cfg.OCR.Language)
	if err := extractor.Health(); err != nil {
		log.Warn("OCR engine is not available at startup", zap.Error(err))
	} else {
		log.Info("OCR engine ready", zap.String("language", cfg.OCR.Language))
	}
	pipeline := ocr.NewPipeline(extractor, cfg.OCR.TempDir, cfg.OCR.MaxUploadBytes, log)

	// Market data proxies
	newsCache := market.NewNewsCache(time.Duration(cfg.MarketNews.CacheTTLMinutes) * time.Minute)
	news := market.NewNewsClient(&cfg.MarketNews, newsCache, log)
	symbols := market.NewSymbolClient(&cfg.SymbolSearch, log)

	handler := server.NewHandler(db, log, tokens, pipeline, extractor.Health, news, symbols,
		cfg.OCR.MaxUploadBytes, cfg.Server.UploadDir)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Block until a shutdown signal arrives, then drain in-flight requests.
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
