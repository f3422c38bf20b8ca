package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"sitegen_server/config"
	"sitegen_server/internal/ai"
	"sitegen_server/internal/ai/prompts"
	"sitegen_server/internal/api"
	"sitegen_server/internal/logging"
	"sitegen_server/internal/metrics"
	"sitegen_server/internal/quota"
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info(".env file not found, relying on system environment variables")
		} else {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logCloser, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Cannot configure logging: %v", err)
	}
	defer logCloser.Close()

	// --- Dependency Initialization ---
	generator, err := ai.New(ai.Settings{
		Provider:       cfg.LLMProvider,
		BaseURL:        cfg.LLMBaseURL,
		Model:          cfg.LLMModel,
		CredentialName: cfg.LLMAPIKeyEnv,
		Credential:     cfg.LookupCredential,
		Timeout:        cfg.GenerationTimeout,
	})
	if err != nil {
		log.Fatalf("Cannot create completion client: %v", err)
	}
	if err := generator.Ready(); err != nil {
		// Not fatal: the key is read per request and may be provided later.
		log.Warn(err.Error())
	}

	guard, err := quota.New(
		quota.WithLimit(cfg.DailyLimit),
		quota.WithWindow(cfg.QuotaWindow),
		quota.WithStrict(cfg.QuotaStrict),
	)
	if err != nil {
		log.Fatalf("Cannot create quota guard: %v", err)
	}

	composer := prompts.NewComposer(prompts.WithAugmentation(cfg.PromptAugment))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiHandler, err := api.NewAPIHandler(
		generator,
		composer,
		guard,
		metrics.New(registry),
		api.WithGenerationTimeout(cfg.GenerationTimeout),
		api.WithMaxConcurrentGenerations(cfg.MaxConcurrentGenerations),
	)
	if err != nil {
		log.Fatalf("Cannot create API handler: %v", err)
	}

	// --- Start API Server ---
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Info("Running in Gin Debug Mode")
	}

	router := api.NewRouter(apiHandler, api.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:        cfg.ServerAddress,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Leave room to write the response after a slow generation.
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"addr":        cfg.ServerAddress,
			"provider":    cfg.LLMProvider,
			"daily_limit": cfg.DailyLimit,
			"strict":      cfg.QuotaStrict,
		}).Info("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s", err)
		}
		log.Info("API server has stopped listening")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("API server forced shutdown error: %v", err)
	} else {
		log.Info("API server gracefully stopped")
	}

	log.Info("Application exiting")
}
