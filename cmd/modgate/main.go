package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/cache"
	"github.com/moderationhq/modgate/pkg/config"
	handlers "github.com/moderationhq/modgate/pkg/handlers/http"
	infraAnthropic "github.com/moderationhq/modgate/pkg/infra/anthropic"
	"github.com/moderationhq/modgate/pkg/infra/httpx"
	infraLogger "github.com/moderationhq/modgate/pkg/infra/logger"
	infraOpenAI "github.com/moderationhq/modgate/pkg/infra/openai"
	"github.com/moderationhq/modgate/pkg/middleware"
	"github.com/moderationhq/modgate/pkg/moderation"
	"github.com/moderationhq/modgate/pkg/research"
	"github.com/moderationhq/modgate/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Warnf("config: %v", err)
	}
	cfg := config.GetConfig()

	fetchClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(time.Duration(cfg.Moderation.FetchTimeoutSecs)*time.Second),
		httpx.WithMaxResponseBodySize(int(cfg.Moderation.MaxImageBytes)+1),
	)
	classifierClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(time.Duration(cfg.Moderation.ClassifierTimeout) * time.Second),
	)

	fetcher := moderation.NewHTTPImageFetcher(fetchClient, logger, cfg.Moderation.MaxImageBytes)
	normalizer := moderation.NewNormalizer(fetcher, cfg.Moderation.MaxImageBytes)

	thresholds := moderation.Thresholds{
		Detect: cfg.Moderation.DetectThreshold,
		Strict: cfg.Moderation.StrictThreshold,
	}

	imageClassifier, textClassifier, err := buildClassifiers(cfg, classifierClient, logger)
	if err != nil {
		logger.Fatalf("failed to initialize classifiers: %v", err)
	}

	imageAnalyzer := moderation.NewImageAnalyzer(imageClassifier, thresholds, logger)
	textAnalyzer := moderation.NewTextAnalyzer(textClassifier, thresholds, logger)

	var verdictCache moderation.VerdictCache
	if cfg.Moderation.CacheEnabled {
		verdictCache = cache.NewVerdictCache(
			cfg.Redis,
			time.Duration(cfg.Moderation.CacheTTLSeconds)*time.Second,
			logger,
		)
	}

	service := moderation.NewService(
		normalizer,
		imageAnalyzer,
		textAnalyzer,
		verdictCache,
		logger,
		cfg.Moderation.MaxBatchSize,
		cfg.Moderation.MaxConcurrency,
	)

	handlerTransport := handlers.HandlerTransport{
		AnalyzeContentHandler:       handlers.NewAnalyzeContentHandler(logger, service),
		BatchAnalyzeHandler:         handlers.NewBatchAnalyzeHandler(logger, service),
		QuickCheckHandler:           handlers.NewQuickCheckHandler(logger, service),
		ModerationCategoriesHandler: handlers.NewModerationCategoriesHandler(),
		ModerationHealthHandler:     handlers.NewModerationHealthHandler(logger, service, cfg),
	}

	if cfg.Research.Enabled {
		completer := research.NewOpenAICompleter(cfg.Research.APIKey, cfg.Research.Model)
		agent := research.NewAgent(completer, textAnalyzer, logger)
		handlerTransport.ResearchQueryHandler = handlers.NewResearchQueryHandler(logger, agent)
		handlerTransport.ResearchHealthHandler = handlers.NewResearchHealthHandler(cfg)
	}

	middlewareTransport := middleware.Transport{
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
	}

	srv := server.NewModerationServer(server.ModerationServerDI{
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func buildClassifiers(
	cfg *config.Config,
	client httpx.Client,
	logger *logrus.Logger,
) (moderation.ImageClassifier, moderation.TextClassifier, error) {
	var imageClassifier moderation.ImageClassifier
	switch cfg.Providers.Vision.Provider {
	case "openai":
		classifier, err := infraOpenAI.NewVisionClassifier(
			cfg.Providers.Vision.APIKey,
			cfg.Providers.Vision.Model,
			cfg.Providers.Vision.Options,
			logger,
		)
		if err != nil {
			return nil, nil, err
		}
		imageClassifier = classifier
	case "anthropic":
		imageClassifier = infraAnthropic.NewClassifier(cfg.Providers.Vision.APIKey, cfg.Providers.Vision.Model, logger)
	default:
		return nil, nil, fmt.Errorf("unknown vision provider %q", cfg.Providers.Vision.Provider)
	}

	var textClassifier moderation.TextClassifier
	switch cfg.Providers.Text.Provider {
	case "openai":
		textClassifier = infraOpenAI.NewTextModerationClassifier(client, cfg.Providers.Text.APIKey, cfg.Providers.Text.Model, logger)
	case "anthropic":
		textClassifier = infraAnthropic.NewClassifier(cfg.Providers.Text.APIKey, cfg.Providers.Text.Model, logger)
	default:
		return nil, nil, fmt.Errorf("unknown text provider %q", cfg.Providers.Text.Provider)
	}

	return imageClassifier, textClassifier, nil
}
