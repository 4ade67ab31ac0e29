package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricefeed/internal/config"
	"pricefeed/internal/infra"
	"pricefeed/internal/repository"
	"pricefeed/internal/router"
	"pricefeed/internal/service"
	"pricefeed/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	storage, err := infra.NewStorage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to object storage")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, bucket := range []string{cfg.CSVBucket, cfg.InvoiceBucket} {
		if err := storage.EnsureBucket(ctx, bucket); err != nil {
			log.Fatal().Err(err).Str("bucket", bucket).Msg("failed to ensure bucket")
		}
	}

	// Composition root: everything the pipeline touches is wired here so the
	// HTTP surface and the worker pool share one service instance.
	vision := infra.NewVisionExtractor(cfg.OpenAIAPIKey, infra.VisionConfig{
		Model:       cfg.OpenAIModel,
		Prompt:      cfg.OpenAIPrompt,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
	})
	mailer := infra.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	prober := infra.NewAwakener(db, cfg.DBWakeAttempts, time.Second)

	svc := service.NewIngestService(
		prober,
		repository.NewProcessFileRepository(db),
		repository.NewReferenceRepository(db),
		repository.NewStagingRepository(db),
		repository.NewMergeRepository(db),
		storage,
		vision,
		service.IngestConfig{CSVBucket: cfg.CSVBucket, InvoiceBucket: cfg.InvoiceBucket},
	)

	dispatcher := worker.NewDispatcher(rdb)
	ingestWorker := worker.NewIngestWorker(svc, storage, mailer, cfg.AlertEmail)
	worker.StartPool(ctx, rdb, ingestWorker, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, storage, svc, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricefeed backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
