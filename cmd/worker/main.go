package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"viralvideos/internal/adapter/repo"
	"viralvideos/internal/infra"
	"viralvideos/internal/infra/preferences"
	"viralvideos/internal/providers/video"
	"viralvideos/internal/storage"
	"viralvideos/internal/worker"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	videos := repo.NewVideoRequestRepository(runner)
	if err := videos.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: schema bootstrap failed")
	}
	if n, err := videos.RequeueRunning(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: requeue interrupted requests failed")
	} else if n > 0 {
		logger.Warn().Int64("count", n).Msg("worker: requeued requests interrupted by a previous shutdown")
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}
	if err := store.EnsureDir(); err != nil {
		logger.Fatal().Err(err).Str("dir", store.BasePath()).Msg("worker: output directory unavailable")
	}

	settings := preferences.NewSettings(preferences.NewStore(runner), preferences.Defaults{
		SoraEndpoint:   cfg.SoraEndpoint,
		SoraAPIKey:     cfg.SoraAPIKey,
		SoraDeployment: cfg.SoraDeployment,
	})

	soraLogger := infra.Component(&logger, "sora")
	generator, err := video.NewGenerator(video.Options{
		Settings:        settings,
		Sink:            store,
		Logger:          &soraLogger,
		PollInterval:    cfg.SoraPollInterval,
		MaxPolls:        cfg.SoraMaxPolls,
		RequestTimeout:  cfg.SoraRequestTimeout,
		DownloadTimeout: cfg.SoraDownloadTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure generator")
	}

	workerLogger := infra.Component(&logger, "worker")
	w, err := worker.NewRunner(worker.Options{
		Repo:         videos,
		Generator:    generator,
		Status:       generator.Status(),
		Logger:       &workerLogger,
		IdleInterval: cfg.WorkerIdleInterval,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure runner")
	}

	logger.Info().Str("output_dir", store.BasePath()).Int("max_polls", cfg.SoraMaxPolls).Msg("worker: starting")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
