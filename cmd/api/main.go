package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"viralvideos/internal/adapter/repo"
	"viralvideos/internal/http/handlers"
	httpapi "viralvideos/internal/http/httpapi"
	"viralvideos/internal/infra"
	"viralvideos/internal/infra/geoip"
	"viralvideos/internal/infra/preferences"
	"viralvideos/internal/providers/prompt"
	"viralvideos/internal/storage"
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
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	videos := repo.NewVideoRequestRepository(runner)
	if err := videos.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api: schema bootstrap failed")
	}

	settings := preferences.NewSettings(preferences.NewStore(runner), defaultsFromConfig(cfg))

	promptLogger := infra.Component(&logger, "prompt")
	enhancer, err := prompt.NewAzureChat(prompt.AzureOptions{
		Settings: settings,
		Logger:   &promptLogger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure prompt enhancer")
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}
	if err := store.EnsureDir(); err != nil {
		logger.Warn().Err(err).Str("dir", store.BasePath()).Msg("api: output directory unavailable")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	}
	if closer, ok := resolver.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	app := handlers.NewApp(logger, videos, settings, enhancer, store)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   geoip.Lookup(resolver),
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Str("output_dir", store.BasePath()).Msg("api: listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("api: stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("api: stopped")
}

func defaultsFromConfig(cfg *infra.Config) preferences.Defaults {
	return preferences.Defaults{
		SoraEndpoint:   cfg.SoraEndpoint,
		SoraAPIKey:     cfg.SoraAPIKey,
		SoraDeployment: cfg.SoraDeployment,
		ChatEndpoint:   cfg.ChatEndpoint,
		ChatAPIKey:     cfg.ChatAPIKey,
		ChatDeployment: cfg.ChatDeployment,
	}
}
