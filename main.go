package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cutout/internal/adapters/codec"
	"cutout/internal/adapters/modelstore"
	"cutout/internal/adapters/remover"
	"cutout/internal/adapters/resizer"
	"cutout/internal/adapters/server"
	"cutout/internal/core/port"
	"cutout/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting cutout...")

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("remover.backend", "onnx")
	viper.SetDefault("remover.model_path", "models/u2netp.onnx")
	viper.SetDefault("remover.timeout", "60s")

	log.Info().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Info().Msg("no config file found, using defaults")
	}

	var logLevel zerolog.Level

	switch viper.GetString("server.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bgRemover, err := buildRemover(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing background remover")
	}

	pipeline := service.NewPipeline(
		codec.NewImagingCodec(),
		resizer.NewLanczos(),
		bgRemover,
		service.NewResultCache(),
	)

	srv := server.New(pipeline)

	if err := srv.Run(ctx, viper.GetString("server.listen_addr")); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func buildRemover(ctx context.Context) (port.Remover, error) {
	backend := viper.GetString("remover.backend")

	if backend == "api" {
		timeout, err := time.ParseDuration(viper.GetString("remover.timeout"))
		if err != nil {
			log.Panic().Err(err).Msg("invalid timeout for remover in config")
		}

		return remover.NewAPIRemover(viper.GetString("remover.endpoint"), timeout), nil
	}

	modelPath, err := modelstore.Ensure(ctx,
		viper.GetString("remover.model_path"),
		viper.GetString("remover.model_url"))
	if err != nil {
		return nil, err
	}

	return remover.NewONNXRemover(modelPath)
}
