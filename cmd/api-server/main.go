package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/api"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/availability"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/config"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/inventory"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/officehours"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/patient"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config load error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().
		Str("service", "dental-lite").
		Timestamp().
		Logger()

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("storage connection error")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("error closing storage")
		}
	}()
	log.Info().Str("backend", cfg.StorageBackend).Msg("storage ready")

	loadCtx, cancelLoad := context.WithTimeout(rootCtx, 10*time.Second)
	appointments := appointment.NewStore(loadCtx, store, log, appointment.WithHistoryLimit(cfg.HistoryLimit))
	hours := officehours.NewService(loadCtx, store, log)
	patients := patient.NewDirectory(loadCtx, store, log)
	stock := inventory.NewStore(loadCtx, store, log)
	cancelLoad()

	router := api.NewRouter(api.RouterConfig{
		Appointments: appointments,
		OfficeHours:  hours,
		Availability: availability.New(hours, appointments),
		Inventory:    stock,
		Patients:     patients,
		Storage:      store,
		Logger:       log,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func openStorage(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		return kv.NewRedis(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return kv.NewPostgres(connectCtx, cfg.PostgresDSN)
	default:
		return kv.NewMemory(), nil
	}
}
