package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption/internal/adapters/auth/jwt"
	"pet-adoption/internal/adapters/photos/localdisk"
	"pet-adoption/internal/adapters/photos/s3store"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/config"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/ratelimiter"
	"pet-adoption/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @description API de adopción de mascotas: catálogo, solicitudes y revisión por administradores.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "ruta al config YAML (default: CONFIG_PATH)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewFromEnv().Error("failed to load config", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", map[string]any{"error": err})
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx := context.Background()

	var db *sql.DB
	if cfg.Database.Enabled() {
		opened, err := pg.Open(ctx, cfg.Database.ConnString())
		if err != nil {
			return err
		}
		defer func() { _ = opened.Close() }()

		if err := pg.EnsureSchema(ctx, opened); err != nil {
			return err
		}
		db = opened
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("no database configured, using in-memory storage", nil)
	}

	opts := router.Options{
		DB:          db,
		Log:         log,
		Metrics:     metrics.New(),
		AuthLimiter: ratelimiter.New(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst, cfg.RateLimit.IdleTTL),
		CORSOrigin:  cfg.Server.CORSOrigin,
	}

	if cfg.Auth.DevMode {
		log.Warn("auth dev mode enabled: X-Debug-User-ID headers are trusted", nil)
	}
	if cfg.Auth.JWTSecret != "" {
		tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		opts.Tokens = tokens
		if !cfg.Auth.DevMode {
			opts.AuthVerifier = tokens
		}
	}

	photos, uploadDir, err := photoStore(ctx, cfg.Photos)
	if err != nil {
		return err
	}
	opts.Photos = photos
	opts.UploadDir = uploadDir

	svcs := router.NewServices(opts)
	opts.Services = svcs

	if cfg.Auth.Admin.Enabled() {
		if _, err := svcs.Users.EnsureAdmin(ctx, cfg.Auth.Admin.Name, cfg.Auth.Admin.Email, cfg.Auth.Admin.Password); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down server", map[string]any{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited", nil)
	return nil
}

func photoStore(ctx context.Context, cfg config.PhotosConfig) (pets.PhotoStore, string, error) {
	if cfg.Backend == config.PhotosS3 {
		store, err := s3store.New(ctx, s3store.Options{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			AccessKeyID:     cfg.S3.AccessKey,
			SecretAccessKey: cfg.S3.SecretKey,
		})
		return store, "", err
	}

	store, err := localdisk.New(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
