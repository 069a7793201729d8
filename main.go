package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"roamlist/auth"
	"roamlist/config"
	"roamlist/database"
	"roamlist/handlers"
	"roamlist/services"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	amadeus := services.NewAmadeusClient(cfg.Amadeus, "", nil)
	if amadeus == nil {
		logger.Warn("AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set, hotel search will use mock data")
	}
	if cfg.GeoapifyKey == "" {
		logger.Warn("GEOAPIFY_API_KEY not set, attractions will use mock data")
	}

	h := handlers.New(handlers.Deps{
		Planner:     services.NewPlanner(services.NewGenerator(cfg.AI, logger), logger),
		Trips:       store,
		Storage:     cfg.StorageBackend,
		Hotels:      services.NewHotelFinder(amadeus, cfg.MockSeed, logger),
		Attractions: services.NewAttractionFinder(cfg.GeoapifyKey, "", nil, cfg.AttractionsCacheTTL, cfg.MockSeed, logger),
		Weather:     services.NewWeatherService(cfg.MockSeed),
		Logger:      logger,
	})

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedOrigins: cfg.CORSOrigins,
		Auth:           authMiddleware(cfg.Auth, logger),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("roamlist backend starting", "port", cfg.Port, "storage", cfg.StorageBackend, "auth", cfg.Auth.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (database.TripStore, func(), error) {
	if cfg.StorageBackend != config.StoragePostgres {
		logger.Warn("using in-memory trip storage, saved trips are lost on restart")
		return database.NewMemoryStore(), func() {}, nil
	}
	db, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return database.NewPostgresStore(db), func() { closeDB(db, logger) }, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("close database", "error", err)
	}
}

func authMiddleware(cfg config.AuthConfig, logger *slog.Logger) gin.HandlerFunc {
	if cfg.Mode == config.AuthDev {
		logger.Warn("AUTH_MODE=dev, requests are trusted without verification", "default_subject", cfg.DevSubject)
		return handlers.DevAuthenticate(cfg.DevSubject)
	}
	verifier := auth.NewVerifier(auth.Config{
		Issuer:             cfg.Issuer,
		Audience:           cfg.Audience,
		JWKSURL:            cfg.JWKSURL,
		ClockSkew:          cfg.ClockSkew,
		MinRefreshInterval: 30 * time.Second,
		Logger:             logger,
	}, nil, nil)
	return handlers.Authenticate(verifier, logger)
}
