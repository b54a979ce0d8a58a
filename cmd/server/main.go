package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/activity"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/auth"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/config"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/server"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "text", "error").Error(ctx, "config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	fatal := func(msg string, err error) {
		logger.Error(ctx, msg, "error", err)
		os.Exit(1)
	}

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		fatal("postgres connect", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		fatal("postgres migrate", err)
	}

	// ── Log store ────────────────────────────────────────────
	var logStore activity.LogStore = pgStore
	if cfg.LogBackend == config.LogBackendMongo {
		mongoClient, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			fatal("mongo connect", err)
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			fatal("mongo indexes", err)
		}
		logStore = mongoStore
	}

	// ── Redis (optional log fan-out) ─────────────────────────
	var publisher activity.Publisher
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			fatal("redis connect", err)
		}
		defer rdb.Close()
		publisher = store.NewLogStream(rdb)
	}

	recorder := activity.NewRecorder(logStore, publisher, logger.With("component", "activity"))

	// ── MinIO (optional log archive) ─────────────────────────
	var archiver *activity.Archiver
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			fatal("minio connect", err)
		}
		archiver = activity.NewArchiver(recorder, minioStore)
	}

	// ── Auth ─────────────────────────────────────────────────
	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		fatal("password hasher", err)
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		fatal("token service", err)
	}
	authService := auth.NewService(pgStore, hasher, tokens)
	guard := auth.NewGuard(tokens, pgStore)

	if cfg.BootstrapAdminUsername != "" {
		if err := bootstrapAdmin(ctx, authService, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword, logger); err != nil {
			fatal("bootstrap admin", err)
		}
	}

	var audit auth.AuditRecorder
	if cfg.AuditAuthEvents {
		audit = recorder
	}

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(authService, audit, cfg.StrictRoles, logger.With("component", "auth"))
	activityHandler := activity.NewHandler(recorder, archiver, logger.With("component", "activity"))

	router := server.NewRouter(server.Deps{
		Auth:              authHandler,
		Activity:          activityHandler,
		Guard:             guard,
		Logger:            logger.With("component", "http"),
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info(ctx, "backend listening", "addr", srv.Addr, "log_backend", cfg.LogBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error(ctx, "shutdown", "error", err)
	}
}

// bootstrapAdmin makes sure the configured admin account exists. An existing
// account with another role is left alone but reported.
func bootstrapAdmin(ctx context.Context, svc *auth.Service, username, password string, logger logging.Logger) error {
	u, created, err := svc.EnsureAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	switch {
	case created:
		logger.Info(ctx, "bootstrap admin created", "username", username)
	case u.Role != models.RoleAdmin:
		logger.Warn(ctx, "bootstrap admin username is taken by a non-admin account",
			"username", username, "role", u.Role)
	}
	return nil
}
