package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"sipoma/internal/caching"
	"sipoma/internal/config"
	"sipoma/internal/handlers"
	"sipoma/internal/jobs"
	"sipoma/internal/logging"
	"sipoma/internal/middleware"
	"sipoma/internal/repositories"
	"sipoma/internal/services"
	"sipoma/internal/tracing"
	"sipoma/pkg/database"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", os.Getenv("SIPOMA_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.Logging.Level).With("service", "sipoma", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(context.Background(), "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		// Validate only lets an empty secret through in development.
		cfg.Auth.JWTSecret = random.String(32)
		log.Warn(ctx, "auth.jwt_secret not set, using a generated secret; sessions end on restart")
	}

	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() {
			if err := tracing.Shutdown(context.Background()); err != nil {
				log.Warn(context.Background(), "failed to flush traces", "error", err)
			}
		}()
	}

	// Database
	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, cfg.Database.URL); err != nil {
			return err
		}
		log.Info(ctx, "database migrations applied")
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Redis: sessions and rate limits
	redisClient, err := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	cacheService := caching.NewRedisCacheService(redisClient)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warn(context.Background(), "failed to close redis client", "error", err)
		}
	}()
	if err := cacheService.Ping(ctx); err != nil {
		log.Warn(ctx, "redis not reachable at startup", "addr", redisClient.Options().Addr, "error", err)
	}

	// MinIO: user exports
	minioService, err := services.NewMinioService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Services
	auditLogsService := services.NewAuditLogsService(auditLogsRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, services.WebhookConfig{
		URL:     cfg.Notifications.WebhookURL,
		Secret:  cfg.Notifications.WebhookSecret,
		Timeout: cfg.Notifications.WebhookTimeout.Duration,
	}, log)
	authService := services.NewAuthService(userRepo, cacheService, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL.Duration, log)
	registrationService := services.NewRegistrationService(userRepo, auditLogsService, notificationService, log)
	sessionResolver := services.NewSessionResolver(authService, userRepo, log)
	approvalService := services.NewApprovalService(userRepo, auditLogsService, log)
	userService := services.NewUserService(userRepo, auditLogsService, log)
	exportService := services.NewExportService(userRepo, minioService, cfg.Storage.Bucket, cfg.Storage.PresignTTL.Duration, log)

	if err := services.BootstrapAdmin(ctx, userRepo, services.AdminAccount{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		FullName: cfg.Admin.FullName,
	}, log); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	// Background jobs
	var jobHandlers *handlers.JobHandlers
	stopJobs := func() {}
	if cfg.Jobs.Enabled {
		scheduler, err := jobs.NewJobScheduler(notificationService, jobs.Options{
			DigestInterval:        cfg.Jobs.DigestInterval.Duration,
			RetentionInterval:     cfg.Jobs.RetentionInterval.Duration,
			NotificationRetention: cfg.Jobs.NotificationRetention.Duration,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create job scheduler: %w", err)
		}
		scheduler.Start()
		stopJobs = sync.OnceFunc(func() {
			if err := scheduler.Stop(); err != nil {
				log.Warn(context.Background(), "failed to stop job scheduler", "error", err)
			}
		})
		jobHandlers = handlers.NewJobHandlers(scheduler)
	}
	defer func() { stopJobs() }()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(log)
	ipExtractor, err := middleware.ClientIPExtractor(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	e.IPExtractor = ipExtractor

	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			log.Info(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if cfg.Tracing.Enabled {
		e.Use(tracing.Middleware())
	}

	router := &handlers.Router{
		Auth:          handlers.NewAuthHandlers(registrationService, authService, sessionResolver, userService, cfg.Server.CookieSecure, log),
		Approvals:     handlers.NewApprovalHandlers(approvalService),
		Users:         handlers.NewUserHandlers(userService, exportService),
		Notifications: handlers.NewNotificationHandlers(notificationService),
		Health:        handlers.NewHealthHandlers(pool, cacheService),
		Jobs:          jobHandlers,
		SessionAuth:   middleware.SessionAuth(authService),
		RegisterLimit: middleware.RateLimit(cacheService, "register", cfg.Auth.RateLimit, cfg.Auth.RateLimitWindow.Duration, log),
		LoginLimit:    middleware.RateLimit(cacheService, "login", cfg.Auth.RateLimit, cfg.Auth.RateLimitWindow.Duration, log),
	}
	router.Register(e)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info(ctx, "starting server", "addr", addr, "environment", cfg.Environment)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down server")
	stopJobs()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
