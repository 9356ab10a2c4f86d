package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"jobboard/internal/clock"
	"jobboard/internal/config"
	apphttp "jobboard/internal/http"
	"jobboard/internal/mailer"
	"jobboard/internal/ratelimit"
	"jobboard/internal/repository/sqlstore"
	"jobboard/internal/service"
	"jobboard/internal/storage"
	"jobboard/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server: %v", err)
	}
	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	userRepo := sqlstore.NewUserRepository(db)
	jobRepo := sqlstore.NewJobRepository(db)
	appRepo := sqlstore.NewApplicationRepository(db)
	if err := sqlstore.InitAll(ctx, userRepo, jobRepo, appRepo); err != nil {
		return fmt.Errorf("init repositories: %w", err)
	}

	clk := clock.System()
	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	creds := service.NewCredentials(cfg.Auth.BcryptCost)

	logos, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	policy, err := service.ParseDeletePolicy(cfg.Admin.UserDeletePolicy)
	if err != nil {
		return err
	}

	authSvc := service.NewAuthService(userRepo, creds, tokens, buildMailer(cfg, logger), clk, service.AuthConfig{
		BaseURL:      cfg.App.BaseURL,
		ResetTTL:     cfg.Auth.ResetTTL,
		EmailTimeout: cfg.Email.Timeout,
	})
	jobSvc := service.NewJobService(jobRepo, appRepo, logos, clk)
	adminSvc := service.NewAdminService(userRepo, jobRepo, appRepo, jobSvc, creds, clk, policy)

	if cfg.Admin.Email != "" {
		created, err := adminSvc.SeedAdmin(ctx, service.AdminSeed{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Name:     cfg.Admin.Name,
		})
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logger.Infof("created admin account %s", cfg.Admin.Email)
		}
	}

	rateLimit, closeRedis, err := buildRateLimit(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup rate limit: %w", err)
	}
	defer closeRedis()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), apphttp.TimeoutMiddleware(cfg.Server.RequestTimeout))
	handler := apphttp.NewHandler(apphttp.Options{
		Auth:      authSvc,
		Gate:      service.NewGate(tokens, userRepo),
		Jobs:      jobSvc,
		Profile:   service.NewProfileService(userRepo, appRepo, creds),
		Admin:     adminSvc,
		RateLimit: rateLimit,
		Logger:    logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		return nil
	})
	return g.Wait()
}

func buildMailer(cfg config.Config, logger *logrus.Logger) mailer.Sender {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("email.smtp_host is empty, emails will only be logged")
		return mailer.NewLogSender(logger)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUser,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.From,
	})
}

// buildStorage returns nil when no bucket is configured, which disables logo uploads.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (service.ObjectStore, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage.bucket is empty, company logos are disabled")
		return nil, nil
	}

	client, err := storage.NewClient(ctx, storage.ClientConfig{
		Region:   cfg.Storage.Region,
		Profile:  cfg.AWS.Profile,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	store, err := storage.NewS3Store(client, storage.Options{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		URLTTL:    cfg.Storage.URLTTL,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return store, nil
}

func buildRateLimit(ctx context.Context, cfg config.Config, logger *logrus.Logger) (gin.HandlerFunc, func(), error) {
	if cfg.RateLimit.RedisAddr == "" {
		logger.Info("ratelimit.redis_addr is empty, credential endpoints are not rate limited")
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RateLimit.RedisAddr, err)
	}

	limiter := ratelimit.NewLimiter(client, "jobboard:ratelimit")
	mw := ratelimit.NewMiddleware(limiter, ratelimit.Rule{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
	}, logger)
	return mw.Handler(), func() { client.Close() }, nil
}
