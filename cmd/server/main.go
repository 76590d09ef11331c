package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"habit-tracker/internal/config"
	apphttp "habit-tracker/internal/http"
	"habit-tracker/internal/repository/sqlite"
	"habit-tracker/internal/service"
	"habit-tracker/internal/session"
	"habit-tracker/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountsDB, err := sqlite.Open(cfg.Database.AccountsPath)
	if err != nil {
		logger.Fatalf("open accounts database: %v", err)
	}
	defer accountsDB.Close()

	goalsDB, err := sqlite.Open(cfg.Database.GoalsPath)
	if err != nil {
		logger.Fatalf("open goals database: %v", err)
	}
	defer goalsDB.Close()

	accountRepo := sqlite.NewAccountRepository(accountsDB)
	goalRepo := sqlite.NewGoalRepository(goalsDB)

	if err := accountRepo.Init(ctx); err != nil {
		logger.Fatalf("init account repository: %v", err)
	}
	if err := goalRepo.Init(ctx); err != nil {
		logger.Fatalf("init goal repository: %v", err)
	}

	reports, err := buildReportStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup report storage: %v", err)
	}

	weekStart, _ := cfg.WeekStart()
	goalOpts := service.GoalOptions{
		WeekStart:       weekStart,
		ReportKeyPrefix: cfg.Reports.KeyPrefix,
	}
	if reports != nil {
		goalOpts.Reports = reports
	}

	accountService := service.NewAccountService(accountRepo, cfg.Auth.BcryptCost)
	goalService := service.NewGoalService(goalRepo, goalOpts)

	tokens, err := session.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("setup session tokens: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := apphttp.NewEngine(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatalf("setup router: %v", err)
	}
	handler := apphttp.NewHandler(
		accountService,
		goalService,
		tokens,
		logger,
		apphttp.RateLimit{
			Requests: cfg.Auth.RateRequests,
			Window:   cfg.RateWindow(),
		},
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildReportStore returns nil when no bucket is configured; report export is
// then reported as unavailable by the API.
func buildReportStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*storage.S3ReportStore, error) {
	if cfg.Reports.Bucket == "" {
		logger.Info("report archive disabled (no bucket configured)")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Reports.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Reports.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Reports.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving reports to s3 bucket %s (region %s)", cfg.Reports.Bucket, cfg.Reports.Region)
	return storage.NewS3ReportStore(client, cfg.Reports.Bucket)
}
