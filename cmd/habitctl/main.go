package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"habit-tracker/internal/cli"
	"habit-tracker/internal/config"
	"habit-tracker/internal/domain"
	"habit-tracker/internal/repository/sqlite"
	"habit-tracker/internal/service"
	"habit-tracker/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	var root cli.Root
	kctx := kong.Parse(&root, cli.Options(cfg)...)
	if root.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	weekStart, err := domain.ParseWeekday(root.WeekStart)
	if err != nil {
		logger.Fatalf("week start: %v", err)
	}

	accountsDB, err := sqlite.Open(root.AccountsDB)
	if err != nil {
		logger.Fatalf("open accounts database: %v", err)
	}
	goalsDB, err := sqlite.Open(root.GoalsDB)
	if err != nil {
		_ = accountsDB.Close()
		logger.Fatalf("open goals database: %v", err)
	}

	code := run(ctx, kctx, root, weekStart, accountsDB, goalsDB, logger)
	_ = accountsDB.Close()
	_ = goalsDB.Close()
	os.Exit(code)
}

func run(ctx context.Context, kctx *kong.Context, root cli.Root, weekStart time.Weekday, accountsDB, goalsDB *sql.DB, logger *logrus.Logger) int {
	accountRepo := sqlite.NewAccountRepository(accountsDB)
	goalRepo := sqlite.NewGoalRepository(goalsDB)
	if err := accountRepo.Init(ctx); err != nil {
		logger.Errorf("init account repository: %v", err)
		return 1
	}
	if err := goalRepo.Init(ctx); err != nil {
		logger.Errorf("init goal repository: %v", err)
		return 1
	}
	logger.Debugf("accounts: %s, goals: %s", root.AccountsDB, root.GoalsDB)

	appCtx := &cli.Context{
		Context:  ctx,
		Accounts: service.NewAccountService(accountRepo, root.BcryptCost),
		Goals:    service.NewGoalService(goalRepo, service.GoalOptions{WeekStart: weekStart}),
		Session:  session.New(),
		Out:      os.Stdout,
		Now:      time.Now,
	}

	if err := kctx.Run(appCtx); err != nil {
		logger.Error(err)
		return 1
	}
	return 0
}
