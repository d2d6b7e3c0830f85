// Command voucher-worker reconciles voucher redemptions on a schedule,
// for deployments that run the API without background jobs.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/config"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/domain/wallet"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
	"github.com/learnhub/learnhub-api/internal/pkg/logger"
	"github.com/learnhub/learnhub-api/internal/pkg/voucher"
	"github.com/learnhub/learnhub-api/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "reconcile a single time and exit")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().Msg("Starting voucher-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL, database.PoolConfig{MaxOpen: 5, MaxIdle: 2, MaxLifetime: 5 * time.Minute, MaxIdleTime: time.Minute})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.Close("postgres", db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer database.Close("redis", rdb)
	}

	timeout := time.Duration(cfg.VoucherTimeoutSeconds) * time.Second
	walletService := wallet.NewService(
		wallet.NewRepository(db),
		statistics.NewService(statistics.NewRepository(db)),
		voucher.NewClient(cfg.VoucherBaseURL, cfg.VoucherAccountPhone, timeout),
		lock.New(rdb, "lock:", timeout+5*time.Second),
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := walletService.ReconcileVouchers(ctx)
		if err != nil {
			log.Fatal().Err(err).Int("credited", n).Msg("Reconciliation failed")
		}
		log.Info().Int("credited", n).Msg("Reconciliation finished")
		return
	}

	if cfg.VoucherReconcileSchedule == "" {
		log.Fatal().Msg("VOUCHER_RECONCILE_SCHEDULE is empty, nothing to run")
	}
	jobs := scheduler.New(time.Minute)
	if err := jobs.AddVoucherReconcile(cfg.VoucherReconcileSchedule, walletService); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule voucher reconciliation")
	}
	jobs.Start()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info().Msg("Shutting down voucher-worker...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	jobs.Stop(ctx)
}
