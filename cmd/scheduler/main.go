package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/config"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/service"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const jobTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}
	jobLog := logger.WithComponent("scheduler")
	jobLog.Info().Msg("Starting overdue scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		jobLog.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	clock := utils.NewSystemClock(cfg.Scheduler.Timezone)
	dashboard := service.NewDashboardService(repository.NewDuplicataRepository(db), redisClient, clock, cfg.Redis.CacheTTL)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(clock.Location))
	if _, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := dashboard.RefreshOverdue(ctx); err != nil {
			jobLog.Error().Err(err).Msg("Overdue refresh failed")
		}
	}); err != nil {
		jobLog.Fatal().Err(err).Str("spec", cfg.Scheduler.OverdueCron).Msg("Error scheduling overdue refresh")
	}

	c.Start()
	jobLog.Info().Str("spec", cfg.Scheduler.OverdueCron).Str("timezone", clock.Location.String()).Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	jobLog.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	jobLog.Info().Msg("Scheduler stopped")
}
