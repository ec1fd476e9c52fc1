package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/config"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/handler"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/service"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Money goes out as JSON numbers; values are already rounded to cents.
	decimal.MarshalJSONWithoutQuotes = true

	clock := utils.NewSystemClock(cfg.Scheduler.Timezone)

	// Initialize repositories
	duplicataRepo := repository.NewDuplicataRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	accountRepo := repository.NewBankAccountRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	operationTypeRepo := repository.NewCachedOperationTypeRepository(
		repository.NewOperationTypeRepository(db), redisClient, cfg.Redis.CacheTTL)

	// Initialize services
	scheduleService := service.NewScheduleService(operationTypeRepo)
	operationService := service.NewOperationService(operationRepo, accountRepo, scheduleService)
	settlementService := service.NewSettlementService(duplicataRepo, accountRepo, clock)
	tolerance := cfg.GetReconciliationTolerance()
	reconciliationService := service.NewReconciliationService(duplicataRepo, accountRepo, service.ReconciliationOptions{
		MatchLimit:     cfg.Business.MatchLimit,
		FreightSegment: cfg.Business.FreightSegment,
		Tolerance:      &tolerance,
	})
	ledgerService := service.NewLedgerService(movementRepo, accountRepo)
	dashboardService := service.NewDashboardService(duplicataRepo, redisClient, clock, cfg.Redis.CacheTTL)

	router := handler.NewRouter(handler.Handlers{
		Health:         handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
		Operation:      handler.NewOperationHandler(scheduleService, operationService),
		Settlement:     handler.NewSettlementHandler(settlementService),
		Reconciliation: handler.NewReconciliationHandler(reconciliationService),
		Ledger:         handler.NewLedgerHandler(ledgerService, dashboardService),
		Auth:           handler.NewAuthenticator(cfg.Auth.JWTSecret),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      http.TimeoutHandler(corsHandler, cfg.Server.RequestTimeout, `{"success":false,"error":"request timed out"}`),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
