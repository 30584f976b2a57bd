package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhodetech/fx_ledger_app/internal/adapters/database/pgsql"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/core/services"
	"github.com/rhodetech/fx_ledger_app/internal/handlers"
	"github.com/rhodetech/fx_ledger_app/internal/middleware"
	"github.com/rhodetech/fx_ledger_app/pkg/config"
	"github.com/rhodetech/fx_ledger_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(corsMiddleware(cfg))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, buildServices(cfg, dbPool))

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires the repositories and services behind the facade container.
func buildServices(cfg *config.Config, dbPool *pgxpool.Pool) *portssvc.ServiceContainer {
	company := services.CompanyProfile{
		CompanyID:    cfg.CompanyID,
		CurrencyCode: cfg.CompanyCurrency,
	}

	currencyRepo := pgsql.NewCurrencyRepository(dbPool)
	rateRepo := pgsql.NewExchangeRateRepository(dbPool)
	paymentRepo := pgsql.NewPaymentRepository(dbPool)
	journalRepo := pgsql.NewJournalRepository(dbPool)
	accountRepo := pgsql.NewAccountRepository(dbPool)
	moveLineRepo := pgsql.NewMoveLineRepository(dbPool)

	currencySvc := services.NewCurrencyService(currencyRepo)
	exchangeRateSvc := services.NewExchangeRateService(rateRepo, currencySvc)

	selector := services.NewRateSelector(exchangeRateSvc)
	balancer := services.NewLineBalancer(selector, exchangeRateSvc)
	resolver := services.NewResidualResolver(currencySvc, exchangeRateSvc)
	corrector := services.NewReconcileCorrector(moveLineRepo)

	paymentSvc := services.NewPaymentService(company, paymentRepo, journalRepo, accountRepo, moveLineRepo, currencySvc, balancer, corrector)
	reconcileSvc := services.NewReconcileService(company, moveLineRepo, currencySvc, resolver, selector, exchangeRateSvc)

	return &portssvc.ServiceContainer{
		Currency:     currencySvc,
		ExchangeRate: exchangeRateSvc,
		Payment:      paymentSvc,
		Reconcile:    reconcileSvc,
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-User-ID")
	return cors.New(corsCfg)
}

// runMigrations applies all pending "up" migrations from the migrations directory.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	// Open a standard sql.DB connection for migrations, using the pgx
	// stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
