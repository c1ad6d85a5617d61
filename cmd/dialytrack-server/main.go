package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dialytrack/dialytrack/internal/config"
	"github.com/dialytrack/dialytrack/internal/domain/alert"
	"github.com/dialytrack/dialytrack/internal/domain/fault"
	"github.com/dialytrack/dialytrack/internal/domain/identity"
	"github.com/dialytrack/dialytrack/internal/domain/intervention"
	"github.com/dialytrack/dialytrack/internal/domain/invoice"
	"github.com/dialytrack/dialytrack/internal/domain/machine"
	"github.com/dialytrack/dialytrack/internal/domain/maintenance"
	"github.com/dialytrack/dialytrack/internal/platform/auth"
	"github.com/dialytrack/dialytrack/internal/platform/db"
	"github.com/dialytrack/dialytrack/internal/platform/mailer"
	"github.com/dialytrack/dialytrack/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dialytrack-server",
		Short: "Dialysis equipment management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

// checkCmd runs one pass of the due-maintenance checks from the command line,
// for cron or manual use without going through the HTTP surface.
func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run due-maintenance checks once",
	}

	run := func(kind string) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			app := buildApp(cfg, pool)
			now := time.Now()
			var sum maintenance.RunSummary
			switch kind {
			case "controls":
				sum, err = app.checker.RunControls(cmd.Context(), now)
			case "schedules":
				sum, err = app.checker.RunSchedules(cmd.Context(), now)
			}
			if err != nil {
				return err
			}
			fmt.Printf("checked=%d emitted=%d skipped_duplicates=%d mail_failures=%d\n",
				sum.Checked, sum.Emitted, sum.SkippedDuplicates, sum.MailFailures)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "controls",
		Short: "Check due maintenance controls",
		RunE:  run("controls"),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "schedules",
		Short: "Check due maintenance schedules",
		RunE:  run("schedules"),
	})

	return cmd
}

func loadWithPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

// app holds the wired services so serve and check share one construction path.
type app struct {
	identityHandler     *identity.Handler
	machineHandler      *machine.Handler
	faultHandler        *fault.Handler
	interventionHandler *intervention.Handler
	maintenanceHandler  *maintenance.Handler
	alertHandler        *alert.Handler
	invoiceHandler      *invoice.Handler
	checker             *maintenance.Checker
}

func buildApp(cfg *config.Config, pool *pgxpool.Pool) *app {
	sender := mailer.NewProviderSender(mailer.ProviderConfig{
		APIURL: cfg.MailAPIURL,
		APIKey: cfg.MailAPIKey,
		From:   cfg.MailFrom,
	})
	notifier := mailer.NewNotifier(sender, mailer.NewTemplateEngine())

	identitySvc := identity.NewService(identity.NewRepoPG(pool), []byte(cfg.JWTSecret))

	machineSvc := machine.NewService(machine.NewRepoPG(pool))
	faultSvc := fault.NewService(fault.NewRepoPG(pool))
	invoiceSvc := invoice.NewService(invoice.NewRepoPG(pool))

	alertSvc := alert.NewService(alert.NewRepoPG(pool), identitySvc, notifier)

	controlRepo := maintenance.NewControlRepoPG(pool)
	scheduleRepo := maintenance.NewScheduleRepoPG(pool)
	maintSvc := maintenance.NewService(controlRepo, scheduleRepo, machineSvc)
	checker := maintenance.NewChecker(controlRepo, scheduleRepo, machineSvc, alertSvc)

	interventionSvc := intervention.NewService(intervention.NewRepoPG(pool), maintSvc)

	return &app{
		identityHandler:     identity.NewHandler(identitySvc),
		machineHandler:      machine.NewHandler(machineSvc),
		faultHandler:        fault.NewHandler(faultSvc),
		interventionHandler: intervention.NewHandler(interventionSvc),
		maintenanceHandler:  maintenance.NewHandler(maintSvc, checker),
		alertHandler:        alert.NewHandler(alertSvc),
		invoiceHandler:      invoice.NewHandler(invoiceSvc),
		checker:             checker,
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	a := buildApp(cfg, pool)

	public := e.Group("/api/v1")
	a.identityHandler.RegisterPublicRoutes(public)

	api := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("no JWT secret set; development auth grants admin to every request")
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	a.identityHandler.RegisterRoutes(api)
	a.machineHandler.RegisterRoutes(api)
	a.faultHandler.RegisterRoutes(api)
	a.interventionHandler.RegisterRoutes(api)
	a.maintenanceHandler.RegisterRoutes(api)
	a.alertHandler.RegisterRoutes(api)
	a.invoiceHandler.RegisterRoutes(api)

	// Start and wait for shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}

// errorHandler renders every error as a flat {"error": "..."} object so
// clients never have to unwrap echo's default message envelope.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = fmt.Sprintf("%v", he.Message)
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
