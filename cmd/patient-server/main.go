package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/pm/patientmgmt/internal/config"
	"github.com/pm/patientmgmt/internal/domain/billing"
	"github.com/pm/patientmgmt/internal/domain/patient"
	"github.com/pm/patientmgmt/internal/platform/db"
	"github.com/pm/patientmgmt/internal/platform/metrics"
	"github.com/pm/patientmgmt/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient-server",
		Short: "Patient management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the patient API server",
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

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			migrator, pool, err := openMigrator(ctx, cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	addMigrateFlags(upCmd)
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			migrator, pool, err := openMigrator(ctx, cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, statuses)
			return nil
		},
	}
	addMigrateFlags(statusCmd)
	cmd.AddCommand(statusCmd)

	return cmd
}

func addMigrateFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
	cmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
}

func openMigrator(ctx context.Context, cmd *cobra.Command) (*db.Migrator, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}

	schema, _ := cmd.Flags().GetString("schema")
	if schema == "" {
		schema = cfg.DBSchema
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, poolOptions(cfg, schema))
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using schema: %s\n", schema)
	return db.NewMigrator(pool, dir, schema), pool, nil
}

func printStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

// newLogger writes human-readable output in development and JSON elsewhere.
// Debug events are dropped in production. A nil cfg gets the production logger.
func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	level := zerolog.DebugLevel
	if cfg == nil || cfg.IsProduction() {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func poolOptions(cfg *config.Config, schema string) db.PoolOptions {
	return db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		Schema:   schema,
	}
}

// deps are the collaborators the HTTP server is built from.
type deps struct {
	patients patient.PatientRepository
	billing  *billing.Service
	dbHealth db.Pinger
	registry *prometheus.Registry
}

func newEcho(cfg *config.Config, logger zerolog.Logger, d deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics(metrics.NewHTTPMetrics(d.registry)))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if d.dbHealth != nil {
		e.GET("/health/db", db.HealthHandler(d.dbHealth))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	apiV1 := e.Group("/api/v1")

	patientSvc := patient.NewService(d.patients, logger)
	patientSvc.SetMetrics(metrics.NewPatientMetrics(d.registry))
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	billing.NewHandler(d.billing).RegisterRoutes(apiV1)

	return e
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// openStore returns the configured patient repository. The pool is nil for
// the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (patient.PatientRepository, *pgxpool.Pool, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn().Msg("using in-memory patient store; data is lost on restart")
		return patient.NewMemoryRepo(), nil, nil
	}

	opts := poolOptions(cfg, cfg.DBSchema)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("schema", opts.Schema).Msg("connected to database")
	return patient.NewPatientRepo(pool), pool, nil
}

func newGRPCServer(logger zerolog.Logger, svc *billing.Service) *grpc.Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcLogger(logger)))
	billing.RegisterGRPC(gs, svc)

	hs := health.NewServer()
	hs.SetServingStatus("billing.BillingService", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs
}

func grpcLogger(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		evt := logger.Info()
		if err != nil {
			evt = logger.Error().Err(err)
		}
		evt.Str("method", info.FullMethod).Dur("latency", time.Since(start)).Msg("grpc request")
		return resp, err
	}
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		l := newLogger(os.Stdout, nil)
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(os.Stdout, cfg)

	// Storage
	ctx := context.Background()
	patients, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	var dbHealth db.Pinger
	if pool != nil {
		defer pool.Close()
		dbHealth = pool
	}

	billingSvc := billing.NewService(logger)
	e := newEcho(cfg, logger, deps{
		patients: patients,
		billing:  billingSvc,
		dbHealth: dbHealth,
		registry: newRegistry(),
	})

	// Billing over gRPC
	var gs *grpc.Server
	if cfg.BillingGRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.BillingGRPCAddr)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.BillingGRPCAddr).Msg("failed to listen for gRPC")
		}
		gs = newGRPCServer(logger, billingSvc)
		go func() {
			logger.Info().Str("addr", cfg.BillingGRPCAddr).Msg("starting billing gRPC server")
			if err := gs.Serve(lis); err != nil && err != grpc.ErrServerStopped {
				logger.Fatal().Err(err).Msg("gRPC server error")
			}
		}()
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.Store).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if gs != nil {
		gs.GracefulStop()
	}
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
