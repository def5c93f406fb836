package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/auth"
	authPostgres "github.com/eventstaff/attendance/internal/auth/postgres"
	"github.com/eventstaff/attendance/internal/core/events"
	"github.com/eventstaff/attendance/internal/dashboard"
	dashboardPostgres "github.com/eventstaff/attendance/internal/dashboard/postgres"
	"github.com/eventstaff/attendance/internal/employee"
	employeePostgres "github.com/eventstaff/attendance/internal/employee/postgres"
	"github.com/eventstaff/attendance/internal/event"
	eventPostgres "github.com/eventstaff/attendance/internal/event/postgres"
	"github.com/eventstaff/attendance/internal/timerecord"
	timerecordPostgres "github.com/eventstaff/attendance/internal/timerecord/postgres"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/eventstaff/attendance/internal/transport/openapi"
	"github.com/eventstaff/attendance/internal/transport/rest"
	"github.com/eventstaff/attendance/internal/user"
	userPostgres "github.com/eventstaff/attendance/internal/user/postgres"
	"github.com/eventstaff/attendance/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Services are the wired domain services shared by the server and seed
// commands.
type Services struct {
	Bus       *events.EventBus
	Events    *event.Service
	Employees *employee.Service
	Records   *timerecord.Service
	Dashboard *dashboard.Service
	Auth      *auth.Service
	Users     *user.Service
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Services *Services
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Services.Bus.Drain(ctx); err != nil {
			deps.Logger.Error("Event bus drain error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	svc := deps.Services
	base := transport.NewBaseHandler(deps.Logger)

	var validator *openapi.Validator
	if cfg.Server.ValidateRequests {
		doc, err := openapi.Load(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return err
		}
		validator, err = openapi.NewValidator(doc, base)
		if err != nil {
			return err
		}
	}

	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		Config:     cfg,
		Logger:     deps.Logger,
		Base:       base,
		Health:     rest.NewHealthHandler(deps.DB),
		Resolver:   svc.Auth,
		Validator:  validator,
		Auth:       auth.NewHandler(base, svc.Auth),
		Users:      user.NewHandler(base, svc.Users, svc.Auth),
		Events:     event.NewHandler(base, svc.Events),
		Employees:  employee.NewHandler(base, svc.Employees),
		TimeRecord: timerecord.NewHandler(base, svc.Records),
		Dashboard:  dashboard.NewHandler(base, svc.Dashboard),
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		Router:   chi.NewRouter(),
		Services: buildServices(config, db, gdb, lg),
	}, nil
}

func buildServices(cfg *internal.Config, db *sqlx.DB, gdb *gorm.DB, lg *slog.Logger) *Services {
	loc := cfg.Attendance.Location()
	bus := events.NewEventBus(lg)

	eventRepo := eventPostgres.NewEventRepository(gdb)
	employeeRepo := employeePostgres.NewEmployeeRepository(gdb)
	recordRepo := timerecordPostgres.NewTimeRecordRepository(gdb)

	eventService := event.NewService(eventRepo, lg)
	employeeService := employee.NewService(employeeRepo, recordRepo, eventService, bus, loc, lg)
	recordService := timerecord.NewService(recordRepo, employeeService, eventService, bus, timerecord.Options{
		EnforceOnScan: cfg.Attendance.EnforceTransitionsOnScan,
		Location:      loc,
	}, lg)

	dashboardService := dashboard.NewService(
		employeeService,
		dashboardPostgres.NewActivityRepository(db),
		recordRepo,
		recordService,
		dashboard.Options{
			StatsTTL:      cfg.Attendance.StatsCacheTTL,
			ActivityLimit: cfg.Attendance.RecentActivityLimit,
		},
		lg,
	)
	dashboardService.Subscribe(bus)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokenGen, lg)
	userService := user.NewService(userPostgres.NewUserRepository(gdb), employeeService, auth.NewABACPolicy(), cfg.Security.BCryptCost, lg)

	return &Services{
		Bus:       bus,
		Events:    eventService,
		Employees: employeeService,
		Records:   recordService,
		Dashboard: dashboardService,
		Auth:      authService,
		Users:     userService,
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}
