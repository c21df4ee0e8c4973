package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/JamesPrial/pii-leak-test/config"
	clientrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/client"
	staffrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/audit"
	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/events"
	"github.com/JamesPrial/pii-leak-test/pkg/generate"
	"github.com/JamesPrial/pii-leak-test/pkg/health"
	"github.com/JamesPrial/pii-leak-test/pkg/kafka"
	"github.com/JamesPrial/pii-leak-test/pkg/middleware"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
	auditroutes "github.com/JamesPrial/pii-leak-test/pkg/routes/audit"
	clientroutes "github.com/JamesPrial/pii-leak-test/pkg/routes/client"
	datasetroutes "github.com/JamesPrial/pii-leak-test/pkg/routes/dataset"
	staffroutes "github.com/JamesPrial/pii-leak-test/pkg/routes/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing/exporters"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Errorf("failed to bind config: %w", err))
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("api exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger ectologger.Logger) error {
	tp, err := setupTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	if tp != nil {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	db, err := connectDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrations(cfg, logger, db); err != nil {
		return err
	}

	store, err := refdata.Load(cfg.ReferenceDataPath)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	staffRepository := staffrepo.NewRepository(db, logger)
	clientRepository := clientrepo.NewRepository(db, logger)
	generator := generate.NewGenerator(store)
	executor := audit.NewExecutor(db, logger)
	scanner := audit.NewScanner()

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}

	if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
		return fmt.Errorf("failed to register database: %w", err)
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		return fmt.Errorf("failed to register logger: %w", err)
	}
	if err := ectoinject.RegisterInstance[*staffrepo.Repository](container, staffRepository); err != nil {
		return fmt.Errorf("failed to register staff repository: %w", err)
	}
	if err := ectoinject.RegisterInstance[*clientrepo.Repository](container, clientRepository); err != nil {
		return fmt.Errorf("failed to register client repository: %w", err)
	}
	if err := ectoinject.RegisterInstance[*generate.Generator](container, generator); err != nil {
		return fmt.Errorf("failed to register generator: %w", err)
	}
	if err := ectoinject.RegisterInstance[*audit.Executor](container, executor); err != nil {
		return fmt.Errorf("failed to register audit executor: %w", err)
	}
	if err := ectoinject.RegisterInstance[*audit.Scanner](container, scanner); err != nil {
		return fmt.Errorf("failed to register leak scanner: %w", err)
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()

		emitter := events.NewEmitter(producer, logger)
		if err := ectoinject.RegisterInstance[*events.Emitter](container, emitter); err != nil {
			return fmt.Errorf("failed to register event emitter: %w", err)
		}
	}

	e := newServer(cfg, logger)

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	datasetroutes.Register(api.Group("/datasets"))
	staffroutes.Register(api.Group("/staff"))
	clientroutes.Register(api.Group("/clients"))
	auditroutes.Register(api.Group("/audit"))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	checker.SetReady(true)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	logger.WithFields(map[string]any{
		"app":  cfg.AppName,
		"port": cfg.Port,
	}).Info("api started")

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		checker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
	}

	return nil
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, _ = zap.NewDevelopment()
	} else {
		zapLogger, _ = zap.NewProduction()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newServer(cfg config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	return e
}

func setupTracing(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	if !cfg.TracingEnabled {
		return nil, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.AppName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	var exporter sdktrace.SpanExporter
	if cfg.TracingOTLPEndpoint != "" {
		exporter, err = exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: cfg.TracingInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, err
		}
	} else {
		exporter = &exporters.ConsoleExporter{}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp, nil
}

func connectDatabase(cfg config.Config, logger ectologger.Logger) (database.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
		cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	db, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	return database.NewDatabaseInstance(db, logger), nil
}

func runMigrations(cfg config.Config, logger ectologger.Logger, db database.DB) error {
	instance, ok := db.(*database.DatabaseInstance)
	if !ok {
		return fmt.Errorf("unexpected database instance type")
	}

	driver, err := migratepg.WithInstance(instance.DB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})

	return ms.Migrate(cfg.DatabaseName, driver)
}
