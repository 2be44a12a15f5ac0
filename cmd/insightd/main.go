package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/psharda/insight/analysis"
	"github.com/psharda/insight/config"
	"github.com/psharda/insight/llm"
	insightlogger "github.com/psharda/insight/logger"
	"github.com/psharda/insight/memories"
	"github.com/psharda/insight/migrations"
	"github.com/psharda/insight/ontology"
	"github.com/psharda/insight/runtime"
	"github.com/psharda/insight/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command-line flags
	var (
		addr    = flag.String("addr", "", "HTTP listen address (overrides config)")
		dbPath  = flag.String("db", "", "Path to SQLite database file (overrides config)")
		logFile = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty  = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	flag.Parse()

	// Validate that --logfile and --pretty are mutually exclusive
	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	// Load a local .env if present; API keys usually live there in dev.
	_ = godotenv.Load()

	logger, err := insightlogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	configPath := config.GetServerConfigPath()
	appConfig, err := config.LoadServerConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *addr != "" {
		appConfig.Server.Addr = *addr
	}
	if *dbPath != "" {
		appConfig.Database.Path = *dbPath
	}

	logger.Info().
		Str("addr", appConfig.Server.Addr).
		Str("db", appConfig.Database.Path).
		Msg("insightd starting")

	// ---------------------------
	// 1. Open SQLite + memory store
	// ---------------------------

	db, err := sql.Open("sqlite3", appConfig.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // No remedy for db close errors

	if err := migrations.RunMigrations(db, appConfig.Database.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	memoryStore := memories.NewStore(db, logger)

	// ---------------------------
	// 2. LLM gateway with retries
	// ---------------------------

	client, key, err := config.NewGatewayClient(appConfig, logger)
	if err != nil {
		return err
	}
	gateway := llm.WithRetry(client, appConfig.RetryPolicy(), logger)

	// ---------------------------
	// 3. Analysis pipeline
	// ---------------------------

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithWeights(appConfig.Analysis.Weights),
		analysis.WithCachePolicy(appConfig.CachePolicy()),
		analysis.WithModel(key.Model),
		analysis.WithMaxTokens(appConfig.Analysis.MaxTokens),
		analysis.WithMaxMemoryContexts(appConfig.Analysis.MaxMemoryContexts),
		analysis.WithHistoryCapacity(appConfig.Analysis.HistorySize),
	}
	if appConfig.Analysis.FlushCacheOnModelChange {
		opts = append(opts, analysis.WithCacheFlushOnModelChange())
	}
	processor := analysis.New(gateway, ontology.NewKeywordClassifier(), opts...)

	// ---------------------------
	// 4. Background maintenance
	// ---------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !appConfig.Maintenance.Disabled {
		sched, err := runtime.ParseSchedule(appConfig.Maintenance.Schedule)
		if err != nil {
			return fmt.Errorf("invalid maintenance schedule %q: %w", appConfig.Maintenance.Schedule, err)
		}
		retention := time.Duration(appConfig.Maintenance.RetentionDays) * 24 * time.Hour
		janitor := runtime.NewMaintenance(processor, memoryStore, sched, retention, logger)
		go janitor.Start(ctx)
	}

	// ---------------------------
	// 5. HTTP server
	// ---------------------------

	srv := server.New(appConfig.Server.Addr, processor, memoryStore, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logger.Info().Msg("insightd stopped")
	return nil
}
