package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"jobherald/internal/config"
	"jobherald/internal/heartbeat"
	"jobherald/internal/notify"
	"jobherald/internal/oracle"
	"jobherald/internal/policy"
	"jobherald/internal/router"
	"jobherald/internal/scheduler"
	"jobherald/internal/service"
	"jobherald/internal/source/boardfeed"
	"jobherald/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Build the category list and make sure every category has its table.
	rtr, err := router.New(cfg)
	if err != nil {
		logger.Error("invalid category configuration", "error", err)
		os.Exit(1)
	}

	seenStore := postgres.NewSeenStore(db)
	if err := seenStore.EnsureSchema(ctx, rtr.Names()); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Notification transports
	announcer, err := notify.NewTelegramAnnouncer(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}

	var fanout service.FanOut
	if cfg.AMQP.URL != "" {
		amqpFanOut, err := notify.NewAMQPFanOut(notify.AMQPConfig{
			URL:        cfg.AMQP.URL,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
			QueueName:  cfg.AMQP.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer amqpFanOut.Close()
		fanout = amqpFanOut
	}

	// Relevance oracle, only when a category asks for it
	var relevanceOracle policy.Oracle
	if needsOracle(rtr) {
		gemini, err := oracle.NewGemini(ctx, oracle.Config{
			APIKey:  cfg.Oracle.APIKey,
			Model:   cfg.Oracle.Model,
			Timeout: cfg.Oracle.Timeout,
		}, logger)
		if err != nil {
			logger.Error("failed to create oracle", "error", err)
			os.Exit(1)
		}
		relevanceOracle = gemini
	}

	engine := policy.NewEngine(
		cfg.Filters.DeniedCompanies,
		cfg.Filters.DeniedRoleTerms,
		relevanceOracle,
		logger,
	)

	source := boardfeed.New(boardfeed.Config{
		BaseURL:        cfg.Source.BaseURL,
		Timeout:        cfg.Source.Timeout,
		MaxAttempts:    cfg.Source.Retry.MaxAttempts,
		InitialBackoff: cfg.Source.Retry.InitialBackoff,
		MaxBackoff:     cfg.Source.Retry.MaxBackoff,
	}, logger)

	harvest := service.NewHarvestService(
		source,
		seenStore,
		engine,
		announcer,
		fanout,
		cfg.Harvest.Location,
		logger,
	)

	sched := scheduler.NewScheduler(
		harvest,
		rtr.Categories(),
		cfg.Harvest.Cooldown,
		cfg.Harvest.CategoryTimeout,
		logger,
	)

	hb := heartbeat.New(sched, announcer, cfg.Telegram.StatusChatID, logger)
	if err := hb.Start(); err != nil {
		logger.Error("failed to start heartbeat", "error", err)
		os.Exit(1)
	}
	defer hb.Stop()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting job herald",
		"categories", len(rtr.Categories()),
		"cooldown", cfg.Harvest.Cooldown,
		"location", cfg.Harvest.Location,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func needsOracle(rtr *router.Router) bool {
	for _, cat := range rtr.Categories() {
		if cat.Policy.UseExternalOracle {
			return true
		}
	}
	return false
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
