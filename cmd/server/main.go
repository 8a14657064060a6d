package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gavvahar/Monopoly-Deal/internal/config"
	"github.com/gavvahar/Monopoly-Deal/internal/repository"
	"github.com/gavvahar/Monopoly-Deal/internal/server"
	"github.com/gavvahar/Monopoly-Deal/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	version    = "dev" // set via ldflags during build
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dealserver",
		Short:         "Monopoly Deal game server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to configuration file")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting deal server",
		zap.String("version", version),
		zap.String("config", configPath),
	)

	var snapshots *repository.SnapshotRepository
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		snapshots = repository.NewSnapshotRepository(db)
	} else {
		logger.Info("snapshot persistence disabled, running in memory")
	}

	sessionMgr := session.NewManager(session.Options{
		IdleTimeout:    cfg.Server.IdleTimeout,
		KeepTopDiscard: cfg.Rules.KeepTopDiscard,
	}, logger)
	logger.Info("session manager initialized",
		zap.Duration("idle_timeout", cfg.Server.IdleTimeout),
		zap.Bool("keep_top_discard", cfg.Rules.KeepTopDiscard),
	)
	go sessionMgr.CleanupIdleSessions(ctx)

	srv := server.New(cfg.Server, sessionMgr, snapshots, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
