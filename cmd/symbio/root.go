package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/symbio/internal/config"
)

type globalFlags struct {
	configPath      string
	logLevel        string
	baseURL         string
	statePath       string
	metricsTextfile string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Freelance marketplace client",
		Long: `symbio talks to a symbio marketplace server: browse and bid on tasks,
accept offers, leave reviews, chat with other users, open support
tickets and move funds out of the built-in wallet.

Sign in once with "symbio login"; the session is kept in the state
database for later commands.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.baseURL, "base-url", "", "Marketplace server URL")
	pf.StringVar(&flags.statePath, "state-path", "", "SQLite state file; \"-\" keeps the session in memory")
	pf.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "Write transport metrics to this file on exit")

	cmd.AddCommand(
		versionCmd(),
		loginCmd(&flags),
		registerCmd(&flags),
		restoreCmd(&flags),
		logoutCmd(&flags),
		whoamiCmd(&flags),
		tasksCmd(&flags),
		taskCmd(&flags),
		offerCmd(&flags),
		acceptCmd(&flags),
		reviewCmd(&flags),
		chatCmd(&flags),
		ticketCmd(&flags),
		walletCmd(&flags),
		profilesCmd(&flags),
		profileCmd(&flags),
		freelancerCmd(&flags),
		disputesCmd(&flags),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}

// loadConfig layers defaults, the config file, SYMBIO_* variables and flags.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		fileCfg, err := config.LoadFromFile(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg = config.FromEnv(cfg)
	cfg.Merge(&config.Config{
		BaseURL:   flags.baseURL,
		LogLevel:  flags.logLevel,
		StatePath: flags.statePath,
		Metrics:   config.MetricsConfig{Textfile: flags.metricsTextfile},
	})
	if cfg.StatePath == "-" {
		cfg.StatePath = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}

// withApp wraps a command body with app setup and teardown.
func withApp(flags *globalFlags, body func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg.LogLevel)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		runErr := body(ctx, a, args)
		if err := a.close(); err != nil {
			logger.Warn("shutdown failed", slog.String("error", err.Error()))
		}
		return runErr
	}
}
