package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-irc/internal/app"
	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/config"
	applog "github.com/vovakirdan/wirechat-irc/internal/log"
)

var (
	configPath string
	overrides  config.Config
)

var rootCmd = &cobra.Command{
	Use:           "wirechat-irc",
	Short:         "Line-oriented IRC relay server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Print an operator token for the status API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AdminJWTSecret == "" {
			return errors.New("admin_jwt_secret is not set")
		}
		subject := ""
		if len(args) == 1 {
			subject = args[0]
		}
		token, err := app.NewAuthService(&cfg).IssueToken(subject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for admin_password_hash",
	Long:  "Print a bcrypt hash for admin_password_hash. Reads the password from stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("empty password")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (YAML)")
	flags.StringVar(&overrides.Addr, "addr", "", "TCP listen address for relay clients")
	flags.StringVar(&overrides.HTTPAddr, "http-addr", "", "HTTP listen address for the status API and WebSocket bridge")
	flags.StringVar(&overrides.ServerName, "server-name", "", "Server name used as the source of replies")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&overrides.DatabasePath, "db", "", "SQLite path for the session journal")

	rootCmd.AddCommand(tokenCmd, hashPasswordCmd)
}

func loadConfig() (config.Config, error) {
	bootstrap := applog.New("info", "console")
	cfg, path, err := config.Load(bootstrap, configPath)
	if err != nil {
		return cfg, err
	}
	cfg.UpdateFrom(overrides)
	if err := config.Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	bootstrap.Debug().Str("path", path).Msg("config loaded")
	return cfg, nil
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := applog.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("http_addr", cfg.HTTPAddr).
		Str("server_name", cfg.ServerName).
		Msg("starting wirechat-irc")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
