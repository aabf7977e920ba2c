package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/config"
	"github.com/iudanet/playsync/internal/engine"
	"github.com/iudanet/playsync/internal/server"
	"github.com/iudanet/playsync/internal/server/handlers"
	"github.com/iudanet/playsync/internal/server/storage/sqlite"
	"github.com/iudanet/playsync/internal/validation"
)

// rootOptions holds global flags of the server binary.
type rootOptions struct {
	lookup     config.LookupFunc
	configPath string
	addr       string
	dbPath     string
	logLevel   string
}

func newRootCommand(lookup config.LookupFunc) *cobra.Command {
	opts := &rootOptions{lookup: lookup}

	cmd := &cobra.Command{
		Use:           "playsync-server",
		Short:         "Authoritative store for versioned plays",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(versionText())

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	flags.StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	flags.StringVar(&opts.dbPath, "db", "", "path to SQLite database (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	cmd.AddCommand(newServeCommand(opts), newTokenCommand(opts))

	return cmd
}

// loadConfig собирает конфигурацию: файл, затем окружение, затем флаги
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.ServerConfig, error) {
	cfg, err := config.LoadServerConfig(o.configPath, o.lookup)
	if err != nil {
		return config.ServerConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.ServerConfig{}, err
	}
	return cfg, nil
}

func jwtConfig(cfg config.ServerConfig) handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:   []byte(cfg.JWT.Secret),
		TokenTTL: cfg.JWT.TokenTTL,
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg config.ServerConfig) error {
	ctx := cmd.Context()

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	eng := engine.New(store, store, logger)

	srv := server.New(server.Config{
		Addr:            cfg.Addr,
		JWT:             jwtConfig(cfg),
		Session:         handlers.DefaultSessionConfig(),
		RateLimit:       cfg.RateLimit.Requests,
		RateWindow:      cfg.RateLimit.Window,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, eng, store, logger)

	logger.Info("playsync server starting",
		"version", Version,
		"addr", cfg.Addr,
		"db", cfg.DBPath)

	return srv.Run(ctx)
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		actor string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an actor token for 'playsync login'",
		Example: `  playsync-server token --actor coach-alice
  playsync-server token --actor coach-bob --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateActor(actor); err != nil {
				return err
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			jwtCfg := jwtConfig(cfg)
			if cmd.Flags().Changed("ttl") {
				jwtCfg.TokenTTL = ttl
			}

			token, expiresAt, err := handlers.GenerateToken(jwtCfg, actor)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			if !expiresAt.IsZero() {
				fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "actor name the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry (default from config)")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}
