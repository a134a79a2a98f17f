package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/entropy/cmd/entropy/configpath"
	"github.com/papercomputeco/entropy/pkg/config"
	"github.com/papercomputeco/entropy/pkg/logger"
	"github.com/papercomputeco/entropy/relay"
)

const serveLongDesc string = `Run the completion relay.

The relay accepts a conversation on POST /api/chat, prepends the Entropy
persona, forwards it to the configured chat completion provider and streams
the reply back as plain text. Finished exchanges are recorded as
content-addressed transcripts, in memory or in SQLite when --db is set.

The config file is watched: edits to the provider key, model or endpoint
apply to the next request without a restart.

Examples:
  OPENAI_API_KEY=sk-... entropy serve
  entropy serve --listen :9090 --db ~/.entropy/transcripts.db`

const serveShortDesc string = "Run the completion relay"

type serveCommander struct {
	listenAddr string
	dbPath     string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), configFlag, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite transcript database (default: in-memory)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, configFlag string, debug bool) error {
	path, err := configpath.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)

	log := logger.NewLogger(debug)
	defer log.Sync()

	log.Info("entropy relay starting",
		zap.String("config", path),
		zap.String("listen", cfg.Server.ListenAddr),
		zap.Bool("credential_set", cfg.Provider.APIKey != ""),
		zap.Bool("debug", debug),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(cfg)
	if err := store.Watch(ctx, path, c.applyOverrides, log); err != nil {
		log.Warn("config hot reload disabled", zap.Error(err))
	}

	r, err := relay.New(store, relay.OpenAIFactory, log)
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	defer r.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down relay")
		return r.Shutdown()
	}
}

// applyOverrides puts the command-line flags over values read from the file.
func (c *serveCommander) applyOverrides(cfg *config.Config) {
	if c.listenAddr != "" {
		cfg.Server.ListenAddr = c.listenAddr
	}
	if c.dbPath != "" {
		cfg.Transcripts.DBPath = c.dbPath
	}
}
