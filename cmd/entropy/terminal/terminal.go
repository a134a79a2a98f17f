package terminalcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/entropy/cmd/entropy/configpath"
	"github.com/papercomputeco/entropy/pkg/commands"
	"github.com/papercomputeco/entropy/pkg/config"
	"github.com/papercomputeco/entropy/pkg/dexscreener"
	"github.com/papercomputeco/entropy/pkg/logger"
	"github.com/papercomputeco/entropy/pkg/twitter"
	"github.com/papercomputeco/entropy/pkg/wallet"
	"github.com/papercomputeco/entropy/terminal"
)

const terminalLongDesc string = `Open the interactive Entropy terminal.

Lines starting with ! are commands handled locally (try !help). Anything
else is sent, with the whole conversation so far, to the completion relay
and the reply is streamed into the terminal.

Examples:
  entropy terminal
  entropy terminal --relay http://localhost:9090 --keyfile ~/wallets/dev.json`

const terminalShortDesc string = "Open the interactive terminal"

var errNotATerminal = errors.New("entropy terminal needs an interactive terminal")

type terminalCommander struct {
	relayURL string
	keyfile  string
	logFile  string
}

func NewTerminalCmd() *cobra.Command {
	cmder := &terminalCommander{}

	cmd := &cobra.Command{
		Use:   "terminal",
		Short: terminalShortDesc,
		Long:  terminalLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return cmder.run(cmd, configFlag, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.relayURL, "relay", "r", "", "Completion relay URL (overrides config)")
	cmd.Flags().StringVarP(&cmder.keyfile, "keyfile", "k", "", "Wallet keyfile used by !connect (overrides config)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Write logs to this file (default: discard)")

	return cmd
}

func (c *terminalCommander) run(cmd *cobra.Command, configFlag string, debug bool) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotATerminal
	}

	path, err := configpath.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.relayURL != "" {
		cfg.Terminal.RelayURL = c.relayURL
	}
	if c.keyfile != "" {
		cfg.Terminal.WalletKeyfile = c.keyfile
	}

	// The terminal owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if c.logFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.logFile), 0o755); err != nil {
			return fmt.Errorf("could not create log directory: %w", err)
		}
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.NewLoggerTo(logOut, debug)
	defer log.Sync()

	router := commands.NewRouter(commands.Deps{
		Tokens:    dexscreener.NewClient(cfg.Lookups.DexScreenerURL),
		Usernames: twitter.NewClient(cfg.Lookups.MemoryLolURL, log),
		Keys:      wallet.NewGenerator(),
		Wallet:    wallet.KeyfileConnector{Path: cfg.Terminal.WalletKeyfile},
	}, log)

	session := terminal.NewSession(router, terminal.NewClient(cfg.Terminal.RelayURL), log)

	log.Info("terminal starting",
		zap.String("relay", cfg.Terminal.RelayURL),
		zap.String("keyfile", cfg.Terminal.WalletKeyfile),
	)

	p := tea.NewProgram(
		terminal.NewModel(session, cfg.Terminal.RelayURL),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal failed: %w", err)
	}
	return nil
}
