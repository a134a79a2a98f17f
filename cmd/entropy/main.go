package main

import (
	"os"

	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/entropy/cmd/entropy/serve"
	terminalcmder "github.com/papercomputeco/entropy/cmd/entropy/terminal"
	transcriptscmder "github.com/papercomputeco/entropy/cmd/entropy/transcripts"
)

const rootLongDesc string = `Entropy is a crypto-themed AI terminal.

"entropy serve" runs the completion relay that talks to the chat
completion provider. "entropy terminal" opens the interactive terminal,
which answers !commands locally and sends everything else to the relay.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "entropy",
		Short:         "Entropy AI terminal and completion relay",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ~/.entropy/config.toml)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(terminalcmder.NewTerminalCmd())
	cmd.AddCommand(transcriptscmder.NewTranscriptsCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
