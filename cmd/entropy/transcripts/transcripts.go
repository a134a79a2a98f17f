package transcriptscmder

import (
	"github.com/spf13/cobra"
)

const transcriptsShortDesc string = "Manage recorded transcripts"

func NewTranscriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: transcriptsShortDesc,
	}

	cmd.AddCommand(NewMergeCmd())

	return cmd
}
