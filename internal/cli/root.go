package cli

import (
	"github.com/mizuki-h/subrail/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subrail",
	Short: "Subtitle timeline editor for multi-track captions",
	Long: `Subrail lays out subtitle segments on parallel tracks, resolves
visual overlap, keeps a revertible edit history, and synchronizes the
composed caption with playback time.

It reads SRT, VTT, and ASS/SSA files and persists its full state as one
JSON snapshot.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringArrayP("map", "m", nil,
			"Speaker-to-track mapping, e.g. main=ALICE,BOB (repeatable)")
}
