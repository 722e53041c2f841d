package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set via -ldflags at release time
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("subrail %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
