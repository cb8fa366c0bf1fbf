package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

var rootCmd = &cobra.Command{
	Use:   "bountywatch",
	Short: "bountywatch watches the replit bounties page and notifies about new postings.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "bountywatch.json5", "The config file, <name>.local.<ext> is merged over it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
