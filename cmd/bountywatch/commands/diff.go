package commands

import (
	"bountywatch/internal/serviceutil"
	"bountywatch/internal/watch"
	"os"

	"github.com/spf13/cobra"
)

var dumpDir *string

func init() {
	dumpDir = diffCmd.Flags().String("dump", "", "Also write the rendered page to this directory.")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff [--dump <dir>]",
	Short: "Scrapes and prints the postings that would be new, without notifying or saving.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setupApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to setup", err)
		}

		runner, err := newRunner(a, *dumpDir)
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to create runner", err)
		}

		report := runner.Preview(cmd.Context())
		a.Close()
		if report.Status == watch.StatusAborted {
			serviceutil.Fatal("failed to preview", report.Err)
		}
		renderPostings(os.Stdout, report.NewPostings)
	},
}
