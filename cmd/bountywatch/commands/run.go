package commands

import (
	"bountywatch/internal/serviceutil"
	"bountywatch/internal/watch"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

func newRunner(a app, dumpDir string) (watch.Runner, error) {
	scraper, err := a.fetcher(dumpDir)
	if err != nil {
		return watch.Runner{}, err
	}
	return watch.NewRunner(watch.Options{
		Fetcher:        scraper,
		Store:          a.store,
		Notifier:       a.notifier(),
		Resolver:       a.resolver,
		MaxPostings:    a.config.MaxPostings,
		DriftThreshold: a.config.DriftThreshold,
		Time:           a.time,
		Tel:            a.tel,
	})
}

func printJson(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a single scrape, notifies new postings and prints the run report.",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := setupApp(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to setup", err)
		}

		runner, err := newRunner(a, "")
		if err != nil {
			a.Close()
			serviceutil.Fatal("failed to create runner", err)
		}

		report := runner.Run(cmd.Context())
		a.Close()

		err = printJson(report)
		if err != nil {
			serviceutil.Fatal("failed to print report", err)
		}
		if report.Status == watch.StatusAborted {
			os.Exit(1)
		}
	},
}
