package commands

import (
	"bountywatch/internal/chrono"
	"bountywatch/internal/serviceutil"
	"bountywatch/internal/telemetry"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var (
	runImmediately *bool
	perfInterval   *time.Duration
)

func init() {
	runImmediately = daemonCmd.Flags().Bool("now", false, "Run once at startup before waiting for the schedule.")
	perfInterval = daemonCmd.Flags().Duration("perf-interval", time.Minute, "How often process stats are sampled, 0 disables it.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--now]",
	Short: "Runs on the configured cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		a, err := setupApp(ctx)
		if err != nil {
			serviceutil.Fatal("failed to setup", err)
		}
		defer a.Close()

		runner, err := newRunner(a, "")
		if err != nil {
			serviceutil.Fatal("failed to create runner", err)
		}

		if *perfInterval > 0 {
			telemetry.InstrumentPerfStats(ctx, a.tel, *perfInterval)
		}

		job := func() {
			report := runner.Run(ctx)
			slog.Info(
				"run complete",
				"run", report.RunID,
				"status", report.Status,
				"new", report.New,
				"notified", report.Notified,
				"persisted", report.Persisted,
			)
			if report.Err != nil {
				slog.Warn("run failed", "run", report.RunID, "err", report.Err)
			}
		}

		scheduler := chrono.NewStandardCron(a.time, a.tel)
		err = scheduler.Cron(a.config.Schedule, job)
		if err != nil {
			serviceutil.Fatal("invalid schedule", err)
		}
		slog.Info("daemon started", "schedule", a.config.Schedule, "url", a.config.Url)

		if *runImmediately {
			job()
		}

		<-ctx.Done()
		slog.Info("shutting down, waiting for the running job")
		<-scheduler.Stop().Done()
	},
}
