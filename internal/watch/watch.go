// Package watch runs one scrape, diff, notify and persist cycle.
//
// A run is strictly sequential: every posting is notified in discovery order
// and the run neither locks the store nor adds its own timeouts, the
// collaborators bound themselves.
package watch

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/chrono"
	"bountywatch/internal/fetch"
	"bountywatch/internal/notify"
	"bountywatch/internal/posting"
	"bountywatch/internal/snapshot"
	"bountywatch/internal/telemetry"
	"context"
	"errors"
	"fmt"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bountywatch/internal/watch")
	meter  = otel.Meter("bountywatch/internal/watch")
)

var (
	ErrFetch   = errors.New("fetch postings")
	ErrLoad    = errors.New("load previous snapshot")
	ErrPersist = errors.New("persist snapshot")
)

const (
	report_run_fetch   = "run.fetch"
	report_run_load    = "run.load"
	report_run_notify  = "run.notify"
	report_run_persist = "run.persist"
	report_run_drift   = "run.drift"
	report_run_new     = "run.new"
)

type Options struct {
	Fetcher  fetch.Fetcher
	Store    snapshot.Store
	Notifier notify.Notifier
	Resolver posting.Resolver
	// MaxPostings bounds both the fetch and the persisted snapshot.
	MaxPostings int
	// DriftThreshold enables near-duplicate warnings when positive.
	DriftThreshold float64
	Time           chrono.TimeAPI
	Tel            telemetry.API
}

type Runner struct {
	fetcher        fetch.Fetcher
	store          snapshot.Store
	notifier       notify.Notifier
	resolver       posting.Resolver
	maxPostings    int
	driftThreshold float64
	time           chrono.TimeAPI
	tel            telemetry.API
	runCounter     metric.Int64Counter
	newCounter     metric.Int64Counter
}

func NewRunner(opts Options) (Runner, error) {
	assert.NotNil(opts.Fetcher)
	assert.NotNil(opts.Store)
	assert.NotNil(opts.Notifier)
	assert.NotNil(opts.Resolver)
	assert.NotNil(opts.Time)
	assert.NotNil(opts.Tel)
	assert.Positive("max postings", opts.MaxPostings)

	runCounter, err := meter.Int64Counter(
		"watch_runs_total",
		metric.WithDescription("The total amount of runs by terminal status."),
	)
	if err != nil {
		return Runner{}, err
	}
	newCounter, err := meter.Int64Counter(
		"watch_new_postings_total",
		metric.WithDescription("The total amount of postings found to be new."),
	)
	if err != nil {
		return Runner{}, err
	}

	return Runner{
		fetcher:        opts.Fetcher,
		store:          opts.Store,
		notifier:       opts.Notifier,
		resolver:       opts.Resolver,
		maxPostings:    opts.MaxPostings,
		driftThreshold: opts.DriftThreshold,
		time:           opts.Time,
		tel:            telemetry.NewScopedAPI("watch", opts.Tel),
		runCounter:     runCounter,
		newCounter:     newCounter,
	}, nil
}

func newRunID() string {
	id, err := random.String(12)
	if err != nil {
		return "unknown"
	}
	return id
}

// Run executes one full cycle and always returns a terminal report.
func (r Runner) Run(ctx context.Context) Report {
	return r.run(ctx, false)
}

// Preview fetches and diffs without notifying or touching the snapshot.
func (r Runner) Preview(ctx context.Context) Report {
	return r.run(ctx, true)
}

func (r Runner) finish(ctx context.Context, span trace.Span, report Report) Report {
	report.Finished = r.time.Now()
	span.SetAttributes(
		attribute.String("status", string(report.Status)),
		attribute.Int("fetched", report.Fetched),
		attribute.Int("new", report.New),
		attribute.Int("notified", report.Notified),
		attribute.Int("notify_failed", report.NotifyFailed),
		attribute.Int("persisted", report.Persisted),
	)
	if report.Err != nil {
		span.RecordError(report.Err)
		span.SetStatus(codes.Error, string(report.Status))
	}
	r.runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(report.Status))))
	r.tel.ReportDebug(
		"run finished",
		telemetry.KV{Key: "run", Value: report.RunID},
		telemetry.KV{Key: "status", Value: report.Status},
		telemetry.KV{Key: "duration", Value: report.Duration().String()},
	)
	return report
}

func (r Runner) run(ctx context.Context, dryRun bool) Report {
	report := Report{
		RunID:   newRunID(),
		Started: r.time.Now(),
	}

	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", report.RunID),
		attribute.String("identity", r.resolver.Name()),
		attribute.Bool("dry_run", dryRun),
	)

	current, err := r.fetch(ctx)
	report.Fetched = len(current)
	if err != nil {
		report.Status = StatusAborted
		report.Err = err
		r.tel.ReportBroken(report_run_fetch, err, report.RunID)
		return r.finish(ctx, span, report)
	}

	previous, err := r.load(ctx)
	if err != nil {
		report.Status = StatusAborted
		report.Err = err
		r.tel.ReportBroken(report_run_load, err, report.RunID)
		return r.finish(ctx, span, report)
	}

	fresh := posting.FindNew(current, previous, r.resolver)
	report.New = len(fresh)
	report.NewPostings = fresh
	r.newCounter.Add(ctx, int64(len(fresh)))
	r.tel.ReportCount(report_run_new, int64(len(fresh)))
	report.Drifted = r.reportDrift(fresh, previous)

	if dryRun {
		report.Status = StatusSuccess
		return r.finish(ctx, span, report)
	}

	report.Notified, report.NotifyErr = r.notifyAll(ctx, fresh)
	report.NotifyFailed = len(fresh) - report.Notified

	batch := posting.Limit(current, r.maxPostings)
	err = r.persist(ctx, batch)
	if err != nil {
		report.Status = StatusPartial
		report.Err = err
		r.tel.ReportBroken(report_run_persist, err, report.RunID)
		return r.finish(ctx, span, report)
	}
	report.Persisted = len(batch)

	report.Status = StatusSuccess
	if report.NotifyFailed > 0 {
		report.Status = StatusPartial
	}
	return r.finish(ctx, span, report)
}

func (r Runner) fetch(ctx context.Context) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "Runner.fetch")
	defer span.End()

	current, err := r.fetcher.Fetch(ctx, r.maxPostings)
	if err == nil && len(current) == 0 {
		err = errors.New("no postings returned")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch postings")
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	span.SetAttributes(attribute.Int("count", len(current)))
	return current, nil
}

func (r Runner) load(ctx context.Context) ([]posting.Posting, error) {
	ctx, span := tracer.Start(ctx, "Runner.load")
	defer span.End()

	previous, err := r.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load previous snapshot")
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	span.SetAttributes(attribute.Int("count", len(previous)))
	return previous, nil
}

func (r Runner) notifyAll(ctx context.Context, fresh []posting.Posting) (int, error) {
	ctx, span := tracer.Start(ctx, "Runner.notify")
	defer span.End()

	notified := 0
	var errs []error
	for _, p := range fresh {
		err := r.notifier.Notify(ctx, p)
		if err != nil {
			span.RecordError(err)
			r.tel.ReportWarning(report_run_notify, err, telemetry.KV{Key: "posting", Value: p.ID})
			errs = append(errs, err)
			continue
		}
		notified++
	}
	if len(errs) > 0 {
		span.SetStatus(codes.Error, "failed to notify some postings")
	}
	return notified, errors.Join(errs...)
}

func (r Runner) persist(ctx context.Context, batch []posting.Posting) error {
	ctx, span := tracer.Start(ctx, "Runner.persist")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(batch)))

	err := r.store.Replace(ctx, batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to replace snapshot")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (r Runner) reportDrift(fresh, previous []posting.Posting) int {
	if r.driftThreshold <= 0 || len(previous) == 0 {
		return 0
	}
	drifts := posting.FindDrift(fresh, previous, r.driftThreshold)
	for _, d := range drifts {
		r.tel.ReportWarning(
			report_run_drift,
			telemetry.KV{Key: "fresh", Value: d.Fresh.Title},
			telemetry.KV{Key: "previous", Value: d.Previous.Title},
			telemetry.KV{Key: "similarity", Value: fmt.Sprintf("%.2f", d.Similarity)},
		)
	}
	return len(drifts)
}
