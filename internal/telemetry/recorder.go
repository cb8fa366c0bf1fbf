package telemetry

import (
	"strings"
	"sync"
)

const (
	KindBroken  = "broken"
	KindWarning = "warning"
	KindDebug   = "debug"
	KindCount   = "count"
)

// Report is a single call made against a Recorder.
type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory so tests can assert
// that a component reported what it should have.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) push(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push(Report{Kind: KindBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push(Report{Kind: KindWarning, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push(Report{Kind: KindDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push(Report{Kind: KindCount, ID: id, Count: count})
}

// Find returns every report of the given kind whose id ends with suffix.
func (r *Recorder) Find(kind, suffix string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind && strings.HasSuffix(report.ID, suffix) {
			out = append(out, report)
		}
	}
	return out
}

// LastCount returns the most recent count reported under the id suffix.
func (r *Recorder) LastCount(suffix string) (int64, bool) {
	found := r.Find(KindCount, suffix)
	if len(found) == 0 {
		return 0, false
	}
	return found[len(found)-1].Count, true
}
