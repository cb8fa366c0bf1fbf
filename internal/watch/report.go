package watch

import (
	"bountywatch/internal/posting"
	"encoding/json"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	// StatusAborted means nothing was notified and the snapshot is untouched.
	StatusAborted Status = "aborted"
	// StatusPartial means the run got past the diff but a notification or the
	// persist failed.
	StatusPartial Status = "partial"
)

// Report is the terminal state of a run.
type Report struct {
	RunID        string
	Status       Status
	Fetched      int
	New          int
	Notified     int
	NotifyFailed int
	Persisted    int
	Drifted      int
	Started      time.Time
	Finished     time.Time

	// Err is the error that aborted the run or failed the persist, it wraps
	// one of ErrFetch, ErrLoad or ErrPersist.
	Err error
	// NotifyErr joins every notify failure.
	NotifyErr error
	// NewPostings are the postings the diff found, in discovery order.
	NewPostings []posting.Posting
}

func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

type reportJson struct {
	RunID        string            `json:"run_id"`
	Status       Status            `json:"status"`
	Fetched      int               `json:"fetched"`
	New          int               `json:"new"`
	Notified     int               `json:"notified"`
	NotifyFailed int               `json:"notify_failed"`
	Persisted    int               `json:"persisted"`
	Drifted      int               `json:"drifted"`
	Started      time.Time         `json:"started"`
	Finished     time.Time         `json:"finished"`
	Error        string            `json:"error,omitempty"`
	NotifyError  string            `json:"notify_error,omitempty"`
	NewPostings  []posting.Posting `json:"new_postings"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (r Report) MarshalJSON() ([]byte, error) {
	newPostings := r.NewPostings
	if newPostings == nil {
		newPostings = []posting.Posting{}
	}
	return json.Marshal(reportJson{
		RunID:        r.RunID,
		Status:       r.Status,
		Fetched:      r.Fetched,
		New:          r.New,
		Notified:     r.Notified,
		NotifyFailed: r.NotifyFailed,
		Persisted:    r.Persisted,
		Drifted:      r.Drifted,
		Started:      r.Started,
		Finished:     r.Finished,
		Error:        errString(r.Err),
		NotifyError:  errString(r.NotifyErr),
		NewPostings:  newPostings,
	})
}
