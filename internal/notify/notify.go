// Package notify delivers new postings to people.
package notify

import (
	"bountywatch/internal/posting"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Notifier sends a notification for a single posting.
type Notifier interface {
	Notify(ctx context.Context, p posting.Posting) error
}

// Multi notifies through every transport, a failing transport does not stop
// the others. The returned error joins the failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, p posting.Posting) error {
	var errs []error
	for _, n := range m {
		err := n.Notify(ctx, p)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Writer prints postings to an io.Writer, it is used when no transport is
// configured and for dry runs.
type Writer struct {
	mu  *sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) Writer {
	return Writer{mu: &sync.Mutex{}, out: out}
}

func (w Writer) Notify(_ context.Context, p posting.Posting) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.out, "%s\n%s\n", Subject(p), PlainText(p))
	return err
}
