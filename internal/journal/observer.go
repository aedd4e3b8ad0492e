package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/unidir/internal/observability"
	"github.com/roach88/unidir/internal/store"
)

// Recorder is an observability.Observer that writes every reduced action of
// one store into a journal session.
//
// Only store.EventActionReduced events whose Source equals the recorded
// store's name are written, so attaching a Recorder to a root store does not
// also journal its scoped children. Write failures do not interrupt the
// store; they are collected and returned by Err.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	journal *Journal
	session string
	source  string

	mu   sync.Mutex
	errs []error
}

// NewRecorder returns a Recorder writing entries from the store named source
// into session.
func NewRecorder(j *Journal, session, source string) *Recorder {
	return &Recorder{journal: j, session: session, source: source}
}

// OnEvent implements observability.Observer.
func (r *Recorder) OnEvent(ctx context.Context, event observability.Event) {
	if event.Type != store.EventActionReduced || event.Source != r.source {
		return
	}

	seq, ok := event.Data["seq"].(int64)
	if !ok {
		r.fail(fmt.Errorf("journal: event without seq from %q", event.Source))
		return
	}
	action := fmt.Sprint(event.Data["action"])

	if _, err := r.journal.WriteEntry(context.WithoutCancel(ctx), r.session, seq, action, event.Data["state"]); err != nil {
		r.fail(err)
	}
}

// Err returns all write failures observed so far joined into one error, or
// nil if every entry was written.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

func (r *Recorder) fail(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}
