package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/unidir/internal/snapshot"
)

// Session is one run of an application recorded in the journal.
type Session struct {
	ID        string
	App       string
	CreatedAt time.Time
}

// Entry is one reduced action within a session.
type Entry struct {
	ID        string
	SessionID string
	Seq       int64
	Action    string
	State     json.RawMessage // canonical JSON
	StateHash string
}

// StartSession creates a new session for app and returns it.
func (j *Journal) StartSession(ctx context.Context, app string) (Session, error) {
	sess := Session{
		ID:        j.ids.Generate(),
		App:       app,
		CreatedAt: j.now().UTC(),
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, app, created_at)
		VALUES (?, ?, ?)
	`, sess.ID, sess.App, sess.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Session{}, fmt.Errorf("start session: %w", err)
	}

	return sess, nil
}

// WriteEntry records that action was reduced at seq, leaving state behind.
//
// The state is stored as canonical JSON together with its content hash.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same entry
// twice is silently ignored. A different entry at an occupied seq violates
// the (session_id, seq) unique index and returns an error.
//
// The session must exist (foreign key constraint).
func (j *Journal) WriteEntry(ctx context.Context, sessionID string, seq int64, action string, state any) (Entry, error) {
	canonical, err := snapshot.Marshal(state)
	if err != nil {
		return Entry{}, &Error{Code: ErrCodeUnencodableState, SessionID: sessionID, Err: err}
	}
	hash, err := snapshot.StateHash(state)
	if err != nil {
		return Entry{}, &Error{Code: ErrCodeUnencodableState, SessionID: sessionID, Err: err}
	}
	id, err := snapshot.EntryID(sessionID, seq, action, hash)
	if err != nil {
		return Entry{}, fmt.Errorf("write entry: %w", err)
	}

	entry := Entry{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Action:    action,
		State:     canonical,
		StateHash: hash,
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries (id, session_id, seq, action, state, state_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		entry.ID,
		entry.SessionID,
		entry.Seq,
		entry.Action,
		string(entry.State),
		entry.StateHash,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("write entry: %w", err)
	}

	return entry, nil
}
