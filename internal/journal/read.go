package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReadSession returns the session with the given ID.
// Returns a SESSION_NOT_FOUND error if it does not exist.
func (j *Journal) ReadSession(ctx context.Context, id string) (Session, error) {
	var (
		sess    Session
		created string
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT id, app, created_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.App, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, &Error{Code: ErrCodeSessionNotFound, SessionID: id}
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Session{}, fmt.Errorf("read session: parse created_at: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions ordered by ID. With UUIDv7 IDs this is
// creation order.
//
// Returns an empty slice (not nil) if there are no sessions.
func (j *Journal) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, app, created_at
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			sess    Session
			created string
		)
		if err := rows.Scan(&sess.ID, &sess.App, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("scan session: parse created_at: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// ReadEntries returns all entries of a session in dispatch order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns a SESSION_NOT_FOUND error if the session does not exist, and an
// empty slice (not nil) if it exists but has no entries.
func (j *Journal) ReadEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	if _, err := j.ReadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, seq, action, state, state_hash
		FROM entries
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e     Entry
			state string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Action, &state, &e.StateHash); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.State = []byte(state)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// LatestState returns the state recorded by the last entry of a session, or
// nil if the session has no entries.
func (j *Journal) LatestState(ctx context.Context, sessionID string) ([]byte, error) {
	if _, err := j.ReadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	var state string
	err := j.db.QueryRowContext(ctx, `
		SELECT state
		FROM entries
		WHERE session_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, sessionID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest state: %w", err)
	}
	return []byte(state), nil
}
