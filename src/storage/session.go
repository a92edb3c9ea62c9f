package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// GetSessionByID retrieves a session by its ID
func GetSessionByID(ctx context.Context, db sqlscan.Querier, sessionID string) (*Session, error) {
	query := `SELECT id, created_at, updated_at FROM sessions WHERE id = ?`
	var s Session
	err := sqlscan.Get(ctx, db, &s, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &s, nil
}

// ListSessions returns all sessions, most recently active first.
func ListSessions(ctx context.Context, db sqlscan.Querier) ([]Session, error) {
	var sessions []Session
	err := sqlscan.Select(ctx, db, &sessions, `SELECT id, created_at, updated_at FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// TouchSession creates the session row if missing and bumps updated_at.
func TouchSession(ctx context.Context, db Execer, sessionID string) error {
	now := time.Now()
	query := `INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, sessionID, now, now)
	return err
}

// DeleteSession removes a session and, by cascade, its turns.
func DeleteSession(ctx context.Context, db Execer, sessionID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// CreateTurn inserts a turn. The session row must already exist.
func CreateTurn(ctx context.Context, db Execer, turn *Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	query := `INSERT INTO turns (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, turn.ID, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt)
	return err
}

// GetTurnsBySessionID retrieves all turns for a session in insertion order
func GetTurnsBySessionID(ctx context.Context, db sqlscan.Querier, sessionID string) ([]Turn, error) {
	query := `SELECT seq, id, session_id, role, content, created_at FROM turns WHERE session_id = ? ORDER BY seq`
	var turns []Turn
	err := sqlscan.Select(ctx, db, &turns, query, sessionID)
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// AppendTurns records turns for sessionID in one transaction, creating the
// session on first use.
func (d *DB) AppendTurns(ctx context.Context, sessionID string, turns ...*Turn) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := TouchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	for _, turn := range turns {
		turn.SessionID = sessionID
		if err := CreateTurn(ctx, tx, turn); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Turns returns the turns of sessionID in insertion order.
func (d *DB) Turns(ctx context.Context, sessionID string) ([]Turn, error) {
	return GetTurnsBySessionID(ctx, d.db, sessionID)
}

// ClearSession forgets everything remembered for sessionID.
func (d *DB) ClearSession(ctx context.Context, sessionID string) error {
	return DeleteSession(ctx, d.db, sessionID)
}
