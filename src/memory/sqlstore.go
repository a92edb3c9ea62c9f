package memory

import (
	"context"
	"fmt"

	"github.com/elee1766/moviefinder/src/storage"
)

// SQLStore persists turns in the sqlite database so history survives
// restarts.
type SQLStore struct {
	db *storage.DB
}

func NewSQLStore(db *storage.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	if err := validateAll(turns); err != nil {
		return err
	}
	rows := make([]*storage.Turn, len(turns))
	for i, t := range turns {
		rows[i] = &storage.Turn{Role: t.Role, Content: t.Text, CreatedAt: t.CreatedAt}
	}
	if err := s.db.AppendTurns(ctx, sessionID, rows...); err != nil {
		return fmt.Errorf("append turns: %w", err)
	}
	return nil
}

func (s *SQLStore) Snapshot(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.Turns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	out := make([]Turn, len(rows))
	for i, r := range rows {
		out[i] = Turn{Role: r.Role, Text: r.Content, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

func (s *SQLStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.ClearSession(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
