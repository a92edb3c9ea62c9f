package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// CreateToolExecution creates a new tool execution record in the database
func CreateToolExecution(ctx context.Context, db Execer, execution *ToolExecution) error {
	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}
	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now()
	}

	query := `INSERT INTO tool_executions (id, session_id, tool_name, input, output, is_error, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		execution.ID,
		execution.SessionID,
		execution.ToolName,
		execution.Input,
		execution.Output,
		execution.IsError,
		execution.DurationMs,
		execution.CreatedAt,
	)
	return err
}

// GetToolExecutionsBySessionID lists the tool calls made for a session,
// oldest first.
func GetToolExecutionsBySessionID(ctx context.Context, db sqlscan.Querier, sessionID string) ([]ToolExecution, error) {
	query := `SELECT id, session_id, tool_name, input, output, is_error, duration_ms, created_at
		FROM tool_executions WHERE session_id = ? ORDER BY created_at, rowid`
	var out []ToolExecution
	if err := sqlscan.Select(ctx, db, &out, query, sessionID); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordToolExecution stores an audit row for one tool call.
func (d *DB) RecordToolExecution(ctx context.Context, execution *ToolExecution) error {
	return CreateToolExecution(ctx, d.db, execution)
}

// ToolExecutions lists the audit rows for sessionID.
func (d *DB) ToolExecutions(ctx context.Context, sessionID string) ([]ToolExecution, error) {
	return GetToolExecutionsBySessionID(ctx, d.db, sessionID)
}
