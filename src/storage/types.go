package storage

import "time"

// Session is a conversation thread keyed by the caller's session id.
type Session struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Turn is one remembered user or assistant message. Seq gives the
// insertion order within the database.
type Turn struct {
	Seq       int64     `json:"seq" db:"seq"`
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ToolExecution is an audit row for a single tool call.
type ToolExecution struct {
	ID         string    `json:"id" db:"id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	ToolName   string    `json:"tool_name" db:"tool_name"`
	Input      string    `json:"input" db:"input"`
	Output     string    `json:"output" db:"output"`
	IsError    bool      `json:"is_error" db:"is_error"`
	DurationMs int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
