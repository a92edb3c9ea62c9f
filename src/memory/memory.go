// Package memory holds per-session conversation history: an ordered,
// append-only log of user and assistant turns.
package memory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrInvalidRole is returned when a turn carries a role other than user or
// assistant.
var ErrInvalidRole = errors.New("invalid turn role")

// Turn is one remembered message.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// UserTurn returns a user turn stamped with the current time.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// AssistantTurn returns an assistant turn stamped with the current time.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text, CreatedAt: time.Now()}
}

func (t Turn) validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, t.Role)
	}
}

// Store keeps turn logs for any number of sessions. Implementations must be
// safe for concurrent use across sessions. Turns passed to one Append call
// become visible together or not at all.
type Store interface {
	Append(ctx context.Context, sessionID string, turns ...Turn) error
	// Snapshot returns a copy of the session's turns in insertion order.
	// Unknown sessions yield an empty log.
	Snapshot(ctx context.Context, sessionID string) ([]Turn, error)
	// Clear forgets the session. Clearing an empty or unknown session is
	// not an error.
	Clear(ctx context.Context, sessionID string) error
}

// Conversation is the turn log of one session.
type Conversation struct {
	store     Store
	sessionID string
}

// NewConversation binds store to sessionID.
func NewConversation(store Store, sessionID string) *Conversation {
	return &Conversation{store: store, sessionID: sessionID}
}

// SessionID returns the session this conversation belongs to.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// Append adds turns to the end of the log.
func (c *Conversation) Append(ctx context.Context, turns ...Turn) error {
	return c.store.Append(ctx, c.sessionID, turns...)
}

// Snapshot returns the turns appended so far.
func (c *Conversation) Snapshot(ctx context.Context) ([]Turn, error) {
	return c.store.Snapshot(ctx, c.sessionID)
}

// Clear empties the log.
func (c *Conversation) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.sessionID)
}

func validateAll(turns []Turn) error {
	for _, t := range turns {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}
