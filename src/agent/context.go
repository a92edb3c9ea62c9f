package agent

import "context"

type sessionKey struct{}

// WithSessionID tags ctx with the conversation session it runs for, so
// tool middleware can attribute executions.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session id set by WithSessionID.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
