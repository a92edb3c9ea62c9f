package agent

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/storage"
)

func textTool(name, out string) Tool {
	return NewFuncTool(name, "test tool", nil, func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		return TextResponse(out), nil
	})
}

func TestToolboxRegister(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(textTool("b", "")))
	require.NoError(t, tb.RegisterTool(textTool("a", "")))
	assert.Error(t, tb.RegisterTool(textTool("a", "")))
	assert.Error(t, tb.RegisterTool(textTool("", "")))

	names := []string{}
	for _, tool := range tb.Tools() {
		names = append(names, tool.GetName())
	}
	assert.Equal(t, []string{"a", "b"}, names)
	assert.True(t, tb.HasTool("a"))
	assert.Len(t, tb.ChatTools(), 2)
}

func TestToolboxUnknownTool(t *testing.T) {
	tb := NewToolbox[Tool]()
	_, err := tb.ExecuteTool(context.Background(), call("nope", `{}`))
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestToolboxMiddlewareOrder(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(textTool("t", "ok")))

	var order []string
	mark := func(name string) ToolMiddleware {
		return func(next ToolExecutor) ToolExecutor {
			return func(ctx context.Context, c *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
				order = append(order, name+">")
				r, err := next(ctx, c)
				order = append(order, "<"+name)
				return r, err
			}
		}
	}
	tb.RegisterMiddleware(mark("outer"))
	tb.RegisterMiddleware(mark("inner"))

	resp, err := tb.ExecuteTool(context.Background(), call("t", `{}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Content))
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(textTool("search_movies", "ok")))
	tb.RegisterMiddleware(LoggingMiddleware(logger))

	ctx := WithSessionID(context.Background(), "abc")
	_, err := tb.ExecuteTool(ctx, call("search_movies", `{"query":"x"}`))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "tool=search_movies")
	assert.Contains(t, buf.String(), "session_id=abc")
	assert.Contains(t, buf.String(), "tool execution completed")
}

type fakeObserver struct {
	names  []string
	failed []bool
}

func (f *fakeObserver) ObserveTool(name string, _ time.Duration, failed bool) {
	f.names = append(f.names, name)
	f.failed = append(f.failed, failed)
}

func TestObserverMiddleware(t *testing.T) {
	obs := &fakeObserver{}
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(textTool("ok", "fine")))
	require.NoError(t, tb.RegisterTool(NewFuncTool("bad", "", nil, func(ctx context.Context, c *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		return ErrorResponse("nope"), nil
	})))
	tb.RegisterMiddleware(ObserverMiddleware(obs))

	_, _ = tb.ExecuteTool(context.Background(), call("ok", `{}`))
	_, _ = tb.ExecuteTool(context.Background(), call("bad", `{}`))

	assert.Equal(t, []string{"ok", "bad"}, obs.names)
	assert.Equal(t, []bool{false, true}, obs.failed)
}

type fakeRecorder struct {
	mu   sync.Mutex
	rows []*storage.ToolExecution
	err  error
}

func (f *fakeRecorder) RecordToolExecution(ctx context.Context, row *storage.ToolExecution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	return f.err
}

func TestRecordingMiddleware(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(textTool("search_movies", "Inception (2010): ...")))
	tb.RegisterMiddleware(RecordingMiddleware(rec, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	ctx := WithSessionID(context.Background(), "s1")
	resp, err := tb.ExecuteTool(ctx, call("search_movies", `{"query":"Inception"}`))
	require.NoError(t, err, "recorder failures must not reach the caller")
	assert.Equal(t, "Inception (2010): ...", string(resp.Content))

	require.Len(t, rec.rows, 1)
	row := rec.rows[0]
	assert.Equal(t, "s1", row.SessionID)
	assert.Equal(t, "search_movies", row.ToolName)
	assert.Equal(t, `{"query":"Inception"}`, row.Input)
	assert.False(t, row.IsError)
}

func TestSessionIDFromContext(t *testing.T) {
	assert.Empty(t, SessionIDFromContext(context.Background()))
	assert.Equal(t, "x", SessionIDFromContext(WithSessionID(context.Background(), "x")))
}

func TestToChatToolDefaults(t *testing.T) {
	tool := &FuncTool{Function: aisdk.ToolFunction{Name: "list_genres"}}
	ct := ToChatTool(tool)
	assert.Equal(t, aisdk.ToolTypeFunction, ct.Type)
	assert.Equal(t, "list_genres", ct.Function.Name)
	require.NotNil(t, ct.Function.Parameters)
	require.NotNil(t, ct.Function.Parameters.Type)
	assert.Empty(t, ct.Function.Parameters.Properties)

	tools := ToChatTools([]Tool{textTool("b", ""), textTool("a", "")})
	require.Len(t, tools, 2)
	assert.Equal(t, "b", tools[0].Function.Name)
	assert.Equal(t, "a", tools[1].Function.Name)
}
