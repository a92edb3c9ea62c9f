package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/storage"
)

// ErrToolNotFound is returned when a call names a tool that is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ToolExecutor is a function type for tool execution
type ToolExecutor func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// DefaultToolbox is a type alias for backward compatibility using the Tool interface
type DefaultToolbox = Toolbox[Tool]

// Toolbox handles tool/function calling functionality. Registration is not
// synchronized; register everything before the first execution.
type Toolbox[T Tool] struct {
	tools      map[string]T
	middleware []ToolMiddleware
}

// ToolMiddleware is a function that wraps a ToolExecutor to add functionality.
type ToolMiddleware func(next ToolExecutor) ToolExecutor

// NewToolbox creates a new tool manager.
func NewToolbox[T Tool]() *Toolbox[T] {
	return &Toolbox[T]{
		tools: make(map[string]T),
	}
}

// RegisterTool registers a tool.
func (tm *Toolbox[T]) RegisterTool(tool T) error {
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if _, exists := tm.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}

	tm.tools[tool.GetName()] = tool
	return nil
}

// RegisterMiddleware registers middleware that will be applied to all tool executions.
// Middleware is applied in the order it's registered (first registered = outermost layer).
func (tm *Toolbox[T]) RegisterMiddleware(middleware ToolMiddleware) {
	tm.middleware = append(tm.middleware, middleware)
}

// ClearMiddleware removes all registered middleware.
func (tm *Toolbox[T]) ClearMiddleware() {
	tm.middleware = nil
}

func (tm *Toolbox[T]) ToolMap() map[string]T {
	return tm.tools
}

// Tools returns the available tools sorted by name.
func (tm *Toolbox[T]) Tools() []T {
	out := make([]T, 0, len(tm.tools))
	for _, tool := range tm.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// ChatTools returns the tool definitions in chat-API form.
func (tm *Toolbox[T]) ChatTools() []*aisdk.ChatTool {
	tools := tm.Tools()
	asTools := make([]Tool, len(tools))
	for i, tool := range tools {
		asTools[i] = tool
	}
	return ToChatTools(asTools)
}

// ExecuteTool executes a tool call with middleware applied.
func (tm *Toolbox[T]) ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	tool, exists := tm.tools[call.Function.Name]
	if !exists {
		return nil, fmt.Errorf("tool %s: %w", call.Function.Name, ErrToolNotFound)
	}

	toolExecutor := ToolExecutor(func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		return tool.Execute(ctx, call)
	})

	finalExecutor := toolExecutor
	for i := len(tm.middleware) - 1; i >= 0; i-- {
		finalExecutor = tm.middleware[i](finalExecutor)
	}

	return finalExecutor(ctx, call)
}

// GetTool returns a specific tool by name.
func (tm *Toolbox[T]) GetTool(name string) (T, bool) {
	tool, exists := tm.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tm *Toolbox[T]) HasTool(name string) bool {
	_, exists := tm.tools[name]
	return exists
}

// Common middleware implementations

// LoggingMiddleware logs tool execution details.
func LoggingMiddleware(logger *slog.Logger) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			log := logger.With("tool", call.Function.Name, "call_id", call.ID)
			if sid := SessionIDFromContext(ctx); sid != "" {
				log = log.With("session_id", sid)
			}
			log.Debug("executing tool", "params", string(call.Function.Arguments))
			start := time.Now()
			result, err := next(ctx, call)
			switch {
			case err != nil:
				log.Warn("tool execution failed", "error", err, "duration", time.Since(start))
			case result != nil && result.IsError:
				log.Info("tool returned error", "content", string(result.Content), "duration", time.Since(start))
			default:
				log.Info("tool execution completed", "duration", time.Since(start))
			}
			return result, err
		}
	}
}

// ToolObserver receives one observation per tool execution.
type ToolObserver interface {
	ObserveTool(name string, duration time.Duration, failed bool)
}

// ObserverMiddleware reports each execution to obs.
func ObserverMiddleware(obs ToolObserver) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			start := time.Now()
			result, err := next(ctx, call)
			obs.ObserveTool(call.Function.Name, time.Since(start), err != nil || (result != nil && result.IsError))
			return result, err
		}
	}
}

// ToolRecorder persists tool executions.
type ToolRecorder interface {
	RecordToolExecution(ctx context.Context, execution *storage.ToolExecution) error
}

// RecordingMiddleware writes an audit row per execution. Recording
// failures are logged and never surface to the caller.
func RecordingMiddleware(rec ToolRecorder, logger *slog.Logger) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			start := time.Now()
			result, err := next(ctx, call)

			row := &storage.ToolExecution{
				SessionID:  SessionIDFromContext(ctx),
				ToolName:   call.Function.Name,
				Input:      string(call.Function.Arguments),
				DurationMs: time.Since(start).Milliseconds(),
			}
			switch {
			case err != nil:
				row.Output = err.Error()
				row.IsError = true
			case result != nil:
				row.Output = string(result.Content)
				row.IsError = result.IsError
			}
			// detached so a canceled request still leaves its audit trail
			if rerr := rec.RecordToolExecution(context.WithoutCancel(ctx), row); rerr != nil {
				logger.Warn("failed to record tool execution", "tool", call.Function.Name, "error", rerr)
			}
			return result, err
		}
	}
}
