// Package executor runs the agent loop: it alternates reasoning calls and
// tool executions until the model answers or the step budget is spent.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/elee1766/moviefinder/src/agent"
	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/memory"
)

const (
	DefaultMaxSteps = 75

	DefaultSystemPrompt = "You are an assistant. Always respond strictly in English. " +
		"If you receive or retrieve any content in another language, " +
		"translate it to English before replying."
)

// Config holds configuration for creating a new Loop
type Config struct {
	Model        aisdk.ModelClient
	Toolbox      *agent.DefaultToolbox
	SystemPrompt string
	MaxSteps     int
	MaxTokens    int
	Temperature  *float64

	// Compactor trims history before it reaches the model. Nil keeps all turns.
	Compactor memory.Compactor
	Observer  Observer
	Logger    *slog.Logger
}

// Loop answers user utterances. A Loop holds no per-session state and may be
// shared by concurrent runs on different conversations; runs on the same
// conversation must be serialized by the caller.
type Loop struct {
	agent     *agent.Agent
	toolbox   *agent.DefaultToolbox
	maxSteps  int
	compactor memory.Compactor
	observer  Observer
	logger    *slog.Logger
}

// New creates a Loop from cfg.
func New(cfg Config) (*Loop, error) {
	if cfg.Model == nil {
		return nil, ErrModelClientRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Compactor == nil {
		cfg.Compactor = memory.Unbounded
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	logger := cfg.Logger.With("component", "agent_loop")
	var maxTokens *int
	if cfg.MaxTokens > 0 {
		maxTokens = &cfg.MaxTokens
	}

	return &Loop{
		agent: &agent.Agent{
			SystemPrompt: cfg.SystemPrompt,
			Model:        cfg.Model,
			Toolbox:      cfg.Toolbox,
			Temperature:  cfg.Temperature,
			MaxTokens:    maxTokens,
			Logger:       logger,
		},
		toolbox:   cfg.Toolbox,
		maxSteps:  cfg.MaxSteps,
		compactor: cfg.Compactor,
		observer:  cfg.Observer,
		logger:    logger,
	}, nil
}

// MaxSteps returns the step budget of each run.
func (l *Loop) MaxSteps() int {
	return l.maxSteps
}

// Run answers utterance in the context of conv. It never returns an error:
// failures come back as a Result whose Response explains what went wrong.
// Answered and step-limited runs append the user and assistant turns to conv
// together; failed and canceled runs leave conv untouched.
func (l *Loop) Run(ctx context.Context, conv *memory.Conversation, utterance string, cb *Callbacks) *Result {
	start := time.Now()
	logger := l.logger.With("session_id", conv.SessionID())
	ctx = agent.WithSessionID(ctx, conv.SessionID())

	res := l.run(ctx, logger, conv, utterance, cb)

	if res.Outcome.Remembered() {
		// the answer exists; a late cancellation must not split the pair
		err := conv.Append(context.WithoutCancel(ctx),
			memory.UserTurn(utterance),
			memory.AssistantTurn(res.Response))
		if err != nil {
			logger.Error("failed to record turns", "error", err)
		}
	}

	l.observer.ObserveRun(res.Outcome.String(), res.Steps, time.Since(start))
	logger.Info("run complete",
		"outcome", res.Outcome.String(),
		"steps", res.Steps,
		"tool_calls", len(res.ToolCalls),
		"duration", time.Since(start))
	return res
}

func (l *Loop) run(ctx context.Context, logger *slog.Logger, conv *memory.Conversation, utterance string, cb *Callbacks) (res *Result) {
	res = &Result{}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in agent loop", "panic", r, "stack", string(debug.Stack()))
			res.Outcome = OutcomeFailed
			res.Response = MsgUnexpected
			res.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	history, err := conv.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return canceled(res, ctx.Err())
		}
		logger.Error("failed to load history", "error", err)
		res.Outcome = OutcomeFailed
		res.Response = MsgHistoryUnavailable
		res.Err = err
		return res
	}

	messages := buildMessages(l.compactor.Compact(history), utterance)
	var lastObservation string

	for step := 1; step <= l.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return canceled(res, err)
		}
		res.Steps = step
		cb.step(step)

		callStart := time.Now()
		msg, usage, err := l.agent.Step(ctx, messages)
		l.observer.ObserveModelCall(time.Since(callStart), err)
		if err != nil {
			if ctx.Err() != nil {
				return canceled(res, ctx.Err())
			}
			logger.Error("reasoning call failed", "step", step, "error", err)
			res.Outcome = OutcomeFailed
			res.Response = MsgEngineUnavailable
			res.Err = err
			return res
		}
		if usage != nil {
			l.observer.ObserveTokens(*usage)
		}

		if len(msg.ToolCalls) == 0 {
			res.Outcome = OutcomeAnswered
			res.Response = strings.TrimSpace(msg.Content)
			if res.Response == "" {
				res.Response = MsgEmptyAnswer
			}
			logger.Debug("final answer", "step", step)
			return res
		}

		logger.Debug("model requested tools", "step", step, "count", len(msg.ToolCalls))
		calls := make([]aisdk.ToolCall, len(msg.ToolCalls))
		copy(calls, msg.ToolCalls)
		for i := range calls {
			if calls[i].ID == "" {
				calls[i].ID = fmt.Sprintf("call_%d_%d_%s", step, i, calls[i].Function.Name)
			}
		}
		messages = append(messages, aisdk.NewAssistantMessage(msg.Content, calls))
		for _, call := range calls {
			cb.toolCall(call)
			rec := l.executeTool(ctx, logger, call)
			cb.toolResult(rec)
			res.ToolCalls = append(res.ToolCalls, rec)
			messages = append(messages, aisdk.NewToolMessage(call, rec.Output))
			lastObservation = rec.Output
		}
	}

	if err := ctx.Err(); err != nil {
		return canceled(res, err)
	}

	logger.Warn("step limit reached", "max_steps", l.maxSteps)
	res.Outcome = OutcomeStepLimit
	res.Err = ErrStepLimit
	res.Response = fmt.Sprintf(MsgStepLimit, l.maxSteps)
	if lastObservation != "" {
		res.Response += "\n\nLast result:\n" + lastObservation
	}
	return res
}

// executeTool runs one call and always yields an observation. Unknown
// tools, tool faults and panics are reported back to the model as text.
func (l *Loop) executeTool(ctx context.Context, logger *slog.Logger, call aisdk.ToolCall) (rec ToolCallRecord) {
	rec = ToolCallRecord{
		ID:        call.ID,
		Name:      call.Function.Name,
		Arguments: string(call.Function.Arguments),
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in tool", "tool", call.Function.Name, "panic", r)
			rec.Output = fmt.Sprintf("Error: tool %s failed unexpectedly.", call.Function.Name)
			rec.IsError = true
		}
		rec.Duration = time.Since(start)
	}()

	if l.toolbox == nil {
		rec.Output = toolNotFound(call.Function.Name, nil)
		rec.IsError = true
		return rec
	}

	resp, err := l.toolbox.ExecuteTool(ctx, &call)
	switch {
	case errors.Is(err, agent.ErrToolNotFound):
		rec.Output = toolNotFound(call.Function.Name, l.toolbox.Tools())
		rec.IsError = true
	case err != nil:
		rec.Output = fmt.Sprintf("Error executing tool %s: %v", call.Function.Name, err)
		rec.IsError = true
	case resp == nil:
		rec.Output = fmt.Sprintf("Tool %s returned no result.", call.Function.Name)
	default:
		rec.Output = string(resp.Content)
		rec.IsError = resp.IsError
	}
	return rec
}

func toolNotFound(name string, available []agent.Tool) string {
	if len(available) == 0 {
		return fmt.Sprintf("Tool '%s' not found.", name)
	}
	names := make([]string, len(available))
	for i, t := range available {
		names[i] = t.GetName()
	}
	return fmt.Sprintf("Tool '%s' not found. Available tools: %s.", name, strings.Join(names, ", "))
}

func buildMessages(history []memory.Turn, utterance string) []*aisdk.Message {
	messages := make([]*aisdk.Message, 0, len(history)+1)
	for _, t := range history {
		switch t.Role {
		case memory.RoleUser:
			messages = append(messages, aisdk.NewUserMessage(t.Text))
		case memory.RoleAssistant:
			messages = append(messages, aisdk.NewAssistantMessage(t.Text, nil))
		}
	}
	return append(messages, aisdk.NewUserMessage(utterance))
}

func canceled(res *Result, err error) *Result {
	res.Outcome = OutcomeCanceled
	res.Response = MsgCanceled
	res.Err = err
	return res
}
