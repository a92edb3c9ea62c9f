package executor

import (
	"time"

	"github.com/elee1766/moviefinder/src/aisdk"
)

// Callbacks holds optional callback functions invoked during a run
type Callbacks struct {
	// OnStep is called before each reasoning call with the 1-based step number
	OnStep func(step int)

	// OnToolCall is called before executing a tool
	OnToolCall func(toolCall aisdk.ToolCall)

	// OnToolResult is called after tool execution
	OnToolResult func(record ToolCallRecord)
}

func (c *Callbacks) step(n int) {
	if c == nil || c.OnStep == nil {
		return
	}
	c.OnStep(n)
}

func (c *Callbacks) toolCall(call aisdk.ToolCall) {
	if c == nil || c.OnToolCall == nil {
		return
	}
	c.OnToolCall(call)
}

func (c *Callbacks) toolResult(rec ToolCallRecord) {
	if c == nil || c.OnToolResult == nil {
		return
	}
	c.OnToolResult(rec)
}

// Observer receives loop measurements. The metrics package implements it.
type Observer interface {
	ObserveRun(outcome string, steps int, duration time.Duration)
	ObserveModelCall(duration time.Duration, err error)
	ObserveTokens(usage aisdk.Usage)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(string, int, time.Duration) {}
func (nopObserver) ObserveModelCall(time.Duration, error) {}
func (nopObserver) ObserveTokens(aisdk.Usage)             {}
