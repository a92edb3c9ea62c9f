package executor

import (
	"time"
)

// Outcome is how a Run ended.
type Outcome int

const (
	// OutcomeAnswered means the model produced a final answer.
	OutcomeAnswered Outcome = iota
	// OutcomeStepLimit means the step budget ran out and a fallback was returned.
	OutcomeStepLimit
	// OutcomeFailed means the reasoning engine or the loop itself failed.
	OutcomeFailed
	// OutcomeCanceled means the context ended before an answer.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeStepLimit:
		return "step_limit"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Remembered reports whether runs with this outcome are written to memory.
func (o Outcome) Remembered() bool {
	return o == OutcomeAnswered || o == OutcomeStepLimit
}

// ToolCallRecord describes one tool invocation made during a run.
type ToolCallRecord struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Arguments string        `json:"arguments"`
	Output    string        `json:"output"`
	IsError   bool          `json:"is_error"`
	Duration  time.Duration `json:"duration"`
}

// Result is the outcome of one Run. Response is never empty.
type Result struct {
	Response  string
	Steps     int
	Outcome   Outcome
	ToolCalls []ToolCallRecord
	// Err holds the cause for failed and canceled runs.
	Err error
}
