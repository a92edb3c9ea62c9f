package executor

import "errors"

var (
	// Config validation errors
	ErrModelClientRequired = errors.New("model client is required")

	// Execution errors
	ErrStepLimit = errors.New("step limit reached without a final answer")
	ErrPanic     = errors.New("panic during agent step")
)

// Messages returned to the caller in place of an answer. Every failure text
// starts with "Error:" so callers can tell it from a model answer.
const (
	MsgEngineUnavailable  = "Error: the reasoning service is unavailable right now. Please try again."
	MsgUnexpected         = "Error: something went wrong while answering. Please try again."
	MsgHistoryUnavailable = "Error: conversation history could not be loaded. Please try again."
	MsgCanceled           = "Error: the request was canceled before an answer was produced."
	MsgEmptyAnswer        = "I'm sorry, I couldn't come up with an answer to that."
	MsgStepLimit          = "I stopped after reaching the limit of %d reasoning steps without a final answer."
)
