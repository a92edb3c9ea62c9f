package agent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/elee1766/moviefinder/src/aisdk"
)

// ErrNoChoices is returned when the model answers without any choice.
var ErrNoChoices = errors.New("no choices in response")

// Agent binds a model to a toolbox and a system prompt. It performs single
// reasoning calls; looping over tool calls is up to the caller.
type Agent struct {
	SystemPrompt string
	Model        aisdk.ModelClient
	Toolbox      *DefaultToolbox
	Temperature  *float64
	MaxTokens    *int
	Logger       *slog.Logger
}

// Step asks the model for the next move given the full message history.
// The system prompt is prepended when messages do not already start with one.
func (a *Agent) Step(ctx context.Context, messages []*aisdk.Message) (*aisdk.Message, *aisdk.Usage, error) {
	if a.SystemPrompt != "" && (len(messages) == 0 || messages[0].Role != aisdk.RoleSystem) {
		messages = append([]*aisdk.Message{aisdk.NewSystemMessage(a.SystemPrompt)}, messages...)
	}

	ccr := &aisdk.ChatCompletionRequest{
		Messages:    messages,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	}
	if a.Toolbox != nil {
		ccr.Tools = a.Toolbox.ChatTools()
		if len(ccr.Tools) > 0 {
			ccr.ToolChoice = "auto"
		}
	}

	response, err := a.Model.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return nil, nil, err
	}

	if len(response.Choices) == 0 {
		return nil, nil, ErrNoChoices
	}

	if a.Logger != nil {
		a.Logger.Debug("model step complete",
			"model", a.Model.ModelID(),
			"finish_reason", response.Choices[0].FinishReason,
			"tool_calls", len(response.Choices[0].Message.ToolCalls),
			"total_tokens", response.Usage.TotalTokens)
	}

	msg := response.Choices[0].Message
	return &msg, &response.Usage, nil
}
