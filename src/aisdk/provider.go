package aisdk

import (
	"context"
)

// Provider hands out clients bound to a specific model.
type Provider interface {
	Model(ctx context.Context, modelName string) (ModelClient, error)
}

// ModelClient is the reasoning engine: given a context it answers with
// either free text or a set of tool calls.
type ModelClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	ModelID() string
}
