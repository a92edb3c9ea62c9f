package orclient

import (
	"context"
	"strings"

	"github.com/elee1766/moviefinder/src/aisdk"
)

var _ aisdk.ModelClient = (*ModelClient)(nil)

// ModelClient represents a client bound to a specific model
type ModelClient struct {
	client *Client
	model  string
}

// Model creates a ModelClient bound to the specified model
func (c *Client) Model(ctx context.Context, modelName string) (aisdk.ModelClient, error) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil, ErrInvalidModel
	}
	return &ModelClient{
		client: c,
		model:  modelName,
	}, nil
}

// CreateChatCompletion creates a chat completion with the bound model
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	req.Model = mc.model
	return mc.client.createChatCompletion(ctx, req)
}

// ModelID returns the bound model name
func (mc *ModelClient) ModelID() string {
	return mc.model
}
