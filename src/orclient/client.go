package orclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/httpkit"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 30 * time.Second

	maxErrorBody = 64 * 1024
)

var _ aisdk.Provider = (*Client)(nil)

// Client is the OpenRouter API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new OpenRouter API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = httpkit.NewClient(httpkit.WithTimeout(config.Timeout))
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "openrouter_client")

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// createChatCompletion sends a chat completion request to OpenRouter.
func (c *Client) createChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request", "messages", len(req.Messages), "tools", len(req.Tools))

	body, err := json.Marshal(formatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.Info("chat completion successful",
		"usage_total", result.Usage.TotalTokens,
		"finish_reason", result.Choices[0].FinishReason)
	return &result, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	// Optional headers for ranking
	if c.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		req.Header.Set("X-Title", c.config.SiteName)
	}

	return req, nil
}

// doRequestWithRetry performs an HTTP request, retrying transport failures
// and retryable API errors. Non-retryable API errors are returned as-is.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry", "path", path)

	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
			logger.Debug("request attempt failed", "attempt", attempt, "error", err)
		case resp.StatusCode < 300:
			return resp, nil
		default:
			lastErr = c.handleError(resp)
			if !IsRetryable(lastErr) {
				return nil, lastErr
			}
			logger.Debug("retryable API error", "attempt", attempt, "status_code", resp.StatusCode)
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("request canceled: %w", ctx.Err())
		}
		if attempt == c.config.RetryCount {
			break
		}

		timer := time.NewTimer(c.config.RetryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("request canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.RetryCount, lastErr)
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body := httpkit.ReadErrorBody(resp.Body, maxErrorBody)

	var errResp ErrorResponse
	if err := json.Unmarshal([]byte(body), &errResp); err != nil || errResp.Error.Message == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    body,
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		Param:      errResp.Error.Param,
		Details:    errResp.Error.Details,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}
	if errResp.Error.Code != nil {
		apiErr.Code = fmt.Sprint(errResp.Error.Code)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if apiErr.Details == nil {
				apiErr.Details = make(map[string]interface{})
			}
			apiErr.Details["retry_after"] = retryAfter
		}
	}

	return apiErr
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// wireMessage is the OpenAI-compatible message shape sent on the wire.
type wireMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []aisdk.ToolCall `json:"tool_calls,omitempty"`
}

type wireRequest struct {
	Model       string            `json:"model"`
	Messages    []wireMessage     `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Tools       []*aisdk.ChatTool `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	User        string            `json:"user,omitempty"`
}

// formatRequest drops nil messages and fills in tool call fields some
// upstream providers reject when empty.
func formatRequest(req *aisdk.ChatCompletionRequest) wireRequest {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		wm := wireMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		if len(msg.ToolCalls) > 0 {
			wm.ToolCalls = make([]aisdk.ToolCall, len(msg.ToolCalls))
			copy(wm.ToolCalls, msg.ToolCalls)
			for i := range wm.ToolCalls {
				if wm.ToolCalls[i].Type == "" {
					wm.ToolCalls[i].Type = aisdk.ToolTypeFunction
				}
			}
		}
		if wm.Role == aisdk.RoleTool && wm.Name == "" {
			wm.Name = "tool_response"
		}
		messages = append(messages, wm)
	}

	out := wireRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Tools:       req.Tools,
		User:        req.User,
	}
	if len(req.Tools) > 0 {
		out.ToolChoice = req.ToolChoice
	}
	return out
}

