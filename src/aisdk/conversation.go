package aisdk

import "time"

// NewSystemMessage returns a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content, CreatedAt: time.Now()}
}

// NewUserMessage returns a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content, CreatedAt: time.Now()}
}

// NewAssistantMessage returns an assistant message, optionally carrying the
// tool calls the model requested.
func NewAssistantMessage(content string, calls []ToolCall) *Message {
	return &Message{Role: RoleAssistant, Content: content, ToolCalls: calls, CreatedAt: time.Now()}
}

// NewToolMessage returns the observation for a tool call.
func NewToolMessage(call ToolCall, content string) *Message {
	return &Message{
		Role:       RoleTool,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
}
