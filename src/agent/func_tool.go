package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elee1766/moviefinder/src/aisdk"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// FuncTool is a tool built from a hand-written schema and a raw executor,
// for tools whose arguments do not map onto a Go struct.
type FuncTool struct {
	Type     string             `json:"type"` // Always "function" for function tools
	Function aisdk.ToolFunction `json:"function"`
	Executor aisdk.ToolExecutor `json:"-"`
}

// NewFuncTool returns a function tool named name.
func NewFuncTool(name, description string, params *jsonschema.Schema, exec aisdk.ToolExecutor) *FuncTool {
	return &FuncTool{
		Type: aisdk.ToolTypeFunction,
		Function: aisdk.ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
		Executor: exec,
	}
}

// GetType returns the tool type
func (t *FuncTool) GetType() string {
	return t.Type
}

// GetName returns the tool's name
func (t *FuncTool) GetName() string {
	return t.Function.Name
}

// GetDescription returns the tool's description
func (t *FuncTool) GetDescription() string {
	return t.Function.Description
}

// GetParameters returns the tool's parameter schema
func (t *FuncTool) GetParameters() *jsonschema.Schema {
	return t.Function.Parameters
}

// Execute runs the tool
func (t *FuncTool) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	if t.Executor == nil {
		return nil, fmt.Errorf("tool %s has no executor", t.GetName())
	}
	return t.Executor(ctx, call)
}

// MarshalJSON encodes the tool as its chat-API definition.
func (t *FuncTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string             `json:"type"`
		Function aisdk.ToolFunction `json:"function"`
	}{
		Type:     t.Type,
		Function: t.Function,
	})
}

var _ Tool = (*FuncTool)(nil)
