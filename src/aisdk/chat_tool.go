package aisdk

import (
	jsonschema "github.com/swaggest/jsonschema-go"
)

// ToolTypeFunction is the only tool type the reasoning engine accepts.
const ToolTypeFunction = "function"

// ChatTool advertises one movie tool to the reasoning engine.
type ChatTool struct {
	Type     string           `json:"type"`
	Function ChatToolFunction `json:"function"`
}

// ChatToolFunction names a tool and carries its argument schema. The
// description is what the model reads when deciding between search,
// genre discovery and detail lookup.
type ChatToolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}
