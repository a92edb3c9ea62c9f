package agent

import (
	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/elee1766/moviefinder/src/schema"
)

// ToChatTool describes tool for a chat request. Tools without a schema
// advertise an empty object so the engine does not reject a null
// "parameters" field.
func ToChatTool(tool Tool) *aisdk.ChatTool {
	typ := tool.GetType()
	if typ == "" {
		typ = aisdk.ToolTypeFunction
	}
	params := tool.GetParameters()
	if params == nil {
		params = schema.CreateObjectSchema(nil, nil)
	}
	return &aisdk.ChatTool{
		Type: typ,
		Function: aisdk.ChatToolFunction{
			Name:        tool.GetName(),
			Description: tool.GetDescription(),
			Parameters:  params,
		},
	}
}

// ToChatTools keeps the order of tools.
func ToChatTools(tools []Tool) []*aisdk.ChatTool {
	out := make([]*aisdk.ChatTool, len(tools))
	for i, tool := range tools {
		out[i] = ToChatTool(tool)
	}
	return out
}
