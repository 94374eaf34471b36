package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/wrench/internal/skills"
)

// toMCPTool converts a skill tool definition to an mcp.Tool. The input
// schema is the same JSON Schema sent to model providers.
func toMCPTool(def skills.ToolDefinition) *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: def.InputSchema.AsMap(),
	}
}
