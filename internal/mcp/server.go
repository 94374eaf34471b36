// Package mcp provides an MCP server that exposes wrench skills.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/wrench/internal/skills"
)

// NewMCPServer creates an MCP server exposing skills from the registry.
// If filter is non-empty, only matching skills are exposed: a filter
// matches a skill name or a family prefix ("git" exposes git_status,
// git_log, ...).
func NewMCPServer(registry *skills.Registry, filter []string, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "wrench",
		Version: version,
	}, nil)

	for _, def := range registry.ToolDefinitions() {
		if !matchesFilter(def.Name, filter) {
			continue
		}

		toolName := def.Name
		server.AddTool(toMCPTool(def), func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			args, err := decodeArguments(req.Params.Arguments)
			if err != nil {
				return errorResult("invalid arguments: " + err.Error()), nil
			}
			res := registry.Execute(ctx, toolName, args)
			if !res.Success {
				slog.Debug("mcp tool error", "tool", toolName, "error", res.Error)
				return errorResult(failureText(res)), nil
			}
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Output}},
			}, nil
		})

		slog.Debug("mcp tool registered", "tool", toolName)
	}

	return server
}

// matchesFilter checks if a skill name matches any filter entry.
func matchesFilter(name string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if name == f || strings.HasPrefix(name, f+"_") {
			return true
		}
	}
	return false
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func failureText(res skills.Result) string {
	if res.Output == "" {
		return res.Error
	}
	return res.Error + "\n\n" + res.Output
}

func errorResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}
