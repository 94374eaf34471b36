package models

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// messagesBackend speaks the Anthropic messages protocol (POST /v1/messages).
type messagesBackend struct {
	client anthropic.Client
}

func newMessagesBackend(cfg Config, apiKey string) *messagesBackend {
	client := anthropic.NewClient(
		option.WithBaseURL(cfg.BaseURL+"/"),
		option.WithAuthToken(apiKey),
		option.WithHeaderDel("x-api-key"),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)
	return &messagesBackend{client: client}
}

func (b *messagesBackend) generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := b.client.Messages.New(ctx, buildMessagesParams(req))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Protocol: ProtocolMessages, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return nil, transportError(ProtocolMessages, err)
	}
	return parseMessagesResponse(resp)
}

func buildMessagesParams(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	for _, t := range req.Tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: t.InputSchema["properties"],
			Required:   requiredList(t.InputSchema),
		}
		tool := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if t.Description != "" {
			tool.OfTool.Description = anthropic.String(t.Description)
		}
		params.Tools = append(params.Tools, tool)
	}

	return params
}

// parseMessagesResponse joins text blocks without a separator and collects
// every tool_use block in order.
func parseMessagesResponse(resp *anthropic.Message) (*Response, error) {
	var text strings.Builder
	out := &Response{}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			input, err := decodeArguments(ProtocolMessages, block.Name, block.Input)
			if err != nil {
				return nil, err
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}

	out.Text = text.String()
	return out, nil
}

func requiredList(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
