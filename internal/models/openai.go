package models

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// chatBackend speaks the chat completions protocol
// (POST /v1/chat/completions). It also serves the responses protocol.
type chatBackend struct {
	client openai.Client
}

func newChatBackend(cfg Config, apiKey string) *chatBackend {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL+"/v1/"),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)
	return &chatBackend{client: client}
}

func (b *chatBackend) generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := b.client.Chat.Completions.New(ctx, buildChatParams(req))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Protocol: ProtocolChatCompletions, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return nil, transportError(ProtocolChatCompletions, err)
	}
	return parseChatResponse(resp)
}

func buildChatParams(req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.Model),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	}

	// Only the synthesized system message is sent; system-role history is dropped.
	if req.System != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		}
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.InputSchema),
			},
		})
	}

	return params
}

// parseChatResponse reads the first choice. Tool-call arguments must be a
// JSON object; anything else is a malformed response.
func parseChatResponse(resp *openai.ChatCompletion) (*Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Protocol: ProtocolChatCompletions, Reason: "no choices"}
	}

	msg := resp.Choices[0].Message
	out := &Response{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		input, err := decodeArguments(ProtocolChatCompletions, tc.Function.Name, []byte(tc.Function.Arguments))
		if err != nil {
			return nil, err
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}
	return out, nil
}
