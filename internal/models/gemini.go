package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// geminiBackend speaks the Gemini generateContent protocol
// (POST /v1/models/{model}:generateContent).
type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(ctx context.Context, cfg Config, apiKey string) (*geminiBackend, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+apiKey)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL + "/",
			APIVersion: "v1",
			Headers:    headers,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) generate(ctx context.Context, req Request) (*Response, error) {
	contents, config := buildGeminiRequest(req)
	resp, err := b.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Protocol: ProtocolGemini, StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) {
			return nil, &StatusError{Protocol: ProtocolGemini, StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
		}
		return nil, transportError(ProtocolGemini, err)
	}
	return parseGeminiResponse(resp)
}

func buildGeminiRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	temp := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.InputSchema,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role string
		switch m.Role {
		case RoleUser:
			role = "user"
		case RoleAssistant:
			role = "model"
		default:
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents, config
}

func parseGeminiResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &MalformedResponseError{Protocol: ProtocolGemini, Reason: "no candidates"}
	}

	out := &Response{}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return out, nil
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			id := fc.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			input := fc.Args
			if input == nil {
				input = map[string]any{}
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{ID: id, Name: fc.Name, Input: input})
		}
	}
	out.Text = text.String()
	return out, nil
}
