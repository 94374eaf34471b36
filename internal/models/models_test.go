package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		model string
		want  Protocol
	}{
		{"claude-sonnet-4-5", ProtocolMessages},
		{"Claude-Opus-4-5", ProtocolMessages},
		{"gpt-5.2-codex", ProtocolResponses},
		{"GPT-5-nano", ProtocolResponses},
		{"gemini-3-flash", ProtocolGemini},
		{"big-pickle", ProtocolChatCompletions},
		{"qwen3-coder", ProtocolChatCompletions},
		{"", ProtocolChatCompletions},
		{"claude", ProtocolChatCompletions},
	}
	for _, tt := range tests {
		if got := Classify(tt.model); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.model, got, tt.want)
		}
	}
}

func TestProtocolWire(t *testing.T) {
	if ProtocolResponses.Wire() != ProtocolChatCompletions {
		t.Error("responses should be served by chat completions")
	}
	if ProtocolMessages.Wire() != ProtocolMessages {
		t.Error("messages should stay on messages")
	}
}

func TestCatalog_AllEntriesClassify(t *testing.T) {
	for _, m := range Catalog() {
		if m.ID == "" || m.Name == "" {
			t.Errorf("incomplete entry %+v", m)
		}
	}
	if _, ok := Lookup(DefaultModel); !ok {
		t.Errorf("default model %q missing from catalogue", DefaultModel)
	}
	m, ok := Lookup("CLAUDE-HAIKU-4-5")
	if !ok || m.Protocol() != ProtocolMessages {
		t.Errorf("unexpected lookup result %+v, %v", m, ok)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")
	t.Setenv("BENCH_KEY", "from-env")

	if _, err := ResolveAPIKey(Auth{}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	key, err := ResolveAPIKey(Auth{APIKey: "${BENCH_KEY}"})
	if err != nil || key != "from-env" {
		t.Errorf("template key: got %q, %v", key, err)
	}

	key, err = ResolveAPIKey(Auth{APIKeyEnv: "BENCH_KEY"})
	if err != nil || key != "from-env" {
		t.Errorf("env key: got %q, %v", key, err)
	}

	t.Setenv(DefaultAPIKeyEnv, "zen")
	key, err = ResolveAPIKey(Auth{})
	if err != nil || key != "zen" {
		t.Errorf("default env: got %q, %v", key, err)
	}
}

func TestGateway_MissingCredentialsMakesNoRequest(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), Request{Model: "big-pickle", MaxTokens: 10})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network activity, got %d requests", hits.Load())
	}
}

var shellTool = Tool{
	Name:        "shell",
	Description: "Run a shell command",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{"type": "string"},
		},
		"required": []any{"command"},
	},
}

func TestGateway_Messages(t *testing.T) {
	var got map[string]any
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
			"content": [
				{"type": "text", "text": "Checking"},
				{"type": "text", "text": " now."},
				{"type": "tool_use", "id": "tu_1", "name": "shell", "input": {"command": "ls"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	resp, err := g.Generate(context.Background(), Request{
		Model:       "claude-sonnet-4-5",
		System:      "be terse",
		Messages:    []Message{{Role: RoleSystem, Content: "ignored"}, {Role: RoleUser, Content: "list files"}},
		Tools:       []Tool{shellTool},
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if path != "/v1/messages" {
		t.Errorf("unexpected path %q", path)
	}
	if auth != "Bearer k" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if got["system"] == nil {
		t.Error("expected system prompt in request")
	}
	if msgs, _ := got["messages"].([]any); len(msgs) != 1 {
		t.Errorf("expected system-role messages to be excluded, got %v", got["messages"])
	}
	if got["max_tokens"] != 4096.0 {
		t.Errorf("unexpected max_tokens %v", got["max_tokens"])
	}
	tools, _ := got["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %v", got["tools"])
	}
	if tool := tools[0].(map[string]any); tool["name"] != "shell" || tool["input_schema"] == nil {
		t.Errorf("unexpected tool encoding %v", tool)
	}

	want := &Response{
		Text:      "Checking now.",
		ToolCalls: []ToolCall{{ID: "tu_1", Name: "shell", Input: map[string]any{"command": "ls"}}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_ChatCompletions(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "c1", "object": "chat.completion", "created": 1, "model": "big-pickle",
			"choices": [{
				"index": 0, "finish_reason": "tool_calls",
				"message": {
					"role": "assistant", "content": "",
					"tool_calls": [{"id": "call_1", "type": "function",
						"function": {"name": "shell", "arguments": "{\"command\":\"uptime\"}"}}]
				}
			}]
		}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	resp, err := g.Generate(context.Background(), Request{
		Model:       "big-pickle",
		System:      "be terse",
		Messages:    []Message{{Role: RoleSystem, Content: "stale"}, {Role: RoleUser, Content: "uptime?"}},
		Tools:       []Tool{shellTool},
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if path != "/v1/chat/completions" {
		t.Errorf("unexpected path %q", path)
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 || msgs[0].(map[string]any)["role"] != "system" {
		t.Fatalf("expected leading system message, got %v", got["messages"])
	}
	if first := msgs[0].(map[string]any); first["content"] != "be terse" {
		t.Errorf("system-role history must not reach the wire, got %v", first)
	}
	tools, _ := got["tools"].([]any)
	if len(tools) != 1 || tools[0].(map[string]any)["type"] != "function" {
		t.Errorf("unexpected tools %v", got["tools"])
	}

	want := &Response{
		ToolCalls: []ToolCall{{ID: "call_1", Name: "shell", Input: map[string]any{"command": "uptime"}}},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_APIKeyChangeAppliesToNextCall(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"big-pickle",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL})
	req := Request{Model: "big-pickle", MaxTokens: 10}

	t.Setenv(DefaultAPIKeyEnv, "old-key")
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	t.Setenv(DefaultAPIKeyEnv, "new-key")
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	if diff := cmp.Diff([]string{"Bearer old-key", "Bearer new-key"}, auths); diff != "" {
		t.Errorf("auth headers mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_Gemini(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [
					{"text": "a"},
					{"text": "hidden reasoning", "thought": true},
					{"text": "b"},
					{"functionCall": {"name": "shell", "args": {"command": "ls"}}}
				]},
				"finishReason": "STOP"
			}]
		}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	resp, err := g.Generate(context.Background(), Request{
		Model:  "gemini-3-flash",
		System: "be terse",
		Messages: []Message{
			{Role: RoleSystem, Content: "ignored"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "list files"},
		},
		Tools:       []Tool{shellTool},
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if path != "/v1/models/gemini-3-flash:generateContent" {
		t.Errorf("unexpected path %q", path)
	}
	if got["systemInstruction"] == nil {
		t.Error("expected system prompt in systemInstruction")
	}

	contents, _ := got["contents"].([]any)
	var roles []string
	for _, c := range contents {
		role, _ := c.(map[string]any)["role"].(string)
		roles = append(roles, role)
	}
	if diff := cmp.Diff([]string{"user", "model", "user"}, roles); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}

	if genCfg, _ := got["generationConfig"].(map[string]any); genCfg["maxOutputTokens"] != 4096.0 {
		t.Errorf("unexpected generationConfig %v", got["generationConfig"])
	}

	tools, _ := got["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool group, got %v", got["tools"])
	}
	decls, _ := tools[0].(map[string]any)["functionDeclarations"].([]any)
	if len(decls) != 1 {
		t.Fatalf("expected 1 function declaration, got %v", tools[0])
	}
	if decl := decls[0].(map[string]any); decl["name"] != "shell" || decl["parametersJsonSchema"] == nil {
		t.Errorf("unexpected declaration %v", decl)
	}

	if resp.Text != "ab" {
		t.Errorf("text = %q, want %q", resp.Text, "ab")
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %+v", resp.ToolCalls)
	}
	call := resp.ToolCalls[0]
	if !strings.HasPrefix(call.ID, "call_") {
		t.Errorf("expected a synthesized call id, got %q", call.ID)
	}
	if diff := cmp.Diff(ToolCall{ID: call.ID, Name: "shell", Input: map[string]any{"command": "ls"}}, call); diff != "" {
		t.Errorf("tool call mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_GeminiStatusError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	_, err := g.Generate(context.Background(), Request{Model: "gemini-3-pro", MaxTokens: 10})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || statusErr.Protocol != ProtocolGemini {
		t.Errorf("unexpected status error %+v", statusErr)
	}
	if !strings.Contains(statusErr.Body, "quota exceeded") {
		t.Errorf("expected provider message in body, got %q", statusErr.Body)
	}
	if !IsRetryable(err) {
		t.Error("429 should be retryable")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected exactly one attempt, got %d", n)
	}
}

func TestGateway_GPTUsesChatCompletions(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"gpt-5-nano",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hi"}}]}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	resp, err := g.Generate(context.Background(), Request{Model: "gpt-5-nano", MaxTokens: 10})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if path != "/v1/chat/completions" || resp.Text != "hi" {
		t.Errorf("path=%q text=%q", path, resp.Text)
	}
}

func TestGateway_MalformedToolArguments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"x","type":"function","function":{"name":"shell","arguments":"{not json"}}]}}]}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	_, err := g.Generate(context.Background(), Request{Model: "qwen3-coder", MaxTokens: 10})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("malformed responses should not be retryable")
	}
}

func TestGateway_StatusErrorSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"type":"overloaded","message":"busy"}}`)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Auth: Auth{APIKey: "k"}})
	for _, model := range []string{"claude-haiku-4-5", "big-pickle"} {
		hits.Store(0)
		_, err := g.Generate(context.Background(), Request{Model: model, MaxTokens: 10})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("%s: expected StatusError, got %v", model, err)
		}
		if statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: unexpected status %d", model, statusErr.StatusCode)
		}
		if !strings.Contains(statusErr.Body, "busy") {
			t.Errorf("%s: expected body to be preserved, got %q", model, statusErr.Body)
		}
		if !IsRetryable(err) {
			t.Errorf("%s: 503 should be retryable", model)
		}
		if n := hits.Load(); n != 1 {
			t.Errorf("%s: expected exactly one attempt, got %d", model, n)
		}
	}
}

func TestGateway_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGateway(Config{BaseURL: url, Auth: Auth{APIKey: "k"}})
	_, err := g.Generate(context.Background(), Request{Model: "big-pickle", MaxTokens: 10})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("network errors should be retryable")
	}
}

func TestDescribe(t *testing.T) {
	err := &StatusError{Protocol: ProtocolMessages, StatusCode: 401, Body: "bad key"}
	if got := Describe(err); !strings.HasPrefix(got, "authentication failed") {
		t.Errorf("unexpected description %q", got)
	}
	if got := Describe(&StatusError{StatusCode: 400, Body: "x"}); strings.HasPrefix(got, "authentication") {
		t.Errorf("unexpected description %q", got)
	}
}
