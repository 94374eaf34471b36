package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the OpenCode Zen gateway.
const DefaultBaseURL = "https://opencode.ai/zen"

const defaultTimeout = 120 * time.Second

// Config configures a Gateway.
type Config struct {
	BaseURL    string
	Auth       Auth
	Timeout    time.Duration
	HTTPClient *http.Client
}

// backend speaks one wire protocol.
type backend interface {
	generate(ctx context.Context, req Request) (*Response, error)
}

type backendEntry struct {
	apiKey string
	once   sync.Once
	b      backend
	err    error
}

// Gateway routes requests to the wire protocol selected by Classify.
// Backends are created lazily on first use and rebuilt when the resolved
// API key changes. Each Generate performs exactly one network attempt; SDK
// retries are disabled.
type Gateway struct {
	cfg      Config
	mu       sync.Mutex
	backends map[Protocol]*backendEntry
}

// NewGateway creates a gateway client. Credentials are resolved per call so
// that a missing key surfaces as ErrMissingCredentials without network I/O.
func NewGateway(cfg Config) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Gateway{
		cfg:      cfg,
		backends: make(map[Protocol]*backendEntry),
	}
}

// BaseURL returns the gateway root URL.
func (g *Gateway) BaseURL() string {
	return g.cfg.BaseURL
}

// Generate sends one request and returns the normalized response.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := ResolveAPIKey(g.cfg.Auth)
	if err != nil {
		return nil, err
	}

	proto := Classify(req.Model)
	b, err := g.backend(ctx, proto.Wire(), apiKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := b.generate(ctx, req)
	if err != nil {
		slog.Debug("models: generate failed", "model", req.Model, "protocol", proto, "error", err)
		return nil, err
	}
	slog.Debug("models: generate",
		"model", req.Model,
		"protocol", proto,
		"tool_calls", len(resp.ToolCalls),
		"duration", time.Since(start),
	)
	return resp, nil
}

func (g *Gateway) backend(ctx context.Context, proto Protocol, apiKey string) (backend, error) {
	g.mu.Lock()
	entry, ok := g.backends[proto]
	if !ok || entry.apiKey != apiKey {
		entry = &backendEntry{apiKey: apiKey}
		g.backends[proto] = entry
	}
	g.mu.Unlock()

	entry.once.Do(func() {
		switch proto {
		case ProtocolMessages:
			entry.b = newMessagesBackend(g.cfg, apiKey)
		case ProtocolGemini:
			entry.b, entry.err = newGeminiBackend(ctx, g.cfg, apiKey)
		default:
			entry.b = newChatBackend(g.cfg, apiKey)
		}
	})
	return entry.b, entry.err
}

// transportError maps an error that carried no HTTP status to the
// taxonomy: decode failures are malformed responses, the rest are network
// failures. Caller cancellation is returned unchanged.
func transportError(proto Protocol, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &MalformedResponseError{Protocol: proto, Reason: "decode body", Err: err}
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Protocol: proto, Err: err}
	}
	return &NetworkError{Protocol: proto, Err: fmt.Errorf("request failed: %w", err)}
}

// decodeArguments parses a JSON object of tool arguments. Empty input
// decodes to an empty map.
func decodeArguments(proto Protocol, tool string, raw []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, &MalformedResponseError{
			Protocol: proto,
			Reason:   fmt.Sprintf("tool %q arguments are not a JSON object", tool),
			Err:      err,
		}
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}
