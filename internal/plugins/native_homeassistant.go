package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dohr-michael/wrench/internal/skills"
)

const defaultHATimeout = 15 * time.Second

// HomeAssistant is a minimal Home Assistant REST client. The token is read
// from TokenEnv on every call so a reloaded .env takes effect.
type HomeAssistant struct {
	URL      string
	TokenEnv string
	Client   *http.Client
}

// NewHomeAssistant creates a client for the given base URL.
func NewHomeAssistant(url, tokenEnv string, timeout time.Duration) *HomeAssistant {
	if timeout <= 0 {
		timeout = defaultHATimeout
	}
	if tokenEnv == "" {
		tokenEnv = "HA_TOKEN"
	}
	return &HomeAssistant{
		URL:      strings.TrimRight(url, "/"),
		TokenEnv: tokenEnv,
		Client:   &http.Client{Timeout: timeout},
	}
}

type haState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastUpdated string         `json:"last_updated"`
}

func (h *HomeAssistant) call(ctx context.Context, method, endpoint string, body any, out any) error {
	token := os.Getenv(h.TokenEnv)
	if token == "" {
		return fmt.Errorf("%s not configured in .env", h.TokenEnv)
	}

	url := h.URL + "/api/" + endpoint
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("homeassistant: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("homeassistant: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("Cannot reach Home Assistant at %s: %v. Check HA_URL in .env and ensure Home Assistant is running.", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("homeassistant: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Home Assistant API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("homeassistant: decode response: %w", err)
	}
	return nil
}

// Skills returns the ha_* skills.
func (h *HomeAssistant) Skills() []*skills.Skill {
	return []*skills.Skill{
		{
			Name:        "ha_get_state",
			Description: "Get the current state of a Home Assistant entity. Use to check if lights are on/off, get sensor values, etc.",
			Params: []skills.Param{
				{Name: "entity_id", Kind: skills.KindString, Description: "Entity ID (e.g., light.living_room, sensor.temperature)"},
			},
			Execute: h.getState,
		},
		{
			Name:        "ha_call_service",
			Description: "Call a Home Assistant service to control devices. Examples: turn on/off lights, set brightness, adjust thermostat.",
			Params: []skills.Param{
				{Name: "domain", Kind: skills.KindString, Description: "Service domain (e.g., light, switch, climate)"},
				{Name: "service", Kind: skills.KindString, Description: "Service name (e.g., turn_on, turn_off, toggle)"},
				{Name: "entity_id", Kind: skills.KindString, Description: "Entity ID to control"},
				{Name: "data", Kind: skills.KindObject, Description: "Additional service data as JSON (e.g., {\"brightness\": 128})", Optional: true},
			},
			Execute: h.callService,
		},
		{
			Name:        "ha_list_entities",
			Description: "List all entities in Home Assistant, optionally filtered by domain. Useful for discovering available devices.",
			Params: []skills.Param{
				{Name: "domain", Kind: skills.KindString, Description: "Filter by domain (e.g., light, sensor, switch). Leave empty for all.", Optional: true},
			},
			Execute: h.listEntities,
		},
	}
}

func (h *HomeAssistant) getState(ctx context.Context, p skills.Params) (skills.Result, error) {
	var state haState
	if err := h.call(ctx, http.MethodGet, "states/"+p.String("entity_id"), nil, &state); err != nil {
		return skills.Fail("%v", err), nil
	}

	attrs, err := json.MarshalIndent(state.Attributes, "", "  ")
	if err != nil {
		return skills.Fail("encode attributes: %v", err), nil
	}

	updated := state.LastUpdated
	if ts, err := time.Parse(time.RFC3339Nano, state.LastUpdated); err == nil {
		updated = ts.Local().Format("2006-01-02 15:04:05")
	}

	return skills.OK(fmt.Sprintf("Entity: %s\nState: %s\nAttributes: %s\nLast Updated: %s",
		state.EntityID, state.State, attrs, updated)), nil
}

func (h *HomeAssistant) callService(ctx context.Context, p skills.Params) (skills.Result, error) {
	domain, service, entity := p.String("domain"), p.String("service"), p.String("entity_id")

	body := map[string]any{"entity_id": entity}
	for k, v := range p.Object("data") {
		body[k] = v
	}

	if err := h.call(ctx, http.MethodPost, "services/"+domain+"/"+service, body, nil); err != nil {
		return skills.Fail("%v", err), nil
	}
	return skills.OK(fmt.Sprintf("Called %s.%s on %s", domain, service, entity)), nil
}

func (h *HomeAssistant) listEntities(ctx context.Context, p skills.Params) (skills.Result, error) {
	var states []haState
	if err := h.call(ctx, http.MethodGet, "states", nil, &states); err != nil {
		return skills.Fail("%v", err), nil
	}

	domain := p.String("domain")
	var order []string
	byDomain := map[string][]haState{}
	for _, s := range states {
		if domain != "" && !strings.HasPrefix(s.EntityID, domain+".") {
			continue
		}
		d, _, _ := strings.Cut(s.EntityID, ".")
		if _, ok := byDomain[d]; !ok {
			order = append(order, d)
		}
		byDomain[d] = append(byDomain[d], s)
	}

	if len(order) == 0 {
		if domain != "" {
			return skills.OK("No entities found in domain: " + domain), nil
		}
		return skills.OK("No entities found"), nil
	}

	groups := make([]string, 0, len(order))
	for _, d := range order {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%d):", strings.ToUpper(d), len(byDomain[d]))
		for _, e := range byDomain[d] {
			fmt.Fprintf(&sb, "\n  - %s (%s)", e.EntityID, e.State)
		}
		groups = append(groups, sb.String())
	}
	return skills.OK(strings.Join(groups, "\n\n")), nil
}
