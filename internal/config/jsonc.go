package config

import (
	"encoding/json"

	"github.com/tailscale/hujson"
)

// JSONC is a koanf parser for JSON with comments and trailing commas.
type JSONC struct{}

// JSONCParser returns a JSONC parser.
func JSONCParser() *JSONC {
	return &JSONC{}
}

// Unmarshal standardizes JSONC bytes and parses them into a map.
func (p *JSONC) Unmarshal(b []byte) (map[string]interface{}, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(std, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a map as indented JSON, which is valid JSONC.
func (p *JSONC) Marshal(o map[string]interface{}) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}
