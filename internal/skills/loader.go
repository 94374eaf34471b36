package skills

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Definition is a user-declared command skill loaded from a JSONC file.
// Command is a text/template rendered with the validated parameters.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Params      []DefinitionArg `json:"params"`
	Command     string          `json:"command"`
	Path        string          `json:"-"`
}

// DefinitionArg describes one parameter of a Definition.
type DefinitionArg struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
}

// SkillParams converts the declared arguments into skill parameters.
func (d *Definition) SkillParams() []Param {
	params := make([]Param, 0, len(d.Params))
	for _, a := range d.Params {
		params = append(params, Param{
			Name:        a.Name,
			Kind:        Kind(a.Type),
			Description: a.Description,
			Optional:    a.Optional,
		})
	}
	return params
}

// LoadDefinition reads a JSONC skill definition from disk.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}

	var d Definition
	if err := json.Unmarshal(std, &d); err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}

	if d.Name == "" {
		return nil, fmt.Errorf("skill %s: name is required", path)
	}
	if strings.TrimSpace(d.Command) == "" {
		return nil, fmt.Errorf("skill %s: command is required", path)
	}
	for i, a := range d.Params {
		if a.Name == "" {
			return nil, fmt.Errorf("skill %s: param %d: name is required", path, i)
		}
		if a.Type == "" {
			d.Params[i].Type = string(KindString)
		}
	}
	d.Path = path
	return &d, nil
}

// LoadDir scans a directory for *.jsonc skill definitions. A missing
// directory yields no definitions. Invalid files are logged and skipped.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("skills directory not found, skipping", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("read skills dir %s: %w", dir, err)
	}

	var defs []*Definition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonc") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		d, err := LoadDefinition(path)
		if err != nil {
			slog.Warn("failed to load skill", "path", path, "error", err)
			continue
		}
		defs = append(defs, d)
	}
	return defs, nil
}
