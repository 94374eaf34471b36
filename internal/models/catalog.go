package models

import "strings"

// DefaultModel is the model used when none is configured.
const DefaultModel = "big-pickle"

// ModelInfo describes a model offered by the gateway.
type ModelInfo struct {
	ID       string
	Name     string
	Category string
	Free     bool
}

// Protocol returns the protocol used to reach the model.
func (m ModelInfo) Protocol() Protocol {
	return Classify(m.ID)
}

var catalog = []ModelInfo{
	{ID: "big-pickle", Name: "Big Pickle", Category: "Free", Free: true},
	{ID: "gpt-5-nano", Name: "GPT 5 Nano", Category: "Free", Free: true},
	{ID: "glm-4.7-free", Name: "GLM 4.7 Free", Category: "Free", Free: true},
	{ID: "kimi-k2.5-free", Name: "Kimi K2.5 Free", Category: "Free", Free: true},
	{ID: "minimax-m2.1-free", Name: "MiniMax M2.1 Free", Category: "Free", Free: true},

	{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", Category: "Claude"},
	{ID: "claude-sonnet-4", Name: "Claude Sonnet 4", Category: "Claude"},
	{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", Category: "Claude"},
	{ID: "claude-opus-4-5", Name: "Claude Opus 4.5", Category: "Claude"},

	{ID: "gpt-5.2", Name: "GPT 5.2", Category: "GPT"},
	{ID: "gpt-5.2-codex", Name: "GPT 5.2 Codex", Category: "GPT"},
	{ID: "gpt-5.1-codex", Name: "GPT 5.1 Codex", Category: "GPT"},
	{ID: "gpt-5.1-codex-mini", Name: "GPT 5.1 Codex Mini", Category: "GPT"},

	{ID: "gemini-3-flash", Name: "Gemini 3 Flash", Category: "Gemini"},
	{ID: "qwen3-coder", Name: "Qwen3 Coder 480B", Category: "Other"},
	{ID: "kimi-k2.5", Name: "Kimi K2.5", Category: "Other"},
}

// Catalog returns the known gateway models, free models first.
func Catalog() []ModelInfo {
	return append([]ModelInfo(nil), catalog...)
}

// Lookup finds a catalogue entry by id, case-insensitively.
func Lookup(id string) (ModelInfo, bool) {
	for _, m := range catalog {
		if strings.EqualFold(m.ID, id) {
			return m, true
		}
	}
	return ModelInfo{}, false
}
