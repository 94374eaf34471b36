package agent

import (
	"fmt"
	"os"
	"strings"

	"github.com/dohr-michael/wrench/internal/memory"
	"github.com/dohr-michael/wrench/internal/skills"
)

// DefaultPersona is the base identity of the assistant. Overridable via
// PERSONA.md in WRENCH_PATH.
const DefaultPersona = `You are a terse technical assistant for electronics development and home automation.`

// DefaultEnvironment describes the user's workstation.
var DefaultEnvironment = []string{
	"OS: macOS",
	"Editor: Neovim",
	"Workflow: Terminal-based with tmux",
}

// Rules are the fixed operating rules appended to every prompt.
const Rules = `Rules:
1. Be direct and technical - no fluff
2. Show code/output, don't describe it
3. Use tools proactively for reads (don't ask permission)
4. For writes/destructive actions, show the change and ask "Apply?"
5. Remember technical details (pin assignments, addresses, commands)

Keep responses concise. When showing code or diffs, use the actual content.`

const noFacts = "(No facts stored yet)"

// LoadPersona reads a persona file if it exists, otherwise returns
// DefaultPersona.
func LoadPersona(path string) string {
	if path == "" {
		return DefaultPersona
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultPersona
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return DefaultPersona
	}
	return content
}

// PromptContext holds the per-turn inputs of the system prompt.
type PromptContext struct {
	Persona     string
	Environment []string
	Skills      []*skills.Skill
	Facts       []memory.Fact
}

// BuildSystemPrompt renders persona, environment, skill catalogue, known
// facts and rules.
func BuildSystemPrompt(pctx PromptContext) string {
	persona := pctx.Persona
	if persona == "" {
		persona = DefaultPersona
	}
	env := pctx.Environment
	if len(env) == 0 {
		env = DefaultEnvironment
	}

	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\nEnvironment:\n")
	for _, line := range env {
		fmt.Fprintf(&sb, "- %s\n", line)
	}

	if len(pctx.Skills) > 0 {
		sb.WriteString("\nAvailable tools:\n")
		for _, s := range pctx.Skills {
			fmt.Fprintf(&sb, "- %s: %s\n", s.Name, s.Description)
		}
	}

	sb.WriteString("\nKnown facts:\n")
	if len(pctx.Facts) == 0 {
		sb.WriteString(noFacts + "\n")
	} else {
		for _, f := range pctx.Facts {
			fmt.Fprintf(&sb, "- %s\n", f.Content)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(Rules)
	return sb.String()
}
