package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dohr-michael/wrench/internal/models"
)

// toolCallMarkers are the delimiters some models emit when they describe a
// tool call in prose instead of using the structured tool-call channel.
var toolCallMarkers = []string{"<tool_call>", "</tool_call>", "<arg_key>", "<arg_value>"}

var (
	argPairRe  = regexp.MustCompile(`(?s)<arg_key>\s*(.*?)\s*</arg_key>\s*<arg_value>(.*?)</arg_value>`)
	looseArgRe = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_-]*)\s*:\s*(.+?)\s*$`)
	tagRe      = regexp.MustCompile(`</?[A-Za-z_][A-Za-z0-9_]*>`)
)

// HasToolCallMarkers reports whether text contains a known tool-call
// delimiter. This is a plain substring heuristic.
func HasToolCallMarkers(text string) bool {
	for _, m := range toolCallMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// ParseTextToolCall recovers a single tool call from free text. The name is
// the first non-empty line of the call region with tags removed; arguments
// come from <arg_key>/<arg_value> pairs, or from "key: value" lines when no
// pair is present. It returns false when no name can be extracted.
func ParseTextToolCall(text string) (models.ToolCall, bool) {
	region := text
	if i := strings.Index(region, "<tool_call>"); i >= 0 {
		region = region[i+len("<tool_call>"):]
	}
	if i := strings.Index(region, "</tool_call>"); i >= 0 {
		region = region[:i]
	}

	name, rest := splitName(region)
	if name == "" {
		return models.ToolCall{}, false
	}

	input := map[string]any{}
	for _, m := range argPairRe.FindAllStringSubmatch(region, -1) {
		key := strings.TrimSpace(m[1])
		if key == "" {
			continue
		}
		input[key] = parseArgValue(m[2])
	}

	if len(input) == 0 {
		for _, m := range looseArgRe.FindAllStringSubmatch(tagRe.ReplaceAllString(rest, ""), -1) {
			input[m[1]] = parseArgValue(m[2])
		}
	}

	return models.ToolCall{
		ID:    "call_" + uuid.NewString(),
		Name:  name,
		Input: input,
	}, true
}

// splitName returns the tool name and the remainder of the region after the
// name line. Argument tags on the name line are not part of the name.
func splitName(region string) (string, string) {
	lines := strings.Split(region, "\n")
	for i, line := range lines {
		hasArgs := false
		if j := strings.Index(line, "<arg_"); j >= 0 {
			line = line[:j]
			hasArgs = true
		}
		name := strings.TrimSpace(tagRe.ReplaceAllString(line, ""))
		if name != "" {
			return name, strings.Join(lines[i+1:], "\n")
		}
		if hasArgs {
			// Arguments started before any name.
			return "", ""
		}
	}
	return "", ""
}

// parseArgValue decodes JSON-looking values and keeps everything else as a
// literal string.
func parseArgValue(raw string) any {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return decoded
		}
	}
	return v
}
