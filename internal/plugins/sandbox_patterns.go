package plugins

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// destructiveRule describes a shell command pattern that is never executed.
type destructiveRule struct {
	pattern *regexp.Regexp
	reason  string
}

// destructivePatterns is the compiled denylist matched against raw command text.
var destructivePatterns []destructiveRule

func init() {
	raw := []struct {
		pattern string
		reason  string
	}{
		// Filesystem destruction
		{`\brm\s+.*-[a-zA-Z]*[rR]`, "recursive remove"},
		{`\brm\s+.*-[a-zA-Z]*[fF]`, "force remove"},
		// Disk/partition
		{`\bdd\b\s+.*\bof=`, "raw disk write (dd)"},
		{`\bmkfs\b`, "filesystem format"},
		{`\bfdisk\b`, "partition edit"},
		{`>\s*/dev/sd[a-z]`, "raw device write"},
		// System
		{`:\(\)\s*\{`, "fork bomb"},
		{`\bchmod\s+.*-[a-zA-Z]*[rR]`, "recursive chmod"},
		{`\bchown\s+.*-[a-zA-Z]*[rR]`, "recursive chown"},
		// Privilege escalation
		{`\bsudo\b`, "privilege escalation"},
		{`\bsu\s`, "switch user"},
		// Remote code
		{`\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z|da)?sh\b`, "piping a download into a shell"},
	}
	destructivePatterns = make([]destructiveRule, len(raw))
	for i, r := range raw {
		destructivePatterns[i] = destructiveRule{
			pattern: regexp.MustCompile(r.pattern),
			reason:  r.reason,
		}
	}
}

// blockedPrograms are refused wherever they appear in the parsed command,
// including inside substitutions and behind an absolute path.
var blockedPrograms = map[string]string{
	"sudo":   "privilege escalation",
	"su":     "switch user",
	"doas":   "privilege escalation",
	"dd":     "raw disk copy (dd)",
	"mkfs":   "filesystem format",
	"fdisk":  "partition edit",
	"format": "disk format",
}

var shells = map[string]bool{"sh": true, "bash": true, "zsh": true, "dash": true}

// BlockedError reports a command refused by the denylist.
type BlockedError struct {
	Command string
	Reason  string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("Blocked command (%s): not allowed for safety", e.Reason)
}

// matchDestructivePattern checks a command string against the denylist.
// Returns the matched rule, or nil if the command is safe.
func matchDestructivePattern(command string) *destructiveRule {
	for i := range destructivePatterns {
		if destructivePatterns[i].pattern.MatchString(command) {
			return &destructivePatterns[i]
		}
	}
	return nil
}

// CheckCommand parses command and returns it when it passes the denylist.
// A syntax error or a *BlockedError is returned otherwise.
func CheckCommand(command string) (*syntax.File, error) {
	if rule := matchDestructivePattern(command); rule != nil {
		return nil, &BlockedError{Command: command, Reason: rule.reason}
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("invalid shell syntax: %w", err)
	}

	var blocked *BlockedError
	syntax.Walk(file, func(node syntax.Node) bool {
		if blocked != nil {
			return false
		}
		switch n := node.(type) {
		case *syntax.CallExpr:
			if reason, ok := blockedPrograms[programName(n)]; ok {
				blocked = &BlockedError{Command: command, Reason: reason}
			}
		case *syntax.BinaryCmd:
			if n.Op == syntax.Pipe && downloads(n.X) && shells[stmtProgram(n.Y)] {
				blocked = &BlockedError{Command: command, Reason: "piping a download into a shell"}
			}
		}
		return true
	})
	if blocked != nil {
		return nil, blocked
	}
	return file, nil
}

// programName returns the base name of the program a call runs, or "" when
// the first word is not a literal.
func programName(call *syntax.CallExpr) string {
	if len(call.Args) == 0 {
		return ""
	}
	name := path.Base(call.Args[0].Lit())
	if strings.HasPrefix(name, "mkfs.") {
		return "mkfs"
	}
	return name
}

func stmtProgram(stmt *syntax.Stmt) string {
	if stmt == nil {
		return ""
	}
	if call, ok := stmt.Cmd.(*syntax.CallExpr); ok {
		return programName(call)
	}
	return ""
}

func downloads(stmt *syntax.Stmt) bool {
	found := false
	syntax.Walk(stmt, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok {
			if name := programName(call); name == "curl" || name == "wget" {
				found = true
			}
		}
		return !found
	})
	return found
}
