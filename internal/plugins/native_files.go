package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dohr-michael/wrench/internal/skills"
)

const maxListEntries = 1000

// resolvePath expands ~/ and makes relative paths relative to workDir.
func resolvePath(workDir, p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) || workDir == "" {
		return p
	}
	return filepath.Join(workDir, p)
}

// ReadFileSkill returns the read_file skill.
func ReadFileSkill(workDir string) *skills.Skill {
	return &skills.Skill{
		Name:        "read_file",
		Description: "Read contents of a file. Can optionally specify line range.",
		Params: []skills.Param{
			{Name: "path", Kind: skills.KindString, Description: "Path to the file to read"},
			{Name: "start_line", Kind: skills.KindNumber, Description: "Start line (1-indexed, optional)", Optional: true},
			{Name: "end_line", Kind: skills.KindNumber, Description: "End line (1-indexed, optional)", Optional: true},
		},
		Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
			data, err := os.ReadFile(resolvePath(workDir, p.String("path")))
			if err != nil {
				return skills.Fail("%v", err), nil
			}
			content := string(data)
			if !p.Has("start_line") && !p.Has("end_line") {
				return skills.OK(content), nil
			}
			return skills.OK(lineRange(content, p.Int("start_line", 1), p.Int("end_line", 0))), nil
		},
	}
}

// lineRange returns lines start..end (1-indexed, inclusive). end <= 0 means
// the last line.
func lineRange(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// WriteFileSkill returns the write_file skill.
func WriteFileSkill(workDir string) *skills.Skill {
	return &skills.Skill{
		Name:        "write_file",
		Description: "Write content to a file (creates or overwrites). Use for creating new files or replacing content.",
		Params: []skills.Param{
			{Name: "path", Kind: skills.KindString, Description: "Path to the file to write"},
			{Name: "content", Kind: skills.KindString, Description: "Content to write to the file"},
		},
		Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
			path := p.String("path")
			content := p.String("content")
			abs := resolvePath(workDir, path)

			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return skills.Fail("create dirs: %v", err), nil
			}
			if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
				return skills.Fail("%v", err), nil
			}
			return skills.OK(fmt.Sprintf("Successfully wrote %d characters to %s", utf8.RuneCountInString(content), path)), nil
		},
	}
}

// ListFilesSkill returns the list_files skill. Patterns support ** for
// recursive matching.
func ListFilesSkill(workDir string) *skills.Skill {
	return &skills.Skill{
		Name:        "list_files",
		Description: "List files matching a glob pattern (supports ** for recursive matching, e.g. \"**/*.go\").",
		Params: []skills.Param{
			{Name: "pattern", Kind: skills.KindString, Description: "Glob pattern, relative to path"},
			{Name: "path", Kind: skills.KindString, Description: "Base directory (default: working directory)", Optional: true},
		},
		Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
			base := p.String("path")
			if base == "" {
				base = "."
			}
			base = resolvePath(workDir, base)
			pattern := p.String("pattern")
			if !doublestar.ValidatePattern(pattern) {
				return skills.Fail("invalid pattern: %s", pattern), nil
			}

			matches, err := doublestar.Glob(os.DirFS(base), pattern)
			if err != nil {
				return skills.Fail("glob: %v", err), nil
			}
			if len(matches) == 0 {
				return skills.OK(fmt.Sprintf("No files match %s", pattern)), nil
			}
			sort.Strings(matches)

			extra := 0
			if len(matches) > maxListEntries {
				extra = len(matches) - maxListEntries
				matches = matches[:maxListEntries]
			}
			out := strings.Join(matches, "\n")
			if extra > 0 {
				out += fmt.Sprintf("\n... (%d more)", extra)
			}
			return skills.OK(out), nil
		},
	}
}
