package plugins

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dohr-michael/wrench/internal/skills"
)

const defaultMaxResults = 50

// skipDirs are directories to skip during search.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".hg":          true,
}

// SearchFilesSkill returns the search_files skill: a regex search over file
// contents, optionally filtered by a glob on the relative path.
func SearchFilesSkill(workDir string) *skills.Skill {
	return &skills.Skill{
		Name:        "search_files",
		Description: "Search file contents with a regular expression. Returns matching lines as path:line: content.",
		Params: []skills.Param{
			{Name: "pattern", Kind: skills.KindString, Description: "Regular expression to search for"},
			{Name: "path", Kind: skills.KindString, Description: "Directory to search (default: working directory)", Optional: true},
			{Name: "glob", Kind: skills.KindString, Description: "Only search files matching this glob (e.g. \"**/*.go\")", Optional: true},
			{Name: "max_results", Kind: skills.KindNumber, Description: "Maximum number of matches to return (default: 50)", Optional: true},
		},
		Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
			re, err := regexp.Compile(p.String("pattern"))
			if err != nil {
				return skills.Fail("invalid regex: %v", err), nil
			}
			root := p.String("path")
			if root == "" {
				root = "."
			}
			root = resolvePath(workDir, root)
			glob := p.String("glob")
			if glob != "" && !doublestar.ValidatePattern(glob) {
				return skills.Fail("invalid glob: %s", glob), nil
			}
			maxResults := p.Int("max_results", defaultMaxResults)
			if maxResults <= 0 {
				maxResults = defaultMaxResults
			}

			lines, total, err := searchFiles(ctx, root, re, glob, maxResults)
			if err != nil {
				return skills.Fail("%v", err), nil
			}
			if total == 0 {
				return skills.OK("No matches"), nil
			}
			out := strings.Join(lines, "\n")
			if total > len(lines) {
				out += fmt.Sprintf("\n... (%d more matches)", total-len(lines))
			}
			return skills.OK(out), nil
		},
	}
}

func searchFiles(ctx context.Context, root string, re *regexp.Regexp, glob string, maxResults int) ([]string, int, error) {
	var lines []string
	total := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if glob != "" {
			if ok, _ := doublestar.Match(glob, rel); !ok {
				return nil
			}
		}
		if isBinary(path) {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			if !re.MatchString(line) {
				continue
			}
			total++
			if len(lines) < maxResults {
				lines = append(lines, fmt.Sprintf("%s:%d: %s", rel, lineNum, line))
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search: walk: %w", err)
	}
	return lines, total, nil
}

// isBinary checks if a file appears to be binary by looking for null bytes
// in the first 512 bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}
