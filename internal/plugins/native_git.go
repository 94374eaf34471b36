package plugins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/dohr-michael/wrench/internal/skills"
)

const (
	defaultGitTimeout = 10 * time.Second
	defaultLogCount   = 10
)

var errNotRepository = errors.New("Not a git repository")

// Git implements the git_* skills against the repository containing Dir.
// Reads go through go-git; diff shells out to the git binary.
type Git struct {
	Dir string
}

func (g *Git) dir() string {
	if g.Dir == "" {
		return "."
	}
	return g.Dir
}

func (g *Git) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(g.dir(), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errNotRepository
		}
		return nil, fmt.Errorf("git: open: %w", err)
	}
	return repo, nil
}

// Skills returns the git skills.
func (g *Git) Skills() []*skills.Skill {
	return []*skills.Skill{
		{
			Name:        "git_status",
			Description: "Show the working tree status. Lists modified, staged, and untracked files.",
			Params: []skills.Param{
				{Name: "short", Kind: skills.KindBoolean, Description: "Use short format (default: false)", Optional: true},
			},
			Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
				return gitResult(g.Status(p.Bool("short")))
			},
		},
		{
			Name:        "git_log",
			Description: "Show commit history. Use to see recent changes, commits, and authors.",
			Params: []skills.Param{
				{Name: "count", Kind: skills.KindNumber, Description: "Number of commits to show (default: 10)", Optional: true},
				{Name: "oneline", Kind: skills.KindBoolean, Description: "Show one line per commit (default: false)", Optional: true},
			},
			Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
				return gitResult(g.Log(ctx, p.Int("count", defaultLogCount), p.Bool("oneline")))
			},
		},
		{
			Name:        "git_diff",
			Description: "Show changes in the working directory or staged area. Use to see what has been modified.",
			Params: []skills.Param{
				{Name: "file", Kind: skills.KindString, Description: "Specific file to diff (optional)", Optional: true},
				{Name: "staged", Kind: skills.KindBoolean, Description: "Show staged changes instead of unstaged (default: false)", Optional: true},
			},
			Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
				return gitResult(g.Diff(ctx, p.String("file"), p.Bool("staged")))
			},
		},
		{
			Name:        "git_show",
			Description: "Show details of a specific commit, branch, or tag.",
			Params: []skills.Param{
				{Name: "ref", Kind: skills.KindString, Description: "Commit hash, branch name, or tag to show"},
			},
			Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
				return gitResult(g.Show(p.String("ref")))
			},
		},
		{
			Name:        "git_branch",
			Description: "List all branches. Shows current branch with an asterisk.",
			Params: []skills.Param{
				{Name: "all", Kind: skills.KindBoolean, Description: "Show all branches including remote (default: false)", Optional: true},
			},
			Execute: func(_ context.Context, p skills.Params) (skills.Result, error) {
				return gitResult(g.Branches(p.Bool("all")))
			},
		},
	}
}

func gitResult(out string, err error) (skills.Result, error) {
	if err != nil {
		return skills.Fail("%v", err), nil
	}
	if strings.TrimSpace(out) == "" {
		return skills.OK("(no output)"), nil
	}
	return skills.OK(strings.TrimRight(out, "\n")), nil
}

// Status renders the working tree status, in short ("XY path") or long form.
func (g *Git) Status(short bool) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}

	paths := make([]string, 0, len(status))
	for p, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if short {
		var sb strings.Builder
		for _, p := range paths {
			fs := status[p]
			fmt.Fprintf(&sb, "%c%c %s\n", fs.Staging, fs.Worktree, p)
		}
		return sb.String(), nil
	}

	var sb strings.Builder
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		fmt.Fprintf(&sb, "On branch %s\n", head.Name().Short())
	} else if err == nil {
		fmt.Fprintf(&sb, "HEAD detached at %s\n", head.Hash().String()[:7])
	}

	var staged, unstaged, untracked []string
	for _, p := range paths {
		fs := status[p]
		if fs.Worktree == git.Untracked {
			untracked = append(untracked, p)
			continue
		}
		if fs.Staging != git.Unmodified {
			staged = append(staged, fmt.Sprintf("%s: %s", statusWord(fs.Staging), p))
		}
		if fs.Worktree != git.Unmodified {
			unstaged = append(unstaged, fmt.Sprintf("%s: %s", statusWord(fs.Worktree), p))
		}
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", title)
		for _, l := range lines {
			fmt.Fprintf(&sb, "\t%s\n", l)
		}
	}
	section("Changes to be committed", staged)
	section("Changes not staged for commit", unstaged)
	section("Untracked files", untracked)

	if len(paths) == 0 {
		sb.WriteString("nothing to commit, working tree clean\n")
	}
	return sb.String(), nil
}

func statusWord(code git.StatusCode) string {
	switch code {
	case git.Added:
		return "new file"
	case git.Deleted:
		return "deleted"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	case git.UpdatedButUnmerged:
		return "unmerged"
	default:
		return "modified"
	}
}

// Log renders the last count commits reachable from HEAD.
func (g *Git) Log(ctx context.Context, count int, oneline bool) (string, error) {
	if count <= 0 {
		count = defaultLogCount
	}
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	var sb strings.Builder
	n := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if n >= count {
			return storer.ErrStop
		}
		n++
		short := c.Hash.String()[:7]
		subject := firstLine(c.Message)
		if oneline {
			fmt.Fprintf(&sb, "%s %s\n", short, subject)
		} else {
			fmt.Fprintf(&sb, "%s - %s, %s : %s\n", short, c.Author.Name, humanize.Time(c.Author.When), subject)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("git log: %w", err)
	}
	return sb.String(), nil
}

// Show renders a commit with its patch against the first parent.
func (g *Git) Show(ref string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", ref, err)
	}

	var sb strings.Builder
	sb.WriteString(commit.String())

	if commit.NumParents() == 0 {
		stats, err := commit.Stats()
		if err != nil {
			return "", fmt.Errorf("git show %s: %w", ref, err)
		}
		sb.WriteString("\n" + stats.String())
		return sb.String(), nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", ref, err)
	}
	patch, err := parent.Patch(commit)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", ref, err)
	}
	sb.WriteString("\n" + patch.String())
	return sb.String(), nil
}

// Branches lists local branches, and remote-tracking ones when all is set.
// The current branch is marked with an asterisk.
func (g *Git) Branches(all bool) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	current := ""
	if head, err := repo.Head(); err == nil {
		current = head.Name().String()
	}

	var local, remote []string
	refs, err := repo.References()
	if err != nil {
		return "", fmt.Errorf("git branch: %w", err)
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			prefix := "  "
			if name.String() == current {
				prefix = "* "
			}
			local = append(local, prefix+name.Short())
		case all && name.IsRemote():
			remote = append(remote, "  remotes/"+name.Short())
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("git branch: %w", err)
	}

	sort.Slice(local, func(i, j int) bool { return local[i][2:] < local[j][2:] })
	sort.Strings(remote)
	return strings.Join(append(local, remote...), "\n"), nil
}

// Diff runs git diff. Empty output is reported as a friendly message.
func (g *Git) Diff(ctx context.Context, file string, staged bool) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--staged")
	}
	if file != "" {
		args = append(args, "--", file)
	}
	out, err := g.exec(ctx, args...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		if staged {
			return "No staged changes", nil
		}
		return "No unstaged changes", nil
	}
	return out, nil
}

func (g *Git) exec(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %s: timed out after %s", args[0], defaultGitTimeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 128 && strings.Contains(strings.ToLower(stderr.String()), "not a git repository") {
				return "", errNotRepository
			}
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git: exec: %w", err)
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
