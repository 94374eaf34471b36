package plugins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/dohr-michael/wrench/internal/skills"
)

const (
	defaultShellTimeout = 30 * time.Second

	// maxShellOutput caps what is kept of each of stdout and stderr.
	maxShellOutput = 1024 * 1024
)

// limitedBuffer keeps the first max bytes written and drops the rest.
// Writes never fail so the command is not interrupted by a full buffer.
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room < len(p) {
		b.truncated = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n... (truncated)"
	}
	return b.buf.String()
}

// ShellRunner executes denylist-checked commands with an embedded POSIX
// shell interpreter.
type ShellRunner struct {
	Dir     string
	Timeout time.Duration
}

type cmdOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// combined renders stdout followed by stderr, trimmed.
func (o cmdOutput) combined() string {
	out := o.Stdout
	if o.Stderr != "" {
		out += "\nSTDERR:\n" + o.Stderr
	}
	return strings.TrimSpace(out)
}

// Run checks and executes command. A non-zero exit status is reported in
// the output, not as an error. Blocked commands, syntax errors and timeouts
// are errors.
func (r *ShellRunner) Run(ctx context.Context, command string) (cmdOutput, error) {
	file, err := CheckCommand(command)
	if err != nil {
		return cmdOutput{}, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}

	slog.Info("shell: executing", "command", command, "timeout", timeout)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := &limitedBuffer{max: maxShellOutput}
	stderr := &limitedBuffer{max: maxShellOutput}
	opts := []interp.RunnerOption{
		interp.StdIO(nil, stdout, stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return cmdOutput{}, fmt.Errorf("shell: init: %w", err)
	}

	exitCode := 0
	if err := runner.Run(ctx, file); err != nil {
		if ctx.Err() != nil {
			return cmdOutput{}, fmt.Errorf("command timed out after %s", timeout)
		}
		var status interp.ExitStatus
		if !errors.As(err, &status) {
			return cmdOutput{}, fmt.Errorf("shell: %w", err)
		}
		exitCode = int(status)
	}

	return cmdOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// Execute runs command and converts the outcome into a skill result.
func (r *ShellRunner) Execute(ctx context.Context, command string) skills.Result {
	out, err := r.Run(ctx, command)
	if err != nil {
		return skills.Fail("%v", err)
	}
	if out.ExitCode != 0 {
		res := skills.Fail("command exited with status %d", out.ExitCode)
		if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
			res.Error += ": " + stderr
		}
		res.Output = strings.TrimSpace(out.Stdout)
		return res
	}
	if combined := out.combined(); combined != "" {
		return skills.OK(combined)
	}
	return skills.OK("(no output)")
}

// ShellSkill returns the shell skill.
func ShellSkill(runner *ShellRunner) *skills.Skill {
	return &skills.Skill{
		Name:        "shell",
		Description: "Execute shell commands. Use for running terminal commands, checking status, listing files, etc. Blocked: destructive operations (rm -rf, sudo, dd, mkfs).",
		Params: []skills.Param{
			{Name: "command", Kind: skills.KindString, Description: "Shell command to execute"},
		},
		Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
			return runner.Execute(ctx, p.String("command")), nil
		},
	}
}
