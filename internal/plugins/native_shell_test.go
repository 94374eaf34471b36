package plugins

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestShellRunner_Execute(t *testing.T) {
	runner := &ShellRunner{}
	ctx := context.Background()

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"stdout trimmed", "echo hello", "hello"},
		{"empty output", "true", "(no output)"},
		{"stderr appended", "echo out; echo err 1>&2", "out\nSTDERR:\nerr"},
		{"stderr only", "echo warn >&2", "STDERR:\nwarn"},
		{"pipeline", "printf 'a\\nb\\nc\\n' | wc -l | tr -d ' '", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runner.Execute(ctx, tt.command)
			if !res.Success {
				t.Fatalf("unexpected failure: %s", res.Error)
			}
			if res.Output != tt.want {
				t.Errorf("output = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

func TestShellRunner_OutputCapped(t *testing.T) {
	res := (&ShellRunner{}).Execute(context.Background(), "head -c 2000000 /dev/zero | tr '\\000' x")
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if !strings.HasSuffix(res.Output, "... (truncated)") {
		t.Errorf("expected truncation marker, got suffix %q", res.Output[max(0, len(res.Output)-40):])
	}
	if n := strings.Count(res.Output, "x"); n != maxShellOutput {
		t.Errorf("kept %d bytes, want %d", n, maxShellOutput)
	}
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{max: 5}
	for _, chunk := range []string{"abc", "def", "ghi"} {
		n, err := b.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if got := b.String(); got != "abcde\n... (truncated)" {
		t.Errorf("String() = %q", got)
	}

	small := &limitedBuffer{max: 5}
	_, _ = small.Write([]byte("abc"))
	if got := small.String(); got != "abc" {
		t.Errorf("String() = %q, want abc", got)
	}
}

func TestShellRunner_NonZeroExit(t *testing.T) {
	res := (&ShellRunner{}).Execute(context.Background(), "echo partial; echo boom >&2; exit 3")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "command exited with status 3: boom" {
		t.Errorf("unexpected error %q", res.Error)
	}
	if res.Output != "partial" {
		t.Errorf("expected stdout to be kept, got %q", res.Output)
	}
}

func TestShellRunner_Blocked(t *testing.T) {
	dir := t.TempDir()
	res := (&ShellRunner{Dir: dir}).Execute(context.Background(), "rm -rf "+dir)
	if res.Success {
		t.Fatal("expected blocked command to fail")
	}
	if !strings.HasPrefix(res.Error, "Blocked command (recursive remove)") {
		t.Errorf("unexpected error %q", res.Error)
	}
}

func TestShellRunner_Timeout(t *testing.T) {
	runner := &ShellRunner{Timeout: 100 * time.Millisecond}
	start := time.Now()
	res := runner.Execute(context.Background(), "sleep 5")
	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("unexpected error %q", res.Error)
	}
	if time.Since(start) > 4*time.Second {
		t.Errorf("timeout not enforced, took %s", time.Since(start))
	}
}

func TestShellRunner_WorkingDir(t *testing.T) {
	dir := t.TempDir()
	res := (&ShellRunner{Dir: dir}).Execute(context.Background(), "pwd")
	if !res.Success || res.Output != dir {
		t.Errorf("expected %q, got %+v", dir, res)
	}
}

func TestShellSkill_ThroughRegistry(t *testing.T) {
	reg := newTestRegistry(t, ShellSkill(&ShellRunner{}))

	res := reg.Execute(context.Background(), "shell", map[string]any{"command": "echo registry"})
	if !res.Success || res.Output != "registry" {
		t.Errorf("unexpected result %+v", res)
	}

	res = reg.Execute(context.Background(), "shell", map[string]any{})
	if res.Success || !strings.HasPrefix(res.Error, "Parameter validation failed") {
		t.Errorf("expected validation failure, got %+v", res)
	}
}
