package plugins

import (
	"context"
	"strings"
	"testing"

	"github.com/dohr-michael/wrench/internal/skills"
)

func TestCommandSkill(t *testing.T) {
	def := &skills.Definition{
		Name:        "flash",
		Description: "Flash firmware",
		Params: []skills.DefinitionArg{
			{Name: "port", Type: "string"},
			{Name: "baud", Type: "number", Optional: true},
			{Name: "verbose", Type: "boolean", Optional: true},
		},
		Command: `echo flashing {{ quote .port }}{{ if .baud }} at {{ .baud }}{{ end }}{{ if .verbose }} -v{{ end }}`,
	}
	s, err := CommandSkill(def, &ShellRunner{})
	if err != nil {
		t.Fatal(err)
	}
	reg := newTestRegistry(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"required only", map[string]any{"port": "/dev/ttyUSB0"}, "flashing /dev/ttyUSB0"},
		{"all params", map[string]any{"port": "/dev/tty.usb", "baud": "115200", "verbose": "true"}, "flashing /dev/tty.usb at 115200 -v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := reg.Execute(ctx, "flash", tt.args)
			if !res.Success || res.Output != tt.want {
				t.Errorf("got %+v, want output %q", res, tt.want)
			}
		})
	}

	res := reg.Execute(ctx, "flash", map[string]any{})
	if res.Success || !strings.Contains(res.Error, "port: required") {
		t.Errorf("expected validation failure, got %+v", res)
	}
}

func TestCommandSkill_RenderedCommandIsChecked(t *testing.T) {
	s, err := CommandSkill(&skills.Definition{
		Name:    "run",
		Params:  []skills.DefinitionArg{{Name: "cmd", Type: "string"}},
		Command: "{{ .cmd }}",
	}, &ShellRunner{})
	if err != nil {
		t.Fatal(err)
	}

	res := newTestRegistry(t, s).Execute(context.Background(), "run", map[string]any{"cmd": "sudo reboot"})
	if res.Success || !strings.HasPrefix(res.Error, "Blocked command") {
		t.Errorf("expected blocked command, got %+v", res)
	}
}

func TestCommandSkill_InvalidTemplate(t *testing.T) {
	_, err := CommandSkill(&skills.Definition{Name: "bad", Command: "echo {{ .x "}, &ShellRunner{})
	if err == nil {
		t.Fatal("expected template parse error")
	}
}
