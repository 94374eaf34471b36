package plugins

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"mvdan.cc/sh/v3/syntax"

	"github.com/dohr-michael/wrench/internal/skills"
)

var commandFuncs = template.FuncMap{
	// quote renders a value as a single shell word.
	"quote": func(v any) (string, error) {
		return syntax.Quote(fmt.Sprint(v), syntax.LangBash)
	},
	"join": func(v []string, sep string) string {
		return strings.Join(v, sep)
	},
}

// CommandSkill builds a skill from a declared command definition. The
// command template is rendered with the validated parameters and executed
// by runner, so the denylist applies to the rendered command.
func CommandSkill(def *skills.Definition, runner *ShellRunner) (*skills.Skill, error) {
	tmpl, err := template.New(def.Name).Funcs(commandFuncs).Option("missingkey=zero").Parse(def.Command)
	if err != nil {
		return nil, fmt.Errorf("skill %s: parse command: %w", def.Name, err)
	}

	params := def.SkillParams()
	return &skills.Skill{
		Name:        def.Name,
		Description: def.Description,
		Params:      params,
		Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
			data := make(map[string]any, len(params))
			for _, param := range params {
				data[param.Name] = ""
			}
			for k, v := range p {
				data[k] = v
			}

			var sb strings.Builder
			if err := tmpl.Execute(&sb, data); err != nil {
				return skills.Fail("render command: %v", err), nil
			}
			return runner.Execute(ctx, sb.String()), nil
		},
	}, nil
}
