package plugins

import (
	"errors"
	"log/slog"

	"github.com/dohr-michael/wrench/internal/config"
	"github.com/dohr-michael/wrench/internal/skills"
)

// SetupRegistry creates a skill registry with the native skills and the
// command skills found in cfg.Skills.Dir. Skills missing from
// cfg.Skills.Enabled are skipped. facts may be nil, in which case
// remember_fact is not registered.
func SetupRegistry(cfg *config.Config, facts FactStore) (*skills.Registry, error) {
	sc := cfg.Skills
	registry := skills.NewRegistry()
	runner := &ShellRunner{Dir: sc.WorkDir, Timeout: sc.ShellTimeout}

	native := []*skills.Skill{
		ShellSkill(runner),
		ReadFileSkill(sc.WorkDir),
		WriteFileSkill(sc.WorkDir),
		ListFilesSkill(sc.WorkDir),
		SearchFilesSkill(sc.WorkDir),
	}
	native = append(native, (&Git{Dir: sc.WorkDir}).Skills()...)
	ha := NewHomeAssistant(sc.HomeAssistant.URL, sc.HomeAssistant.TokenEnv, sc.HomeAssistant.Timeout)
	native = append(native, ha.Skills()...)
	if facts != nil {
		native = append(native, RememberFactSkill(facts))
	}

	for _, s := range native {
		if !sc.IsEnabled(s.Name) {
			slog.Debug("skill disabled", "skill", s.Name)
			continue
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}

	defs, err := skills.LoadDir(sc.Dir)
	if err != nil {
		slog.Warn("failed to load command skills", "dir", sc.Dir, "error", err)
	}
	for _, def := range defs {
		if !sc.IsEnabled(def.Name) {
			continue
		}
		s, err := CommandSkill(def, runner)
		if err != nil {
			slog.Warn("failed to build command skill", "path", def.Path, "error", err)
			continue
		}
		if err := registry.Register(s); err != nil {
			if errors.Is(err, skills.ErrDuplicateSkill) {
				slog.Warn("command skill shadows an existing skill, skipping", "skill", def.Name, "path", def.Path)
				continue
			}
			return nil, err
		}
		slog.Debug("command skill registered", "skill", def.Name, "path", def.Path)
	}

	return registry, nil
}
