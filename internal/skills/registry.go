package skills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrDuplicateSkill is returned when a skill name is registered twice.
var ErrDuplicateSkill = errors.New("skill already registered")

// Registry maps skill names to skills. Registration order is preserved for
// listing and tool definitions.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]*Skill
	order  []string
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]*Skill),
	}
}

// Register adds a skill. The first registration of a name stays authoritative.
func (r *Registry) Register(skill *Skill) error {
	if skill == nil || skill.Name == "" {
		return errors.New("skill name is required")
	}
	if skill.Execute == nil {
		return fmt.Errorf("skill %q: executor is required", skill.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[skill.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSkill, skill.Name)
	}
	r.skills[skill.Name] = skill
	r.order = append(r.order, skill.Name)
	return nil
}

// MustRegister registers each skill and panics on the first failure.
func (r *Registry) MustRegister(skills ...*Skill) {
	for _, s := range skills {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Get returns the skill with the given name.
func (r *Registry) Get(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// All returns all registered skills in registration order.
func (r *Registry) All() []*Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Skill, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.skills[name])
	}
	return result
}

// Names returns all registered skill names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ToolDefinitions returns one definition per skill, in registration order.
func (r *Registry) ToolDefinitions() []ToolDefinition {
	all := r.All()
	defs := make([]ToolDefinition, 0, len(all))
	for _, s := range all {
		defs = append(defs, ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			InputSchema: BuildSchema(s.Params),
		})
	}
	return defs
}

// Execute validates raw arguments and runs the named skill. It never panics
// and never returns an error: every failure is reported in the Result.
func (r *Registry) Execute(ctx context.Context, name string, raw map[string]any) (res Result) {
	skill, ok := r.Get(name)
	if !ok {
		return Fail("Skill not found: %s", name)
	}

	params, err := Validate(skill.Params, raw)
	if err != nil {
		return Fail("Parameter validation failed: %v", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("skill panicked", "skill", name, "panic", rec)
			res = Fail("%v", rec)
		}
	}()

	res, err = skill.Execute(ctx, params)
	if err != nil {
		return Result{Success: false, Output: res.Output, Error: err.Error()}
	}
	if !res.Success && res.Error == "" {
		res.Error = "skill failed"
	}
	return res
}
