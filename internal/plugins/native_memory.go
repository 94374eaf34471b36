package plugins

import (
	"context"

	"github.com/dohr-michael/wrench/internal/skills"
)

// FactStore persists durable facts.
type FactStore interface {
	// SaveFact stores content and reports whether it was new.
	SaveFact(ctx context.Context, content string) (bool, error)
}

// RememberFactSkill returns the remember_fact skill.
func RememberFactSkill(store FactStore) *skills.Skill {
	return &skills.Skill{
		Name:        "remember_fact",
		Description: "Store a durable fact for future conversations (pin assignments, addresses, device names, commands).",
		Params: []skills.Param{
			{Name: "content", Kind: skills.KindString, Description: "The fact to remember, as one self-contained sentence"},
		},
		Execute: func(ctx context.Context, p skills.Params) (skills.Result, error) {
			content := p.String("content")
			created, err := store.SaveFact(ctx, content)
			if err != nil {
				return skills.Result{}, err
			}
			if !created {
				return skills.OK("Already known: " + content), nil
			}
			return skills.OK("Remembered: " + content), nil
		},
	}
}
