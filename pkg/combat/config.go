// pkg/combat/config.go
package combat

import (
	"fmt"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/entity"
)

// FromConfig builds the combat state described by a scene entry. t is the
// entity's transform, used to measure projectile range.
func FromConfig(cfg config.EntityConfig, t *entity.Transform) (*Combatant, error) {
	team, err := ParseTeam(cfg.Team)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", cfg.Name, err)
	}

	c := &Combatant{
		Team:          team,
		ContactDamage: cfg.ContactDamage,
		Transform:     t,
	}

	if h := cfg.Health; h != nil {
		c.Health = NewHealth(h.Max)
		c.Health.Invincible = h.Invincible
	}

	if p := cfg.Projectile; p != nil {
		target, err := ParseTarget(p.Target)
		if err != nil {
			return nil, fmt.Errorf("entity %q: projectile target: %w", cfg.Name, err)
		}
		c.Projectile = NewProjectile(p.Damage, target, p.Piercing, p.Range)
		c.Knockback = p.Knockback
	}

	return c, nil
}
