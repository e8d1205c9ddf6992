// pkg/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-arena/pkg/validation"
)

var teamNames = []string{TeamNone, TeamPlayer, TeamEnemy}

// Validate checks a scene and returns every problem found, joined. Each
// problem is a *ValidationError; shape problems also match ErrInvalidShape.
func Validate(config *SceneConfig) error {
	if config == nil {
		return &ValidationError{Field: "scene", Value: nil, Message: "missing"}
	}

	var errs []error
	if err := validation.ValidateWorldSize(config.WorldSize); err != nil {
		errs = append(errs, &ValidationError{Field: "worldSize", Value: config.WorldSize, Message: err.Error()})
	}
	if config.TickRate <= 0 {
		errs = append(errs, &ValidationError{Field: "tickRate", Value: config.TickRate, Message: "must be positive"})
	}

	names := make(map[string]int, len(config.Entities))
	for i, e := range config.Entities {
		errs = append(errs, validateEntity(i, e, names)...)
	}

	return errors.Join(errs...)
}

func validateEntity(i int, e EntityConfig, names map[string]int) []error {
	var errs []error
	field := func(name string) string {
		return fmt.Sprintf("entities[%d].%s", i, name)
	}

	if name, err := validation.ValidateEntityName(e.Name); err != nil {
		errs = append(errs, &ValidationError{Field: field("name"), Value: e.Name, Message: err.Error()})
	} else if first, dup := names[name]; dup {
		errs = append(errs, &ValidationError{
			Field:   field("name"),
			Value:   e.Name,
			Message: fmt.Sprintf("duplicates entities[%d]", first),
		})
	} else {
		names[name] = i
	}

	for _, c := range []struct {
		name string
		v    float64
	}{{"x", e.X}, {"y", e.Y}, {"velocityX", e.VelocityX}, {"velocityY", e.VelocityY}} {
		if err := validation.ValidateFinite(c.name, c.v); err != nil {
			errs = append(errs, &ValidationError{Field: field(c.name), Value: c.v, Message: err.Error()})
		}
	}

	if _, err := e.Shape.Build(); err != nil {
		errs = append(errs, &ValidationError{Field: field("shape"), Value: e.Shape.Kind, Message: "cannot build shape", Err: err})
	}

	if err := validation.ValidateTeam(e.Team, teamNames...); err != nil {
		errs = append(errs, &ValidationError{Field: field("team"), Value: e.Team, Message: err.Error()})
	}

	if e.Script != "" {
		if err := validation.ValidateScript(e.Script); err != nil {
			errs = append(errs, &ValidationError{Field: field("script"), Value: len(e.Script), Message: err.Error()})
		}
		if e.FollowCursor {
			errs = append(errs, &ValidationError{Field: field("script"), Value: e.Name, Message: "cannot combine script with followCursor"})
		}
	}

	if e.ContactDamage < 0 {
		errs = append(errs, &ValidationError{Field: field("contactDamage"), Value: e.ContactDamage, Message: "must not be negative"})
	}

	if e.Health != nil && e.Health.Max <= 0 {
		errs = append(errs, &ValidationError{Field: field("health.max"), Value: e.Health.Max, Message: "must be positive"})
	}

	if p := e.Projectile; p != nil {
		if p.Damage < 0 {
			errs = append(errs, &ValidationError{Field: field("projectile.damage"), Value: p.Damage, Message: "must not be negative"})
		}
		if p.Target != "" && !strings.EqualFold(p.Target, TargetAll) {
			if err := validation.ValidateTeam(p.Target, teamNames...); err != nil {
				errs = append(errs, &ValidationError{Field: field("projectile.target"), Value: p.Target, Message: err.Error()})
			}
		}
		if err := validation.ValidatePiercing(p.Piercing); err != nil {
			errs = append(errs, &ValidationError{Field: field("projectile.piercing"), Value: p.Piercing, Message: err.Error()})
		}
		if p.Range < 0 {
			errs = append(errs, &ValidationError{Field: field("projectile.range"), Value: p.Range, Message: "must not be negative"})
		}
		if err := validation.ValidateFinite("knockback", p.Knockback); err != nil {
			errs = append(errs, &ValidationError{Field: field("projectile.knockback"), Value: p.Knockback, Message: err.Error()})
		} else if p.Knockback < 0 {
			errs = append(errs, &ValidationError{Field: field("projectile.knockback"), Value: p.Knockback, Message: "must not be negative"})
		}
	}

	return errs
}
