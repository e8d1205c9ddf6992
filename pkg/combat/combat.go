// Package combat turns collision events into damage: teams, hit points,
// projectiles and damage on touch.
package combat

import (
	"fmt"
	"strings"
)

// Team groups entities that do not damage each other. TeamNone marks
// neutral obstacles.
type Team uint8

const (
	TeamNone Team = iota
	TeamPlayer
	TeamEnemy
)

var teamNames = map[Team]string{
	TeamNone:   "none",
	TeamPlayer: "player",
	TeamEnemy:  "enemy",
}

// String returns the scene-file name of t.
func (t Team) String() string {
	if name, ok := teamNames[t]; ok {
		return name
	}
	return fmt.Sprintf("team(%d)", uint8(t))
}

// ParseTeam maps a scene-file team name to a Team. The empty string is
// TeamNone.
func ParseTeam(name string) (Team, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return TeamNone, nil
	}
	for team, n := range teamNames {
		if n == name {
			return team, nil
		}
	}
	return TeamNone, fmt.Errorf("unknown team %q", name)
}

// Hostile reports whether a and b are on opposing sides. Neutral entities
// are hostile to nobody.
func Hostile(a, b Team) bool {
	return a != TeamNone && b != TeamNone && a != b
}

// Health tracks hit points.
type Health struct {
	Value      float64
	Max        float64
	Invincible bool
}

// NewHealth returns full health of maxHP points.
func NewHealth(maxHP float64) *Health {
	return &Health{Value: maxHP, Max: maxHP}
}

// TakeDamage subtracts amount, clamping at zero, and returns the damage
// actually applied. Invincible health is unchanged.
func (h *Health) TakeDamage(amount float64) float64 {
	if h.Invincible || amount <= 0 {
		return 0
	}
	applied := min(amount, h.Value)
	h.Value -= applied
	return applied
}

// IsAlive reports whether any hit points remain.
func (h *Health) IsAlive() bool {
	return h.Value > 0
}

// Target selects what a projectile may hit.
type Target struct {
	All  bool
	Team Team
}

// TargetAll hits everything.
var TargetAll = Target{All: true}

// TargetTeam hits members of team plus neutral obstacles.
func TargetTeam(team Team) Target {
	return Target{Team: team}
}

// Accepts reports whether an entity on team can be hit.
func (t Target) Accepts(team Team) bool {
	return t.All || team == TeamNone || team == t.Team
}

// ParseTarget maps "all" or a team name to a Target. The empty string is
// TargetAll.
func ParseTarget(name string) (Target, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "all" {
		return TargetAll, nil
	}
	team, err := ParseTeam(name)
	if err != nil {
		return Target{}, err
	}
	return TargetTeam(team), nil
}

// Piercing limits.
const (
	PiercingNone = 0
	PiercingAll  = -1
)

// Projectile deals damage on contact. It passes through up to Piercing
// targets after the first, hits each entity at most once, and expires
// after travelling Range. A zero Range never expires.
type Projectile struct {
	Damage   float64
	Target   Target
	Piercing int
	Range    float64

	traveled float64
	hits     map[uint64]struct{}
	alive    bool
}

// NewProjectile creates a live projectile.
func NewProjectile(damage float64, target Target, piercing int, rng float64) *Projectile {
	return &Projectile{
		Damage:   damage,
		Target:   target,
		Piercing: piercing,
		Range:    rng,
		hits:     make(map[uint64]struct{}),
		alive:    true,
	}
}

// Alive reports whether the projectile can still hit anything.
func (p *Projectile) Alive() bool {
	return p.alive
}

// Hits returns the number of entities hit so far.
func (p *Projectile) Hits() int {
	return len(p.hits)
}

// Traveled returns the distance covered so far.
func (p *Projectile) Traveled() float64 {
	return p.traveled
}

// CanHit reports whether id on team would be hit now.
func (p *Projectile) CanHit(id uint64, team Team) bool {
	if !p.alive || !p.Target.Accepts(team) {
		return false
	}
	_, seen := p.hits[id]
	return !seen
}

// RegisterHit records a hit on id and reports whether the projectile is
// still alive afterwards.
func (p *Projectile) RegisterHit(id uint64) bool {
	if p.hits == nil {
		p.hits = make(map[uint64]struct{})
	}
	p.hits[id] = struct{}{}
	if p.Piercing != PiercingAll && len(p.hits) > p.Piercing {
		p.alive = false
	}
	return p.alive
}

// Travel adds distance and reports whether the projectile is still alive.
func (p *Projectile) Travel(distance float64) bool {
	p.traveled += distance
	if p.Range > 0 && p.traveled >= p.Range {
		p.alive = false
	}
	return p.alive
}

// Expire kills the projectile.
func (p *Projectile) Expire() {
	p.alive = false
}
