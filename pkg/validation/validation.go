// Package validation checks user-authored scene content: entity names,
// team names and movement scripts.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for scene content.
const (
	MaxEntityNameLen = 32
	MaxScriptLen     = 4 * 1024
	MaxWorldSize     = 1e6
)

// Allow alphanumerics, spaces, hyphens, underscores and dots in names.
var validEntityNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// ValidateEntityName validates and trims an entity name.
func ValidateEntityName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("entity name cannot be empty")
	}

	if len(name) > MaxEntityNameLen {
		return "", fmt.Errorf("entity name too long: %d characters (max %d)", len(name), MaxEntityNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("entity name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("entity name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("entity name contains control characters")
		}
	}

	if !validEntityNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("entity name contains invalid characters (only alphanumeric, spaces, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// ValidateScript checks a movement script's size and encoding. Compilation
// errors are reported later, when the script is loaded.
func ValidateScript(source string) error {
	if len(source) > MaxScriptLen {
		return fmt.Errorf("script too long: %d bytes (max %d)", len(source), MaxScriptLen)
	}

	if !utf8.ValidString(source) {
		return fmt.Errorf("script contains invalid UTF-8 characters")
	}

	for _, r := range source {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return fmt.Errorf("script contains control character %U", r)
		}
	}

	return nil
}

// ValidateTeam checks a team name against the allowed set. An empty name
// is accepted and means no team.
func ValidateTeam(team string, allowed ...string) error {
	if team == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(team, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid team %q (must be one of %s)", team, strings.Join(allowed, ", "))
}

// ValidatePiercing checks a projectile's piercing count. -1 means
// unlimited.
func ValidatePiercing(piercing int) error {
	if piercing < -1 {
		return fmt.Errorf("invalid piercing: %d (must be -1 or non-negative)", piercing)
	}
	return nil
}

// ValidateWorldSize checks that the world is large enough to hold a grid
// cell and small enough to keep cell coordinates meaningful.
func ValidateWorldSize(size float64) error {
	if math.IsNaN(size) || size <= 0 {
		return fmt.Errorf("world size must be positive, got %v", size)
	}
	if size > MaxWorldSize {
		return fmt.Errorf("world size too large: %v (max %v)", size, MaxWorldSize)
	}
	return nil
}

// ValidateFinite checks that a coordinate is a real number.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %v", name, v)
	}
	return nil
}
