// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables that override scene settings.
const (
	EnvTickRate     = "ARENA_TICK_RATE"
	EnvWorldSize    = "ARENA_WORLD_SIZE"
	EnvDebugOverlay = "ARENA_DEBUG_OVERLAY"
	EnvReloadDelay  = "ARENA_RELOAD_DEBOUNCE"
)

// ApplyEnvironmentOverrides overwrites scene settings with values from
// the environment. Unset variables leave the scene untouched; malformed
// values are an error.
func ApplyEnvironmentOverrides(config *SceneConfig) error {
	if v, ok := os.LookupEnv(EnvTickRate); ok {
		rate, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || rate <= 0 {
			return &ValidationError{Field: EnvTickRate, Value: v, Message: "must be a positive integer"}
		}
		config.TickRate = rate
	}

	if v, ok := os.LookupEnv(EnvWorldSize); ok {
		size, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || size <= 0 {
			return &ValidationError{Field: EnvWorldSize, Value: v, Message: "must be a positive number"}
		}
		config.WorldSize = size
	}

	if v, ok := os.LookupEnv(EnvDebugOverlay); ok {
		on, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &ValidationError{Field: EnvDebugOverlay, Value: v, Message: "must be a boolean"}
		}
		config.DebugOverlay = on
	}

	return nil
}

// ReloadDebounce returns the hot-reload debounce interval.
func ReloadDebounce() time.Duration {
	return getEnvAsDurationOrDefault(EnvReloadDelay, DefaultDebounce)
}

// ValidationError describes a single invalid setting.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s (%v): %s: %v", e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap exposes the cause, for errors.Is against sentinel errors.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}
