// Package config loads component configuration structs from environment
// variables. Each component declares its own struct with `env` tags; the
// process entry point loads them once and passes them into constructors.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("config: nil pointer provided")

	// ErrParsing is returned when environment variables cannot be parsed
	// into the destination struct.
	ErrParsing = errors.New("config: failed to parse environment")
)

var dotenvOnce sync.Once

// Load parses environment variables into cfg. A .env file in the working
// directory is loaded once per process before the first parse; a missing
// file is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsing, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Used at process startup
// where a missing required variable should prevent the service from coming up.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
