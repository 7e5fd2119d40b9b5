package args

import (
	"github.com/quarrytools/quarry/qapi"
)

// The argument core orchestrates several larger subsystems but consumes each
// through a narrow interface, declared here. Production wiring lives in
// DefaultExternals; tests substitute fakes.

// ConfigStore is the slice of the layered configuration system the argument
// core needs: typed reads with fallbacks, and writes into a named scope.
type ConfigStore interface {
	GetInt(key string, fallback int) int
	GetBool(key string, fallback bool) bool
	Set(key string, value interface{}, scope string) error
}

// SpecParser parses raw constraint tokens into unresolved spec queries.
//
// Errors:
//
//    - quarry-error-spec-parse -- when a token is not well-formed spec syntax
type SpecParser func(tokens []string) ([]qapi.Spec, error)

// Database is the installed-package database's query entrypoint.
// A nil spec queries everything; filter combination semantics belong to the
// database layer.
type Database interface {
	Query(q *qapi.Spec, f qapi.Filters) ([]*qapi.PackageRecord, error)
}

// Environment is an active environment's installed subset.
type Environment interface {
	InstalledHashes() []qapi.PackageHash
}

// EnvironmentSource reports the active environment, or nil when none is
// active. Implementations must return a nil interface, not a typed nil.
type EnvironmentSource func() Environment

// Externals bundles the collaborators the parsing actions reach out to.
type Externals struct {
	Config      ConfigStore
	Specs       SpecParser
	DB          Database
	ActiveEnv   EnvironmentSource
	Parallelism func() int // hardware concurrency; always reports >= 1
}
