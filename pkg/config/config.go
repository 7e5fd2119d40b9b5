// Package config implements layered configuration as a priority-ordered
// stack of named scopes. Reads walk the stack from the highest-priority
// scope down; writes land in one named scope. The "command_line" scope sits
// on top, so values a user passed explicitly win over everything else.
package config

import (
	"io/fs"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/serum-errors/go-serum"

	"github.com/quarrytools/quarry/qapi"
)

// Builtin scope names, lowest priority first.
const (
	ScopeDefaults    = "defaults"
	ScopeSite        = "site"
	ScopeUser        = "user"
	ScopeCommandLine = "command_line"
)

// Scope is one named layer of configuration values.
// Values are nested string-keyed tables, as loaded from a TOML file.
type Scope struct {
	Name   string
	values map[string]interface{}
}

// NewScope returns an empty scope with the given name.
func NewScope(name string) *Scope {
	return &Scope{Name: name, values: map[string]interface{}{}}
}

func (sc *Scope) get(path []string) (interface{}, bool) {
	table := sc.values
	for i, part := range path {
		v, ok := table[part]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		table, ok = v.(map[string]interface{})
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

func (sc *Scope) set(path []string, value interface{}) {
	table := sc.values
	for _, part := range path[:len(path)-1] {
		next, ok := table[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			table[part] = next
		}
		table = next
	}
	table[path[len(path)-1]] = value
}

// Settings is a stack of scopes with single-writer/many-reader discipline.
type Settings struct {
	mu     sync.RWMutex
	scopes []*Scope // ordered lowest priority first
}

// New builds a settings stack from scopes given lowest priority first.
func New(scopes ...*Scope) *Settings {
	return &Settings{scopes: scopes}
}

// Get returns the value for a colon-separated key (e.g. "config:build_jobs")
// from the highest-priority scope that has it, or fallback if none does.
func (s *Settings) Get(key string, fallback interface{}) interface{} {
	path := splitKey(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].get(path); ok {
			return v
		}
	}
	return fallback
}

// GetInt is Get for integer values. TOML decoding produces int64, so both
// int and int64 stored values are accepted.
func (s *Settings) GetInt(key string, fallback int) int {
	switch v := s.Get(key, fallback).(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

// GetBool is Get for boolean values.
func (s *Settings) GetBool(key string, fallback bool) bool {
	if v, ok := s.Get(key, fallback).(bool); ok {
		return v
	}
	return fallback
}

// Set stores a value for a colon-separated key into the named scope.
//
// Errors:
//
//    - quarry-error-config -- when the named scope does not exist or the key is empty
func (s *Settings) Set(key string, value interface{}, scope string) error {
	path := splitKey(key)
	if len(path) == 0 || path[0] == "" {
		return serum.Error(qapi.ECodeConfig,
			serum.WithMessageLiteral("cannot set config value for empty key"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scopes {
		if sc.Name == scope {
			sc.set(path, value)
			return nil
		}
	}
	return serum.Error(qapi.ECodeConfig,
		serum.WithMessageTemplate("no configuration scope named {{scope|q}}"),
		serum.WithDetail("scope", scope),
	)
}

// LoadScopeFile reads a TOML file and replaces the contents of the named
// scope with it.
//
// Errors:
//
//    - quarry-error-config -- when the named scope does not exist
//    - quarry-error-io -- when the file cannot be read
//    - quarry-error-serialization -- when the file is not valid TOML
func (s *Settings) LoadScopeFile(scope string, fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return qapi.ErrorIo("unable to read config file", path, err)
	}
	values := map[string]interface{}{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return qapi.ErrorSerialization("unable to parse config file "+path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scopes {
		if sc.Name == scope {
			sc.values = values
			return nil
		}
	}
	return serum.Error(qapi.ECodeConfig,
		serum.WithMessageTemplate("no configuration scope named {{scope|q}}"),
		serum.WithDetail("scope", scope),
	)
}

func splitKey(key string) []string {
	return strings.Split(key, ":")
}

var (
	globalm sync.Mutex
	global  *Settings
)

// Global returns the process-wide settings stack, creating it on first use.
// The stack carries the builtin scopes; file-backed scopes are filled in by
// application startup via LoadScopeFile.
func Global() *Settings {
	globalm.Lock()
	defer globalm.Unlock()
	if global == nil {
		global = New(
			NewScope(ScopeDefaults),
			NewScope(ScopeSite),
			NewScope(ScopeUser),
			NewScope(ScopeCommandLine),
		)
	}
	return global
}
