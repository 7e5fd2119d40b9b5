// Package environment tracks the active environment: an optional named
// workspace that restricts package queries to its installed subset.
package environment

import (
	"io/fs"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/quarrytools/quarry/qapi"
)

// Environment is a named workspace with a set of installed package hashes.
type Environment struct {
	Name   string
	hashes map[qapi.PackageHash]struct{}
}

// New builds an environment over the given installed hashes.
func New(name string, hashes ...qapi.PackageHash) *Environment {
	env := &Environment{Name: name, hashes: map[qapi.PackageHash]struct{}{}}
	for _, h := range hashes {
		env.hashes[h] = struct{}{}
	}
	return env
}

// Add marks a package hash as installed in this environment.
func (e *Environment) Add(h qapi.PackageHash) {
	e.hashes[h] = struct{}{}
}

// InstalledHashes returns the hashes of all packages installed in this
// environment, as a sorted fresh slice.
func (e *Environment) InstalledHashes() []qapi.PackageHash {
	out := make([]qapi.PackageHash, 0, len(e.hashes))
	for h := range e.hashes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// envManifest is the on-disk form of an environment.
type envManifest struct {
	Name      string   `toml:"name"`
	Installed []string `toml:"installed"`
}

// Load reads an environment manifest (TOML) from a filesystem.
//
// Errors:
//
//    - quarry-error-io -- when the manifest cannot be read
//    - quarry-error-serialization -- when the manifest is not valid TOML
func Load(fsys fs.FS, path string) (*Environment, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, qapi.ErrorIo("unable to read environment manifest", path, err)
	}
	var m envManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, qapi.ErrorSerialization("unable to parse environment manifest "+path, err)
	}
	env := New(m.Name)
	for _, h := range m.Installed {
		env.Add(qapi.PackageHash(h))
	}
	return env, nil
}

var (
	activem sync.Mutex
	active  *Environment
)

// Activate makes env the process-wide active environment.
func Activate(env *Environment) {
	activem.Lock()
	defer activem.Unlock()
	active = env
}

// Deactivate clears the active environment.
func Deactivate() {
	Activate(nil)
}

// Current returns the active environment, or nil when none is active.
func Current() *Environment {
	activem.Lock()
	defer activem.Unlock()
	return active
}
