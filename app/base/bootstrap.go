package appbase

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quarrytools/quarry/pkg/config"
	"github.com/quarrytools/quarry/pkg/environment"
	"github.com/quarrytools/quarry/pkg/store"
)

// HomeDirEnv overrides where quarry keeps its state.
const HomeDirEnv = "QUARRY_HOME"

// ActiveEnvEnv names the environment to activate at startup.
const ActiveEnvEnv = "QUARRY_ENV"

// Bootstrap loads the on-disk state commands operate over: the user
// configuration scope, the installed-package database, and the active
// environment, all rooted at the quarry home directory. Missing files are
// not an error; a fresh home is simply empty.
//
// Errors:
//
//    - quarry-error-config -- when the user config scope cannot be loaded
//    - quarry-error-io -- when state files cannot be read
//    - quarry-error-serialization -- when state files do not parse
func Bootstrap() error {
	home := os.Getenv(HomeDirEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil // no home directory, nothing to load
		}
		home = filepath.Join(userHome, ".quarry")
	}
	fsys := os.DirFS(home)

	if err := config.Global().LoadScopeFile(config.ScopeUser, fsys, "config.toml"); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	db, err := store.LoadDB(fsys, "db")
	switch {
	case err == nil:
		store.SetGlobal(db)
	case errors.Is(err, fs.ErrNotExist):
		// leave the empty database in place
	default:
		return err
	}

	if name := os.Getenv(ActiveEnvEnv); name != "" {
		env, err := environment.Load(fsys, filepath.Join("environments", name+".toml"))
		if err != nil {
			return err
		}
		environment.Activate(env)
	}
	return nil
}
