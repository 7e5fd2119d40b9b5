package args

import (
	"fmt"
	"strings"

	"github.com/quarrytools/quarry/pkg/config"
	"github.com/quarrytools/quarry/pkg/deptype"
	"github.com/quarrytools/quarry/pkg/environment"
	"github.com/quarrytools/quarry/pkg/spec"
	"github.com/quarrytools/quarry/pkg/store"
	"github.com/quarrytools/quarry/pkg/sysinfo"
	"github.com/quarrytools/quarry/qapi"
)

// globalDB resolves the process-wide database on every query, so a database
// loaded or replaced after registry construction is still the one queried.
type globalDB struct{}

func (globalDB) Query(q *qapi.Spec, f qapi.Filters) ([]*qapi.PackageRecord, error) {
	return store.Global().Query(q, f)
}

func activeEnvironment() Environment {
	if env := environment.Current(); env != nil {
		return env
	}
	return nil
}

// DefaultExternals wires the argument core to the real subsystems.
func DefaultExternals() *Externals {
	return &Externals{
		Config:      config.Global(),
		Specs:       spec.Parse,
		DB:          globalDB{},
		ActiveEnv:   activeEnvironment,
		Parallelism: sysinfo.AvailableParallelism,
	}
}

// Default is the process-wide registry every quarry command attaches from.
// It is populated once, during package initialization.
var Default = NewRegistry(DefaultExternals())

func init() {
	RegisterCommon(Default)
}

// RegisterCommon fills a registry with the common argument pool shared by
// quarry commands.
func RegisterCommon(r *Registry) {
	r.Register("constraint", func() *Builder {
		return &Builder{
			Name:       "constraint",
			Positional: true,
			Arity:      Remainder,
			Kind:       StringSlice,
			MetaVar:    "installed_specs",
			Usage:      "constraint to select a subset of installed packages",
			Action:     ConstraintAction{},
		}
	})
	r.Register("package", func() *Builder {
		return &Builder{
			Name:       "package",
			Positional: true,
			Arity:      One,
			Kind:       String,
			Usage:      "package name",
		}
	})
	r.Register("packages", func() *Builder {
		return &Builder{
			Name:       "packages",
			Positional: true,
			Arity:      OneOrMore,
			Kind:       StringSlice,
			MetaVar:    "package",
			Usage:      "one or more package names",
		}
	})
	// Specs consume every remaining token: a single spec can contain spaces,
	// and variant tokens like '-mpi' would otherwise look like flags.
	r.Register("spec", func() *Builder {
		return &Builder{
			Name:       "spec",
			Positional: true,
			Arity:      Remainder,
			Kind:       StringSlice,
			Usage:      "package spec",
		}
	})
	r.Register("specs", func() *Builder {
		return &Builder{
			Name:       "specs",
			Positional: true,
			Arity:      Remainder,
			Kind:       StringSlice,
			Usage:      "one or more package specs",
		}
	})
	r.Register("installed_spec", func() *Builder {
		return &Builder{
			Name:       "spec",
			Positional: true,
			Arity:      Remainder,
			Kind:       StringSlice,
			MetaVar:    "installed_spec",
			Usage:      "installed package spec",
		}
	})
	r.Register("installed_specs", func() *Builder {
		return &Builder{
			Name:       "specs",
			Positional: true,
			Arity:      Remainder,
			Kind:       StringSlice,
			MetaVar:    "installed_specs",
			Usage:      "one or more installed package specs",
		}
	})
	r.Register("yes_to_all", func() *Builder {
		return &Builder{
			Name:    "yes-to-all",
			Aliases: []string{"y"},
			Kind:    Bool,
			Dest:    "yes_to_all",
			Usage:   `assume "yes" is the answer to every confirmation request excluding --no-checksum`,
		}
	})
	r.Register("recurse_dependencies", func() *Builder {
		return &Builder{
			Name:    "dependencies",
			Aliases: []string{"r"},
			Kind:    Bool,
			Dest:    "recurse_dependencies",
			Usage:   "recursively traverse spec dependencies",
		}
	})
	r.Register("recurse_dependents", func() *Builder {
		return &Builder{
			Name:    "dependents",
			Aliases: []string{"R"},
			Kind:    Bool,
			Dest:    "dependents",
			Usage:   "also uninstall any packages that depend on the ones given via command line",
		}
	})
	r.Register("clean", func() *Builder {
		return &Builder{
			Name:    "clean",
			Kind:    Bool,
			Dest:    "dirty",
			Invert:  true,
			Default: configDirty,
			Usage:   "unset harmful variables in the build environment (default)",
		}
	})
	r.Register("dirty", func() *Builder {
		return &Builder{
			Name:    "dirty",
			Kind:    Bool,
			Dest:    "dirty",
			Default: configDirty,
			Usage:   "preserve user environment in the build environment (danger!)",
		}
	})
	r.Register("deptype", func() *Builder {
		return &Builder{
			Name:    "deptype",
			Kind:    String,
			Default: func(*Externals) interface{} { return deptype.AllTypes() },
			Action:  DeptypeAction{},
			Usage: fmt.Sprintf("comma-separated list of dependency types to traverse (default=%s)",
				deptypeNames()),
		}
	})
	r.Register("long", func() *Builder {
		return &Builder{
			Name:    "long",
			Aliases: []string{"l"},
			Kind:    Bool,
			Usage:   "show dependency hashes as well as versions",
		}
	})
	r.Register("very_long", func() *Builder {
		return &Builder{
			Name:    "very-long",
			Aliases: []string{"L"},
			Kind:    Bool,
			Dest:    "very_long",
			Usage:   "show full dependency hashes as well as versions",
		}
	})
	r.Register("tags", func() *Builder {
		return &Builder{
			Name:    "tags",
			Aliases: []string{"t"},
			Kind:    StringSlice,
			Usage:   "filter a package query by tags",
		}
	})
	r.Register("jobs", func() *Builder {
		return &Builder{
			Name:    "jobs",
			Aliases: []string{"j"},
			Kind:    Int,
			Default: func(ext *Externals) interface{} { return DefaultJobs(ext) },
			Action:  JobCountAction{},
			Usage:   "explicitly set number of parallel jobs",
		}
	})
	r.Register("install_status", func() *Builder {
		return &Builder{
			Name:    "install-status",
			Aliases: []string{"I"},
			Kind:    Bool,
			Dest:    "install_status",
			Usage:   "show install status of packages: installed [+], missing and needed by an installed package [-], or not installed (no annotation)",
		}
	})
	r.Register("no_checksum", func() *Builder {
		return &Builder{
			Name:    "no-checksum",
			Aliases: []string{"n"},
			Kind:    Bool,
			Dest:    "no_checksum",
			Usage:   "do not use checksums to verify downloaded files (unsafe)",
		}
	})
}

func configDirty(ext *Externals) interface{} {
	return ext.Config.GetBool("config:dirty", false)
}

func deptypeNames() string {
	all := deptype.AllTypes()
	names := make([]string, len(all))
	for i, dt := range all {
		names[i] = string(dt)
	}
	return strings.Join(names, ",")
}
