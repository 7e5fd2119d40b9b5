package args

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/quarrytools/quarry/qapi"
)

// Registry maps argument names to builder functions. It is populated during
// process initialization and read-only afterwards; registration is guarded
// by a lock, lookups share it. Builder functions are invoked fresh on every
// attachment, which is what keeps computed defaults current.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]func() *Builder
	attached map[*cli.Command][]*Builder
	ext      *Externals
}

// NewRegistry returns an empty registry bound to the given collaborators.
func NewRegistry(ext *Externals) *Registry {
	return &Registry{
		builders: map[string]func() *Builder{},
		attached: map[*cli.Command][]*Builder{},
		ext:      ext,
	}
}

// Register stores a builder function under a name, silently overwriting any
// prior entry. Registration happens once at initialization, never
// concurrently with command execution.
func (r *Registry) Register(name string, fn func() *Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = fn
}

// Names returns every registered argument name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attach extends a command with the named arguments, in the order given.
// Each name's builder runs fresh; flags are appended to the command's flag
// list, positionals are recorded for Bind and rendered into the command's
// args usage string.
//
// Errors:
//
//    - quarry-error-unknown-argument -- when a name was never registered
func (r *Registry) Attach(cmd *cli.Command, names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		fn, ok := r.builders[name]
		if !ok {
			return qapi.ErrorUnknownArgument(name, cmd.Name)
		}
		b := fn()
		if b.Positional {
			cmd.ArgsUsage = joinArgsUsage(cmd.ArgsUsage, positionalUsage(b))
		} else {
			cmd.Flags = append(cmd.Flags, renderFlag(b))
		}
		r.attached[cmd] = append(r.attached[cmd], b)
	}
	return nil
}

// MustAttach is Attach for initialization paths where a failure means the
// command table itself is broken.
func (r *Registry) MustAttach(cmd *cli.Command, names ...string) {
	if err := r.Attach(cmd, names...); err != nil {
		panic(err)
	}
}

// Bind turns the parsed command line into a namespace: positional tokens are
// consumed in attachment order, absent arguments get their computed
// defaults, and parsing actions fire for every value that was supplied.
//
// Errors:
//
//    - quarry-error-argument -- when a required positional is missing
//    - quarry-error-invalid-job-count -- from the job-count action
//    - quarry-error-deptype -- from deptype canonicalization
func (r *Registry) Bind(c *cli.Context) (*Namespace, error) {
	r.mu.RLock()
	builders := r.attached[c.Command]
	r.mu.RUnlock()

	ns := NewNamespace()
	rest := c.Args().Slice()

	type consumed struct {
		b      *Builder
		option string
		raw    interface{}
	}
	var fired []consumed

	for _, b := range builders {
		if b.Positional {
			raw, remaining, err := takePositional(b, rest, c.Command.Name)
			if err != nil {
				return nil, err
			}
			rest = remaining
			fired = append(fired, consumed{b, b.metaVar(), raw})
			continue
		}
		if !c.IsSet(b.Name) {
			applyDefault(ns, b, r.ext)
			continue
		}
		fired = append(fired, consumed{b, "--" + b.Name, flagValue(c, b)})
	}

	// Supplied values bind after defaults, so an explicit value always wins
	// over another argument's default on the same destination.
	for _, f := range fired {
		if f.b.Action != nil {
			ac := &ActionContext{Namespace: ns, Builder: f.b, Option: f.option, Ext: r.ext}
			if err := f.b.Action.OnValueConsumed(ac, f.raw); err != nil {
				return nil, err
			}
			continue
		}
		ns.Set(f.b.destination(), f.raw)
	}
	return ns, nil
}

func applyDefault(ns *Namespace, b *Builder, ext *Externals) {
	if b.Default != nil {
		ns.Set(b.destination(), b.Default(ext))
		return
	}
	switch b.Kind {
	case Bool:
		ns.Set(b.destination(), false)
	case Int:
		ns.Set(b.destination(), 0)
	case String:
		ns.Set(b.destination(), "")
	case StringSlice:
		ns.Set(b.destination(), []string(nil))
	}
}

func flagValue(c *cli.Context, b *Builder) interface{} {
	switch b.Kind {
	case Bool:
		v := c.Bool(b.Name)
		if b.Invert {
			v = !v
		}
		return v
	case Int:
		return c.Int(b.Name)
	case String:
		return c.String(b.Name)
	case StringSlice:
		return c.StringSlice(b.Name)
	default:
		panic(fmt.Sprintf("unhandled argument kind %d", b.Kind))
	}
}

func takePositional(b *Builder, rest []string, commandName string) (interface{}, []string, error) {
	switch b.Arity {
	case One:
		if len(rest) == 0 {
			return nil, nil, missingPositional(b, commandName)
		}
		return rest[0], rest[1:], nil
	case OneOrMore:
		if len(rest) == 0 {
			return nil, nil, missingPositional(b, commandName)
		}
		return rest, nil, nil
	case Remainder:
		return rest, nil, nil
	default:
		panic(fmt.Sprintf("unhandled positional arity %d", b.Arity))
	}
}

func missingPositional(b *Builder, commandName string) error {
	return serum.Error(qapi.ECodeArgument,
		serum.WithMessageTemplate("command {{command|q}} expects argument {{metavar|q}}"),
		serum.WithDetail("command", commandName),
		serum.WithDetail("metavar", b.metaVar()),
	)
}

func renderFlag(b *Builder) cli.Flag {
	switch b.Kind {
	case Bool:
		return &cli.BoolFlag{Name: b.Name, Aliases: b.Aliases, Usage: b.Usage}
	case Int:
		return &cli.IntFlag{Name: b.Name, Aliases: b.Aliases, Usage: b.Usage}
	case String:
		return &cli.StringFlag{Name: b.Name, Aliases: b.Aliases, Usage: b.Usage}
	case StringSlice:
		return &cli.StringSliceFlag{Name: b.Name, Aliases: b.Aliases, Usage: b.Usage}
	default:
		panic(fmt.Sprintf("unhandled argument kind %d", b.Kind))
	}
}

func positionalUsage(b *Builder) string {
	mv := b.metaVar()
	switch b.Arity {
	case One:
		return "<" + mv + ">"
	case OneOrMore:
		return "<" + mv + ">..."
	default:
		return "[" + mv + " ...]"
	}
}

func joinArgsUsage(existing, add string) string {
	if existing == "" {
		return add
	}
	return strings.TrimRight(existing, " ") + " " + add
}
