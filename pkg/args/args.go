// Package args is the shared argument-definition registry for quarry
// commands. Commands pull named argument definitions out of a process-wide
// registry instead of redefining flags; a few of those arguments carry
// parsing actions that validate, transform, or defer work until the command
// body asks for it.
package args

// Kind is the value type an argument carries.
type Kind int

const (
	Bool Kind = iota
	Int
	String
	StringSlice
)

// Arity is how many command-line tokens a positional argument consumes.
type Arity int

const (
	One       Arity = iota // exactly one token
	OneOrMore              // at least one token
	Remainder              // every remaining token, possibly none
)

// Builder is pure data describing one argument definition: either an
// optional flag or a positional. Builders are produced fresh by registered
// builder functions on every lookup, so defaults that depend on external
// state are recomputed per attachment.
type Builder struct {
	Name       string   // flag name, or positional destination
	Aliases    []string // short flag aliases
	Positional bool
	Arity      Arity // positional arity; ignored for flags
	Kind       Kind
	Usage      string
	MetaVar    string // display name in help; defaults to Name
	Dest       string // namespace destination; defaults to Name
	Invert     bool   // for bool flags: setting the flag stores false

	// Default computes the value bound when the argument is absent.
	// It runs at bind time, never earlier, so external state (config,
	// hardware) is read when it is current. Nil means the Kind's zero value.
	Default func(ext *Externals) interface{}

	// Action, when set, consumes the raw parsed value instead of the
	// default store-into-namespace behavior.
	Action Action
}

// destination returns the namespace field this argument binds.
func (b *Builder) destination() string {
	if b.Dest != "" {
		return b.Dest
	}
	return b.Name
}

// metaVar returns the help display name for a positional.
func (b *Builder) metaVar() string {
	if b.MetaVar != "" {
		return b.MetaVar
	}
	return b.Name
}

// Action is a parsing action: logic that fires when the parser consumes an
// argument's value. Implementations write their results into the namespace
// themselves, and may touch external collaborators (config writes, deferred
// query construction).
type Action interface {
	OnValueConsumed(ac *ActionContext, raw interface{}) error
}

// ActionContext carries everything an Action may consult when it fires.
type ActionContext struct {
	Namespace *Namespace
	Builder   *Builder
	Option    string // the option as a user would name it, e.g. "--jobs"
	Ext       *Externals
}
