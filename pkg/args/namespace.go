package args

// Namespace is the record populated by binding parsed command-line values.
// Fields are named by each argument's destination. It is the artifact handed
// to command logic; it holds no reference to the parser.
type Namespace struct {
	vals map[string]interface{}
}

func NewNamespace() *Namespace {
	return &Namespace{vals: map[string]interface{}{}}
}

// Set stores a value under a destination name.
func (ns *Namespace) Set(dest string, v interface{}) {
	ns.vals[dest] = v
}

// Value returns the raw value under a destination name.
func (ns *Namespace) Value(dest string) (interface{}, bool) {
	v, ok := ns.vals[dest]
	return v, ok
}

func (ns *Namespace) Bool(dest string) bool {
	v, _ := ns.vals[dest].(bool)
	return v
}

func (ns *Namespace) Int(dest string) int {
	v, _ := ns.vals[dest].(int)
	return v
}

func (ns *Namespace) String(dest string) string {
	v, _ := ns.vals[dest].(string)
	return v
}

func (ns *Namespace) Strings(dest string) []string {
	v, _ := ns.vals[dest].([]string)
	return v
}

// Specs returns the deferred constraint query installed by the constraint
// argument, or nil if the namespace has none.
func (ns *Namespace) Specs() *ConstraintQuery {
	q, _ := ns.vals["specs"].(*ConstraintQuery)
	return q
}
