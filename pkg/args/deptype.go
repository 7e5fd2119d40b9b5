package args

import (
	"strings"

	"github.com/quarrytools/quarry/pkg/deptype"
)

// DeptypeAction canonicalizes a comma-separated dependency-type selector.
// An empty value selects every known type, same as an absent flag. The
// single token "all" is kept as the symbolic all-types selector, which is
// distinct from enumerating every known type; the vocabulary's canonicalizer
// receives it as such. Unknown tokens are rejected by the canonicalizer, and
// that error surfaces here, at parse time.
type DeptypeAction struct{}

func (DeptypeAction) OnValueConsumed(ac *ActionContext, raw interface{}) error {
	value := raw.(string)
	if value == "" {
		ac.Namespace.Set(ac.Builder.destination(), deptype.AllTypes())
		return nil
	}
	tokens := strings.Split(value, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	sel := deptype.Select(tokens...)
	if len(tokens) == 1 && tokens[0] == "all" {
		sel = deptype.SelectAll
	}
	canonical, err := deptype.Canonical(sel)
	if err != nil {
		return err
	}
	ac.Namespace.Set(ac.Builder.destination(), canonical)
	return nil
}
