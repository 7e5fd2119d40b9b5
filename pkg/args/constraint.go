package args

import (
	"github.com/quarrytools/quarry/qapi"
)

// ConstraintAction captures raw constraint tokens from the command line.
// It stores the tokens under "constraint" and installs a ConstraintQuery
// under "specs". Nothing is parsed and no collaborator is touched while the
// command line is being consumed: constraint evaluation may depend on state
// (the active environment) that is only established once the command begins
// executing, so all of that is deferred into the query object.
type ConstraintAction struct{}

func (ConstraintAction) OnValueConsumed(ac *ActionContext, raw interface{}) error {
	tokens := raw.([]string)
	ac.Namespace.Set("constraint", tokens)
	ac.Namespace.Set("specs", &ConstraintQuery{tokens: tokens, ext: ac.Ext})
	return nil
}

// ConstraintQuery is the deferred query bound to the constraint tokens
// captured at parse time. It is safe to resolve any number of times; results
// reflect the database state at each call.
type ConstraintQuery struct {
	tokens []string
	ext    *Externals
}

// Tokens returns the raw constraint tokens the query was built from.
func (q *ConstraintQuery) Tokens() []string {
	return q.tokens
}

// Resolve parses the captured tokens and runs them against the
// installed-package database.
//
// If an environment is active, its installed hash set is added to the
// filters as a scope restriction, even when the environment has nothing
// installed — an empty environment restricts the result to nothing. A
// caller-supplied hash restriction is passed through alongside it, and the
// database layer owns how the two combine. An empty token list resolves to
// the full filtered query result.
// Otherwise each parsed spec is queried separately and matches are merged by
// canonical content hash, so a package matched by two constraint
// expressions is returned once. Results come back in the specs' natural
// total order.
//
// Note that malformed constraint tokens surface here, not at parse time.
//
// Errors:
//
//    - quarry-error-spec-parse -- when a captured token is not well-formed spec syntax
//    - quarry-error-io -- when the database cannot be read
func (q *ConstraintQuery) Resolve(f qapi.Filters) ([]*qapi.PackageRecord, error) {
	qspecs, err := q.ext.Specs(q.tokens)
	if err != nil {
		return nil, err
	}

	if env := q.ext.ActiveEnv(); env != nil {
		f.Scope = env.InstalledHashes()
	}

	// Everything, for an empty query.
	if len(qspecs) == 0 {
		return q.ext.DB.Query(nil, f)
	}

	merged := map[qapi.PackageHash]*qapi.PackageRecord{}
	for i := range qspecs {
		recs, err := q.ext.DB.Query(&qspecs[i], f)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			merged[rec.Hash()] = rec
		}
	}
	out := make([]*qapi.PackageRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	qapi.SortRecords(out)
	return out, nil
}
