// Package deptype holds the vocabulary of dependency relationship types
// and the canonicalization of user-supplied deptype selections.
package deptype

import (
	"strings"

	"github.com/quarrytools/quarry/qapi"
)

// DepType is a category of dependency relationship.
type DepType string

const (
	Build DepType = "build" // needed at build time only
	Link  DepType = "link"  // linked into the dependent
	Run   DepType = "run"   // needed in the runtime environment
	Test  DepType = "test"  // needed to run the dependent's tests
)

// all known types, in canonical order.
var allTypes = []DepType{Build, Link, Run, Test}

// AllTypes returns the full set of known dependency types in canonical order.
// The returned slice is a fresh copy.
func AllTypes() []DepType {
	out := make([]DepType, len(allTypes))
	copy(out, allTypes)
	return out
}

// Selector is a user-supplied deptype selection, before canonicalization.
// Exactly one of All or Tokens is meaningful: All is the symbolic
// "every dependency type" request, distinct from an enumeration that
// happens to name every type.
type Selector struct {
	All    bool
	Tokens []string
}

// SelectAll is the symbolic all-types selector.
var SelectAll = Selector{All: true}

// Select builds a selector from an enumerated token list.
func Select(tokens ...string) Selector {
	return Selector{Tokens: tokens}
}

// Canonical validates a selector against the vocabulary and returns the
// selected types deduplicated and in canonical order.
//
// Errors:
//
//    - quarry-error-deptype -- when a token is not a known dependency type
func Canonical(sel Selector) ([]DepType, error) {
	if sel.All {
		return AllTypes(), nil
	}
	chosen := map[DepType]bool{}
	for _, tok := range sel.Tokens {
		dt := DepType(tok)
		if !known(dt) {
			return nil, qapi.ErrorDeptype(tok, knownList())
		}
		chosen[dt] = true
	}
	out := make([]DepType, 0, len(chosen))
	for _, dt := range allTypes {
		if chosen[dt] {
			out = append(out, dt)
		}
	}
	return out, nil
}

// Matches reports whether a dependency edge carrying the given type strings
// is selected by the chosen types.
func Matches(chosen []DepType, edgeTypes []string) bool {
	for _, dt := range chosen {
		for _, et := range edgeTypes {
			if string(dt) == et {
				return true
			}
		}
	}
	return false
}

func known(dt DepType) bool {
	for _, t := range allTypes {
		if t == dt {
			return true
		}
	}
	return false
}

func knownList() string {
	names := make([]string, len(allTypes))
	for i, t := range allTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
