package qapi

import (
	"fmt"
	"strings"

	"github.com/facette/natsort"
)

// Spec is an unresolved package query: the parsed form of a constraint
// expression like "zlib@1.2: +shared %gcc ^cmake".
// Empty fields mean "unconstrained". A Spec with an empty Name is anonymous
// and constrains only version, compiler, variants, or dependencies.
type Spec struct {
	Name            string
	Version         string // exact version or range ("1.2", "1.2:", ":2.0", "1.2:2.0")
	Compiler        string
	CompilerVersion string
	Variants        map[string]string // "true"/"false" for +name/~name, else literal value
	Deps            []string          // names required among the package's dependencies
}

func (s *Spec) String() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	if s.Version != "" {
		fmt.Fprintf(&sb, "@%s", s.Version)
	}
	if s.Compiler != "" {
		fmt.Fprintf(&sb, "%%%s", s.Compiler)
		if s.CompilerVersion != "" {
			fmt.Fprintf(&sb, "@%s", s.CompilerVersion)
		}
	}
	for k, v := range s.Variants {
		switch v {
		case "true":
			fmt.Fprintf(&sb, "+%s", k)
		case "false":
			fmt.Fprintf(&sb, "~%s", k)
		default:
			fmt.Fprintf(&sb, " %s=%s", k, v)
		}
	}
	for _, d := range s.Deps {
		fmt.Fprintf(&sb, " ^%s", d)
	}
	return sb.String()
}

// SetVariant records a variant constraint.
func (s *Spec) SetVariant(name, value string) {
	if s.Variants == nil {
		s.Variants = map[string]string{}
	}
	s.Variants[name] = value
}

// Matches reports whether an installed package identity satisfies this query.
func (s *Spec) Matches(ident *PackageIdent) bool {
	if s.Name != "" && s.Name != ident.Name {
		return false
	}
	if !VersionSatisfies(s.Version, ident.Version) {
		return false
	}
	if s.Compiler != "" {
		name, version := ident.Compiler, ""
		if i := strings.IndexByte(ident.Compiler, '@'); i >= 0 {
			name, version = ident.Compiler[:i], ident.Compiler[i+1:]
		}
		if s.Compiler != name {
			return false
		}
		if !VersionSatisfies(s.CompilerVersion, version) {
			return false
		}
	}
	for k, v := range s.Variants {
		if ident.Variants.Values[VariantName(k)] != v {
			return false
		}
	}
	for _, d := range s.Deps {
		if _, ok := ident.Dependencies.Values[PackageName(d)]; !ok {
			return false
		}
	}
	return true
}

// VersionSatisfies reports whether an actual version satisfies a version
// constraint. An empty constraint matches anything. A constraint containing
// ':' is an inclusive range with optional bounds. A plain constraint matches
// itself and any more specific version of itself, so "1.2" matches "1.2.13".
// Comparison of bounds is natural order, so "1.10" sorts after "1.9".
func VersionSatisfies(constraint, actual string) bool {
	if constraint == "" {
		return true
	}
	if i := strings.IndexByte(constraint, ':'); i >= 0 {
		lo, hi := constraint[:i], constraint[i+1:]
		if lo != "" && natsort.Compare(actual, lo) {
			return false
		}
		if hi != "" && natsort.Compare(hi, actual) && !versionWithin(hi, actual) {
			return false
		}
		return true
	}
	return versionWithin(constraint, actual)
}

// versionWithin reports whether actual is the given version or a point
// release of it.
func versionWithin(version, actual string) bool {
	return actual == version || strings.HasPrefix(actual, version+".")
}
