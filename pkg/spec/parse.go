// Package spec parses package-spec expressions from command-line tokens.
//
// A spec expression names a package and optionally constrains it:
//
//	zlib@1.2: +shared ~static opts=small %gcc@12 ^cmake
//
// Tokens are parsed as one stream: a token that starts with a name begins a
// new spec, and modifier tokens ('@version', '%compiler', '+variant',
// '~variant', 'key=value', '^dependency') attach to the spec under
// construction. A modifier with no spec under construction begins an
// anonymous spec, which constrains any package name.
package spec

import (
	"strings"

	"github.com/quarrytools/quarry/qapi"
)

// Parse parses command-line tokens into zero or more unresolved specs.
// An empty token list parses to an empty result, not an error.
//
// Errors:
//
//    - quarry-error-spec-parse -- when a token is not well-formed spec syntax
func Parse(tokens []string) ([]qapi.Spec, error) {
	text := strings.TrimSpace(strings.Join(tokens, " "))
	if text == "" {
		return nil, nil
	}
	var specs []qapi.Spec
	var cur *qapi.Spec
	flush := func() {
		if cur != nil {
			specs = append(specs, *cur)
			cur = nil
		}
	}
	ensure := func() *qapi.Spec {
		if cur == nil {
			cur = &qapi.Spec{}
		}
		return cur
	}

	for _, word := range strings.Fields(text) {
		w := word
		for len(w) > 0 {
			switch w[0] {
			case '@':
				version, rest := scanVersion(w[1:])
				if version == "" {
					return nil, qapi.ErrorSpecParse(word, "expected a version after '@'")
				}
				s := ensure()
				if s.Version != "" {
					return nil, qapi.ErrorSpecParse(word, "spec already has a version")
				}
				s.Version = version
				w = rest
			case '%':
				name, rest := scanName(w[1:])
				if name == "" {
					return nil, qapi.ErrorSpecParse(word, "expected a compiler name after '%'")
				}
				s := ensure()
				if s.Compiler != "" {
					return nil, qapi.ErrorSpecParse(word, "spec already has a compiler")
				}
				s.Compiler = name
				w = rest
				if strings.HasPrefix(w, "@") {
					version, rest := scanVersion(w[1:])
					if version == "" {
						return nil, qapi.ErrorSpecParse(word, "expected a compiler version after '@'")
					}
					s.CompilerVersion = version
					w = rest
				}
			case '+', '~':
				enabled := "true"
				if w[0] == '~' {
					enabled = "false"
				}
				name, rest := scanName(w[1:])
				if name == "" {
					return nil, qapi.ErrorSpecParse(word, "expected a variant name after '"+string(w[0])+"'")
				}
				ensure().SetVariant(name, enabled)
				w = rest
			case '^':
				name, rest := scanName(w[1:])
				if name == "" {
					return nil, qapi.ErrorSpecParse(word, "expected a package name after '^'")
				}
				if rest != "" {
					return nil, qapi.ErrorSpecParse(word, "dependency constraints may only name a package")
				}
				s := ensure()
				s.Deps = append(s.Deps, name)
				w = rest
			default:
				name, rest := scanName(w)
				if name == "" {
					return nil, qapi.ErrorSpecParse(word, "unexpected character "+string(w[0]))
				}
				if strings.HasPrefix(rest, "=") {
					value, valueRest := scanValue(rest[1:])
					if value == "" {
						return nil, qapi.ErrorSpecParse(word, "expected a value after '='")
					}
					ensure().SetVariant(name, value)
					w = valueRest
					continue
				}
				// A bare name begins a new spec.
				flush()
				cur = &qapi.Spec{Name: name}
				w = rest
			}
		}
	}
	flush()
	return specs, nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.'
}

// scanName consumes a package, compiler, or variant name.
func scanName(s string) (name, rest string) {
	i := 0
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// scanVersion consumes a version or version range; ':' marks range bounds.
func scanVersion(s string) (version, rest string) {
	i := 0
	for i < len(s) && (isNameByte(s[i]) || s[i] == ':') {
		i++
	}
	return s[:i], s[i:]
}

// scanValue consumes a variant value, which ends at the next modifier.
func scanValue(s string) (value, rest string) {
	i := 0
	for i < len(s) && !strings.ContainsRune("@%+~^", rune(s[i])) {
		i++
	}
	return s[:i], s[i:]
}
