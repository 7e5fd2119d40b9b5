package qapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/facette/natsort"
	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
)

// PackageName is the name of a package, as used in specs, dependency edges,
// and database queries.
//
// Must not contain '@', '%', '^', or whitespace.
type PackageName string

// VariantName names a build variant of a package (e.g. "shared", "mpi").
type VariantName string

// PackageHash is the canonical content hash of an installed package.
// It is a CID computed over the package's PackageIdent representation,
// so two records with the same identity always carry the same hash,
// regardless of install metadata.
type PackageHash string

// Short returns an abbreviated form of the hash for human-facing listings.
// The tail of the string is used because CIDs share a long common prefix.
func (h PackageHash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[len(h)-8:])
}

// DepEdge describes one dependency relationship of a package:
// which package is depended on is the map key where this appears;
// the edge itself carries the dependency types of the relationship.
type DepEdge struct {
	Deptypes []string
}

// PackageIdent is the identity of a package: everything that participates
// in the canonical content hash. Install metadata lives on PackageRecord
// instead, so that reinstalling the same package yields the same hash.
type PackageIdent struct {
	Name     string
	Version  string
	Compiler string
	Variants struct {
		Keys   []VariantName
		Values map[VariantName]string
	}
	Dependencies struct {
		Keys   []PackageName
		Values map[PackageName]DepEdge
	}
}

// PackageRecord is one entry of the installed-package database.
type PackageRecord struct {
	Ident     PackageIdent
	InstallID string
	Installed bool
	Tags      []string
}

// SetVariant records a variant setting, keeping key order stable.
func (ident *PackageIdent) SetVariant(name VariantName, value string) {
	if ident.Variants.Values == nil {
		ident.Variants.Values = map[VariantName]string{}
	}
	if _, exists := ident.Variants.Values[name]; !exists {
		ident.Variants.Keys = append(ident.Variants.Keys, name)
	}
	ident.Variants.Values[name] = value
}

// AddDependency records a dependency edge, keeping key order stable.
// Calling it again for the same name replaces the edge.
func (ident *PackageIdent) AddDependency(name PackageName, deptypes ...string) {
	if ident.Dependencies.Values == nil {
		ident.Dependencies.Values = map[PackageName]DepEdge{}
	}
	if _, exists := ident.Dependencies.Values[name]; !exists {
		ident.Dependencies.Keys = append(ident.Dependencies.Keys, name)
	}
	ident.Dependencies.Values[name] = DepEdge{Deptypes: deptypes}
}

// VariantString renders the variant settings in key order, in spec syntax.
func (ident *PackageIdent) VariantString() string {
	var sb strings.Builder
	for _, k := range ident.Variants.Keys {
		v := ident.Variants.Values[k]
		switch v {
		case "true":
			fmt.Fprintf(&sb, "+%s", k)
		case "false":
			fmt.Fprintf(&sb, "~%s", k)
		default:
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s=%s", k, v)
		}
	}
	return sb.String()
}

func (ident *PackageIdent) String() string {
	var sb strings.Builder
	sb.WriteString(ident.Name)
	if ident.Version != "" {
		fmt.Fprintf(&sb, "@%s", ident.Version)
	}
	if ident.Compiler != "" {
		fmt.Fprintf(&sb, "%%%s", ident.Compiler)
	}
	if vs := ident.VariantString(); vs != "" {
		sb.WriteString(vs)
	}
	return sb.String()
}

// Cid computes the canonical content hash of the package identity.
func (ident *PackageIdent) Cid() PackageHash {
	nIdent := bindnode.Wrap(ident, TypeSystem.TypeByName("PackageIdent"))

	lsys := cidlink.DefaultLinkSystem()
	lnk, errRaw := lsys.ComputeLink(cidlink.LinkPrototype{Prefix: cid.Prefix{
		Version:  1,    // Usually '1'.
		Codec:    0x71, // 0x71 means "dag-cbor" -- See the multicodecs table: https://github.com/multiformats/multicodec/
		MhType:   0x13, // 0x13 means "sha2-512" -- See the multicodecs table: https://github.com/multiformats/multicodec/
		MhLength: 64,   // sha2-512 hash has a 64-byte sum.
	}}, nIdent.(schema.TypedNode).Representation())
	if errRaw != nil {
		// panic! this should never fail unless IPLD is broken
		panic(fmt.Sprintf("Fatal IPLD Error: lsys.ComputeLink failed for PackageIdent: %s", errRaw))
	}
	return PackageHash(lnk.String())
}

// Hash returns the canonical content hash of the record's identity.
func (rec *PackageRecord) Hash() PackageHash {
	return rec.Ident.Cid()
}

// IdentLess is the natural total order over package identities:
// name first, then version in natural (version-aware) order,
// then variants, then compiler. It is used whenever query results
// are returned as a sorted sequence.
func IdentLess(a, b *PackageIdent) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Version != b.Version {
		return natsort.Compare(a.Version, b.Version)
	}
	if av, bv := a.VariantString(), b.VariantString(); av != bv {
		return av < bv
	}
	return a.Compiler < b.Compiler
}

// SortRecords sorts records by the natural total order of their identities.
func SortRecords(recs []*PackageRecord) {
	sort.Slice(recs, func(i, j int) bool {
		return IdentLess(&recs[i].Ident, &recs[j].Ident)
	})
}

// Filters narrow an installed-package database query.
//
// Hashes and Scope are both hash restrictions: Hashes is meant for
// caller-supplied restrictions, while Scope carries restrictions derived from
// an active environment. A nil slice is no restriction; a non-nil empty slice
// is a restriction that matches nothing. The argument core passes both
// through untouched; how they combine is owned by the database layer
// (see pkg/store).
type Filters struct {
	Hashes    []PackageHash
	Scope     []PackageHash
	Installed *bool
	Tags      []string
}
