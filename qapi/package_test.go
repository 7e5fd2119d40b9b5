package qapi

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func ident(name, version string) *PackageIdent {
	return &PackageIdent{Name: name, Version: version}
}

func TestPackageHashShort(t *testing.T) {
	qt.Check(t, PackageHash("abc").Short(), qt.Equals, "abc")
	qt.Check(t, PackageHash("12345678").Short(), qt.Equals, "12345678")
	qt.Check(t, PackageHash("bafyrgqabcdefgh").Short(), qt.Equals, "abcdefgh")
}

func TestCidIsStableAndDiscriminates(t *testing.T) {
	a := ident("zlib", "1.2.13")
	a.SetVariant("shared", "true")
	b := ident("zlib", "1.2.13")
	b.SetVariant("shared", "true")
	qt.Check(t, a.Cid(), qt.Equals, b.Cid())
	qt.Check(t, strings.HasPrefix(string(a.Cid()), "baf"), qt.IsTrue)

	c := ident("zlib", "1.2.13")
	c.SetVariant("shared", "false")
	qt.Check(t, a.Cid(), qt.Not(qt.Equals), c.Cid())

	d := ident("zlib", "1.2.13")
	d.SetVariant("shared", "true")
	d.AddDependency("cmake", "build")
	qt.Check(t, a.Cid(), qt.Not(qt.Equals), d.Cid())
}

func TestVariantString(t *testing.T) {
	id := ident("hdf5", "1.12.2")
	qt.Check(t, id.VariantString(), qt.Equals, "")

	id.SetVariant("mpi", "true")
	id.SetVariant("shared", "false")
	id.SetVariant("api", "v112")
	qt.Check(t, id.VariantString(), qt.Equals, "+mpi~shared api=v112")

	// replacing a value keeps the original key position
	id.SetVariant("mpi", "false")
	qt.Check(t, id.VariantString(), qt.Equals, "~mpi~shared api=v112")
}

func TestIdentString(t *testing.T) {
	id := ident("hdf5", "1.12.2")
	id.Compiler = "gcc"
	id.SetVariant("mpi", "true")
	qt.Check(t, id.String(), qt.Equals, "hdf5@1.12.2%gcc+mpi")
}

func TestSortRecords(t *testing.T) {
	recs := []*PackageRecord{
		{Ident: *ident("zlib", "1.10")},
		{Ident: *ident("zlib", "1.9")},
		{Ident: *ident("cmake", "3.24.3")},
		{Ident: *ident("zlib", "1.2.13")},
	}
	SortRecords(recs)
	got := make([]string, len(recs))
	for i, rec := range recs {
		got[i] = rec.Ident.Name + "@" + rec.Ident.Version
	}
	qt.Check(t, got, qt.DeepEquals, []string{
		"cmake@3.24.3", "zlib@1.2.13", "zlib@1.9", "zlib@1.10",
	})
}

func TestIdentLessTieBreaks(t *testing.T) {
	a := ident("zlib", "1.2.13")
	a.SetVariant("shared", "true")
	b := ident("zlib", "1.2.13")
	b.SetVariant("shared", "false")
	// "+shared" sorts before "~shared"
	qt.Check(t, IdentLess(a, b), qt.IsTrue)
	qt.Check(t, IdentLess(b, a), qt.IsFalse)

	c := ident("zlib", "1.2.13")
	c.Compiler = "clang"
	d := ident("zlib", "1.2.13")
	d.Compiler = "gcc"
	qt.Check(t, IdentLess(c, d), qt.IsTrue)
}
