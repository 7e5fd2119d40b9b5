package args_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/quarrytools/quarry/pkg/args"
	"github.com/quarrytools/quarry/pkg/store"
	"github.com/quarrytools/quarry/qapi"
)

func seededDB(t *testing.T) *store.DB {
	t.Helper()
	db := store.NewDB()
	db.Add(makeRecord("cmake", "3.24.3"))
	db.Add(makeRecord("zlib", "1.2.13"))
	db.Add(makeRecord("zlib", "1.4.2"))
	return db
}

func recordNames(recs []*qapi.PackageRecord) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Ident.Name + "@" + rec.Ident.Version
	}
	return out
}

func TestConstraintCapturesRawTokens(t *testing.T) {
	ext, _ := testExternals(seededDB(t))
	ns, err := runParse(t, ext, []string{"constraint"}, "zlib@1.2:", "+shared")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, ns.Strings("constraint"), qt.DeepEquals, []string{"zlib@1.2:", "+shared"})
	qt.Check(t, ns.Specs(), qt.IsNotNil)
}

func TestConstraintEmptyResolvesAll(t *testing.T) {
	ext, _ := testExternals(seededDB(t))
	ns, err := runParse(t, ext, []string{"constraint"})
	qt.Assert(t, err, qt.IsNil)
	recs, err := ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recordNames(recs), qt.DeepEquals, []string{
		"cmake@3.24.3", "zlib@1.2.13", "zlib@1.4.2",
	})
}

func TestConstraintFilters(t *testing.T) {
	for _, tt := range []struct {
		name string
		argv []string
		want []string
	}{
		{name: "by-name", argv: []string{"zlib"},
			want: []string{"zlib@1.2.13", "zlib@1.4.2"}},
		{name: "by-version", argv: []string{"zlib@1.4.2"},
			want: []string{"zlib@1.4.2"}},
		{name: "by-range", argv: []string{"zlib@1.3:"},
			want: []string{"zlib@1.4.2"}},
		{name: "no-match", argv: []string{"openssl"},
			want: []string{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ext, _ := testExternals(seededDB(t))
			ns, err := runParse(t, ext, []string{"constraint"}, tt.argv...)
			qt.Assert(t, err, qt.IsNil)
			recs, err := ns.Specs().Resolve(qapi.Filters{})
			qt.Assert(t, err, qt.IsNil)
			qt.Check(t, recordNames(recs), qt.DeepEquals, tt.want)
		})
	}
}

// A package matched by more than one constraint expression comes back once.
func TestConstraintMergeDeduplicates(t *testing.T) {
	ext, _ := testExternals(seededDB(t))
	ns, err := runParse(t, ext, []string{"constraint"}, "zlib", "zlib@1.2:")
	qt.Assert(t, err, qt.IsNil)
	recs, err := ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recordNames(recs), qt.DeepEquals, []string{"zlib@1.2.13", "zlib@1.4.2"})
}

func TestConstraintScopedToActiveEnvironment(t *testing.T) {
	db := store.NewDB()
	inEnv := db.Add(makeRecord("zlib", "1.2.13"))
	db.Add(makeRecord("zlib", "1.4.2"))

	ext, _ := testExternals(db)
	ext.ActiveEnv = func() args.Environment {
		return envStub{hashes: []qapi.PackageHash{inEnv}}
	}

	ns, err := runParse(t, ext, []string{"constraint"}, "zlib")
	qt.Assert(t, err, qt.IsNil)
	recs, err := ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recordNames(recs), qt.DeepEquals, []string{"zlib@1.2.13"})
}

// An environment with nothing installed still restricts the query: it
// matches no records at all, rather than falling back to the full database.
func TestConstraintEmptyEnvironmentMatchesNothing(t *testing.T) {
	ext, _ := testExternals(seededDB(t))
	ext.ActiveEnv = func() args.Environment {
		return envStub{hashes: []qapi.PackageHash{}}
	}

	ns, err := runParse(t, ext, []string{"constraint"}, "zlib")
	qt.Assert(t, err, qt.IsNil)
	recs, err := ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 0)

	ns, err = runParse(t, ext, []string{"constraint"})
	qt.Assert(t, err, qt.IsNil)
	recs, err = ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 0)
}

// Malformed tokens pass through command-line parsing untouched and only
// fail once the query is resolved.
func TestConstraintParseErrorIsDeferred(t *testing.T) {
	ext, _ := testExternals(seededDB(t))
	ns, err := runParse(t, ext, []string{"constraint"}, "zlib@@1.2")
	qt.Assert(t, err, qt.IsNil)
	_, err = ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeSpecParse)
}

func TestConstraintResolveReflectsCurrentState(t *testing.T) {
	db := seededDB(t)
	ext, _ := testExternals(db)
	ns, err := runParse(t, ext, []string{"constraint"}, "zlib")
	qt.Assert(t, err, qt.IsNil)

	recs, err := ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 2)

	db.Add(makeRecord("zlib", "1.5.0"))
	recs, err = ns.Specs().Resolve(qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recordNames(recs), qt.DeepEquals, []string{
		"zlib@1.2.13", "zlib@1.4.2", "zlib@1.5.0",
	})
}
