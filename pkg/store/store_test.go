package store

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/quarrytools/quarry/qapi"
)

func record(name, version string, setup ...func(*qapi.PackageRecord)) *qapi.PackageRecord {
	rec := &qapi.PackageRecord{Installed: true}
	rec.Ident.Name = name
	rec.Ident.Version = version
	for _, fn := range setup {
		fn(rec)
	}
	return rec
}

func withTags(tags ...string) func(*qapi.PackageRecord) {
	return func(rec *qapi.PackageRecord) { rec.Tags = tags }
}

func withDep(name qapi.PackageName, deptypes ...string) func(*qapi.PackageRecord) {
	return func(rec *qapi.PackageRecord) { rec.Ident.AddDependency(name, deptypes...) }
}

func names(recs []*qapi.PackageRecord) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Ident.Name + "@" + rec.Ident.Version
	}
	return out
}

func TestAddAssignsInstallID(t *testing.T) {
	db := NewDB()
	rec := record("zlib", "1.2.13")
	h := db.Add(rec)
	qt.Check(t, rec.InstallID, qt.Not(qt.Equals), "")
	got, ok := db.Get(h)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Check(t, got, qt.Equals, rec)

	rec2 := record("cmake", "3.24.3")
	rec2.InstallID = "fixed-id"
	db.Add(rec2)
	qt.Check(t, rec2.InstallID, qt.Equals, "fixed-id")
	qt.Check(t, db.Len(), qt.Equals, 2)
}

func TestHashIgnoresInstallMetadata(t *testing.T) {
	a := record("zlib", "1.2.13")
	b := record("zlib", "1.2.13")
	b.InstallID = "other"
	b.Installed = false
	qt.Check(t, a.Hash(), qt.Equals, b.Hash())

	c := record("zlib", "1.2.14")
	qt.Check(t, a.Hash(), qt.Not(qt.Equals), c.Hash())
}

func TestRemove(t *testing.T) {
	db := NewDB()
	h := db.Add(record("zlib", "1.2.13"))
	qt.Check(t, db.Remove(h), qt.IsTrue)
	qt.Check(t, db.Remove(h), qt.IsFalse)
	qt.Check(t, db.Len(), qt.Equals, 0)
}

func TestQuery(t *testing.T) {
	db := NewDB()
	db.Add(record("zlib", "1.2.13", withTags("core")))
	db.Add(record("zlib", "1.4.2"))
	db.Add(record("hdf5", "1.12.2", withTags("e4s", "io"), withDep("zlib", "build", "link")))
	notInstalled := record("cmake", "3.24.3")
	notInstalled.Installed = false
	db.Add(notInstalled)

	all, err := db.Query(nil, qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(all), qt.DeepEquals, []string{
		"cmake@3.24.3", "hdf5@1.12.2", "zlib@1.2.13", "zlib@1.4.2",
	})

	q := &qapi.Spec{Name: "zlib"}
	recs, err := db.Query(q, qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(recs), qt.DeepEquals, []string{"zlib@1.2.13", "zlib@1.4.2"})

	installed := true
	recs, err = db.Query(nil, qapi.Filters{Installed: &installed})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(recs), qt.DeepEquals, []string{
		"hdf5@1.12.2", "zlib@1.2.13", "zlib@1.4.2",
	})

	recs, err = db.Query(nil, qapi.Filters{Tags: []string{"core", "io"}})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(recs), qt.DeepEquals, []string{"hdf5@1.12.2", "zlib@1.2.13"})
}

func TestQueryHashRestrictionsIntersect(t *testing.T) {
	db := NewDB()
	h1 := db.Add(record("zlib", "1.2.13"))
	h2 := db.Add(record("zlib", "1.4.2"))
	h3 := db.Add(record("cmake", "3.24.3"))

	recs, err := db.Query(nil, qapi.Filters{Hashes: []qapi.PackageHash{h1, h2}})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(recs), qt.DeepEquals, []string{"zlib@1.2.13", "zlib@1.4.2"})

	recs, err = db.Query(nil, qapi.Filters{
		Hashes: []qapi.PackageHash{h1, h2},
		Scope:  []qapi.PackageHash{h2, h3},
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, names(recs), qt.DeepEquals, []string{"zlib@1.4.2"})
}

// A nil restriction slice is unrestricted; a non-nil empty one is a present
// restriction that excludes every record.
func TestQueryEmptyRestrictionMatchesNothing(t *testing.T) {
	db := NewDB()
	db.Add(record("zlib", "1.2.13"))
	db.Add(record("cmake", "3.24.3"))

	recs, err := db.Query(nil, qapi.Filters{Scope: []qapi.PackageHash{}})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 0)

	recs, err = db.Query(nil, qapi.Filters{Hashes: []qapi.PackageHash{}})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 0)

	recs, err = db.Query(nil, qapi.Filters{Scope: nil})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, recs, qt.HasLen, 2)
}

func TestDependents(t *testing.T) {
	db := NewDB()
	db.Add(record("zlib", "1.2.13"))
	db.Add(record("hdf5", "1.12.2", withDep("zlib", "build", "link")))
	db.Add(record("cgns", "4.3.0", withDep("hdf5", "link"), withDep("zlib", "run")))

	qt.Check(t, names(db.Dependents("zlib")), qt.DeepEquals,
		[]string{"cgns@4.3.0", "hdf5@1.12.2"})
	qt.Check(t, names(db.Dependents("hdf5")), qt.DeepEquals, []string{"cgns@4.3.0"})
	qt.Check(t, db.Dependents("cgns"), qt.HasLen, 0)
}

const zlibRecordJSON = `{
	"ident": {
		"name": "zlib",
		"version": "1.2.13",
		"compiler": "gcc",
		"variants": {"shared": "true"},
		"dependencies": {}
	},
	"installID": "b2d9f3c0-8f3b-4a57-9e5e-c9a4e52d9a11",
	"installed": true,
	"tags": ["core"]
}`

const hdf5RecordJSON = `{
	"ident": {
		"name": "hdf5",
		"version": "1.12.2",
		"compiler": "gcc",
		"variants": {},
		"dependencies": {"zlib": {"deptypes": ["build", "link"]}}
	},
	"installID": "41f1f0dc-32a1-41d4-9fd6-b3f61ed9f0b7",
	"installed": true,
	"tags": []
}`

func TestLoadDB(t *testing.T) {
	fsys := fstest.MapFS{
		"db/zlib.json":  &fstest.MapFile{Data: []byte(zlibRecordJSON)},
		"db/hdf5.json":  &fstest.MapFile{Data: []byte(hdf5RecordJSON)},
		"db/notes.txt":  &fstest.MapFile{Data: []byte("not a record")},
		"db/sub/x.json": &fstest.MapFile{Data: []byte("ignored, not in db itself")},
	}

	db, err := LoadDB(fsys, "db")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, db.Len(), qt.Equals, 2)

	recs, err := db.Query(&qapi.Spec{Name: "zlib"}, qapi.Filters{})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, recs, qt.HasLen, 1)
	qt.Check(t, recs[0].InstallID, qt.Equals, "b2d9f3c0-8f3b-4a57-9e5e-c9a4e52d9a11")
	qt.Check(t, recs[0].Tags, qt.DeepEquals, []string{"core"})
	qt.Check(t, recs[0].Ident.Variants.Values["shared"], qt.Equals, "true")

	qt.Check(t, names(db.Dependents("zlib")), qt.DeepEquals, []string{"hdf5@1.12.2"})
}

func TestLoadDBErrors(t *testing.T) {
	_, err := LoadDB(fstest.MapFS{}, "db")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeIo)

	fsys := fstest.MapFS{
		"db/bad.json": &fstest.MapFile{Data: []byte(`{"ident": "nope"}`)},
	}
	_, err = LoadDB(fsys, "db")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeSerialization)
}

func TestGlobalReplacement(t *testing.T) {
	orig := Global()
	defer SetGlobal(orig)

	db := NewDB()
	db.Add(record("zlib", "1.2.13"))
	SetGlobal(db)
	qt.Check(t, Global(), qt.Equals, db)
	qt.Check(t, Global().Len(), qt.Equals, 1)
}
