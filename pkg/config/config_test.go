package config

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/quarrytools/quarry/qapi"
)

func stack() *Settings {
	return New(
		NewScope(ScopeDefaults),
		NewScope(ScopeSite),
		NewScope(ScopeUser),
		NewScope(ScopeCommandLine),
	)
}

func TestScopePriority(t *testing.T) {
	s := stack()
	qt.Assert(t, s.Set("config:build_jobs", 16, ScopeDefaults), qt.IsNil)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 16)

	qt.Assert(t, s.Set("config:build_jobs", 4, ScopeUser), qt.IsNil)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 4)

	qt.Assert(t, s.Set("config:build_jobs", 8, ScopeCommandLine), qt.IsNil)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 8)

	// a lower-priority write never shadows a higher one
	qt.Assert(t, s.Set("config:build_jobs", 2, ScopeSite), qt.IsNil)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 8)
}

func TestGetFallback(t *testing.T) {
	s := stack()
	qt.Check(t, s.Get("config:missing", "fb"), qt.Equals, "fb")
	qt.Check(t, s.GetInt("config:missing", 7), qt.Equals, 7)
	qt.Check(t, s.GetBool("config:missing", true), qt.IsTrue)

	// type mismatch falls back too
	qt.Assert(t, s.Set("config:dirty", "yes", ScopeUser), qt.IsNil)
	qt.Check(t, s.GetBool("config:dirty", false), qt.IsFalse)
	qt.Check(t, s.GetInt("config:dirty", 3), qt.Equals, 3)
}

func TestNestedKeys(t *testing.T) {
	s := stack()
	qt.Assert(t, s.Set("packages:zlib:version", "1.2.13", ScopeUser), qt.IsNil)
	qt.Assert(t, s.Set("packages:zlib:buildable", true, ScopeUser), qt.IsNil)
	qt.Check(t, s.Get("packages:zlib:version", nil), qt.Equals, "1.2.13")
	qt.Check(t, s.GetBool("packages:zlib:buildable", false), qt.IsTrue)
	// an intermediate table is not a value
	qt.Check(t, s.Get("packages:zlib", "none"), qt.Not(qt.Equals), "none")
	qt.Check(t, s.Get("packages:zlib:version:patch", "none"), qt.Equals, "none")
}

func TestSetErrors(t *testing.T) {
	s := stack()
	err := s.Set("config:build_jobs", 4, "nonesuch")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeConfig)

	err = s.Set("", 4, ScopeUser)
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeConfig)
}

func TestLoadScopeFile(t *testing.T) {
	fsys := fstest.MapFS{
		"config.toml": &fstest.MapFile{Data: []byte(
			"[config]\nbuild_jobs = 12\ndirty = true\n",
		)},
		"broken.toml": &fstest.MapFile{Data: []byte("[config\n")},
	}

	s := stack()
	qt.Assert(t, s.LoadScopeFile(ScopeUser, fsys, "config.toml"), qt.IsNil)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 12)
	qt.Check(t, s.GetBool("config:dirty", false), qt.IsTrue)

	err := s.LoadScopeFile(ScopeUser, fsys, "absent.toml")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeIo)

	err = s.LoadScopeFile(ScopeUser, fsys, "broken.toml")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeSerialization)

	err = s.LoadScopeFile("nonesuch", fsys, "config.toml")
	qt.Assert(t, err, qt.IsNotNil)
	qt.Check(t, serum.Code(err), qt.Equals, qapi.ECodeConfig)
}

func TestLoadScopeFileReplacesScope(t *testing.T) {
	fsys := fstest.MapFS{
		"config.toml": &fstest.MapFile{Data: []byte("[config]\nbuild_jobs = 12\n")},
	}
	s := stack()
	qt.Assert(t, s.Set("config:dirty", true, ScopeUser), qt.IsNil)
	qt.Assert(t, s.LoadScopeFile(ScopeUser, fsys, "config.toml"), qt.IsNil)
	qt.Check(t, s.GetBool("config:dirty", false), qt.IsFalse)
	qt.Check(t, s.GetInt("config:build_jobs", 0), qt.Equals, 12)
}
