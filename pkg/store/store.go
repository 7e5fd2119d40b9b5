// Package store is the installed-package database: a record per installed
// package, keyed by canonical content hash, with a query interface over
// specs and filters.
package store

import (
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"

	"github.com/quarrytools/quarry/qapi"
)

// DB is an in-memory installed-package database.
type DB struct {
	mu      sync.RWMutex
	records map[qapi.PackageHash]*qapi.PackageRecord
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{records: map[qapi.PackageHash]*qapi.PackageRecord{}}
}

// Add stores a record and returns its canonical hash.
// A record without an install id is assigned a fresh one.
func (db *DB) Add(rec *qapi.PackageRecord) qapi.PackageHash {
	if rec.InstallID == "" {
		rec.InstallID = uuid.New().String()
	}
	h := rec.Hash()
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records[h] = rec
	return h
}

// Get returns the record with the given hash, if present.
func (db *DB) Get(h qapi.PackageHash) (*qapi.PackageRecord, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.records[h]
	return rec, ok
}

// Remove deletes the record with the given hash, reporting whether it was
// present.
func (db *DB) Remove(h qapi.PackageHash) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.records[h]
	delete(db.records, h)
	return ok
}

// Len returns the number of records.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// Query returns all records matching the spec and the filters, sorted by
// the natural total order of package identities. A nil spec matches every
// record.
//
// Filter semantics owned by this layer: the Hashes and Scope restrictions
// are both applied, so a record must appear in every present restriction set
// (intersection). A nil restriction slice means "unrestricted"; a non-nil
// empty one is a present restriction that matches nothing, which is what an
// activated environment with no installed packages must produce. Tags match
// when the record has at least one of the requested tags.
func (db *DB) Query(q *qapi.Spec, f qapi.Filters) ([]*qapi.PackageRecord, error) {
	hashes := hashSet(f.Hashes)
	scope := hashSet(f.Scope)
	db.mu.RLock()
	var out []*qapi.PackageRecord
	for h, rec := range db.records {
		if q != nil && !q.Matches(&rec.Ident) {
			continue
		}
		if hashes != nil {
			if _, ok := hashes[h]; !ok {
				continue
			}
		}
		if scope != nil {
			if _, ok := scope[h]; !ok {
				continue
			}
		}
		if f.Installed != nil && rec.Installed != *f.Installed {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(rec, f.Tags) {
			continue
		}
		out = append(out, rec)
	}
	db.mu.RUnlock()
	qapi.SortRecords(out)
	return out, nil
}

// Dependents returns all records that depend on the named package,
// regardless of dependency type, sorted by the natural total order.
func (db *DB) Dependents(name qapi.PackageName) []*qapi.PackageRecord {
	db.mu.RLock()
	var out []*qapi.PackageRecord
	for _, rec := range db.records {
		if _, ok := rec.Ident.Dependencies.Values[name]; ok {
			out = append(out, rec)
		}
	}
	db.mu.RUnlock()
	qapi.SortRecords(out)
	return out
}

// hashSet keeps the nil/empty distinction: a nil slice is no restriction,
// while a non-nil empty slice becomes an empty set that excludes everything.
func hashSet(hashes []qapi.PackageHash) map[qapi.PackageHash]struct{} {
	if hashes == nil {
		return nil
	}
	set := make(map[qapi.PackageHash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

func hasAnyTag(rec *qapi.PackageRecord, tags []string) bool {
	for _, want := range tags {
		for _, have := range rec.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// LoadDB reads every record file (*.json) in a directory into a new database.
//
// Errors:
//
//    - quarry-error-io -- when the directory or a record file cannot be read
//    - quarry-error-serialization -- when a record file does not parse
func LoadDB(fsys fs.FS, dir string) (*DB, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, qapi.ErrorIo("unable to read database directory", dir, err)
	}
	db := NewDB()
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		filename := path.Join(dir, ent.Name())
		data, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, qapi.ErrorIo("unable to read record file", filename, err)
		}
		rec := qapi.PackageRecord{}
		_, err = ipld.Unmarshal(data, json.Decode, &rec, qapi.TypeSystem.TypeByName("PackageRecord"))
		if err != nil {
			return nil, qapi.ErrorSerialization("unable to parse record file "+filename, err)
		}
		db.Add(&rec)
	}
	return db, nil
}

var (
	globalm sync.Mutex
	global  *DB
)

// Global returns the process-wide database, creating an empty one on first
// use. Application startup replaces it via SetGlobal after loading records
// from disk.
func Global() *DB {
	globalm.Lock()
	defer globalm.Unlock()
	if global == nil {
		global = NewDB()
	}
	return global
}

// SetGlobal replaces the process-wide database.
func SetGlobal(db *DB) {
	globalm.Lock()
	defer globalm.Unlock()
	global = db
}
