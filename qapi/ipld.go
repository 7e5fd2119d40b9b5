package qapi

import (
	"embed"
	"fmt"

	_ "github.com/ipld/go-ipld-prime/codec/dagcbor" // side-effecting import; registers a codec. Required for computing CIDs.
	_ "github.com/ipld/go-ipld-prime/codec/json"    // side-effecting import; registers a codec.
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/schema"
	schemadmt "github.com/ipld/go-ipld-prime/schema/dmt"
	schemadsl "github.com/ipld/go-ipld-prime/schema/dsl"
)

// This file is for IPLD-related helpers and constants.

var LinkSystem = cidlink.DefaultLinkSystem()

// TypeSystem describes all our API data types and their representation strategies in IPLD Schema form.
// This is parsed from the qapi.ipldsch file, which is embedded into the binary at build time.

// embed the qapi ipld schema from file
//go:embed qapi.ipldsch
var schFs embed.FS

// Export both the parsed DMT of the schema,
// and the compiled TypeSystem.
var SchemaDMT, TypeSystem = func() (*schemadmt.Schema, *schema.TypeSystem) {
	r, err := schFs.Open("qapi.ipldsch")
	if err != nil {
		panic(fmt.Sprintf("failed to open embedded qapi.ipldsch: %s", err))
	}
	schemaDmt, err := schemadsl.Parse("qapi.ipldsch", r)
	if err != nil {
		panic(fmt.Sprintf("failed to parse api schema: %s", err))
	}
	ts := new(schema.TypeSystem)
	ts.Init()
	if err := schemadmt.Compile(ts, schemaDmt); err != nil {
		panic(fmt.Sprintf("failed to compile api schema: %s", err))
	}
	return schemaDmt, ts
}()
