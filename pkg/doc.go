// Package pkg provides the libraries behind the reftext command.
//
// # Overview
//
// reftext is a JSON-like text format that keeps the identity of arrays and
// objects. A container reached a second time is written as a reference path
// to its first location, so shared and cyclic structure survives a round
// trip. The format also carries undefined, bigints and dates. The pkg
// directory is organized into these areas:
//
//  1. [reftext] - The codec (serialize, deserialize, reference paths)
//  2. [refgraph] - Reference graph analysis and Graphviz output
//  3. [store] - Content-addressed document storage on top of [cache]
//  4. [cache] - Cache backends (file, Redis, MongoDB, null)
//  5. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	reftext text
//	     ↓
//	[reftext] package (Deserialize)
//	     ↓
//	in-memory value graph ──→ [refgraph] (stats, DOT, SVG)
//	     ↓
//	[reftext] package (Serialize) ──→ [store] (Put/Get by document ID)
//
// # Quick Start
//
//	import "github.com/matzehuels/reftext/pkg/reftext"
//
//	arr := reftext.NewArray()
//	arr.Append(arr)
//	text, _, _ := reftext.Serialize(arr) // [//]
//
//	v, _ := reftext.Deserialize(text)
//	back := v.(*reftext.Array)
//	_ = back.At(0) == back // true
//
// # Main Packages
//
// [reftext] - Value model (Array, Object, Undefined, BigInt, time.Time),
// canonical serialization, a position-aware parser that reports line and
// column of malformed input, location listing, structural equality and a
// JSON bridge.
//
// [refgraph] - Builds a node per container and an edge per slot, counts
// shared nodes, finds back edges (cycles) and renders DOT or SVG.
//
// [store] - Stores serialized documents under generated IDs, deduplicating
// identical content through a hash index.
//
// [cache] - The Cache interface with file, Redis, MongoDB and null backends,
// key derivation (Keyer) and retry helpers.
//
// [errors] - Error codes shared across packages and input validation.
//
// [observability] - Hooks for codec and cache events.
//
// [reftext]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/reftext
// [refgraph]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/refgraph
// [store]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/reftext/pkg/buildinfo
package pkg
