// Package pkg provides the core libraries for svglayers.
//
// # Overview
//
// svglayers rewrites layered SVG documents, typically map exports, into a
// flat and editable form. Every group's transform, style and clip-path is
// pushed into its content, nested groups below the top-level layers are
// dissolved, helper shapes are deleted and the content of each layer is
// regrouped by visual style.
//
// # Architecture
//
// The typical data flow:
//
//	SVG bytes
//	     ↓
//	[svg] package (parse into an ordered tree with an id index)
//	     ↓
//	[transform] package (prune → ungroup → remove → regroup)
//	     ↓
//	[svg] package (serialize)
//
// [pipeline] wires the stages together with caching and hooks and is shared
// by the CLI and the HTTP API.
//
// # Quick Start
//
//	doc, _ := svg.Open("map.svg")
//	groups := transform.Groups(doc)
//	transform.PruneEmpty(doc)
//	transform.Ungroup(doc, transform.DefaultUngroupOptions())
//	transform.RemoveKinds(doc, transform.DefaultRemoveKinds)
//	transform.Regroup(doc, groups, transform.DefaultGroupPrefix)
//	doc.Save("map.layers.svg")
//
// # Main Packages
//
// ## Document Model
//
// [svg] - Ordered XML tree with parent links, an id index and a UTF-8
// writer. Namespace prefixes, comments and processing instructions survive
// a round trip.
//
// [affine] - 2D affine matrices: parsing of SVG transform lists, composition,
// inversion and viewBox mapping.
//
// [style] - Ordered CSS declaration lists for style attributes, including
// the set of properties that inherit through groups.
//
// ## Rewriting
//
// [transform] - The four document stages and the merge rules for transform,
// style and clip-path.
//
// [render/outline] - Structure outlines as text, Graphviz DOT or SVG.
//
// ## Infrastructure
//
// [pipeline] - Stage orchestration used by CLI and API.
//
// [cache] - Result caching with file, Redis and MongoDB backends.
//
// [config] - TOML configuration with XDG paths.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for stage, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                       # All tests
//	go test ./pkg/transform/...             # Specific package
//	SVGLAYERS_REDIS_ADDR=localhost:6379 go test ./pkg/cache/...
//
// [svg]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/svg
// [affine]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/affine
// [style]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/style
// [transform]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/transform
// [render/outline]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/render/outline
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/svglayers/pkg/observability
package pkg
