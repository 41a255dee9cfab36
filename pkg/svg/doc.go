// Package svg provides a mutable SVG document tree.
//
// The tree is deliberately small: elements with ordered attributes and
// children, plus character data, comments and prolog nodes. It supports
// exactly what the layer rewriting passes need:
//
//   - index-preserving [Node.Insert] and [Node.Remove] with parent links
//   - attribute get/set/unset by qualified name ("inkscape:label")
//   - id lookup and collision-free id generation on [Document]
//   - url(#id) and href reference helpers
//
// # Reading and Writing
//
// [Read] decodes with a lenient [encoding/xml] decoder and converts legacy
// charsets. Namespace prefixes are preserved verbatim so Inkscape and
// Sodipodi metadata survive a round trip. [Document.WriteTo] emits UTF-8
// with two-space indentation for element-only content.
package svg
