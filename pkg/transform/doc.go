// Package transform rewrites SVG layer exports into flat, style-partitioned
// layers.
//
// # Overview
//
// Map exports (QGIS in particular) nest every feature in several levels of
// groups, each carrying part of the transform, style and clip state. This
// package pushes that state down into the leaves and removes the containers
// so each top-level layer holds its drawables directly. The passes run in a
// fixed order:
//
//  1. [PruneEmpty] removes groups with no element children, walking up
//     through ancestors that become empty.
//  2. [Ungroup] flattens nested groups bottom-up (see below).
//  3. [RemoveKinds] deletes helper shapes (rect by default).
//  4. [Regroup] partitions each surviving group's children into sub-groups
//     by resolved style.
//
// # Ungrouping
//
// The traversal keeps an explicit stack of frames that move from pending to
// children-scheduled to resolved. A node's height (edges to its deepest
// descendant) is known once its children are resolved; at that point a
// group is flattened when its depth lies within [StartDepth, MaxDepth] and
// its height is at least KeepDepth. The default thresholds keep each
// top-level layer and dissolve everything beneath it.
//
// Flattening a group merges three kinds of state into each child:
//
//   - the group transform is composed in front of the child's own
//     ([MergeTransform])
//   - the group's propagating style cascades under the child's own
//     ([MergeStyle]); local-only properties never leak
//   - the group clip-path is attached to the child or to the end of the
//     child's clip chain, re-expressed in the child's coordinate space when
//     the child has its own transform ([MergeClip])
//
// # Failures
//
// Per-node problems (malformed transform or style text, dangling clip
// references, singular transforms, missing parents) never abort a pass.
// Each is recovered with a structure-preserving fallback and recorded as a
// [Failure] in the pass result.
package transform
