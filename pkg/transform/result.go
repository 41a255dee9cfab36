package transform

import (
	"fmt"

	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/svg"
)

// Failure records a per-node error that was recovered from with a fallback.
type Failure struct {
	// NodeID is the id of the node being rewritten, or its label when it
	// has no id.
	NodeID string

	// Op names the step that failed: "transform", "style", "clip" or
	// "flatten".
	Op string

	Err error
}

// Code returns the error code of the failure.
func (f Failure) Code() errors.Code { return errors.GetCode(f.Err) }

func (f Failure) String() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.NodeID, f.Err)
}

// PruneResult reports the work done by [PruneEmpty].
type PruneResult struct {
	// GroupsRemoved is the number of empty groups detached, including
	// ancestors that became empty as a consequence.
	GroupsRemoved int
}

// UngroupResult reports the work done by [Ungroup].
type UngroupResult struct {
	// GroupsFlattened is the number of groups dissolved into their parents.
	GroupsFlattened int

	// NodesPromoted counts child moves. A node lifted through three nested
	// groups counts three times.
	NodesPromoted int

	// ClipPathsCreated is the number of retargeted clipPath definitions
	// synthesized for children with their own transform.
	ClipPathsCreated int

	// ClipsChained is the number of inherited clips attached to the end of
	// an existing clip-path chain instead of directly to a node.
	ClipsChained int

	// MaxHeight is the largest container height seen by the traversal.
	MaxHeight int

	// ViewBoxBaked reports whether the root viewBox was folded into the
	// top-level transforms.
	ViewBoxBaked bool

	// Failures lists recovered per-node errors in the order they occurred.
	Failures []Failure
}

// RemoveResult reports the work done by [RemoveKinds].
type RemoveResult struct {
	Removed int
	ByKind  map[string]int
}

// RegroupResult reports the work done by [Regroup].
type RegroupResult struct {
	// GroupsVisited is the number of groups that were re-partitioned.
	GroupsVisited int

	// SubgroupsCreated is the number of style sub-groups created.
	SubgroupsCreated int

	// NodesMoved is the number of children moved into a sub-group.
	NodesMoved int
}

func (r *UngroupResult) fail(n *svg.Node, op string, err error) {
	r.Failures = append(r.Failures, Failure{NodeID: describe(n), Op: op, Err: err})
}

func describe(n *svg.Node) string {
	if id := n.ID(); id != "" {
		return id
	}
	return n.Label()
}
