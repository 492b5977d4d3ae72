package graph

import (
	"errors"
	"fmt"
)

// ErrEmptyGraph is returned when there are no nodes to reduce.
var ErrEmptyGraph = errors.New("graph has no nodes")

// Reason identifies which input invariant a ValidationError violates.
type Reason int

const (
	ReasonDuplicateNode Reason = iota + 1
	ReasonUnknownNode
	ReasonMalformedNode
	ReasonMalformedEdge
)

func (r Reason) String() string {
	switch r {
	case ReasonDuplicateNode:
		return "duplicate node id"
	case ReasonUnknownNode:
		return "edge references unknown node"
	case ReasonMalformedNode:
		return "malformed node"
	case ReasonMalformedEdge:
		return "malformed edge"
	default:
		return "invalid input"
	}
}

// ValidationError reports a raw node or edge record that cannot be ingested.
// Position is the record's index in its input slice.
type ValidationError struct {
	Reason   Reason
	Position int
	NodeID   int64 // offending node id (duplicate, malformed or unknown endpoint)
	From     int64 // set for edge errors
	To       int64 // set for edge errors
	Detail   string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonDuplicateNode:
		return fmt.Sprintf("node #%d: %s %d", e.Position, e.Reason, e.NodeID)
	case ReasonMalformedNode:
		return fmt.Sprintf("node #%d (id %d): %s: %s", e.Position, e.NodeID, e.Reason, e.Detail)
	case ReasonUnknownNode:
		return fmt.Sprintf("edge #%d (%d -> %d): %s %d", e.Position, e.From, e.To, e.Reason, e.NodeID)
	case ReasonMalformedEdge:
		return fmt.Sprintf("edge #%d (%d -> %d): %s: %s", e.Position, e.From, e.To, e.Reason, e.Detail)
	default:
		return fmt.Sprintf("record #%d: %s", e.Position, e.Reason)
	}
}
