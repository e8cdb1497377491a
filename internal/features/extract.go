package features

import (
	"github.com/ChizhovVadim/brilliant/internal/searchtree"
)

// Extraction is the summary of the subtree rooted at one node, computed
// relative to a move of interest.
type Extraction struct {
	Improving       []searchtree.NodeID
	Advantageous    []searchtree.NodeID
	Losing          []searchtree.NodeID
	Disadvantageous []searchtree.NodeID

	MoveNode   searchtree.NodeID
	MoveFound  bool
	MoveQ      float64
	MoveP      float64
	MoveN      int
	MoveIsBest bool

	MaxN int
	MaxQ float64
	MaxP float64

	RootQ float64
	RootP float64
	RootN int

	// BranchingFactor is -1 when the subtree has no leaves.
	BranchingFactor float64
	// Width maps depth to node count, the root at depth 0.
	Width map[int]int
	// Height is -1 when nothing is reachable.
	Height int
}

// Subset returns the node set of SubsetImproving..SubsetDisadvantageous.
func (e *Extraction) Subset(subset int) []searchtree.NodeID {
	switch subset {
	case SubsetImproving:
		return e.Improving
	case SubsetAdvantageous:
		return e.Advantageous
	case SubsetLosing:
		return e.Losing
	case SubsetDisadvantageous:
		return e.Disadvantageous
	}
	return nil
}

// Extract never fails: degenerate geometry and unknown roots are reported
// through the -1 sentinels.
func Extract(t *searchtree.Tree, root searchtree.NodeID, moveOfInterest string) Extraction {
	var e = Extraction{
		MaxQ:            -1,
		BranchingFactor: -1,
		Width:           make(map[int]int),
		Height:          -1,
	}
	var rootNode, found = t.Node(root)
	if !found {
		return e
	}
	e.RootQ = rootNode.Q
	e.RootP = rootNode.P
	e.RootN = rootNode.N

	for _, id := range t.Successors(root) {
		var node, _ = t.Node(id)
		if node.N > e.MaxN {
			e.MaxN = node.N
		}
		if node.Q > e.MaxQ {
			e.MaxQ = node.Q
		}
		if node.P > e.MaxP {
			e.MaxP = node.P
		}

		if !e.MoveFound && node.Move == moveOfInterest {
			e.MoveFound = true
			e.MoveNode = id
			e.MoveQ = node.Q
			e.MoveP = node.P
			e.MoveN = node.N
			continue
		}
		// child Q and -RootQ share a perspective
		if node.Q-(-e.RootQ) > 0 {
			e.Improving = append(e.Improving, id)
		} else {
			e.Losing = append(e.Losing, id)
		}
		if node.Q > 0 {
			e.Advantageous = append(e.Advantageous, id)
		} else {
			e.Disadvantageous = append(e.Disadvantageous, id)
		}
	}

	if e.MoveFound {
		e.MoveIsBest = e.MoveQ >= e.MaxQ
	}

	var descendants = t.Descendants(root)
	var leaves int
	for _, id := range descendants {
		if t.IsLeaf(id) {
			leaves++
		}
	}
	if leaves != 0 {
		e.BranchingFactor = float64(len(descendants)-1) / float64(leaves)
	}

	for _, depth := range t.Distances(root) {
		e.Width[depth]++
		if depth > e.Height {
			e.Height = depth
		}
	}
	return e
}
