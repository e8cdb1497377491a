// Package searchtree holds one engine search tree loaded from a GML graph file.
package searchtree

type NodeID int

// Node is the engine statistics of one explored position.
type Node struct {
	ID   NodeID
	N    int
	Q    float64
	P    float64
	HasP bool
	// Move is the UCI move played from the parent. Empty on the root.
	Move string
}

// Tree is immutable after Parse/Load.
type Tree struct {
	nodes    []Node
	index    map[NodeID]int
	children [][]int
	inDegree []int
	root     int
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Root() NodeID { return t.nodes[t.root].ID }

func (t *Tree) Has(id NodeID) bool {
	_, found := t.index[id]
	return found
}

func (t *Tree) Node(id NodeID) (Node, bool) {
	var i, found = t.index[id]
	if !found {
		return Node{}, false
	}
	return t.nodes[i], true
}

// Successors returns direct children in the edge order of the source file.
func (t *Tree) Successors(id NodeID) []NodeID {
	var i, found = t.index[id]
	if !found {
		return nil
	}
	var result = make([]NodeID, len(t.children[i]))
	for j, child := range t.children[i] {
		result[j] = t.nodes[child].ID
	}
	return result
}

func (t *Tree) OutDegree(id NodeID) int {
	var i, found = t.index[id]
	if !found {
		return 0
	}
	return len(t.children[i])
}

func (t *Tree) InDegree(id NodeID) int {
	var i, found = t.index[id]
	if !found {
		return 0
	}
	return t.inDegree[i]
}

// IsLeaf reports out-degree 0 and in-degree 1.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.OutDegree(id) == 0 && t.InDegree(id) == 1
}

// Distances returns the edge-count distance from id to every reachable node,
// id itself included at distance 0. Unknown id gives an empty map.
func (t *Tree) Distances(id NodeID) map[NodeID]int {
	var start, found = t.index[id]
	if !found {
		return map[NodeID]int{}
	}
	var dist = make([]int, len(t.nodes))
	for i := range dist {
		dist[i] = -1
	}
	var result = make(map[NodeID]int)
	var queue = []int{start}
	dist[start] = 0
	for len(queue) != 0 {
		var cur = queue[0]
		queue = queue[1:]
		result[t.nodes[cur].ID] = dist[cur]
		for _, child := range t.children[cur] {
			if dist[child] < 0 {
				dist[child] = dist[cur] + 1
				queue = append(queue, child)
			}
		}
	}
	return result
}

// Descendants returns every node reachable from id, id excluded.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var start, found = t.index[id]
	if !found {
		return nil
	}
	var visited = make([]bool, len(t.nodes))
	visited[start] = true
	var result []NodeID
	var stack = []int{start}
	for len(stack) != 0 {
		var cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range t.children[cur] {
			if !visited[child] {
				visited[child] = true
				result = append(result, t.nodes[child].ID)
				stack = append(stack, child)
			}
		}
	}
	return result
}
