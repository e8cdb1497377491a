package searchtree

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ParseError reports a tree file that is unreadable, malformed or misses
// required node attributes.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse search tree: %v", e.Err)
	}
	return fmt.Sprintf("parse search tree %v: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func Load(path string) (*Tree, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer file.Close()

	tree, err := Parse(file)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return tree, nil
}

func Parse(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	pairs, err := parseGml(string(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	var graph []gmlPair
	var graphFound bool
	for _, pair := range pairs {
		if pair.key == "graph" && pair.value.kind == valueList {
			if graphFound {
				return nil, &ParseError{Err: errors.New("more than one graph")}
			}
			graph = pair.value.list
			graphFound = true
		}
	}
	if !graphFound {
		return nil, &ParseError{Err: errors.New("graph not found")}
	}
	tree, err := buildTree(graph)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return tree, nil
}

type rawNode struct {
	node    Node
	hasN    bool
	hasQ    bool
	hasMove bool
	line    int
}

func buildTree(graph []gmlPair) (*Tree, error) {
	var t = &Tree{index: make(map[NodeID]int)}
	var raws []rawNode
	type edge struct {
		source, target NodeID
		line           int
	}
	var edges []edge

	for _, pair := range graph {
		if pair.value.kind != valueList {
			continue
		}
		switch pair.key {
		case "node":
			var raw, err = parseNode(pair)
			if err != nil {
				return nil, err
			}
			if _, found := t.index[raw.node.ID]; found {
				return nil, &lineError{line: pair.line, msg: fmt.Sprintf("duplicate node id %v", raw.node.ID)}
			}
			t.index[raw.node.ID] = len(raws)
			raws = append(raws, raw)
		case "edge":
			var source, target int
			var hasSource, hasTarget bool
			for _, attr := range pair.value.list {
				var err error
				switch attr.key {
				case "source":
					source, err = intValue(attr.value)
					hasSource = true
				case "target":
					target, err = intValue(attr.value)
					hasTarget = true
				}
				if err != nil {
					return nil, &lineError{line: attr.line, msg: fmt.Sprintf("edge %v: %v", attr.key, err)}
				}
			}
			if !hasSource || !hasTarget {
				return nil, &lineError{line: pair.line, msg: "edge without source or target"}
			}
			edges = append(edges, edge{NodeID(source), NodeID(target), pair.line})
		}
	}

	if len(raws) == 0 {
		return nil, errors.New("graph has no nodes")
	}

	t.children = make([][]int, len(raws))
	t.inDegree = make([]int, len(raws))
	var seen = make(map[[2]NodeID]struct{}, len(edges))
	for _, e := range edges {
		var si, sFound = t.index[e.source]
		var ti, tFound = t.index[e.target]
		if !sFound || !tFound {
			return nil, &lineError{line: e.line, msg: fmt.Sprintf("edge %v->%v references unknown node", e.source, e.target)}
		}
		var key = [2]NodeID{e.source, e.target}
		if _, found := seen[key]; found {
			return nil, &lineError{line: e.line, msg: fmt.Sprintf("duplicate edge %v->%v", e.source, e.target)}
		}
		seen[key] = struct{}{}
		t.children[si] = append(t.children[si], ti)
		t.inDegree[ti]++
	}

	t.root = -1
	for i := range raws {
		if t.inDegree[i] != 0 {
			continue
		}
		if t.root >= 0 {
			return nil, fmt.Errorf("more than one root: %v and %v", raws[t.root].node.ID, raws[i].node.ID)
		}
		t.root = i
	}
	if t.root < 0 {
		return nil, errors.New("no root: every node has an incoming edge")
	}

	t.nodes = make([]Node, len(raws))
	for i, raw := range raws {
		if !raw.hasN || !raw.hasQ {
			return nil, &lineError{line: raw.line, msg: fmt.Sprintf("node %v: N and Q are required", raw.node.ID)}
		}
		if i != t.root && (!raw.node.HasP || !raw.hasMove) {
			return nil, &lineError{line: raw.line, msg: fmt.Sprintf("node %v: P and move are required", raw.node.ID)}
		}
		t.nodes[i] = raw.node
	}
	return t, nil
}

func parseNode(pair gmlPair) (rawNode, error) {
	var raw = rawNode{line: pair.line}
	var hasID bool
	for _, attr := range pair.value.list {
		var err error
		switch attr.key {
		case "id":
			var id int
			id, err = intValue(attr.value)
			raw.node.ID = NodeID(id)
			hasID = true
		case "N":
			raw.node.N, err = countValue(attr.value)
			raw.hasN = true
		case "Q":
			raw.node.Q, err = floatValue(attr.value)
			raw.hasQ = true
		case "P":
			raw.node.P, err = floatValue(attr.value)
			raw.node.HasP = true
		case "move":
			if attr.value.kind == valueList {
				err = errors.New("list value")
			}
			raw.node.Move = attr.value.text
			raw.hasMove = true
		}
		if err != nil {
			return rawNode{}, &lineError{line: attr.line, msg: fmt.Sprintf("node attribute %v: %v", attr.key, err)}
		}
	}
	if !hasID {
		return rawNode{}, &lineError{line: pair.line, msg: "node without id"}
	}
	return raw, nil
}

func intValue(v gmlValue) (int, error) {
	if v.kind != valueInt && v.kind != valueString {
		return 0, fmt.Errorf("integer expected")
	}
	return strconv.Atoi(v.text)
}

// countValue accepts "12", 12 and integral reals such as 12.0.
func countValue(v gmlValue) (int, error) {
	if v.kind == valueList {
		return 0, fmt.Errorf("integer expected")
	}
	var n, err = strconv.Atoi(v.text)
	if err != nil {
		var f, ferr = strconv.ParseFloat(v.text, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("integer expected, found %q", v.text)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %v", n)
	}
	return n, nil
}

func floatValue(v gmlValue) (float64, error) {
	if v.kind == valueList {
		return 0, fmt.Errorf("number expected")
	}
	var f, err = strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, fmt.Errorf("number expected, found %q", v.text)
	}
	return f, nil
}
