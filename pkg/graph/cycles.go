package graph

import (
	gonum "gonum.org/v1/gonum/graph"
)

// tarjanSCC finds the strongly connected components of a directed graph
// that contain more than one node, i.e. the cycles.
type tarjanSCC struct {
	g       gonum.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func findCycles(g gonum.Directed) [][]int64 {
	t := &tarjanSCC{
		g:       g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

func (t *tarjanSCC) strongConnect(id int64) {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++

	t.stack = append(t.stack, id)
	t.onStack[id] = true

	succ := t.g.From(id)
	for succ.Next() {
		next := succ.Node().ID()
		if _, visited := t.indices[next]; !visited {
			t.strongConnect(next)
			t.lowLink[id] = min(t.lowLink[id], t.lowLink[next])
		} else if t.onStack[next] {
			t.lowLink[id] = min(t.lowLink[id], t.indices[next])
		}
	}

	if t.lowLink[id] != t.indices[id] {
		return
	}

	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	if len(scc) > 1 {
		t.sccs = append(t.sccs, scc)
	}
}
