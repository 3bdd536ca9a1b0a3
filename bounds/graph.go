package bounds

import (
	"fmt"
	"io"
)

// varGraph is a directed graph over bounds keys. Edges point from the value
// flowing to the value receiving it, so an assignment L = R adds R -> L and
// length relationships propagate along successor edges.
type varGraph struct {
	succs map[Key]KeySet
	preds map[Key]KeySet
}

func newVarGraph() *varGraph {
	return &varGraph{
		succs: make(map[Key]KeySet),
		preds: make(map[Key]KeySet),
	}
}

func (g *varGraph) addNode(k Key) {
	if _, ok := g.succs[k]; !ok {
		g.succs[k] = NewKeySet()
	}
	if _, ok := g.preds[k]; !ok {
		g.preds[k] = NewKeySet()
	}
}

func (g *varGraph) addEdge(from, to Key) {
	g.addNode(from)
	g.addNode(to)
	g.succs[from].Add(to)
	g.preds[to].Add(from)
}

func (g *varGraph) hasNode(k Key) bool {
	_, ok := g.succs[k]
	return ok
}

// successors returns the outgoing neighbour set of k; nil if k is absent.
func (g *varGraph) successors(k Key) KeySet { return g.succs[k] }

// predecessors returns the incoming neighbour set of k; nil if k is absent.
func (g *varGraph) predecessors(k Key) KeySet { return g.preds[k] }

// visitReachable walks breadth-first from start, following predecessor edges
// when backward is true and successor edges otherwise. start itself is not
// visited. visit returns false to stop expanding past that node; the node
// still counts as reached.
func (g *varGraph) visitReachable(start Key, backward bool, visit func(Key) bool) {
	if !g.hasNode(start) {
		return
	}
	next := g.succs
	if backward {
		next = g.preds
	}
	seen := NewKeySet()
	seen.Add(start)
	queue := []Key{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next[cur].Sorted() {
			if seen.Has(n) {
				continue
			}
			seen.Add(n)
			if visit(n) {
				queue = append(queue, n)
			}
		}
	}
}

// reachableFrom collects every node reachable from start, excluding start.
func (g *varGraph) reachableFrom(start Key, backward bool) KeySet {
	out := NewKeySet()
	g.visitReachable(start, backward, func(k Key) bool {
		out.Add(k)
		return true
	})
	return out
}

// mergeNode redirects every edge touching from onto to and removes from.
// Edges that would become self loops are dropped.
func (g *varGraph) mergeNode(from, to Key) {
	if from == to || !g.hasNode(from) {
		return
	}
	g.addNode(to)
	for p := range g.preds[from] {
		delete(g.succs[p], from)
		if p != to {
			g.succs[p].Add(to)
			g.preds[to].Add(p)
		}
	}
	for s := range g.succs[from] {
		delete(g.preds[s], from)
		if s != to {
			g.preds[s].Add(to)
			g.succs[to].Add(s)
		}
	}
	delete(g.succs, from)
	delete(g.preds, from)
}

func (g *varGraph) nodeCount() int { return len(g.succs) }

func (g *varGraph) edgeCount() int {
	n := 0
	for _, s := range g.succs {
		n += len(s)
	}
	return n
}

// sortedNodes returns every node in ascending key order.
func (g *varGraph) sortedNodes() []Key {
	all := NewKeySet()
	for k := range g.succs {
		all.Add(k)
	}
	return all.Sorted()
}

// writeDot emits the graph in Graphviz format. label supplies the node text.
func (g *varGraph) writeDot(w io.Writer, name string, label func(Key) string) error {
	if _, err := fmt.Fprintf(w, "digraph %q {\n", name); err != nil {
		return err
	}
	for _, k := range g.sortedNodes() {
		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", k, label(k)); err != nil {
			return err
		}
	}
	for _, from := range g.sortedNodes() {
		for _, to := range g.succs[from].Sorted() {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d;\n", from, to); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
