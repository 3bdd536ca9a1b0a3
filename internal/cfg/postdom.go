package cfg

// PostDom carries the immediate post-dominator relation of a graph and the
// control dependences derived from it. A node is control-dependent on a
// branch when the branch decides whether the node executes at all.
type PostDom struct {
	g     *Graph
	byID  map[int]*Node
	ipdom map[int]int
	order map[int]int
	deps  map[int][]int
}

// NewPostDom computes post-dominators and control dependences for g.
func NewPostDom(g *Graph) *PostDom {
	pd := &PostDom{
		g:     g,
		byID:  make(map[int]*Node, len(g.Nodes)),
		ipdom: make(map[int]int),
		order: make(map[int]int),
		deps:  make(map[int][]int),
	}
	for _, n := range g.Nodes {
		pd.byID[n.ID] = n
	}
	pd.computePostDominators()
	pd.computeControlDeps()
	return pd
}

// computePostDominators runs the iterative intersection algorithm on the
// reversed graph, rooted at Exit. Ordering is reverse postorder of the
// reversed graph, which makes the finger intersection terminate.
func (pd *PostDom) computePostDominators() {
	exit := pd.g.Exit
	if exit == nil {
		return
	}

	rpo := pd.reversePostorderFromExit()
	for i, n := range rpo {
		pd.order[n.ID] = i
	}
	pd.ipdom[exit.ID] = exit.ID

	changed := true
	for changed {
		changed = false
		for _, n := range rpo {
			if n == exit {
				continue
			}
			newIdom := -1
			for _, s := range n.Succs {
				if _, ok := pd.ipdom[s.ID]; !ok {
					continue
				}
				if newIdom < 0 {
					newIdom = s.ID
				} else {
					newIdom = pd.intersect(s.ID, newIdom)
				}
			}
			if newIdom < 0 {
				continue
			}
			if old, ok := pd.ipdom[n.ID]; !ok || old != newIdom {
				pd.ipdom[n.ID] = newIdom
				changed = true
			}
		}
	}
}

// reversePostorderFromExit orders nodes by a depth-first walk of predecessor
// edges starting at Exit, deepest first.
func (pd *PostDom) reversePostorderFromExit() []*Node {
	seen := make(map[int]bool)
	var post []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		seen[n.ID] = true
		for _, p := range n.Preds {
			if !seen[p.ID] {
				visit(p)
			}
		}
		post = append(post, n)
	}
	visit(pd.g.Exit)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

func (pd *PostDom) intersect(a, b int) int {
	for a != b {
		for pd.order[a] > pd.order[b] {
			next, ok := pd.ipdom[a]
			if !ok || next == a {
				return a
			}
			a = next
		}
		for pd.order[b] > pd.order[a] {
			next, ok := pd.ipdom[b]
			if !ok || next == b {
				return b
			}
			b = next
		}
	}
	return a
}

// computeControlDeps walks, for every branching node, each successor's
// post-dominator chain up to the branch's own immediate post-dominator;
// everything passed on the way executes only because that branch chose to.
func (pd *PostDom) computeControlDeps() {
	for _, a := range pd.g.Nodes {
		if len(a.Succs) < 2 {
			continue
		}
		stop, ok := pd.ipdom[a.ID]
		if !ok {
			continue
		}
		for _, s := range a.Succs {
			runner := s.ID
			for runner != stop {
				pd.deps[runner] = append(pd.deps[runner], a.ID)
				next, ok := pd.ipdom[runner]
				if !ok || next == runner {
					break
				}
				runner = next
			}
		}
	}
}

// ImmediatePostDom returns n's immediate post-dominator.
func (pd *PostDom) ImmediatePostDom(n *Node) (*Node, bool) {
	id, ok := pd.ipdom[n.ID]
	if !ok || id == n.ID {
		return nil, false
	}
	return pd.byID[id], true
}

// PostDominates reports whether a post-dominates b: every path from b to
// exit passes through a.
func (pd *PostDom) PostDominates(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	if a.ID == b.ID {
		return true
	}
	cur := b.ID
	for {
		next, ok := pd.ipdom[cur]
		if !ok || next == cur {
			return false
		}
		if next == a.ID {
			return true
		}
		cur = next
	}
}

// ControlDeps returns the branching nodes n is control-dependent on.
func (pd *PostDom) ControlDeps(n *Node) []*Node {
	if n == nil {
		return nil
	}
	ids := pd.deps[n.ID]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if dep := pd.byID[id]; dep != nil {
			out = append(out, dep)
		}
	}
	return out
}

// GoverningConditions filters n's control dependences down to the condition
// expressions that decide its execution.
func (pd *PostDom) GoverningConditions(n *Node) []*Node {
	var out []*Node
	for _, dep := range pd.ControlDeps(n) {
		if dep.Condition != nil {
			out = append(out, dep)
		}
	}
	return out
}
