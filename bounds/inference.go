package bounds

import (
	"sort"
	"strings"
)

// candidate is one not-yet-committed bound computed during a flow round,
// tagged with the priority it would commit at and whether it was derived
// from the potential-bounds sets.
type candidate struct {
	b     Bound
	pr    Priority
	viaPB bool
}

// inferencer holds the per-run working state of the flow analysis. Candidate
// bounds accumulate here per iteration and are committed to the session only
// by convergeInferredBounds.
type inferencer struct {
	bi    *Info
	cands map[Key]map[Kind]candidate
}

func newInferencer(bi *Info) *inferencer {
	return &inferencer{bi: bi, cands: make(map[Key]map[Kind]candidate)}
}

func (bi *Info) scopeOf(k Key) (Scope, bool) {
	pv, ok := bi.progVar(k)
	if !ok {
		return Scope{}, false
	}
	return pv.Scope(), true
}

// reachableKeys collects the flow sources whose bounds may be consulted for
// k: predecessors in g whose variable is visible at k's scope. Expansion
// stops at invisible nodes. The context graphs hold only base-to-copy
// identity links, which cross function boundaries on purpose, so the
// visibility filter does not apply on them; operand adaptation still guards
// what becomes expressible. Plain struct fields use the immediate-only mode,
// a single hop, since field bounds must come from direct assignments.
func (in *inferencer) reachableKeys(k Key, g *varGraph) KeySet {
	use, ok := in.bi.scopeOf(k)
	out := NewKeySet()
	if !ok {
		return out
	}
	identity := g == in.bi.ctxFwd || g == in.bi.ctxRev
	visible := func(n Key) bool {
		if identity {
			return true
		}
		sc, ok := in.bi.scopeOf(n)
		return ok && sc.VisibleIn(use)
	}
	if use.Kind == ScopeStruct && !use.IsSpecialized() {
		for _, p := range g.predecessors(k).Sorted() {
			if visible(p) {
				out.Add(p)
			}
		}
		return out
	}
	g.visitReachable(k, true, func(n Key) bool {
		if visible(n) {
			out.Add(n)
			return true
		}
		return false
	})
	return out
}

// relevantBounds returns what neighbour n currently contributes: its
// committed effective bound if it has one, otherwise its candidates from the
// running iteration.
func (in *inferencer) relevantBounds(n Key) []candidate {
	if b, _, ok := in.bi.GetBounds(n, InvalidPriority); ok {
		return []candidate{{b: b, pr: FlowInferred}}
	}
	var out []candidate
	for _, kind := range in.bi.kindOrder {
		if c, ok := in.cands[n][kind]; ok {
			pr := c.pr
			if pr < FlowInferred {
				pr = FlowInferred
			}
			out = append(out, candidate{b: c.b, pr: pr, viaPB: c.viaPB})
		}
	}
	return out
}

// adaptForKey rewrites b into k's context and checks that every operand is
// visible at k's scope. Bounds whose operands cannot be named at k are
// unusable for it.
func (in *inferencer) adaptForKey(k Key, use Scope, b Bound) (Bound, bool) {
	b, ok := in.bi.ctxAdaptBound(k, b)
	if !ok {
		return Bound{}, false
	}
	for _, op := range b.Keys() {
		opv, ok := in.bi.progVar(op)
		if !ok {
			return Bound{}, false
		}
		if opv.IsNumConstant() {
			continue
		}
		if !opv.Scope().VisibleIn(use) {
			return Bound{}, false
		}
	}
	return b, true
}

// predictBounds computes k's candidate map for this iteration from the
// bounds its reachable neighbours contribute. A kind yields a candidate only
// when every contributing neighbour agrees on one bound (variable identity,
// not just key identity); disagreement records a flow failure for k. With
// fromPB set, the potential-bounds sets supply extra candidates at the
// heuristic priority.
func (in *inferencer) predictBounds(k Key, ns KeySet, fromPB bool) map[Kind]candidate {
	use, ok := in.bi.scopeOf(k)
	out := make(map[Kind]candidate)
	if !ok {
		return out
	}

	perKind := make(map[Kind][]candidate)
	for _, n := range ns.Sorted() {
		for _, c := range in.relevantBounds(n) {
			b, ok := in.adaptForKey(k, use, c.b)
			if !ok {
				continue
			}
			perKind[b.Kind] = append(perKind[b.Kind], candidate{b: b, pr: c.pr, viaPB: c.viaPB})
		}
	}

	conflict := false
	for kind, cs := range perKind {
		if c, ok := in.collapseCandidates(cs); ok {
			out[kind] = c
		} else {
			conflict = true
		}
	}

	if fromPB {
		in.addPotentialCandidates(k, use, out)
	}
	if conflict && len(out) == 0 {
		in.bi.failedFlow.Add(k)
	}
	return out
}

// collapseCandidates reduces one kind's contributions to a single candidate.
// Structurally distinct bounds still agree when their operands denote the
// same program variable. The surviving candidate carries the weakest
// priority seen, so propagation never overstates its evidence.
func (in *inferencer) collapseCandidates(cs []candidate) (candidate, bool) {
	if len(cs) == 0 {
		return candidate{}, false
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].b.Base != cs[j].b.Base {
			return cs[i].b.Base < cs[j].b.Base
		}
		return cs[i].b.High < cs[j].b.High
	})
	rep := cs[0]
	for _, c := range cs[1:] {
		if c.b == rep.b {
			if c.pr > rep.pr {
				rep.pr, rep.viaPB = c.pr, c.viaPB
			}
			continue
		}
		if !in.bi.AreSameProgramVar(c.b.Base, rep.b.Base) ||
			(c.b.Kind == KindRange && !in.bi.AreSameProgramVar(c.b.High, rep.b.High)) {
			return candidate{}, false
		}
		if c.pr > rep.pr {
			rep.pr, rep.viaPB = c.pr, c.viaPB
		}
	}
	return rep, true
}

// addPotentialCandidates consults the unconfirmed length candidates recorded
// for k and fills kinds the flow round left empty. Potential-derived bounds
// commit at the heuristic priority.
func (in *inferencer) addPotentialCandidates(k Key, use Scope, out map[Kind]candidate) {
	pb, ok := in.bi.potentials[k]
	if !ok {
		return
	}
	pick := func(set KeySet) (Key, bool) {
		for _, c := range set.Sorted() {
			pv, ok := in.bi.progVar(c)
			if !ok {
				continue
			}
			if pv.IsNumConstant() || pv.Scope().VisibleIn(use) {
				return c, true
			}
		}
		return 0, false
	}
	if _, have := out[KindCount]; !have {
		if c, ok := pick(pb.count); ok {
			out[KindCount] = candidate{b: CountBound(c), pr: Heuristics, viaPB: true}
		}
	}
	if _, have := out[KindCountPlusOne]; !have {
		if c, ok := pick(pb.countPOne); ok {
			out[KindCountPlusOne] = candidate{b: CountPlusOneBound(c), pr: Heuristics, viaPB: true}
		}
	}
}

// inferBounds recomputes k's candidates over graph g and folds them into the
// iteration map. Folding, not replacing: each graph contributes what it can
// see, and a graph where k has no neighbours must not erase another graph's
// contribution. Keys that already hold a committed bound, and impossible
// keys, are left alone. Reports whether the candidate map changed.
func (in *inferencer) inferBounds(k Key, g *varGraph, fromPB bool) bool {
	if in.bi.hasEffectiveBounds(k) || in.bi.HasImpossibleBounds(k) {
		return false
	}
	ns := in.reachableKeys(k, g)
	next := in.predictBounds(k, ns, fromPB)
	if len(next) == 0 {
		return false
	}
	cm := in.cands[k]
	if cm == nil {
		cm = make(map[Kind]candidate)
		in.cands[k] = cm
	}
	changed := false
	for kind, c := range next {
		if old, ok := cm[kind]; !ok || old != c {
			cm[kind] = c
			changed = true
		}
	}
	return changed
}

// workList runs candidate recomputation over g until quiescent: a key whose
// candidates change re-queues its graph successors. The step cap bounds
// runaway oscillation on adversarial graphs.
func (in *inferencer) workList(g *varGraph, fromPB bool, pop KeySet) bool {
	queue := pop.Sorted()
	inQueue := NewKeySet(queue...)
	maxSteps := in.bi.cfg.MaxIterations * (len(queue) + 1)
	changed := false
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= maxSteps {
			in.bi.log.Printf("worklist stopped at the step cap (%d)", maxSteps)
			break
		}
		k := queue[0]
		queue = queue[1:]
		delete(inQueue, k)
		if !in.inferBounds(k, g, fromPB) {
			continue
		}
		changed = true
		for _, s := range g.successors(k).Sorted() {
			if pop.Has(s) && !inQueue.Has(s) {
				queue = append(queue, s)
				inQueue.Add(s)
			}
		}
	}
	return changed
}

// convergeInferredBounds commits the per-iteration candidates: for each key
// the preferred kind wins, an existing bound of the same or higher priority
// is kept, and provenance lands in the stats record.
func (in *inferencer) convergeInferredBounds() bool {
	bi := in.bi
	keys := make([]Key, 0, len(in.cands))
	for k := range in.cands {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	changed := false
	for _, k := range keys {
		cm := in.cands[k]
		if len(cm) == 0 {
			continue
		}
		var c candidate
		found := false
		for _, kind := range bi.kindOrder {
			if cand, ok := cm[kind]; ok {
				c, found = cand, true
				break
			}
		}
		if !found {
			continue
		}
		if _, ep, ok := bi.GetBounds(k, InvalidPriority); ok && ep <= c.pr {
			continue
		}
		if !bi.MergeBounds(k, c.pr, c.b) {
			continue
		}
		changed = true
		bi.stats.forget(k)
		if c.viaPB {
			bi.stats.AllocatorMatch.Add(k)
		} else {
			bi.stats.DataflowMatch.Add(k)
		}
	}
	return changed
}

// PerformFlowAnalysis runs the whole inference to fixpoint: repeated rounds
// of worklist propagation over the base and context graphs, first on flow
// evidence alone and then consulting potential bounds, followed by the
// heuristic passes for whatever is still unbounded. Keys whose neighbours
// disagreed and that no strategy could bound are marked impossible. The call
// is idempotent: re-running without new edges reports no change.
func (bi *Info) PerformFlowAnalysis(pc PointerClassifier) bool {
	bi.RefreshArrayPointers(pc)
	pop := bi.arrayPointerKeys()
	bi.failedFlow = NewKeySet()
	in := newInferencer(bi)

	changedAny := false
	for round := 0; ; round++ {
		if round >= bi.cfg.MaxIterations {
			bi.stats.CapHits++
			bi.log.Printf("flow analysis stopped at the iteration cap (%d rounds)", bi.cfg.MaxIterations)
			break
		}
		changed := false
		for _, fromPB := range []bool{false, true} {
			for _, g := range []*varGraph{bi.graph, bi.ctxFwd, bi.ctxRev} {
				if in.workList(g, fromPB, pop) {
					changed = true
				}
			}
		}
		if in.convergeInferredBounds() {
			changed = true
			changedAny = true
		}
		if !changed {
			break
		}
	}

	if bi.applyHeuristics() {
		changedAny = true
	}

	for _, k := range bi.failedFlow.Sorted() {
		if !bi.hasEffectiveBounds(k) && !bi.HasImpossibleBounds(k) {
			bi.MarkImpossible(k)
			changedAny = true
		}
	}
	return changedAny
}

// applyHeuristics is the fallback round for array pointers the flow analysis
// left unbounded: neighbouring integer parameters, then name-prefix pairs,
// then bare length words. Pointers moved by arithmetic are skipped, the
// naming evidence is too weak for them.
func (bi *Info) applyHeuristics() bool {
	if !bi.cfg.NameHeuristics && !bi.cfg.NeighbourHeuristics {
		return false
	}
	changed := false
	for _, k := range bi.arrayPointerKeys().Sorted() {
		if bi.hasEffectiveBounds(k) || bi.HasImpossibleBounds(k) || bi.HasPointerArithmetic(k) {
			continue
		}
		pv, ok := bi.progVar(k)
		if !ok {
			continue
		}
		if bi.cfg.NeighbourHeuristics && bi.neighbourParamMatch(k) {
			changed = true
			continue
		}
		if bi.cfg.NameHeuristics && bi.nameMatch(k, pv) {
			changed = true
		}
	}
	return changed
}

// neighbourParamMatch pairs a pointer parameter with an adjacent integer
// parameter, the common (buf, len) calling convention. The following
// parameter is preferred over the preceding one.
func (bi *Info) neighbourParamMatch(k Key) bool {
	pid, ok := bi.ParamForKey(k)
	if !ok {
		return false
	}
	for _, d := range []int{1, -1} {
		idx := pid.Index + d
		if idx < 0 {
			continue
		}
		nk, ok := bi.paramVars.get(ParamID{Func: pid.Func, Index: idx})
		if !ok {
			continue
		}
		nk = bi.resolve(nk)
		if !bi.integral.Has(nk) || bi.pointers.Has(nk) {
			continue
		}
		if bi.MergeBounds(k, Heuristics, CountBound(nk)) {
			bi.stats.forget(k)
			bi.stats.NeighbourParamMatch.Add(k)
			return true
		}
	}
	return false
}

// nameMatch scans visible integer variables for naming evidence: first a
// prefix pair like buf / buf_len, then a variable that is itself a bare
// length word.
func (bi *Info) nameMatch(k Key, pv *ProgramVar) bool {
	var prefixKey, wordKey Key
	for _, nk := range bi.integral.Sorted() {
		if nk == k || bi.pointers.Has(nk) {
			continue
		}
		nv, ok := bi.progVar(nk)
		if !ok || nv.IsNumConstant() {
			continue
		}
		if !nv.Scope().VisibleIn(pv.Scope()) {
			continue
		}
		name := nv.Name()
		if prefixKey == 0 && len(name) > len(pv.Name()) && strings.HasPrefix(name, pv.Name()) {
			suffix := strings.TrimLeft(strings.TrimPrefix(name, pv.Name()), "_")
			if bi.cfg.IsLengthWord(suffix) {
				prefixKey = nk
			}
		}
		if wordKey == 0 && bi.isBareLengthWord(name) {
			wordKey = nk
		}
	}
	if prefixKey != 0 {
		if bi.MergeBounds(k, Heuristics, CountBound(prefixKey)) {
			bi.stats.forget(k)
			bi.stats.NamePrefixMatch.Add(k)
			return true
		}
	}
	if wordKey != 0 {
		if bi.MergeBounds(k, Heuristics, CountBound(wordKey)) {
			bi.stats.forget(k)
			bi.stats.VariableNameMatch.Add(k)
			return true
		}
	}
	return false
}

func (bi *Info) isBareLengthWord(name string) bool {
	for _, w := range bi.cfg.LengthWords {
		if strings.EqualFold(name, w) {
			return true
		}
	}
	return false
}
