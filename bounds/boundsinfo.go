package bounds

import (
	"fmt"
	"io"
	"log"
	"os"
)

// DeclClass says which kind of declaration a VarDecl describes.
type DeclClass uint8

const (
	DeclLocal DeclClass = iota
	DeclGlobal
	DeclParam
	DeclReturn
	DeclField
)

func (c DeclClass) String() string {
	switch c {
	case DeclLocal:
		return "local"
	case DeclGlobal:
		return "global"
	case DeclParam:
		return "param"
	case DeclReturn:
		return "return"
	case DeclField:
		return "field"
	default:
		return "unknown"
	}
}

// VarDecl carries the facts about one declaration that the session needs to
// allocate and dedup a bounds key. Locals, globals and fields are keyed by
// declaration location; parameters and returns by function signature, so a
// prototype and its definition in another file share keys.
type VarDecl struct {
	Class  DeclClass
	Name   string
	Loc    SourceLoc
	Func   FuncID // owning function for locals, params and returns
	Index  int    // parameter position for DeclParam
	Struct string // enclosing struct for DeclField

	// Type facts supplied by the host. Pointer admits the key into the
	// pointer population, Integral admits it as a length candidate for the
	// heuristic passes, InSource scopes it into reports.
	Pointer  bool
	Integral bool
	InSource bool
}

// Eligible reports whether the declaration can carry a bounds key at all.
// Unnamed declarations and declarations without a stable identity cannot.
func (d VarDecl) Eligible() bool {
	switch d.Class {
	case DeclLocal, DeclGlobal:
		return d.Name != "" && d.Loc.Valid()
	case DeclField:
		return d.Name != "" && d.Struct != "" && d.Loc.Valid()
	case DeclParam:
		return d.Name != "" && d.Func.Name != "" && d.Index >= 0
	case DeclReturn:
		return d.Func.Name != ""
	default:
		return false
	}
}

func (d VarDecl) scope() Scope {
	switch d.Class {
	case DeclGlobal:
		return GlobalScope()
	case DeclLocal:
		return FunctionScope(d.Func.Name, d.Func.File, d.Func.Static)
	case DeclParam:
		return ParamScope(d.Func.Name, d.Func.File, d.Func.Static)
	case DeclReturn:
		return FunctionScope(d.Func.Name, d.Func.File, d.Func.Static)
	case DeclField:
		return StructScope(d.Struct)
	default:
		return GlobalScope()
	}
}

func (d VarDecl) displayName() string {
	if d.Class == DeclReturn && d.Name == "" {
		return d.Func.Name
	}
	return d.Name
}

// PointerClassifier answers checked-pointer-kind queries for bounds keys. It
// stands in for the constraint stage that decides which pointers become
// arrays; the session only consumes its verdicts.
type PointerClassifier interface {
	IsArrayPointer(Key) bool
	IsNtArrayPointer(Key) bool
}

// Info is the session-scoped hub of the analysis: the variable registry, the
// flow graphs, the bounds store and the classification sets all live here.
// One Info instance serves one whole-program pass; it is not safe for
// concurrent mutation.
type Info struct {
	cfg       Config
	kindOrder []Kind
	log       *log.Logger

	keyCount Key
	vars     map[Key]*ProgramVar
	forward  map[Key]Key // retired key -> survivor, after merges

	declVars  *bimap[SourceLoc, Key]
	paramVars *bimap[ParamID, Key]
	funcVars  *bimap[FuncID, Key]
	constVars map[uint64]Key

	bmap map[Key]map[Priority]Bound

	graph  *varGraph // base flow graph
	ctxFwd *varGraph // base -> call-site copies
	ctxRev *varGraph // call-site copies -> base
	ctx    map[ctxKey]Key

	potentials map[Key]*potentialBounds

	pointers   KeySet
	arrPtrs    KeySet
	ntArrPtrs  KeySet
	inSrc      KeySet
	integral   KeySet
	arith      KeySet
	impossible KeySet
	tmpKeys    KeySet

	stats      *Stats
	failedFlow KeySet
}

// NewInfo builds a session. A nil logger falls back to stderr. An invalid
// config is replaced by the defaults, with a log line.
func NewInfo(cfg Config, logger *log.Logger) *Info {
	if logger == nil {
		logger = log.New(os.Stderr, "[bounds] ", log.LstdFlags)
	}
	if err := cfg.validate(); err != nil {
		logger.Printf("invalid config (%v), using defaults", err)
		cfg = Default()
	}
	order, _ := cfg.kindOrder()
	return &Info{
		cfg:        cfg,
		kindOrder:  order,
		log:        logger,
		vars:       make(map[Key]*ProgramVar),
		forward:    make(map[Key]Key),
		declVars:   newBimap[SourceLoc, Key](),
		paramVars:  newBimap[ParamID, Key](),
		funcVars:   newBimap[FuncID, Key](),
		constVars:  make(map[uint64]Key),
		bmap:       make(map[Key]map[Priority]Bound),
		graph:      newVarGraph(),
		ctxFwd:     newVarGraph(),
		ctxRev:     newVarGraph(),
		ctx:        make(map[ctxKey]Key),
		potentials: make(map[Key]*potentialBounds),
		pointers:   NewKeySet(),
		arrPtrs:    NewKeySet(),
		ntArrPtrs:  NewKeySet(),
		inSrc:      NewKeySet(),
		integral:   NewKeySet(),
		arith:      NewKeySet(),
		impossible: NewKeySet(),
		tmpKeys:    NewKeySet(),
		stats:      newStats(),
		failedFlow: NewKeySet(),
	}
}

// Config returns the session configuration.
func (bi *Info) Config() Config { return bi.cfg }

// Stats returns the strategy provenance record.
func (bi *Info) Stats() *Stats { return bi.stats }

func (bi *Info) allocKey() Key {
	bi.keyCount++
	return bi.keyCount
}

// resolve follows merge forwarding to the surviving key.
func (bi *Info) resolve(k Key) Key {
	r := k
	for {
		n, ok := bi.forward[r]
		if !ok {
			break
		}
		r = n
	}
	if r != k {
		bi.forward[k] = r
	}
	return r
}

func (bi *Info) recordDeclFacts(k Key, d VarDecl) {
	if d.Pointer {
		bi.pointers.Add(k)
	}
	if d.Integral {
		bi.integral.Add(k)
	}
	if d.InSource {
		bi.inSrc.Add(k)
	}
}

// InsertVariable allocates, or finds, the bounds key for a declaration.
// Calling it on an ineligible declaration is a caller bug and panics.
func (bi *Info) InsertVariable(d VarDecl) Key {
	if !d.Eligible() {
		panic(fmt.Sprintf("bounds: declaration %q (%s) cannot carry a bounds key", d.Name, d.Class))
	}
	var (
		k  Key
		ok bool
	)
	switch d.Class {
	case DeclParam:
		pid := ParamID{Func: d.Func, Index: d.Index}
		if k, ok = bi.paramVars.get(pid); !ok {
			k = bi.allocKey()
			bi.paramVars.insert(pid, k)
			bi.vars[k] = newProgramVar(k, d.displayName(), d.scope(), d.Loc)
		}
	case DeclReturn:
		if k, ok = bi.funcVars.get(d.Func); !ok {
			k = bi.allocKey()
			bi.funcVars.insert(d.Func, k)
			bi.vars[k] = newProgramVar(k, d.displayName(), d.scope(), d.Loc)
		}
	default:
		if k, ok = bi.declVars.get(d.Loc); !ok {
			k = bi.allocKey()
			bi.declVars.insert(d.Loc, k)
			bi.vars[k] = newProgramVar(k, d.displayName(), d.scope(), d.Loc)
		}
	}
	bi.recordDeclFacts(k, d)
	return k
}

// GetVariable returns the key for a declaration, allocating on first sight.
// Panics on ineligible declarations, like InsertVariable.
func (bi *Info) GetVariable(d VarDecl) Key {
	return bi.InsertVariable(d)
}

// TryGetVariable is the non-fatal lookup: it never allocates and reports
// false for ineligible or unseen declarations.
func (bi *Info) TryGetVariable(d VarDecl) (Key, bool) {
	if !d.Eligible() {
		return 0, false
	}
	switch d.Class {
	case DeclParam:
		return bi.paramVars.get(ParamID{Func: d.Func, Index: d.Index})
	case DeclReturn:
		return bi.funcVars.get(d.Func)
	default:
		return bi.declVars.get(d.Loc)
	}
}

// GetConstKey interns a numeric constant, deduplicated by value.
func (bi *Info) GetConstKey(v uint64) Key {
	if k, ok := bi.constVars[v]; ok {
		return k
	}
	k := bi.allocKey()
	bi.constVars[v] = k
	bi.vars[k] = newConstProgramVar(k, v)
	return k
}

// GetRandomBKey allocates a fresh key with no variable behind it, for
// intermediate expression results. Such keys carry edges and candidate
// bounds but never appear in reports.
func (bi *Info) GetRandomBKey() Key {
	k := bi.allocKey()
	bi.tmpKeys.Add(k)
	return k
}

// IsTempKey reports whether k was synthesized by GetRandomBKey.
func (bi *Info) IsTempKey(k Key) bool { return bi.tmpKeys.Has(bi.resolve(k)) }

func (bi *Info) progVar(k Key) (*ProgramVar, bool) {
	pv, ok := bi.vars[bi.resolve(k)]
	return pv, ok
}

// ProgramVarFor exposes the registry record behind a key.
func (bi *Info) ProgramVarFor(k Key) (*ProgramVar, bool) {
	return bi.progVar(k)
}

// varName resolves a key to its source name for rendering.
func (bi *Info) varName(k Key) string {
	if pv, ok := bi.progVar(k); ok {
		return pv.Name()
	}
	return fmt.Sprintf("#%d", k)
}

// VarName resolves a key to its source name, or a placeholder for
// synthesized keys.
func (bi *Info) VarName(k Key) string { return bi.varName(k) }

// AreSameProgramVar reports whether two keys denote the same variable,
// either by identity after merges or by an identical registry record.
func (bi *Info) AreSameProgramVar(a, b Key) bool {
	ra, rb := bi.resolve(a), bi.resolve(b)
	if ra == rb {
		return true
	}
	va, aok := bi.vars[ra]
	vb, bok := bi.vars[rb]
	if !aok || !bok {
		return false
	}
	return va.Name() == vb.Name() && va.Scope() == vb.Scope() && va.Loc() == vb.Loc() &&
		va.IsNumConstant() == vb.IsNumConstant()
}

// IsFuncParamBoundsKey reports whether k is a function parameter slot.
func (bi *Info) IsFuncParamBoundsKey(k Key) bool {
	_, ok := bi.paramVars.getRev(bi.resolve(k))
	return ok
}

// ParamForKey returns the parameter slot behind k, if any.
func (bi *Info) ParamForKey(k Key) (ParamID, bool) {
	return bi.paramVars.getRev(bi.resolve(k))
}

// IsFuncReturnBoundsKey reports whether k is a function return slot.
func (bi *Info) IsFuncReturnBoundsKey(k Key) bool {
	_, ok := bi.funcVars.getRev(bi.resolve(k))
	return ok
}

// ReturnForKey returns the function whose return slot k is, if any.
func (bi *Info) ReturnForKey(k Key) (FuncID, bool) {
	return bi.funcVars.getRev(bi.resolve(k))
}

// AddAssignment records that the value of rhs flows into lhs.
func (bi *Info) AddAssignment(lhs, rhs Key) {
	if lhs == 0 || rhs == 0 {
		panic("bounds: assignment over the zero key")
	}
	l, r := bi.resolve(lhs), bi.resolve(rhs)
	if l == r {
		return
	}
	bi.graph.addEdge(r, l)
}

// RecordArithmeticOperation marks k as a pointer that is moved by
// arithmetic. The mark weakens heuristic evidence for k but never blocks
// declared, allocator or flow bounds.
func (bi *Info) RecordArithmeticOperation(k Key) {
	bi.arith.Add(bi.resolve(k))
}

// HasPointerArithmetic reports whether k was marked by
// RecordArithmeticOperation.
func (bi *Info) HasPointerArithmetic(k Key) bool {
	return bi.arith.Has(bi.resolve(k))
}

// MarkPointer admits k into the pointer population.
func (bi *Info) MarkPointer(k Key) { bi.pointers.Add(bi.resolve(k)) }

// MarkArrayPointer records that the constraint stage resolved k to an array
// pointer.
func (bi *Info) MarkArrayPointer(k Key) {
	k = bi.resolve(k)
	bi.pointers.Add(k)
	bi.arrPtrs.Add(k)
}

// MarkNtArrayPointer records that k is a null-terminated array pointer.
func (bi *Info) MarkNtArrayPointer(k Key) {
	k = bi.resolve(k)
	bi.pointers.Add(k)
	bi.ntArrPtrs.Add(k)
}

// RefreshArrayPointers re-derives the array pointer sets from the
// classifier's current verdicts.
func (bi *Info) RefreshArrayPointers(pc PointerClassifier) {
	if pc == nil {
		return
	}
	for _, k := range bi.pointers.Sorted() {
		if pc.IsArrayPointer(k) {
			bi.arrPtrs.Add(k)
		}
		if pc.IsNtArrayPointer(k) {
			bi.ntArrPtrs.Add(k)
		}
	}
}

// arrayPointerKeys is the whole array pointer population, nt included.
func (bi *Info) arrayPointerKeys() KeySet {
	out := NewKeySet()
	out.AddAll(bi.arrPtrs)
	out.AddAll(bi.ntArrPtrs)
	return out
}

// InSourceArrayPointerKeys returns the array pointer keys declared in files
// under migration, the population reports are scoped to.
func (bi *Info) InSourceArrayPointerKeys() KeySet {
	out := NewKeySet()
	for k := range bi.arrayPointerKeys() {
		if bi.inSrc.Has(k) && !bi.tmpKeys.Has(k) {
			out.Add(k)
		}
	}
	return out
}

// AddPotentialCountBounds records c as an unconfirmed count candidate for k.
func (bi *Info) AddPotentialCountBounds(k, c Key) {
	bi.potentialsFor(bi.resolve(k)).addCount(bi.resolve(c))
}

// AddPotentialCountPlusOneBounds records c as an unconfirmed count-plus-one
// candidate for k.
func (bi *Info) AddPotentialCountPlusOneBounds(k, c Key) {
	bi.potentialsFor(bi.resolve(k)).addCountPlusOne(bi.resolve(c))
}

func (bi *Info) potentialsFor(k Key) *potentialBounds {
	pb, ok := bi.potentials[k]
	if !ok {
		pb = newPotentialBounds()
		bi.potentials[k] = pb
	}
	return pb
}

// InsertDeclaredBounds records a bounds annotation already present in the
// source, the strongest evidence there is. A zero bound means the annotation
// had a shape the engine cannot represent; those are counted separately.
func (bi *Info) InsertDeclaredBounds(d VarDecl, b Bound) Key {
	k := bi.GetVariable(d)
	r := bi.resolve(k)
	if !b.IsValid() {
		bi.stats.DeclaredButNotHandled.Add(r)
		return k
	}
	if bi.MergeBounds(k, Declared, b) {
		bi.stats.forget(r)
		bi.stats.DeclaredBounds.Add(r)
	}
	return k
}

// AddConstantArrayBounds gives a fixed-size array declaration T a[N] its
// declared count(N) bound over the interned constant.
func (bi *Info) AddConstantArrayBounds(d VarDecl, n uint64) Key {
	return bi.InsertDeclaredBounds(d, CountBound(bi.GetConstKey(n)))
}

func checkBoundArgs(p Priority, b Bound) {
	if p == InvalidPriority || p > Heuristics {
		panic(fmt.Sprintf("bounds: bad priority %d", p))
	}
	if !b.IsValid() {
		panic("bounds: storing an invalid bound")
	}
}

// MergeBounds records b for k at priority p. The call is refused when k is
// marked impossible or already holds a bound at a strictly higher priority;
// at equal priority the new bound wins. Reports whether the store changed.
func (bi *Info) MergeBounds(k Key, p Priority, b Bound) bool {
	checkBoundArgs(p, b)
	k = bi.resolve(k)
	if bi.impossible.Has(k) {
		return false
	}
	km := bi.bmap[k]
	if km == nil {
		km = make(map[Priority]Bound)
		bi.bmap[k] = km
	}
	for _, hp := range prioList {
		if hp == p {
			break
		}
		if _, ok := km[hp]; ok {
			return false
		}
	}
	old, had := km[p]
	km[p] = b
	return !had || old != b
}

// ReplaceBounds is the unconditional override for newly discovered ground
// truth: it clears every recorded bound and the impossible mark, then stores
// b at p.
func (bi *Info) ReplaceBounds(k Key, p Priority, b Bound) {
	checkBoundArgs(p, b)
	k = bi.resolve(k)
	delete(bi.impossible, k)
	delete(bi.bmap, k)
	bi.bmap[k] = map[Priority]Bound{p: b}
}

// RemoveBounds drops the bound recorded at p; InvalidPriority drops all of
// them, for re-inference after a structural edit.
func (bi *Info) RemoveBounds(k Key, p Priority) {
	k = bi.resolve(k)
	if p == InvalidPriority {
		delete(bi.bmap, k)
		return
	}
	if km, ok := bi.bmap[k]; ok {
		delete(km, p)
		if len(km) == 0 {
			delete(bi.bmap, k)
		}
	}
}

// GetBounds returns the bound stored for k at the requested priority, or the
// effective (highest priority) one when req is InvalidPriority, together
// with the priority it was found at. Impossible keys report no bound.
func (bi *Info) GetBounds(k Key, req Priority) (Bound, Priority, bool) {
	k = bi.resolve(k)
	if bi.impossible.Has(k) {
		return Bound{}, InvalidPriority, false
	}
	km := bi.bmap[k]
	if req != InvalidPriority {
		b, ok := km[req]
		return b, req, ok
	}
	for _, p := range prioList {
		if b, ok := km[p]; ok {
			return b, p, true
		}
	}
	return Bound{}, InvalidPriority, false
}

// hasEffectiveBounds reports whether k holds any bound at all.
func (bi *Info) hasEffectiveBounds(k Key) bool {
	_, _, ok := bi.GetBounds(k, InvalidPriority)
	return ok
}

// MarkImpossible permanently bars k from receiving inferred bounds and drops
// whatever was recorded. Only ReplaceBounds undoes the mark.
func (bi *Info) MarkImpossible(k Key) {
	k = bi.resolve(k)
	bi.impossible.Add(k)
	delete(bi.bmap, k)
	bi.stats.forget(k)
}

// HasImpossibleBounds reports whether k carries the permanent no-bounds mark.
func (bi *Info) HasImpossibleBounds(k Key) bool {
	return bi.impossible.Has(bi.resolve(k))
}

// MergeBoundsKey unifies two keys after the constraint stage discovers they
// denote the same pointer: from's edges are redirected onto to, its
// higher-priority bounds migrate, and every lookup of from lands on to.
func (bi *Info) MergeBoundsKey(to, from Key) {
	to, from = bi.resolve(to), bi.resolve(from)
	if to == from {
		return
	}
	bi.graph.mergeNode(from, to)
	bi.ctxFwd.mergeNode(from, to)
	bi.ctxRev.mergeNode(from, to)

	for _, p := range prioList {
		if b, ok := bi.bmap[from][p]; ok {
			bi.MergeBounds(to, p, b)
		}
	}
	delete(bi.bmap, from)

	if pb, ok := bi.potentials[from]; ok {
		dst := bi.potentialsFor(to)
		dst.count.AddAll(pb.count)
		dst.countPOne.AddAll(pb.countPOne)
		delete(bi.potentials, from)
	}

	for _, s := range []KeySet{
		bi.pointers, bi.arrPtrs, bi.ntArrPtrs, bi.inSrc,
		bi.integral, bi.arith, bi.tmpKeys, bi.failedFlow,
	} {
		if s.Has(from) {
			delete(s, from)
			s.Add(to)
		}
	}
	if bi.impossible.Has(from) {
		delete(bi.impossible, from)
		bi.MarkImpossible(to)
	}

	bi.declVars.replaceValue(from, to)
	bi.paramVars.replaceValue(from, to)
	bi.funcVars.replaceValue(from, to)
	for v, k := range bi.constVars {
		if k == from {
			bi.constVars[v] = to
		}
	}
	type ctxEdit struct {
		old, repl ctxKey
		copy      Key
	}
	var edits []ctxEdit
	for ck, k := range bi.ctx {
		nk := ck
		if nk.base == from {
			nk.base = to
		}
		if k == from {
			k = to
		}
		if nk != ck || k != bi.ctx[ck] {
			edits = append(edits, ctxEdit{old: ck, repl: nk, copy: k})
		}
	}
	for _, e := range edits {
		delete(bi.ctx, e.old)
		if exist, ok := bi.ctx[e.repl]; ok && exist != e.copy {
			// both keys already had a copy at this site; unify the copies
			bi.MergeBoundsKey(exist, e.copy)
			continue
		}
		bi.ctx[e.repl] = e.copy
	}

	delete(bi.vars, from)
	bi.stats.forget(from)
	bi.forward[from] = to
}

// PrintStats writes the per-strategy provenance counts for in-source array
// pointers, as text or JSON.
func (bi *Info) PrintStats(w io.Writer, jsonFormat bool) error {
	return bi.stats.Print(w, bi.InSourceArrayPointerKeys(), jsonFormat)
}

// WriteFlowGraphDot emits the base flow graph in Graphviz format. Nodes show
// the variable name plus its effective bound, or the impossible mark.
func (bi *Info) WriteFlowGraphDot(w io.Writer) error {
	return bi.graph.writeDot(w, "flow", bi.nodeLabel)
}

// DumpAVarGraph writes the base flow graph to a .dot file at path.
func (bi *Info) DumpAVarGraph(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump flow graph: %w", err)
	}
	defer f.Close()
	if err := bi.WriteFlowGraphDot(f); err != nil {
		return fmt.Errorf("dump flow graph: %w", err)
	}
	return nil
}

func (bi *Info) nodeLabel(k Key) string {
	name := bi.varName(k)
	if bi.impossible.Has(k) {
		return name + " [impossible]"
	}
	if b, _, ok := bi.GetBounds(k, InvalidPriority); ok {
		return name + " " + b.SourceString(bi)
	}
	return name
}
