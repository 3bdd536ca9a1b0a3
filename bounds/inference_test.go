package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowPropagatesAcrossAssignment(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("len", 1))
	p := bi.InsertDeclaredBounds(ptrLocal("p", 2), CountBound(n))
	q := bi.InsertVariable(ptrLocal("q", 3))
	bi.MarkArrayPointer(p)
	bi.MarkArrayPointer(q)

	bi.AddAssignment(q, p) // q = p

	assert.True(t, bi.PerformFlowAnalysis(nil))

	got, pr, ok := bi.GetBounds(q, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), got)
	assert.Equal(t, FlowInferred, pr)
	assert.True(t, bi.Stats().DataflowMatch.Has(q))
}

func TestDeclaredBoundsImmutableUnderInference(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("len", 1))
	m := bi.InsertVariable(intLocal("m", 2))
	p := bi.InsertDeclaredBounds(ptrLocal("p", 3), CountBound(n))
	q := bi.InsertVariable(ptrLocal("q", 4))
	bi.MarkArrayPointer(p)
	bi.MarkArrayPointer(q)
	bi.AddAssignment(p, q) // q flows into p, but p is declared

	bi.PerformFlowAnalysis(nil)
	bi.PerformFlowAnalysis(nil)
	assert.False(t, bi.MergeBounds(p, FlowInferred, CountBound(m)))

	got, pr, ok := bi.GetBounds(p, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), got)
	assert.Equal(t, Declared, pr)
}

func TestPerformFlowAnalysisIdempotent(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("len", 1))
	p := bi.InsertDeclaredBounds(ptrLocal("p", 2), CountBound(n))
	q := bi.InsertVariable(ptrLocal("q", 3))
	bi.MarkArrayPointer(p)
	bi.MarkArrayPointer(q)
	bi.AddAssignment(q, p)

	assert.True(t, bi.PerformFlowAnalysis(nil))
	first, firstPr, ok := bi.GetBounds(q, InvalidPriority)
	require.True(t, ok)

	assert.False(t, bi.PerformFlowAnalysis(nil))
	second, secondPr, ok := bi.GetBounds(q, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, firstPr, secondPr)
}

func TestCyclicFlowTerminatesAndPropagates(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("n", 1))
	a := bi.InsertDeclaredBounds(ptrLocal("a", 2), CountBound(n))
	b := bi.InsertVariable(ptrLocal("b", 3))
	bi.MarkArrayPointer(a)
	bi.MarkArrayPointer(b)

	bi.AddAssignment(b, a) // b = a
	bi.AddAssignment(a, b) // a = b

	bi.PerformFlowAnalysis(nil)

	got, pr, ok := bi.GetBounds(b, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), got)
	assert.Equal(t, FlowInferred, pr)

	aGot, aPr, ok := bi.GetBounds(a, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), aGot)
	assert.Equal(t, Declared, aPr)
}

func TestAllocatorBoundSurvivesFlow(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("n", 1))
	m := bi.InsertVariable(intLocal("m", 2))
	p := bi.InsertDeclaredBounds(ptrLocal("p", 3), CountBound(m))
	buf := bi.InsertVariable(ptrLocal("buf", 4))
	bi.MarkArrayPointer(p)
	bi.MarkArrayPointer(buf)

	require.True(t, bi.MergeBounds(buf, Allocator, CountBound(n)))
	bi.AddAssignment(buf, p)

	bi.PerformFlowAnalysis(nil)

	got, pr, ok := bi.GetBounds(buf, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), got)
	assert.Equal(t, Allocator, pr)
}

func TestFlowStopsAtScopeBoundary(t *testing.T) {
	bi := newTestInfo()
	other := FuncID{Name: "helper", File: "main.c"}
	n := bi.InsertVariable(VarDecl{
		Class: DeclLocal, Name: "n", Func: other,
		Loc: SourceLoc{File: "main.c", Line: 1, Col: 3}, Integral: true, InSource: true,
	})
	p := bi.InsertVariable(VarDecl{
		Class: DeclLocal, Name: "p", Func: other,
		Loc: SourceLoc{File: "main.c", Line: 2, Col: 3}, Pointer: true, InSource: true,
	})
	require.True(t, bi.MergeBounds(p, Declared, CountBound(n)))

	q := bi.InsertVariable(ptrLocal("q", 3))
	bi.MarkArrayPointer(p)
	bi.MarkArrayPointer(q)
	bi.AddAssignment(q, p) // raw cross-function edge, no context copies

	bi.PerformFlowAnalysis(nil)

	_, _, ok := bi.GetBounds(q, InvalidPriority)
	assert.False(t, ok, "a bound over another function's local must not leak")
}

func TestNeighbourParamHeuristic(t *testing.T) {
	bi := newTestInfo()
	fn := FuncID{Name: "read_data", File: "main.c"}
	buf := bi.InsertVariable(ptrParam("buf", fn, 0))
	bl := bi.InsertVariable(intParam("buf_len", fn, 1))
	bi.MarkArrayPointer(buf)

	bi.PerformFlowAnalysis(nil)

	got, pr, ok := bi.GetBounds(buf, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(bl), got)
	assert.Equal(t, Heuristics, pr)
	assert.True(t, bi.Stats().NeighbourParamMatch.Has(buf))
}

func TestPrecedingParamAlsoMatches(t *testing.T) {
	bi := newTestInfo()
	fn := FuncID{Name: "write_data", File: "main.c"}
	cnt := bi.InsertVariable(intParam("count", fn, 0))
	buf := bi.InsertVariable(ptrParam("buf", fn, 1))
	bi.MarkArrayPointer(buf)

	bi.PerformFlowAnalysis(nil)

	got, _, ok := bi.GetBounds(buf, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(cnt), got)
}

func TestNamePrefixHeuristic(t *testing.T) {
	bi := newTestInfo()
	arr := bi.InsertVariable(VarDecl{
		Class: DeclGlobal, Name: "events",
		Loc: SourceLoc{File: "main.c", Line: 1, Col: 1}, Pointer: true, InSource: true,
	})
	sz := bi.InsertVariable(VarDecl{
		Class: DeclGlobal, Name: "events_size",
		Loc: SourceLoc{File: "main.c", Line: 2, Col: 1}, Integral: true, InSource: true,
	})
	bi.MarkArrayPointer(arr)

	bi.PerformFlowAnalysis(nil)

	got, pr, ok := bi.GetBounds(arr, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(sz), got)
	assert.Equal(t, Heuristics, pr)
	assert.True(t, bi.Stats().NamePrefixMatch.Has(arr))
}

func TestBareLengthWordHeuristic(t *testing.T) {
	bi := newTestInfo()
	data := bi.InsertVariable(ptrLocal("data", 1))
	ln := bi.InsertVariable(intLocal("len", 2))
	bi.MarkArrayPointer(data)

	bi.PerformFlowAnalysis(nil)

	got, _, ok := bi.GetBounds(data, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(ln), got)
	assert.True(t, bi.Stats().VariableNameMatch.Has(data))
}

func TestPointerArithmeticWeakensHeuristics(t *testing.T) {
	bi := newTestInfo()
	fn := FuncID{Name: "scan", File: "main.c"}
	buf := bi.InsertVariable(ptrParam("buf", fn, 0))
	bi.InsertVariable(intParam("buf_len", fn, 1))
	bi.MarkArrayPointer(buf)
	bi.RecordArithmeticOperation(buf)

	bi.PerformFlowAnalysis(nil)

	_, _, ok := bi.GetBounds(buf, InvalidPriority)
	assert.False(t, ok)
	assert.False(t, bi.Stats().NeighbourParamMatch.Has(buf))
}

func TestImpossibleBeatsHeuristicMatch(t *testing.T) {
	bi := newTestInfo()
	fn := FuncID{Name: "clone", File: "main.c"}
	buf := bi.InsertVariable(ptrParam("buf", fn, 0))
	bi.InsertVariable(intParam("buf_len", fn, 1))
	bi.MarkArrayPointer(buf)
	bi.MarkImpossible(buf)

	bi.PerformFlowAnalysis(nil)

	_, _, ok := bi.GetBounds(buf, InvalidPriority)
	assert.False(t, ok)
	assert.True(t, bi.HasImpossibleBounds(buf))
}

func TestConflictingNeighboursBecomeImpossible(t *testing.T) {
	bi := newTestInfo()
	alpha := bi.InsertVariable(intLocal("alpha", 1))
	beta := bi.InsertVariable(intLocal("beta", 2))
	p1 := bi.InsertDeclaredBounds(ptrLocal("p1", 3), CountBound(alpha))
	p2 := bi.InsertDeclaredBounds(ptrLocal("p2", 4), CountBound(beta))
	q := bi.InsertVariable(ptrLocal("q", 5))
	bi.MarkArrayPointer(p1)
	bi.MarkArrayPointer(p2)
	bi.MarkArrayPointer(q)

	bi.AddAssignment(q, p1)
	bi.AddAssignment(q, p2)

	bi.PerformFlowAnalysis(nil)

	_, _, ok := bi.GetBounds(q, InvalidPriority)
	assert.False(t, ok)
	assert.True(t, bi.HasImpossibleBounds(q))
}

func TestPotentialCountBounds(t *testing.T) {
	bi := newTestInfo()
	p := bi.InsertVariable(ptrLocal("p", 1))
	n := bi.InsertVariable(intLocal("n", 2))
	bi.MarkArrayPointer(p)
	bi.AddPotentialCountBounds(p, n)

	bi.PerformFlowAnalysis(nil)

	got, pr, ok := bi.GetBounds(p, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(n), got)
	assert.Equal(t, Heuristics, pr)
	assert.True(t, bi.Stats().AllocatorMatch.Has(p))
}

func TestPotentialCountPlusOne(t *testing.T) {
	bi := newTestInfo()
	s := bi.InsertVariable(ptrLocal("s", 1))
	src := bi.InsertVariable(ptrLocal("src", 2))
	bi.MarkNtArrayPointer(s)
	bi.AddPotentialCountPlusOneBounds(s, src)

	bi.PerformFlowAnalysis(nil)

	got, _, ok := bi.GetBounds(s, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountPlusOneBound(src), got)
}

func TestPreferredKindOrder(t *testing.T) {
	bi := newTestInfo()
	p := bi.InsertVariable(ptrLocal("p", 1))
	n := bi.InsertVariable(intLocal("n", 2))
	m := bi.InsertVariable(ptrLocal("m", 3))
	bi.MarkArrayPointer(p)
	bi.AddPotentialCountBounds(p, n)
	bi.AddPotentialCountPlusOneBounds(p, m)

	bi.PerformFlowAnalysis(nil)

	got, _, ok := bi.GetBounds(p, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, KindCount, got.Kind, "count is preferred over count-plus-one")
}

func TestStructFieldUsesImmediateNeighboursOnly(t *testing.T) {
	bi := newTestInfo()
	loc := func(l uint32) SourceLoc { return SourceLoc{File: "s.c", Line: l, Col: 5} }

	lenField := bi.InsertVariable(VarDecl{
		Class: DeclField, Name: "len", Struct: "vec", Loc: loc(1), Integral: true, InSource: true,
	})
	data := bi.InsertVariable(VarDecl{
		Class: DeclField, Name: "data", Struct: "vec", Loc: loc(2), Pointer: true, InSource: true,
	})
	direct := bi.InsertDeclaredBounds(VarDecl{
		Class: DeclField, Name: "items", Struct: "vec", Loc: loc(3), Pointer: true, InSource: true,
	}, CountBound(lenField))
	far := bi.InsertDeclaredBounds(VarDecl{
		Class: DeclField, Name: "spare", Struct: "vec", Loc: loc(4), Pointer: true, InSource: true,
	}, CountBound(lenField))
	hop := bi.InsertVariable(VarDecl{
		Class: DeclField, Name: "hop", Struct: "vec", Loc: loc(5), Pointer: true, InSource: true,
	})
	bi.MarkArrayPointer(data)
	bi.MarkArrayPointer(hop)

	bi.AddAssignment(data, direct) // one hop: usable
	bi.AddAssignment(hop, far)
	bi.AddAssignment(data, hop) // two hops from far: not usable for data

	bi.PerformFlowAnalysis(nil)

	got, _, ok := bi.GetBounds(data, InvalidPriority)
	require.True(t, ok)
	assert.Equal(t, CountBound(lenField), got)
}
