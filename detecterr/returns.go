package detecterr

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/the-shank/HandlERR/internal/cfg"
)

// Convention names an error-return convention a function was observed to
// follow.
type Convention string

const (
	// ReturnsNullOnError marks functions that return a null pointer
	// constant under an error guard.
	ReturnsNullOnError Convention = "returns-null-on-error"
	// ReturnsNegativeOnError marks functions that return a negative
	// constant under an error guard.
	ReturnsNegativeOnError Convention = "returns-negative-on-error"
)

// Guard is one condition that decides whether a sentinel return executes.
type Guard struct {
	Kind GuardKind `json:"kind"`
	Text string    `json:"text"`
	Line int       `json:"line"`
	Col  int       `json:"col"`
}

// Finding records one guarded sentinel return.
type Finding struct {
	Func       FuncID     `json:"func"`
	Convention Convention `json:"convention"`
	Line       int        `json:"line"`
	Col        int        `json:"col"`
	Guards     []Guard    `json:"guards"`
}

// returnAnalysis is the per-function machinery both return visitors share:
// the function's control flow graph, its post-dominator relation, and the
// statement-to-block map the graph keeps internally.
type returnAnalysis struct {
	src []byte
	id  FuncID
	g   *cfg.Graph
	pd  *cfg.PostDom
}

func newReturnAnalysis(src []byte, id FuncID, fn, body *sitter.Node) *returnAnalysis {
	g := cfg.Build(fn, body)
	return &returnAnalysis{src: src, id: id, g: g, pd: cfg.NewPostDom(g)}
}

// guardsFor classifies the conditions a return statement is
// control-dependent on. An empty result means the return always executes.
func (ra *returnAnalysis) guardsFor(ret *sitter.Node) []Guard {
	block := ra.g.NodeFor(ret)
	if block == nil {
		return nil
	}
	var out []Guard
	for _, dep := range ra.pd.GoverningConditions(block) {
		cond := dep.Condition
		out = append(out, Guard{
			Kind: classifyGuard(cond, ra.src),
			Text: guardText(cond, ra.src),
			Line: int(cond.StartPoint().Row) + 1,
			Col:  int(cond.StartPoint().Column) + 1,
		})
	}
	return out
}

func (ra *returnAnalysis) finding(ret *sitter.Node, conv Convention, guards []Guard) Finding {
	return Finding{
		Func:       ra.id,
		Convention: conv,
		Line:       int(ret.StartPoint().Row) + 1,
		Col:        int(ret.StartPoint().Column) + 1,
		Guards:     guards,
	}
}

// walkReturns applies fn to every return statement under n.
func walkReturns(n *sitter.Node, fn func(ret *sitter.Node)) {
	if n == nil {
		return
	}
	if n.Type() == "return_statement" {
		fn(n)
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkReturns(n.NamedChild(i), fn)
	}
}

// nullReturnVisitor flags returns of a null pointer constant whose
// execution a condition decides.
type nullReturnVisitor struct {
	*returnAnalysis
}

func (v *nullReturnVisitor) run(body *sitter.Node) []Finding {
	var out []Finding
	walkReturns(body, func(ret *sitter.Node) {
		val := returnValue(ret)
		if val == nil || !isNullExpr(val, v.src) {
			return
		}
		guards := v.guardsFor(ret)
		if len(guards) == 0 {
			return
		}
		out = append(out, v.finding(ret, ReturnsNullOnError, guards))
	})
	return out
}

// negativeReturnVisitor flags returns of a negated constant whose
// execution a condition decides.
type negativeReturnVisitor struct {
	*returnAnalysis
}

func (v *negativeReturnVisitor) run(body *sitter.Node) []Finding {
	var out []Finding
	walkReturns(body, func(ret *sitter.Node) {
		val := returnValue(ret)
		if val == nil || !isNegativeConst(val, v.src) {
			return
		}
		guards := v.guardsFor(ret)
		if len(guards) == 0 {
			return
		}
		out = append(out, v.finding(ret, ReturnsNegativeOnError, guards))
	})
	return out
}
