package frontend

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/the-shank/HandlERR/bounds"
)

// locOf returns the persistent location of n inside u, 1-based.
func locOf(u *Unit, n *sitter.Node) bounds.SourceLoc {
	if n == nil {
		return bounds.SourceLoc{}
	}
	pt := n.StartPoint()
	return bounds.SourceLoc{File: u.FilePath, Line: pt.Row + 1, Col: pt.Column + 1}
}

// LocationIndex remembers where each indexed declaration sits, so analysis
// results can be attached back to source positions after the AST is gone.
type LocationIndex struct {
	keys  map[bounds.SourceLoc]bounds.Key
	names map[bounds.SourceLoc]string
}

// NewLocationIndex returns an empty index.
func NewLocationIndex() *LocationIndex {
	return &LocationIndex{
		keys:  make(map[bounds.SourceLoc]bounds.Key),
		names: make(map[bounds.SourceLoc]string),
	}
}

// Record maps a declaration location to its name and bounds key.
func (ix *LocationIndex) Record(loc bounds.SourceLoc, name string, k bounds.Key) {
	if !loc.Valid() {
		return
	}
	ix.keys[loc] = k
	ix.names[loc] = name
}

// KeyAt returns the bounds key declared at loc.
func (ix *LocationIndex) KeyAt(loc bounds.SourceLoc) (bounds.Key, bool) {
	k, ok := ix.keys[loc]
	return k, ok
}

// Len reports how many declarations are indexed.
func (ix *LocationIndex) Len() int { return len(ix.keys) }

// Annotation pairs one array pointer declaration with its inference outcome.
// Bound is the rendered annotation text, empty when nothing was inferred;
// Impossible marks pointers that can never carry a bound.
type Annotation struct {
	Loc        bounds.SourceLoc
	Name       string
	Bound      string
	Priority   string
	Impossible bool
}

// Annotate matches the recorded declarations against the session's inferred
// bounds and returns one row per in-source array pointer, ordered by
// location. Unresolved pointers appear with an empty Bound.
func (ix *LocationIndex) Annotate(bi *bounds.Info) []Annotation {
	arr := bi.InSourceArrayPointerKeys()

	var out []Annotation
	for loc, k := range ix.keys {
		pv, ok := bi.ProgramVarFor(k)
		if !ok || !arr.Has(pv.Key()) {
			continue
		}
		a := Annotation{Loc: loc, Name: ix.names[loc]}
		if b, pr, ok := bi.GetBounds(k, bounds.InvalidPriority); ok {
			a.Bound = b.SourceString(bi)
			a.Priority = pr.String()
		} else if bi.HasImpossibleBounds(k) {
			a.Impossible = true
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Loc, out[j].Loc
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return out
}
