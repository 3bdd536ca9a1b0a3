package bounds

import "fmt"

// Kind distinguishes the shapes a bound expression can take.
type Kind uint8

const (
	// KindInvalid is the zero Kind; a Bound with this kind means "no bound".
	KindInvalid Kind = iota
	// KindCount is count(n): valid for n elements.
	KindCount
	// KindCountPlusOne is count(n + 1): valid for n elements plus a terminator slot.
	KindCountPlusOne
	// KindByteCount is byte_count(n): valid for n bytes.
	KindByteCount
	// KindRange is bounds(lo, hi): valid between two pointer positions.
	KindRange
)

// String returns the annotation keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindCountPlusOne:
		return "count+1"
	case KindByteCount:
		return "byte_count"
	case KindRange:
		return "bounds"
	default:
		return "invalid"
	}
}

// Priority orders competing bounds for the same key. Lower values win:
// a user-declared bound always beats an allocator-derived one, which beats
// anything the flow analysis or the heuristics produce.
type Priority uint8

const (
	// Declared bounds come from annotations already present in the source.
	Declared Priority = iota + 1
	// Allocator bounds come from allocation-site reasoning.
	Allocator
	// FlowInferred bounds come from dataflow propagation over the variable graph.
	FlowInferred
	// Heuristics bounds come from naming and parameter-adjacency guesses.
	Heuristics
	// InvalidPriority is the sentinel for "no priority"; RemoveBounds treats it
	// as "all priorities".
	InvalidPriority
)

// prioList is every real priority in descending order of strength.
var prioList = []Priority{Declared, Allocator, FlowInferred, Heuristics}

// String returns the reporting name of the priority.
func (p Priority) String() string {
	switch p {
	case Declared:
		return "declared"
	case Allocator:
		return "allocator"
	case FlowInferred:
		return "flow-inferred"
	case Heuristics:
		return "heuristics"
	default:
		return "invalid"
	}
}

// Bound is one bounds expression over program variables. It is a closed
// tagged variant: Kind selects the shape, Base and High are the operand keys
// (High is used only by KindRange). The zero value is "no bound".
// Equality is structural, so Bound values compare directly with ==.
type Bound struct {
	Kind Kind
	Base Key
	High Key
}

// CountBound builds count(k).
func CountBound(k Key) Bound { return Bound{Kind: KindCount, Base: k} }

// CountPlusOneBound builds count(k + 1).
func CountPlusOneBound(k Key) Bound { return Bound{Kind: KindCountPlusOne, Base: k} }

// ByteCountBound builds byte_count(k).
func ByteCountBound(k Key) Bound { return Bound{Kind: KindByteCount, Base: k} }

// RangeBound builds bounds(lo, hi).
func RangeBound(lo, hi Key) Bound { return Bound{Kind: KindRange, Base: lo, High: hi} }

// IsValid reports whether b carries an actual bound.
func (b Bound) IsValid() bool { return b.Kind != KindInvalid }

// Keys returns the operand keys of the bound.
func (b Bound) Keys() []Key {
	switch b.Kind {
	case KindInvalid:
		return nil
	case KindRange:
		return []Key{b.Base, b.High}
	default:
		return []Key{b.Base}
	}
}

// WithBase returns a copy of b whose base operand is replaced by k.
// Used when a key merge redirects bound operands.
func (b Bound) WithBase(k Key) Bound {
	b.Base = k
	return b
}

// String renders the bound with raw key numbers, for logs and tests.
func (b Bound) String() string {
	switch b.Kind {
	case KindCount:
		return fmt.Sprintf("count(#%d)", b.Base)
	case KindCountPlusOne:
		return fmt.Sprintf("count(#%d + 1)", b.Base)
	case KindByteCount:
		return fmt.Sprintf("byte_count(#%d)", b.Base)
	case KindRange:
		return fmt.Sprintf("bounds(#%d, #%d)", b.Base, b.High)
	default:
		return "<none>"
	}
}

// SourceString renders the bound as it would appear in an annotation,
// resolving operand keys to variable names through the session.
func (b Bound) SourceString(bi *Info) string {
	switch b.Kind {
	case KindCount:
		return fmt.Sprintf("count(%s)", bi.varName(b.Base))
	case KindCountPlusOne:
		return fmt.Sprintf("count(%s + 1)", bi.varName(b.Base))
	case KindByteCount:
		return fmt.Sprintf("byte_count(%s)", bi.varName(b.Base))
	case KindRange:
		return fmt.Sprintf("bounds(%s, %s)", bi.varName(b.Base), bi.varName(b.High))
	default:
		return "<none>"
	}
}

// kindPreference fixes the tie-break order used when a key accumulates
// candidate bounds of several kinds at the same priority: plain count is the
// clearest annotation, a range the least. The order is policy, not invariant;
// Config.KindOrder can override it.
var kindPreference = []Kind{KindCount, KindCountPlusOne, KindByteCount, KindRange}
