package bounds

import (
	"fmt"
	"sort"
)

// Key identifies one program variable, function return slot, or interned
// constant inside a session. Keys are allocated monotonically and never
// reused; zero is never a valid key.
type Key uint64

// KeySet is a set of bounds keys.
type KeySet map[Key]bool

// NewKeySet builds a set from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// Add inserts k into the set.
func (s KeySet) Add(k Key) { s[k] = true }

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool { return s[k] }

// AddAll inserts every key of o into the set.
func (s KeySet) AddAll(o KeySet) {
	for k := range o {
		s[k] = true
	}
}

// Sorted returns the keys in ascending order, for deterministic output.
func (s KeySet) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SourceLoc is a persistent source location: stable across re-parses of the
// same file, usable as a map key. The zero value means "no location"
// (synthesized and constant variables).
type SourceLoc struct {
	File string
	Line uint32
	Col  uint32
}

// Valid reports whether the location names a real source position.
func (l SourceLoc) Valid() bool { return l.File != "" }

// String renders file:line:col.
func (l SourceLoc) String() string {
	if !l.Valid() {
		return "<none>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// ScopeKind classifies where a program variable lives.
type ScopeKind uint8

const (
	// ScopeGlobal is file- or program-scope variables and function returns.
	ScopeGlobal ScopeKind = iota
	// ScopeFunction is function-local variables.
	ScopeFunction
	// ScopeParam is function parameters.
	ScopeParam
	// ScopeStruct is struct fields.
	ScopeStruct
)

// Scope tags a program variable with its visibility region. Two bounds keys
// may only be related by inference when the bound variable's scope is visible
// at the pointer's scope. CallSite is non-zero only on context-specialized
// copies; those are visible solely within the same specialization.
type Scope struct {
	Kind     ScopeKind
	Func     string    // function name for ScopeFunction/ScopeParam
	File     string    // defining file, checked for static functions
	Static   bool      // function has internal linkage
	Struct   string    // struct name for ScopeStruct
	CallSite SourceLoc // specialization context, zero when unspecialized
}

// GlobalScope is the scope of globals and function return slots.
func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

// FunctionScope is the scope of a local inside function fn.
func FunctionScope(fn, file string, static bool) Scope {
	return Scope{Kind: ScopeFunction, Func: fn, File: file, Static: static}
}

// ParamScope is the scope of a parameter of function fn.
func ParamScope(fn, file string, static bool) Scope {
	return Scope{Kind: ScopeParam, Func: fn, File: file, Static: static}
}

// StructScope is the scope of a field of struct st.
func StructScope(st string) Scope { return Scope{Kind: ScopeStruct, Struct: st} }

// Specialize returns a copy of s tied to the given call-site context. The
// copy lives in the calling function, so it is visible wherever an ordinary
// local of the caller would be.
func (s Scope) Specialize(cs SourceLoc, caller Scope) Scope {
	s.CallSite = cs
	s.Func = caller.Func
	s.File = caller.File
	s.Static = caller.Static
	return s
}

// IsSpecialized reports whether the scope is a context-specialized copy.
func (s Scope) IsSpecialized() bool { return s.CallSite.Valid() }

// InFunction reports whether the scope is a local or parameter of fn.
func (s Scope) InFunction(fn string) bool {
	return (s.Kind == ScopeFunction || s.Kind == ScopeParam) && s.Func == fn
}

// VisibleIn reports whether a variable with scope s can appear in a bound
// attached to a variable whose scope is use: globals are visible everywhere,
// locals and parameters only inside their own function (same file when
// static), struct fields only beside fields of the same struct. A
// context-specialized copy counts as a local of the calling function, visible
// there and to copies made at the same call site.
func (s Scope) VisibleIn(use Scope) bool {
	if s.IsSpecialized() {
		if use.IsSpecialized() {
			return s.CallSite == use.CallSite
		}
		return use.InFunction(s.Func)
	}
	if use.IsSpecialized() {
		use = FunctionScope(use.Func, use.File, use.Static)
	}
	switch s.Kind {
	case ScopeGlobal:
		return true
	case ScopeFunction, ScopeParam:
		if use.Func != s.Func {
			return false
		}
		if s.Static && use.File != s.File {
			return false
		}
		return true
	case ScopeStruct:
		return use.Kind == ScopeStruct && use.Struct == s.Struct
	default:
		return false
	}
}

// String renders the scope for verbose output and graph dumps.
func (s Scope) String() string {
	var base string
	switch s.Kind {
	case ScopeGlobal:
		base = "global"
	case ScopeFunction:
		base = "func " + s.Func
	case ScopeParam:
		base = "param of " + s.Func
	case ScopeStruct:
		base = "struct " + s.Struct
	}
	if s.IsSpecialized() {
		return base + "@" + s.CallSite.String()
	}
	return base
}

// ProgramVar is the canonical variable behind a bounds key. Instances are
// owned by the session registry; every other component refers to them by key.
type ProgramVar struct {
	key      Key
	name     string
	scope    Scope
	loc      SourceLoc // zero for synthesized and constant vars
	constant bool
	constVal uint64
}

// newProgramVar builds a named variable.
func newProgramVar(k Key, name string, scope Scope, loc SourceLoc) *ProgramVar {
	return &ProgramVar{key: k, name: name, scope: scope, loc: loc}
}

// newConstProgramVar builds an interned numeric constant.
func newConstProgramVar(k Key, val uint64) *ProgramVar {
	return &ProgramVar{
		key:      k,
		name:     fmt.Sprintf("%d", val),
		scope:    GlobalScope(),
		constant: true,
		constVal: val,
	}
}

// Key returns the bounds key of the variable.
func (pv *ProgramVar) Key() Key { return pv.key }

// Name returns the source name (or decimal text for constants).
func (pv *ProgramVar) Name() string { return pv.name }

// Scope returns the visibility scope.
func (pv *ProgramVar) Scope() Scope { return pv.scope }

// Loc returns the declared source location; zero for synthesized vars.
func (pv *ProgramVar) Loc() SourceLoc { return pv.loc }

// IsNumConstant reports whether the variable is an interned constant.
func (pv *ProgramVar) IsNumConstant() bool { return pv.constant }

// ConstantVal returns the constant value; only meaningful for constants.
func (pv *ProgramVar) ConstantVal() uint64 { return pv.constVal }

// specializedCopy clones the variable under a new key, scoped to the calling
// function at the given call site.
func (pv *ProgramVar) specializedCopy(k Key, cs SourceLoc, caller Scope) *ProgramVar {
	cp := *pv
	cp.key = k
	cp.scope = pv.scope.Specialize(cs, caller)
	return &cp
}

// String renders name plus scope, for graph dumps and logs.
func (pv *ProgramVar) String() string {
	return fmt.Sprintf("%s [%s]", pv.name, pv.scope)
}
