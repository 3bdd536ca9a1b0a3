package bounds

// FuncID identifies a function declaration: static functions are keyed by
// file as well, since internal linkage permits one per translation unit.
type FuncID struct {
	Name   string
	File   string
	Static bool
}

// ParamID identifies one parameter slot of a function.
type ParamID struct {
	Func  FuncID
	Index int
}

// bimap keeps a pair of ordinary maps in sync so lookups run in both
// directions. Inserting an existing pair is a no-op; re-binding either side
// drops the stale mate first so the two maps never disagree.
type bimap[A comparable, B comparable] struct {
	fwd map[A]B
	rev map[B]A
}

func newBimap[A comparable, B comparable]() *bimap[A, B] {
	return &bimap[A, B]{fwd: make(map[A]B), rev: make(map[B]A)}
}

// insert binds a and b in both directions.
func (m *bimap[A, B]) insert(a A, b B) {
	if old, ok := m.fwd[a]; ok {
		delete(m.rev, old)
	}
	if old, ok := m.rev[b]; ok {
		delete(m.fwd, old)
	}
	m.fwd[a] = b
	m.rev[b] = a
}

// get returns the value bound to a.
func (m *bimap[A, B]) get(a A) (B, bool) {
	b, ok := m.fwd[a]
	return b, ok
}

// getRev returns the key bound to b.
func (m *bimap[A, B]) getRev(b B) (A, bool) {
	a, ok := m.rev[b]
	return a, ok
}

// has reports whether a is bound.
func (m *bimap[A, B]) has(a A) bool {
	_, ok := m.fwd[a]
	return ok
}

// hasRev reports whether b is bound.
func (m *bimap[A, B]) hasRev(b B) bool {
	_, ok := m.rev[b]
	return ok
}

// replaceValue re-points the binding of old to new, keeping the forward key.
// Used when two bounds keys are merged and lookups must follow the survivor.
func (m *bimap[A, B]) replaceValue(old, repl B) {
	a, ok := m.rev[old]
	if !ok {
		return
	}
	delete(m.rev, old)
	m.fwd[a] = repl
	m.rev[repl] = a
}

// len returns the number of bindings.
func (m *bimap[A, B]) len() int { return len(m.fwd) }
