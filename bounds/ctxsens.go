package bounds

// ctxKey identifies one specialization context of a base key.
type ctxKey struct {
	site SourceLoc
	base Key
}

// CtxSensKey returns the context-specialized copy of base for the call or
// field access at site, creating it on first sight. The copy is registered
// as a synthesized local of the calling function and linked to its base in
// both context graphs. Keys that cannot be specialized, constants, temps and
// invalid sites come back unchanged; specialization never fails hard.
func (bi *Info) CtxSensKey(site SourceLoc, caller FuncID, base Key) Key {
	base = bi.resolve(base)
	pv, ok := bi.vars[base]
	if !site.Valid() || !ok || pv.IsNumConstant() || pv.Scope().IsSpecialized() {
		return base
	}
	ck := ctxKey{site: site, base: base}
	if sk, ok := bi.ctx[ck]; ok {
		return bi.resolve(sk)
	}
	sk := bi.allocKey()
	callerScope := FunctionScope(caller.Name, caller.File, caller.Static)
	bi.vars[sk] = pv.specializedCopy(sk, site, callerScope)
	bi.ctx[ck] = sk

	bi.ctxFwd.addEdge(base, sk)
	bi.ctxRev.addEdge(sk, base)

	for _, s := range []KeySet{bi.pointers, bi.arrPtrs, bi.ntArrPtrs, bi.integral} {
		if s.Has(base) {
			s.Add(sk)
		}
	}
	if bi.impossible.Has(base) {
		bi.impossible.Add(sk)
	}
	return sk
}

// TryCtxSensKey returns the existing specialized copy of base at site,
// without creating one.
func (bi *Info) TryCtxSensKey(site SourceLoc, base Key) (Key, bool) {
	sk, ok := bi.ctx[ctxKey{site: site, base: bi.resolve(base)}]
	if !ok {
		return 0, false
	}
	return bi.resolve(sk), true
}

// BaseForCtxKey maps a specialized copy back to its base key.
func (bi *Info) BaseForCtxKey(k Key) (Key, bool) {
	k = bi.resolve(k)
	pv, ok := bi.vars[k]
	if !ok || !pv.Scope().IsSpecialized() {
		return 0, false
	}
	for _, b := range bi.ctxRev.successors(k).Sorted() {
		return b, true
	}
	return 0, false
}

// ctxAdaptBound rewrites the operands of b into the call-site context of the
// specialized key ctxCopy, creating operand copies as needed so a bound
// declared over callee variables becomes expressible at the call site.
// Reports false when an operand cannot follow into the context.
func (bi *Info) ctxAdaptBound(ctxCopy Key, b Bound) (Bound, bool) {
	pv, ok := bi.vars[bi.resolve(ctxCopy)]
	if !ok || !pv.Scope().IsSpecialized() {
		return b, true
	}
	sc := pv.Scope()
	caller := FuncID{Name: sc.Func, File: sc.File, Static: sc.Static}

	adapt := func(op Key) (Key, bool) {
		op = bi.resolve(op)
		opv, ok := bi.vars[op]
		if !ok {
			return 0, false
		}
		if opv.IsNumConstant() {
			return op, true
		}
		if opv.Scope().IsSpecialized() {
			if opv.Scope().CallSite == sc.CallSite {
				return op, true
			}
			return 0, false
		}
		return bi.CtxSensKey(sc.CallSite, caller, op), true
	}

	out := b
	base, ok := adapt(b.Base)
	if !ok {
		return Bound{}, false
	}
	out.Base = base
	if b.Kind == KindRange {
		high, ok := adapt(b.High)
		if !ok {
			return Bound{}, false
		}
		out.High = high
	}
	return out, true
}
