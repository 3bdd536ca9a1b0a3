package bounds

// potentialBounds records length candidates observed for a pointer before any
// flow round has confirmed them. The count set holds keys whose value was
// used directly as an allocation length; the countPlusOne set holds keys that
// were allocated one element past the recorded length, the usual shape of
// string duplication.
type potentialBounds struct {
	count     KeySet
	countPOne KeySet
}

func newPotentialBounds() *potentialBounds {
	return &potentialBounds{count: NewKeySet(), countPOne: NewKeySet()}
}

func (p *potentialBounds) addCount(k Key)        { p.count.Add(k) }
func (p *potentialBounds) addCountPlusOne(k Key) { p.countPOne.Add(k) }

func (p *potentialBounds) hasCount(k Key) bool        { return p.count.Has(k) }
func (p *potentialBounds) hasCountPlusOne(k Key) bool { return p.countPOne.Has(k) }

func (p *potentialBounds) hasAny() bool {
	return len(p.count) > 0 || len(p.countPOne) > 0
}
