package bounds

import (
	"encoding/json"
	"fmt"
	"io"
)

// Stats records, per inference strategy, the set of pointer keys whose final
// bound that strategy produced. A key moves between sets when a later round
// replaces its bound with a higher priority one. CapHits counts analysis
// runs that stopped at the iteration cap instead of converging.
type Stats struct {
	NamePrefixMatch       KeySet
	AllocatorMatch        KeySet
	VariableNameMatch     KeySet
	NeighbourParamMatch   KeySet
	DataflowMatch         KeySet
	DeclaredBounds        KeySet
	DeclaredButNotHandled KeySet
	CapHits               int
}

func newStats() *Stats {
	return &Stats{
		NamePrefixMatch:       NewKeySet(),
		AllocatorMatch:        NewKeySet(),
		VariableNameMatch:     NewKeySet(),
		NeighbourParamMatch:   NewKeySet(),
		DataflowMatch:         NewKeySet(),
		DeclaredBounds:        NewKeySet(),
		DeclaredButNotHandled: NewKeySet(),
	}
}

// forget drops k from every category, ahead of re-recording it elsewhere.
func (s *Stats) forget(k Key) {
	for _, set := range s.categories() {
		delete(set.keys, k)
	}
}

type namedKeySet struct {
	name string
	keys KeySet
}

func (s *Stats) categories() []namedKeySet {
	return []namedKeySet{
		{"NamePrefixMatch", s.NamePrefixMatch},
		{"AllocatorMatch", s.AllocatorMatch},
		{"VariableNameMatch", s.VariableNameMatch},
		{"NeighbourParamMatch", s.NeighbourParamMatch},
		{"DataflowMatch", s.DataflowMatch},
		{"DeclaredBounds", s.DeclaredBounds},
		{"DeclaredButNotHandled", s.DeclaredButNotHandled},
	}
}

func intersectCount(a, b KeySet) int {
	n := 0
	for k := range a {
		if b.Has(k) {
			n++
		}
	}
	return n
}

// Print writes per-category totals restricted to the keys in scope. The JSON
// form is an object of category name to count, for downstream tooling.
func (s *Stats) Print(w io.Writer, scope KeySet, jsonFormat bool) error {
	if jsonFormat {
		counts := make(map[string]int)
		for _, c := range s.categories() {
			counts[c.name] = intersectCount(c.keys, scope)
		}
		counts["CapHits"] = s.CapHits
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	}
	if _, err := fmt.Fprintln(w, "BoundsInferenceStats"); err != nil {
		return err
	}
	for _, c := range s.categories() {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", c.name, intersectCount(c.keys, scope)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  CapHits: %d\n", s.CapHits)
	return err
}
