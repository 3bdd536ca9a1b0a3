package frontend

import (
	"github.com/the-shank/HandlERR/bounds"
)

// Classifier decides which pointers are array pointers, standing in for the
// checked-type constraint stage. Usage evidence (subscripts, arithmetic,
// allocator results, string routines) lands on individual keys; link ties
// keys whose values flow into each other, so a pointer inherits array-ness
// from anything on the same flow component. Verdicts are grouped by a
// union-find over those links.
type Classifier struct {
	parent map[bounds.Key]bounds.Key
	arr    map[bounds.Key]bool
	nt     map[bounds.Key]bool
}

// NewClassifier returns a classifier with no evidence.
func NewClassifier() *Classifier {
	return &Classifier{
		parent: make(map[bounds.Key]bounds.Key),
		arr:    make(map[bounds.Key]bool),
		nt:     make(map[bounds.Key]bool),
	}
}

func (c *Classifier) find(k bounds.Key) bounds.Key {
	p, ok := c.parent[k]
	if !ok || p == k {
		return k
	}
	r := c.find(p)
	c.parent[k] = r
	return r
}

// link places a and b in the same flow component.
func (c *Classifier) link(a, b bounds.Key) {
	if a == 0 || b == 0 {
		return
	}
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return
	}
	c.parent[ra] = rb
	if c.arr[ra] {
		delete(c.arr, ra)
		c.arr[rb] = true
	}
	if c.nt[ra] {
		delete(c.nt, ra)
		c.nt[rb] = true
	}
}

// noteArrayUse records indexing or size evidence for k.
func (c *Classifier) noteArrayUse(k bounds.Key) {
	if k == 0 {
		return
	}
	c.arr[c.find(k)] = true
}

// noteStringUse records null-terminated usage evidence for k.
func (c *Classifier) noteStringUse(k bounds.Key) {
	if k == 0 {
		return
	}
	c.nt[c.find(k)] = true
}

// IsArrayPointer reports whether k's flow component carries array evidence.
func (c *Classifier) IsArrayPointer(k bounds.Key) bool {
	return c.arr[c.find(k)]
}

// IsNtArrayPointer reports whether k's flow component carries
// null-terminated evidence.
func (c *Classifier) IsNtArrayPointer(k bounds.Key) bool {
	return c.nt[c.find(k)]
}
