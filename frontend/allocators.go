package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/the-shank/HandlERR/bounds"
)

// handleAllocator seeds bounds for the destination of an allocation call
// from the shape of its size arguments.
func (v *fileVisitor) handleAllocator(call *sitter.Node, spec bounds.AllocatorSpec, dst bounds.Key) {
	if dst == 0 || !v.in.bi.Config().AllocatorBounds {
		return
	}
	args := callArgs(call)
	switch len(spec.SizeArgs) {
	case 1:
		idx := spec.SizeArgs[0]
		if idx < len(args) {
			v.seedFromSize(dst, args[idx])
		}
	case 2:
		// Product form, as with calloc(n, sizeof(T)): the factor that is not
		// a sizeof is the element count.
		a, b := spec.SizeArgs[0], spec.SizeArgs[1]
		if a >= len(args) || b >= len(args) {
			return
		}
		count := args[a]
		if isSizeofExpr(count) {
			count = args[b]
		}
		if isSizeofExpr(count) {
			v.commitAllocCount(dst, v.in.bi.GetConstKey(1))
			return
		}
		if k, ok := v.exprKey(count); ok {
			v.commitAllocCount(dst, k)
		}
	}
}

// seedFromSize classifies one size expression. Recognized shapes:
//
//	n * sizeof(T)      count(n)
//	sizeof(T)          count(1)
//	strlen(s) + 1      potential count(s + 1)
//	strlen(s)          potential count(s)
//	n                  byte_count(n)
func (v *fileVisitor) seedFromSize(dst bounds.Key, size *sitter.Node) {
	size = stripParens(size)
	if size == nil {
		return
	}

	if size.Type() == "binary_expression" {
		op := v.u.Text(size.ChildByFieldName("operator"))
		left := stripParens(size.ChildByFieldName("left"))
		right := stripParens(size.ChildByFieldName("right"))
		switch op {
		case "*":
			count := left
			if isSizeofExpr(count) {
				count = right
			}
			if isSizeofExpr(count) {
				v.commitAllocCount(dst, v.in.bi.GetConstKey(1))
				return
			}
			if k, ok := v.exprKey(count); ok {
				v.commitAllocCount(dst, k)
			}
			return
		case "+":
			// strlen(s) + 1 allocates a string body plus its terminator.
			s, c := left, right
			if strlenArgNode(v.u, s) == nil {
				s, c = right, left
			}
			if arg := strlenArgNode(v.u, s); arg != nil && v.u.Text(c) == "1" {
				if k, ok := v.exprKey(arg); ok {
					v.in.bi.AddPotentialCountPlusOneBounds(dst, k)
				}
			}
			return
		}
		return
	}

	if isSizeofExpr(size) {
		v.commitAllocCount(dst, v.in.bi.GetConstKey(1))
		return
	}
	if arg := strlenArgNode(v.u, size); arg != nil {
		if k, ok := v.exprKey(arg); ok {
			v.in.bi.AddPotentialCountBounds(dst, k)
		}
		return
	}
	if k, ok := v.exprKey(size); ok {
		if v.in.bi.MergeBounds(dst, bounds.Allocator, bounds.ByteCountBound(k)) {
			v.in.bi.Stats().AllocatorMatch.Add(dst)
		}
		v.in.cls.noteArrayUse(dst)
	}
}

func (v *fileVisitor) commitAllocCount(dst, count bounds.Key) {
	if v.in.bi.MergeBounds(dst, bounds.Allocator, bounds.CountBound(count)) {
		v.in.bi.Stats().AllocatorMatch.Add(dst)
	}
	v.in.cls.noteArrayUse(dst)
}

func isSizeofExpr(n *sitter.Node) bool {
	n = stripParens(n)
	return n != nil && n.Type() == "sizeof_expression"
}

// strlenArgNode returns the argument of a strlen call, nil for anything else.
func strlenArgNode(u *Unit, n *sitter.Node) *sitter.Node {
	n = stripParens(n)
	if n == nil || n.Type() != "call_expression" {
		return nil
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || u.Text(fn) != "strlen" {
		return nil
	}
	args := callArgs(n)
	if len(args) != 1 {
		return nil
	}
	return args[0]
}
