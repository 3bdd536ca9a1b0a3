package detecterr

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// FuncID identifies a function by name and defining file. Statics with the
// same name in different files stay distinct.
type FuncID struct {
	Name string `json:"name"`
	File string `json:"file"`
}

func (id FuncID) String() string {
	return id.Name + "@" + id.File
}

// GuardKind ranks how strongly a guarding condition reads as an error check.
type GuardKind string

const (
	GuardNullCheck     GuardKind = "null-check"
	GuardNegativeCheck GuardKind = "negative-check"
	GuardOther         GuardKind = "other"
)

func content(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// stripCasts unwraps parentheses and C-style casts until a bare expression
// remains.
func stripCasts(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression":
			n = n.NamedChild(0)
		case "cast_expression":
			n = n.ChildByFieldName("value")
		default:
			return n
		}
	}
	return nil
}

// isNullExpr reports whether the expression is a null pointer constant:
// NULL, nullptr, or a zero literal, under any number of casts.
func isNullExpr(n *sitter.Node, src []byte) bool {
	n = stripCasts(n)
	if n == nil {
		return false
	}
	switch n.Type() {
	case "null":
		return true
	case "identifier":
		return content(n, src) == "NULL"
	case "number_literal":
		v, err := strconv.ParseUint(content(n, src), 0, 64)
		return err == nil && v == 0
	}
	return false
}

// isNegativeConst reports whether the expression is a negated integer
// literal, under any number of casts. Covers plain -1 sentinels as well as
// (void *)-1 style markers.
func isNegativeConst(n *sitter.Node, src []byte) bool {
	n = stripCasts(n)
	if n == nil || n.Type() != "unary_expression" {
		return false
	}
	if content(n.ChildByFieldName("operator"), src) != "-" {
		return false
	}
	arg := stripCasts(n.ChildByFieldName("argument"))
	if arg == nil || arg.Type() != "number_literal" {
		return false
	}
	v, err := strconv.ParseUint(content(arg, src), 0, 64)
	return err == nil && v != 0
}

func isZeroLiteral(n *sitter.Node, src []byte) bool {
	n = stripCasts(n)
	if n == nil || n.Type() != "number_literal" {
		return false
	}
	v, err := strconv.ParseUint(content(n, src), 0, 64)
	return err == nil && v == 0
}

func isNullLike(n *sitter.Node, src []byte) bool {
	return isNullExpr(n, src) || isZeroLiteral(n, src)
}

// classifyGuard buckets a guarding condition by the shape of its test.
func classifyGuard(cond *sitter.Node, src []byte) GuardKind {
	n := stripCasts(cond)
	if n == nil {
		return GuardOther
	}
	switch n.Type() {
	case "unary_expression":
		if content(n.ChildByFieldName("operator"), src) == "!" {
			return GuardNullCheck
		}
	case "binary_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		switch content(n.ChildByFieldName("operator"), src) {
		case "==", "!=":
			if isNullLike(left, src) || isNullLike(right, src) {
				return GuardNullCheck
			}
			if isNegativeConst(left, src) || isNegativeConst(right, src) {
				return GuardNegativeCheck
			}
		case "<", "<=", ">", ">=":
			if isNullLike(left, src) || isNullLike(right, src) ||
				isNegativeConst(left, src) || isNegativeConst(right, src) {
				return GuardNegativeCheck
			}
		}
	}
	return GuardOther
}

// guardText renders a condition without its outer parentheses.
func guardText(cond *sitter.Node, src []byte) string {
	if cond != nil && cond.Type() == "parenthesized_expression" && cond.NamedChildCount() > 0 {
		return content(cond.NamedChild(0), src)
	}
	return content(cond, src)
}

// funcName digs the declared identifier out of a function definition.
func funcName(fn *sitter.Node, src []byte) string {
	d := fn.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "identifier":
			return content(d, src)
		case "pointer_declarator", "function_declarator":
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			d = d.NamedChild(0)
		default:
			return ""
		}
	}
	return ""
}

// returnsPointer reports whether the definition declares a pointer result.
func returnsPointer(fn *sitter.Node) bool {
	d := fn.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "pointer_declarator":
			return true
		case "function_declarator":
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			d = d.NamedChild(0)
		default:
			return false
		}
	}
	return false
}

// returnValue is the expression a return statement carries, nil for a bare
// return.
func returnValue(ret *sitter.Node) *sitter.Node {
	for i := 0; i < int(ret.NamedChildCount()); i++ {
		if ch := ret.NamedChild(i); ch.Type() != "comment" {
			return ch
		}
	}
	return nil
}
