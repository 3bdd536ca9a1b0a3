package cfg

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// BlockKind classifies a node in the control flow graph.
type BlockKind int

const (
	BlockEntry BlockKind = iota
	BlockExit
	BlockStatement
	BlockCondition
	BlockBranch
	BlockLoop
)

func (k BlockKind) String() string {
	switch k {
	case BlockEntry:
		return "entry"
	case BlockExit:
		return "exit"
	case BlockStatement:
		return "statement"
	case BlockCondition:
		return "condition"
	case BlockBranch:
		return "branch"
	case BlockLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// Node is one block in a function's control flow graph. Condition is set on
// BlockCondition nodes and holds the branch expression.
type Node struct {
	ID        int
	Kind      BlockKind
	AST       *sitter.Node
	Condition *sitter.Node
	Preds     []*Node
	Succs     []*Node
}

// Graph is the control flow graph of a single function. Entry precedes the
// first statement; every return and every fall-through path reaches Exit.
type Graph struct {
	Entry *Node
	Exit  *Node
	Nodes []*Node

	byAST map[uintptr]*Node
}

// NodeFor maps an AST statement back to its block.
func (g *Graph) NodeFor(ast *sitter.Node) *Node {
	if ast == nil {
		return nil
	}
	return g.byAST[ast.ID()]
}

type builder struct {
	g       *Graph
	counter int
}

// Build constructs the control flow graph of one function body. A nil body
// yields the trivial entry-to-exit graph.
func Build(fn *sitter.Node, body *sitter.Node) *Graph {
	b := &builder{g: &Graph{byAST: make(map[uintptr]*Node)}}

	entry := b.newNode(BlockEntry, fn)
	exit := b.newNode(BlockExit, nil)
	b.g.Entry = entry
	b.g.Exit = exit

	last := entry
	if body != nil {
		last = b.buildStmt(body, entry)
	}
	if last != nil {
		b.addEdge(last, exit)
	}
	b.connectStragglers()
	return b.g
}

func (b *builder) newNode(kind BlockKind, ast *sitter.Node) *Node {
	n := &Node{ID: b.counter, Kind: kind, AST: ast}
	b.counter++
	b.g.Nodes = append(b.g.Nodes, n)
	if ast != nil {
		b.g.byAST[ast.ID()] = n
	}
	return n
}

func (b *builder) addEdge(from, to *Node) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// buildStmt threads one statement into the graph after entry and returns the
// node subsequent statements continue from. A nil return means the chain was
// terminated by a control transfer; whatever follows is unreachable from it.
func (b *builder) buildStmt(node *sitter.Node, entry *Node) *Node {
	switch node.Type() {
	case "compound_statement":
		return b.buildCompound(node, entry)
	case "if_statement":
		return b.buildIf(node, entry)
	case "for_statement", "while_statement", "do_statement":
		return b.buildLoop(node, entry)
	case "switch_statement":
		return b.buildSwitch(node, entry)
	case "return_statement", "break_statement", "continue_statement", "goto_statement":
		return b.buildTransfer(node, entry)
	default:
		if !isStatement(node) {
			return entry
		}
		stmt := b.newNode(BlockStatement, node)
		if entry != nil {
			b.addEdge(entry, stmt)
		}
		return stmt
	}
}

func (b *builder) buildCompound(node *sitter.Node, entry *Node) *Node {
	last := entry
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if isStatement(child) {
			last = b.buildStmt(child, last)
		}
	}
	return last
}

func (b *builder) buildIf(node *sitter.Node, entry *Node) *Node {
	condExpr := node.ChildByFieldName("condition")
	cond := b.newNode(BlockCondition, condExpr)
	cond.Condition = condExpr
	if entry != nil {
		b.addEdge(entry, cond)
	}

	consNode := node.ChildByFieldName("consequence")
	consEntry := b.newNode(BlockBranch, consNode)
	b.addEdge(cond, consEntry)
	consExit := b.buildStmt(consNode, consEntry)

	merge := b.newNode(BlockStatement, nil)
	if consExit != nil {
		b.addEdge(consExit, merge)
	}

	if altNode := node.ChildByFieldName("alternative"); altNode != nil {
		// The alternative field wraps the else body in an else_clause.
		if altNode.Type() == "else_clause" && altNode.NamedChildCount() > 0 {
			altNode = altNode.NamedChild(0)
		}
		altEntry := b.newNode(BlockBranch, altNode)
		b.addEdge(cond, altEntry)
		if altExit := b.buildStmt(altNode, altEntry); altExit != nil {
			b.addEdge(altExit, merge)
		}
	} else {
		b.addEdge(cond, merge)
	}

	if len(merge.Preds) == 0 {
		// Both branches transferred control; nothing falls through.
		return nil
	}
	return merge
}

func (b *builder) buildLoop(node *sitter.Node, entry *Node) *Node {
	header := b.newNode(BlockLoop, node)
	if entry != nil {
		b.addEdge(entry, header)
	}

	cond := header
	if condExpr := node.ChildByFieldName("condition"); condExpr != nil {
		cond = b.newNode(BlockCondition, condExpr)
		cond.Condition = condExpr
		b.addEdge(header, cond)
	}

	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		bodyEntry := b.newNode(BlockBranch, bodyNode)
		b.addEdge(cond, bodyEntry)
		if bodyExit := b.buildStmt(bodyNode, bodyEntry); bodyExit != nil {
			b.addEdge(bodyExit, header)
		}
	}

	exit := b.newNode(BlockStatement, nil)
	b.addEdge(cond, exit)
	return exit
}

func (b *builder) buildSwitch(node *sitter.Node, entry *Node) *Node {
	header := b.newNode(BlockCondition, node)
	header.Condition = node.ChildByFieldName("condition")
	if entry != nil {
		b.addEdge(entry, header)
	}

	exit := b.newNode(BlockStatement, nil)
	body := node.ChildByFieldName("body")
	if body == nil {
		b.addEdge(header, exit)
		return exit
	}

	sawDefault := false
	var fallthroughFrom *Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() != "case_statement" {
			continue
		}
		caseEntry := b.newNode(BlockBranch, child)
		b.addEdge(header, caseEntry)
		if fallthroughFrom != nil {
			b.addEdge(fallthroughFrom, caseEntry)
		}
		if child.ChildByFieldName("value") == nil {
			sawDefault = true
		}
		caseExit := b.buildCaseBody(child, caseEntry)
		fallthroughFrom = caseExit
	}
	if fallthroughFrom != nil {
		b.addEdge(fallthroughFrom, exit)
	}
	if !sawDefault {
		b.addEdge(header, exit)
	}
	return exit
}

// buildCaseBody threads the statements of one case label. A break ends the
// chain, which reads as "no fallthrough" to the caller.
func (b *builder) buildCaseBody(caseNode *sitter.Node, entry *Node) *Node {
	last := entry
	for i := 0; i < int(caseNode.NamedChildCount()); i++ {
		child := caseNode.NamedChild(i)
		if !isStatement(child) {
			continue
		}
		if last == nil {
			break
		}
		last = b.buildStmt(child, last)
	}
	return last
}

func (b *builder) buildTransfer(node *sitter.Node, entry *Node) *Node {
	stmt := b.newNode(BlockStatement, node)
	if entry != nil {
		b.addEdge(entry, stmt)
	}
	if node.Type() == "return_statement" {
		b.addEdge(stmt, b.g.Exit)
	}
	return nil
}

// connectStragglers routes dead ends (breaks, gotos, unreachable tails) to
// the exit so every node has a terminating path.
func (b *builder) connectStragglers() {
	for _, n := range b.g.Nodes {
		if n != b.g.Exit && len(n.Succs) == 0 {
			b.addEdge(n, b.g.Exit)
		}
	}
}

func isStatement(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "expression_statement", "declaration", "compound_statement",
		"return_statement", "break_statement", "continue_statement",
		"goto_statement", "labeled_statement",
		"if_statement", "for_statement", "while_statement", "do_statement",
		"switch_statement":
		return true
	default:
		return false
	}
}

// Reachable returns every node reachable from start by successor edges.
func (g *Graph) Reachable(start *Node) []*Node {
	seen := make(map[int]bool)
	work := []*Node{start}
	var out []*Node
	for len(work) > 0 {
		n := work[0]
		work = work[1:]
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
		work = append(work, n.Succs...)
	}
	return out
}
