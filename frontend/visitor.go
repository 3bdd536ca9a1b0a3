package frontend

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/the-shank/HandlERR/bounds"
)

// Indexer feeds parsed C units into a bounds session: declarations become
// keys, assignments become flow edges, call sites become context-specialized
// copies, and usage evidence accumulates in the classifier. One indexer
// serves one session; files are indexed sequentially.
type Indexer struct {
	bi   *bounds.Info
	cls  *Classifier
	locs *LocationIndex
	log  *log.Logger

	// protos holds external function signatures by name; the first sighting
	// fixes the identity so prototypes and definitions share keys.
	protos map[string]funcSig

	globals map[string]varInfo
	structs map[string]map[string]varInfo
}

// varInfo is what the visitor knows about a bound name.
type varInfo struct {
	key      bounds.Key
	pointer  bool
	integral bool
	strct    string // struct tag when the type is a struct (or pointer to one)
}

type funcSig struct {
	id          bounds.FuncID
	params      []bounds.VarDecl
	paramStruct []string
	ret         bounds.VarDecl
	hasRet      bool
}

// NewIndexer builds an indexer over the given session.
func NewIndexer(bi *bounds.Info, logger *log.Logger) *Indexer {
	if logger == nil {
		logger = log.New(os.Stderr, "[frontend] ", log.LstdFlags)
	}
	return &Indexer{
		bi:      bi,
		cls:     NewClassifier(),
		locs:    NewLocationIndex(),
		log:     logger,
		protos:  make(map[string]funcSig),
		globals: make(map[string]varInfo),
		structs: make(map[string]map[string]varInfo),
	}
}

// Classifier exposes the accumulated pointer classification evidence, ready
// to hand to PerformFlowAnalysis.
func (in *Indexer) Classifier() *Classifier { return in.cls }

// Locations exposes the declaration location index.
func (in *Indexer) Locations() *LocationIndex { return in.locs }

// Solve runs flow analysis until no bound changes. Heuristic bounds found in
// one pass seed flow propagation on the next, so a single pass is not enough
// for chains that cross function boundaries. Returns the number of passes.
func (in *Indexer) Solve() int {
	passes := 0
	for in.bi.PerformFlowAnalysis(in.cls) {
		passes++
		if passes >= in.bi.Config().MaxIterations {
			break
		}
	}
	return passes
}

// IndexFile parses and indexes one file.
func (in *Indexer) IndexFile(ctx context.Context, path string) error {
	u, err := ParseFile(ctx, path)
	if err != nil {
		return err
	}
	defer u.Close()
	return in.indexUnit(u)
}

// IndexSource parses and indexes in-memory source under the given name.
func (in *Indexer) IndexSource(ctx context.Context, name string, src []byte) error {
	u, err := ParseBytes(ctx, name, src)
	if err != nil {
		return err
	}
	defer u.Close()
	return in.indexUnit(u)
}

func (in *Indexer) indexUnit(u *Unit) error {
	v := &fileVisitor{
		in:         in,
		u:          u,
		header:     strings.HasSuffix(u.FilePath, ".h"),
		localSigs:  make(map[string]funcSig),
		pendingDst: make(map[uintptr]bounds.Key),
	}
	v.collectSignatures()
	if err := v.collectStructs(); err != nil {
		return err
	}
	root := u.Root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "function_definition":
			v.visitFunction(n)
		case "declaration":
			v.visitDeclaration(n, true)
		}
	}
	in.log.Printf("indexed %s (%d declarations)", u.FilePath, in.locs.Len())
	return nil
}

// fileVisitor carries the walk state for one unit.
type fileVisitor struct {
	in     *Indexer
	u      *Unit
	header bool

	// localSigs holds this file's static functions, shadowing protos.
	localSigs map[string]funcSig

	fn     bounds.FuncID // enclosing function during a body walk
	retKey bounds.Key    // return slot key, zero for non-pointer returns
	scopes []map[string]varInfo

	// pendingDst maps a call node to the key its result flows into, set by
	// the enclosing declaration, assignment, return, or argument position
	// before the walk reaches the call itself.
	pendingDst map[uintptr]bounds.Key
}

// --- signatures ---

func (v *fileVisitor) collectSignatures() {
	root := v.u.Root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "function_definition":
			v.recordSignature(n, true)
		case "declaration":
			d := v.unwrapDeclarator(n.ChildByFieldName("declarator"))
			if d.fnDecl != nil {
				v.recordSignature(n, false)
			}
		}
	}
}

func (v *fileVisitor) recordSignature(node *sitter.Node, isDef bool) {
	d := v.unwrapDeclarator(node.ChildByFieldName("declarator"))
	if d.name == "" || d.fnDecl == nil {
		return
	}
	static := hasStorageClass(v.u, node, "static")

	var id bounds.FuncID
	if prev, ok := v.sigFor(d.name, static); ok {
		if !isDef {
			return
		}
		id = prev.id
	} else {
		id = bounds.FuncID{Name: d.name, File: v.u.FilePath, Static: static}
	}

	sig := funcSig{id: id, hasRet: d.pointer}
	if d.pointer {
		sig.ret = bounds.VarDecl{
			Class: bounds.DeclReturn, Func: id, Pointer: true, InSource: !v.header,
		}
	}
	sig.params, sig.paramStruct = v.paramDecls(d.fnDecl, id)
	if static {
		v.localSigs[d.name] = sig
	} else {
		v.in.protos[d.name] = sig
	}
}

func (v *fileVisitor) sigFor(name string, static bool) (funcSig, bool) {
	if static {
		sig, ok := v.localSigs[name]
		return sig, ok
	}
	sig, ok := v.in.protos[name]
	return sig, ok
}

// findSig resolves a function name, file statics shadowing externals.
func (v *fileVisitor) findSig(name string) (funcSig, bool) {
	if sig, ok := v.localSigs[name]; ok {
		return sig, true
	}
	sig, ok := v.in.protos[name]
	return sig, ok
}

func (v *fileVisitor) paramDecls(fnDecl *sitter.Node, id bounds.FuncID) ([]bounds.VarDecl, []string) {
	ps := fnDecl.ChildByFieldName("parameters")
	if ps == nil {
		return nil, nil
	}
	var out []bounds.VarDecl
	var strcts []string
	idx := 0
	for i := 0; i < int(ps.NamedChildCount()); i++ {
		pn := ps.NamedChild(i)
		if pn.Type() != "parameter_declaration" {
			continue
		}
		tnode := pn.ChildByFieldName("type")
		d := v.unwrapDeclarator(pn.ChildByFieldName("declarator"))
		pointer := d.pointer || d.array
		out = append(out, bounds.VarDecl{
			Class:    bounds.DeclParam,
			Name:     d.name,
			Loc:      locOf(v.u, d.nameNode),
			Func:     id,
			Index:    idx,
			Pointer:  pointer,
			Integral: !pointer && isIntegralType(v.u.Text(tnode)),
			InSource: !v.header,
		})
		strcts = append(strcts, structTag(v.u, tnode))
		idx++
	}
	return out, strcts
}

// --- structs ---

const structQuery = `(struct_specifier
	name: (type_identifier) @name
	body: (field_declaration_list) @body) @spec`

func (v *fileVisitor) collectStructs() error {
	matches, err := v.u.Query(structQuery)
	if err != nil {
		return err
	}
	for _, m := range matches {
		nameNode := m.Captures["name"]
		body := m.Captures["body"]
		if nameNode == nil || body == nil {
			continue
		}
		sname := v.u.Text(nameNode)
		fields := v.in.structs[sname]
		if fields == nil {
			fields = make(map[string]varInfo)
			v.in.structs[sname] = fields
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			fd := body.NamedChild(i)
			if fd.Type() != "field_declaration" {
				continue
			}
			v.collectFields(fd, sname, fields)
		}
	}
	return nil
}

func (v *fileVisitor) collectFields(fd *sitter.Node, sname string, fields map[string]varInfo) {
	tnode := fd.ChildByFieldName("type")
	for j := 0; j < int(fd.NamedChildCount()); j++ {
		c := fd.NamedChild(j)
		if c == tnode || !isDeclaratorNode(c) {
			continue
		}
		d := v.unwrapDeclarator(c)
		if d.name == "" {
			continue
		}
		pointer := d.pointer || d.array
		integral := !pointer && isIntegralType(v.u.Text(tnode))
		if !pointer && !integral {
			continue
		}
		decl := bounds.VarDecl{
			Class:    bounds.DeclField,
			Name:     d.name,
			Loc:      locOf(v.u, d.nameNode),
			Struct:   sname,
			Pointer:  pointer,
			Integral: integral,
			InSource: !v.header,
		}
		var k bounds.Key
		if d.array && d.hasSize {
			k = v.in.bi.AddConstantArrayBounds(decl, d.arrSize)
			v.in.cls.noteArrayUse(k)
		} else {
			k = v.in.bi.InsertVariable(decl)
		}
		fields[d.name] = varInfo{key: k, pointer: pointer, integral: integral, strct: structTag(v.u, tnode)}
		v.in.locs.Record(decl.Loc, d.name, k)
	}
}

// --- functions and statements ---

func (v *fileVisitor) visitFunction(n *sitter.Node) {
	d := v.unwrapDeclarator(n.ChildByFieldName("declarator"))
	if d.name == "" {
		return
	}
	sig, ok := v.findSig(d.name)
	if !ok {
		return
	}
	v.fn = sig.id
	v.retKey = 0
	if sig.hasRet {
		v.retKey = v.in.bi.GetVariable(sig.ret)
		v.in.locs.Record(locOf(v.u, d.nameNode), d.name, v.retKey)
	}

	v.pushScope()
	for i, pd := range sig.params {
		if pd.Name == "" {
			continue
		}
		k := v.in.bi.GetVariable(pd)
		v.bind(pd.Name, varInfo{key: k, pointer: pd.Pointer, integral: pd.Integral, strct: sig.paramStruct[i]})
		v.in.locs.Record(pd.Loc, pd.Name, k)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		v.walk(body)
	}
	v.popScope()
	v.fn = bounds.FuncID{}
	v.retKey = 0
}

func (v *fileVisitor) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "compound_statement":
		v.pushScope()
		for i := 0; i < int(n.NamedChildCount()); i++ {
			v.walk(n.NamedChild(i))
		}
		v.popScope()
		return
	case "declaration":
		v.visitDeclaration(n, false)
	case "assignment_expression":
		v.visitAssignment(n)
	case "update_expression":
		v.visitUpdate(n)
	case "binary_expression":
		v.visitBinary(n)
	case "subscript_expression":
		v.visitSubscript(n)
	case "call_expression":
		v.visitCall(n)
	case "return_statement":
		v.visitReturn(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.walk(n.NamedChild(i))
	}
}

func (v *fileVisitor) visitDeclaration(n *sitter.Node, global bool) {
	tnode := n.ChildByFieldName("type")
	typeText := v.u.Text(tnode)
	strct := structTag(v.u, tnode)
	for j := 0; j < int(n.NamedChildCount()); j++ {
		c := n.NamedChild(j)
		if c == tnode || !isDeclaratorNode(c) {
			continue
		}
		var valueNode *sitter.Node
		if c.Type() == "init_declarator" {
			valueNode = c.ChildByFieldName("value")
		}
		d := v.unwrapDeclarator(c)
		if d.name == "" || d.fnDecl != nil {
			continue
		}
		pointer := d.pointer || d.array
		integral := !pointer && isIntegralType(typeText)

		vi := varInfo{strct: strct}
		if pointer || integral {
			class := bounds.DeclLocal
			fn := v.fn
			if global {
				class = bounds.DeclGlobal
				fn = bounds.FuncID{}
			}
			decl := bounds.VarDecl{
				Class:    class,
				Name:     d.name,
				Loc:      locOf(v.u, d.nameNode),
				Func:     fn,
				Pointer:  pointer,
				Integral: integral,
				InSource: !v.header,
			}
			if d.array && d.hasSize {
				vi.key = v.in.bi.AddConstantArrayBounds(decl, d.arrSize)
				v.in.cls.noteArrayUse(vi.key)
			} else {
				vi.key = v.in.bi.InsertVariable(decl)
			}
			vi.pointer, vi.integral = pointer, integral
			v.in.locs.Record(decl.Loc, d.name, vi.key)
		}
		if vi.key != 0 || vi.strct != "" {
			v.bindName(d.name, vi, global)
		}
		if valueNode != nil && vi.key != 0 {
			v.bindValue(vi, valueNode)
		}
	}
}

func (v *fileVisitor) visitAssignment(n *sitter.Node) {
	left := stripParens(n.ChildByFieldName("left"))
	if left == nil {
		return
	}
	li, ok := v.lvalueInfo(left)
	if !ok || li.key == 0 {
		return
	}
	switch v.u.Text(n.ChildByFieldName("operator")) {
	case "=":
		v.bindValue(li, n.ChildByFieldName("right"))
	case "+=", "-=":
		if li.pointer {
			v.in.bi.RecordArithmeticOperation(li.key)
			v.in.cls.noteArrayUse(li.key)
		}
	}
}

func (v *fileVisitor) visitUpdate(n *sitter.Node) {
	arg := stripParens(n.ChildByFieldName("argument"))
	if arg == nil || arg.Type() != "identifier" {
		return
	}
	if vi, ok := v.lookup(v.u.Text(arg)); ok && vi.pointer && vi.key != 0 {
		v.in.bi.RecordArithmeticOperation(vi.key)
		v.in.cls.noteArrayUse(vi.key)
	}
}

func (v *fileVisitor) visitBinary(n *sitter.Node) {
	switch v.u.Text(n.ChildByFieldName("operator")) {
	case "+", "-":
	default:
		return
	}
	for _, side := range []*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")} {
		side = stripParens(side)
		if side == nil || side.Type() != "identifier" {
			continue
		}
		if vi, ok := v.lookup(v.u.Text(side)); ok && vi.pointer && vi.key != 0 {
			v.in.bi.RecordArithmeticOperation(vi.key)
			v.in.cls.noteArrayUse(vi.key)
		}
	}
}

func (v *fileVisitor) visitSubscript(n *sitter.Node) {
	base := stripCasts(n.ChildByFieldName("argument"))
	if base == nil {
		return
	}
	var vi varInfo
	var ok bool
	switch base.Type() {
	case "identifier":
		vi, ok = v.lookup(v.u.Text(base))
	case "field_expression":
		vi, ok = v.fieldInfo(base)
	}
	if ok && vi.pointer && vi.key != 0 {
		v.in.cls.noteArrayUse(vi.key)
	}
}

func (v *fileVisitor) visitReturn(n *sitter.Node) {
	if v.retKey == 0 || n.NamedChildCount() == 0 {
		return
	}
	v.bindValue(varInfo{key: v.retKey, pointer: true}, n.NamedChild(0))
}

// flow records a value flow edge and keeps the classifier's components in
// step with the graph.
func (v *fileVisitor) flow(dst, src bounds.Key) {
	v.in.bi.AddAssignment(dst, src)
	v.in.cls.link(dst, src)
}

// bindValue connects an initializer or assignment value to its destination:
// identifier and field sources become flow edges, call results are deferred
// to the call visit through pendingDst.
func (v *fileVisitor) bindValue(dst varInfo, value *sitter.Node) {
	value = stripCasts(value)
	if value == nil || dst.key == 0 {
		return
	}
	switch value.Type() {
	case "identifier":
		if src, ok := v.lookup(v.u.Text(value)); ok && src.key != 0 && dst.pointer && src.pointer {
			v.flow(dst.key, src.key)
		}
	case "field_expression":
		if src, ok := v.fieldInfo(value); ok && src.key != 0 && dst.pointer && src.pointer {
			v.flow(dst.key, src.key)
		}
	case "call_expression":
		if dst.pointer {
			v.pendingDst[value.ID()] = dst.key
		}
	}
}

// --- calls ---

func (v *fileVisitor) visitCall(n *sitter.Node) {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil || fnNode.Type() != "identifier" {
		return
	}
	name := v.u.Text(fnNode)
	dst := v.pendingDst[n.ID()]
	cfg := v.in.bi.Config()

	if spec, ok := cfg.AllocatorByName(name); ok {
		v.handleAllocator(n, spec, dst)
		return
	}
	if cfg.IsImpossibleAllocator(name) {
		if dst != 0 {
			v.in.cls.noteStringUse(dst)
			v.in.bi.MarkImpossible(dst)
		}
		return
	}
	if stringRoutines[name] {
		v.notePointerArgs(n, v.in.cls.noteStringUse)
		return
	}
	if memRoutines[name] {
		v.notePointerArgs(n, v.in.cls.noteArrayUse)
		return
	}
	if sig, ok := v.findSig(name); ok {
		v.wireCall(n, sig, dst)
	}
}

// wireCall links a call site to the callee through context-specialized
// copies: argument values flow into parameter copies, the return copy flows
// into the destination.
func (v *fileVisitor) wireCall(call *sitter.Node, sig funcSig, dst bounds.Key) {
	if v.fn.Name == "" {
		return
	}
	cs := locOf(v.u, call)
	args := callArgs(call)
	for i, pd := range sig.params {
		if pd.Name == "" || i >= len(args) {
			continue
		}
		ak, ok := v.exprKey(args[i])
		if !ok {
			continue
		}
		pk := v.in.bi.GetVariable(pd)
		pc := v.in.bi.CtxSensKey(cs, v.fn, pk)
		v.in.cls.link(pk, pc)
		v.flow(pc, ak)
	}
	if sig.hasRet && dst != 0 {
		rk := v.in.bi.GetVariable(sig.ret)
		rc := v.in.bi.CtxSensKey(cs, v.fn, rk)
		v.in.cls.link(rk, rc)
		v.flow(dst, rc)
	}
}

func (v *fileVisitor) notePointerArgs(call *sitter.Node, note func(bounds.Key)) {
	for _, arg := range callArgs(call) {
		arg = stripCasts(arg)
		if arg == nil || arg.Type() != "identifier" {
			continue
		}
		if vi, ok := v.lookup(v.u.Text(arg)); ok && vi.pointer && vi.key != 0 {
			note(vi.key)
		}
	}
}

var stringRoutines = map[string]bool{
	"strlen": true, "strcpy": true, "strncpy": true,
	"strcat": true, "strncat": true, "strcmp": true, "strncmp": true,
}

var memRoutines = map[string]bool{
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
}

// --- name resolution ---

func (v *fileVisitor) pushScope() {
	v.scopes = append(v.scopes, make(map[string]varInfo))
}

func (v *fileVisitor) popScope() {
	v.scopes = v.scopes[:len(v.scopes)-1]
}

func (v *fileVisitor) bind(name string, vi varInfo) {
	v.scopes[len(v.scopes)-1][name] = vi
}

func (v *fileVisitor) bindName(name string, vi varInfo, global bool) {
	if global {
		v.in.globals[name] = vi
		return
	}
	v.bind(name, vi)
}

func (v *fileVisitor) lookup(name string) (varInfo, bool) {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if vi, ok := v.scopes[i][name]; ok {
			return vi, true
		}
	}
	vi, ok := v.in.globals[name]
	return vi, ok
}

func (v *fileVisitor) fieldInfo(n *sitter.Node) (varInfo, bool) {
	base := stripCasts(n.ChildByFieldName("argument"))
	fieldNode := n.ChildByFieldName("field")
	if base == nil || fieldNode == nil {
		return varInfo{}, false
	}
	var bv varInfo
	var ok bool
	switch base.Type() {
	case "identifier":
		bv, ok = v.lookup(v.u.Text(base))
	case "field_expression":
		bv, ok = v.fieldInfo(base)
	}
	if !ok || bv.strct == "" {
		return varInfo{}, false
	}
	fi, ok := v.in.structs[bv.strct][v.u.Text(fieldNode)]
	return fi, ok
}

func (v *fileVisitor) lvalueInfo(n *sitter.Node) (varInfo, bool) {
	switch n.Type() {
	case "identifier":
		return v.lookup(v.u.Text(n))
	case "field_expression":
		return v.fieldInfo(n)
	}
	return varInfo{}, false
}

// exprKey resolves an expression used as a flow source: named variables and
// fields by lookup, integer literals by interning, call results by a
// synthesized key the call visit will fill.
func (v *fileVisitor) exprKey(n *sitter.Node) (bounds.Key, bool) {
	n = stripCasts(n)
	if n == nil {
		return 0, false
	}
	switch n.Type() {
	case "identifier":
		if vi, ok := v.lookup(v.u.Text(n)); ok && vi.key != 0 {
			return vi.key, true
		}
	case "field_expression":
		if vi, ok := v.fieldInfo(n); ok && vi.key != 0 {
			return vi.key, true
		}
	case "number_literal":
		if val, err := strconv.ParseUint(v.u.Text(n), 0, 64); err == nil {
			return v.in.bi.GetConstKey(val), true
		}
	case "call_expression":
		t := v.in.bi.GetRandomBKey()
		v.pendingDst[n.ID()] = t
		return t, true
	}
	return 0, false
}

// --- AST helpers ---

type declParts struct {
	name     string
	nameNode *sitter.Node
	pointer  bool
	array    bool
	arrSize  uint64
	hasSize  bool
	fnDecl   *sitter.Node
}

// unwrapDeclarator walks a declarator chain down to its identifier, noting
// pointer and array wraps and any function declarator on the way.
func (v *fileVisitor) unwrapDeclarator(n *sitter.Node) declParts {
	var d declParts
	for n != nil {
		switch n.Type() {
		case "init_declarator":
			n = n.ChildByFieldName("declarator")
		case "pointer_declarator":
			d.pointer = true
			n = n.ChildByFieldName("declarator")
		case "array_declarator":
			d.array = true
			if sz := n.ChildByFieldName("size"); sz != nil && sz.Type() == "number_literal" {
				if val, err := strconv.ParseUint(v.u.Text(sz), 0, 64); err == nil {
					d.arrSize, d.hasSize = val, true
				}
			}
			n = n.ChildByFieldName("declarator")
		case "function_declarator":
			d.fnDecl = n
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			n = n.NamedChild(0)
		case "identifier", "field_identifier":
			d.name = v.u.Text(n)
			d.nameNode = n
			return d
		default:
			return d
		}
	}
	return d
}

func isDeclaratorNode(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "field_identifier", "init_declarator",
		"pointer_declarator", "array_declarator",
		"function_declarator", "parenthesized_declarator":
		return true
	}
	return false
}

func callArgs(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func stripParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" {
		n = n.NamedChild(0)
	}
	return n
}

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
	return n
}

func hasStorageClass(u *Unit, n *sitter.Node, want string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "storage_class_specifier" && u.Text(c) == want {
			return true
		}
	}
	return false
}

func structTag(u *Unit, tnode *sitter.Node) string {
	if tnode == nil || tnode.Type() != "struct_specifier" {
		return ""
	}
	return u.Text(tnode.ChildByFieldName("name"))
}

func isIntegralType(s string) bool {
	for _, w := range strings.Fields(s) {
		switch w {
		case "int", "long", "short", "unsigned", "signed",
			"size_t", "ssize_t", "ptrdiff_t",
			"int8_t", "int16_t", "int32_t", "int64_t",
			"uint8_t", "uint16_t", "uint32_t", "uint64_t":
			return true
		}
	}
	return false
}
