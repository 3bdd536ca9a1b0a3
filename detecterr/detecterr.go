// Package detecterr scans C sources for error-return conventions: functions
// that hand back a null pointer or a negative constant when a guarding
// condition fails. It shares the parser with the bounds frontend but never
// touches the bounds graph.
package detecterr

import (
	"context"
	"log"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/the-shank/HandlERR/frontend"
)

// Analyzer accumulates findings across the files of one scan.
type Analyzer struct {
	log      *log.Logger
	findings []Finding
}

// New builds an empty analyzer. A nil logger falls back to stderr.
func New(logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(os.Stderr, "[detecterr] ", log.LstdFlags)
	}
	return &Analyzer{log: logger}
}

// AnalyzeFile parses one C file and scans every function definition in it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) error {
	u, err := frontend.ParseFile(ctx, path)
	if err != nil {
		return err
	}
	defer u.Close()
	a.analyzeUnit(u)
	return nil
}

// AnalyzeSource scans in-memory C source registered under the given name.
func (a *Analyzer) AnalyzeSource(ctx context.Context, name string, src []byte) error {
	u, err := frontend.ParseBytes(ctx, name, src)
	if err != nil {
		return err
	}
	defer u.Close()
	a.analyzeUnit(u)
	return nil
}

func (a *Analyzer) analyzeUnit(u *frontend.Unit) {
	before := len(a.findings)
	for i := 0; i < int(u.Root.NamedChildCount()); i++ {
		fn := u.Root.NamedChild(i)
		if fn.Type() != "function_definition" {
			continue
		}
		a.analyzeFunction(u, fn)
	}
	a.log.Printf("scanned %s (%d findings)", u.FilePath, len(a.findings)-before)
}

// analyzeFunction runs the null visitor on pointer-returning functions and
// the negative visitor on every function; (void *)-1 style sentinels make
// the negative convention reachable from pointer results too.
func (a *Analyzer) analyzeFunction(u *frontend.Unit, fn *sitter.Node) {
	name := funcName(fn, u.Source)
	if name == "" {
		return
	}
	id := FuncID{Name: name, File: u.FilePath}
	body := fn.ChildByFieldName("body")
	ra := newReturnAnalysis(u.Source, id, fn, body)

	if returnsPointer(fn) {
		nv := &nullReturnVisitor{ra}
		a.findings = append(a.findings, nv.run(body)...)
	}
	gv := &negativeReturnVisitor{ra}
	a.findings = append(a.findings, gv.run(body)...)
}

// Findings returns every finding in scan order.
func (a *Analyzer) Findings() []Finding {
	return a.findings
}

// Report groups findings per function.
func (a *Analyzer) Report() map[FuncID][]Finding {
	out := make(map[FuncID][]Finding, len(a.findings))
	for _, f := range a.findings {
		out[f.Func] = append(out[f.Func], f)
	}
	return out
}

// Conventions lists the distinct conventions attributed to one function, in
// the order they were observed.
func (a *Analyzer) Conventions(id FuncID) []Convention {
	seen := make(map[Convention]bool)
	var out []Convention
	for _, f := range a.findings {
		if f.Func == id && !seen[f.Convention] {
			seen[f.Convention] = true
			out = append(out, f.Convention)
		}
	}
	return out
}
