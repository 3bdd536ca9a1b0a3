package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// ErrUnsupportedFormat is returned for files the frontend cannot parse.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// parserPool recycles tree-sitter parsers. A parser is not safe for
// concurrent use, so each caller takes one, parses, and puts it back.
var parserPool = sync.Pool{
	New: func() interface{} {
		p := sitter.NewParser()
		p.SetLanguage(c.GetLanguage())
		return p
	},
}

func getParser() *sitter.Parser  { return parserPool.Get().(*sitter.Parser) }
func putParser(p *sitter.Parser) { p.Reset(); parserPool.Put(p) }

// queryCache holds compiled tree-sitter queries keyed by pattern text.
// Compiling a query is far more expensive than running it.
var (
	queryCache   sync.Map
	queryBuildMu sync.Mutex
)

func compileQuery(pattern string) (*sitter.Query, error) {
	if cached, ok := queryCache.Load(pattern); ok {
		return cached.(*sitter.Query), nil
	}
	queryBuildMu.Lock()
	defer queryBuildMu.Unlock()
	if cached, ok := queryCache.Load(pattern); ok {
		return cached.(*sitter.Query), nil
	}
	q, err := sitter.NewQuery([]byte(pattern), c.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	queryCache.Store(pattern, q)
	return q, nil
}

// Unit is one parsed C file.
type Unit struct {
	FilePath string
	Source   []byte
	Root     *sitter.Node
	Tree     *sitter.Tree
}

// Close releases the parse tree.
func (u *Unit) Close() {
	if u.Tree != nil {
		u.Tree.Close()
		u.Tree = nil
	}
}

// Text returns the source text of n, clamped to the unit's source.
func (u *Unit) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start := n.StartByte()
	end := n.EndByte()
	if end > uint32(len(u.Source)) {
		end = uint32(len(u.Source))
	}
	if start >= end {
		return ""
	}
	return string(u.Source[start:end])
}

// Match is one query match with its named captures.
type Match struct {
	Node     *sitter.Node
	Captures map[string]*sitter.Node
}

// Query runs a tree-sitter query over the whole unit.
func (u *Unit) Query(pattern string) ([]Match, error) {
	q, err := compileQuery(pattern)
	if err != nil {
		return nil, err
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, u.Root)

	var out []Match
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		if len(m.Captures) == 0 {
			continue
		}
		match := Match{
			Node:     m.Captures[0].Node,
			Captures: make(map[string]*sitter.Node, len(m.Captures)),
		}
		for _, cap := range m.Captures {
			match.Captures[q.CaptureNameForId(cap.Index)] = cap.Node
		}
		out = append(out, match)
	}
	return out, nil
}

// ParseFile reads and parses one C source or header file.
func ParseFile(ctx context.Context, path string) (*Unit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseBytes(ctx, path, src)
}

// ParseBytes parses in-memory C source under the given file name.
func ParseBytes(ctx context.Context, name string, src []byte) (*Unit, error) {
	p := getParser()
	defer putParser(p)
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &Unit{
		FilePath: name,
		Source:   src,
		Root:     tree.RootNode(),
		Tree:     tree,
	}, nil
}
