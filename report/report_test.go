package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-shank/HandlERR/bounds"
	"github.com/the-shank/HandlERR/detecterr"
	"github.com/the-shank/HandlERR/frontend"
)

// sampleResult covers every annotation outcome and one finding.
func sampleResult() *Result {
	return &Result{
		Annotations: []frontend.Annotation{
			{
				Loc:      bounds.SourceLoc{File: "buf.c", Line: 3, Col: 8},
				Name:     "buf",
				Bound:    "count(n)",
				Priority: "allocator",
			},
			{
				Loc:        bounds.SourceLoc{File: "buf.c", Line: 9, Col: 8},
				Name:       "tail",
				Impossible: true,
			},
			{
				Loc:  bounds.SourceLoc{File: "str.c", Line: 2, Col: 14},
				Name: "name",
			},
		},
		Findings: []detecterr.Finding{
			{
				Func:       detecterr.FuncID{Name: "find", File: "str.c"},
				Convention: detecterr.ReturnsNullOnError,
				Line:       4,
				Col:        1,
				Guards: []detecterr.Guard{
					{Kind: detecterr.GuardNullCheck, Text: "s == NULL", Line: 3, Col: 4},
				},
			},
		},
		FilesScanned: 2,
		Duration:     42 * time.Millisecond,
	}
}

// sessionResult runs a real scan so the result carries a live session.
func sessionResult(t *testing.T) *Result {
	t.Helper()
	bi := bounds.NewInfo(bounds.Default(), log.New(io.Discard, "", 0))
	in := frontend.NewIndexer(bi, log.New(io.Discard, "", 0))
	src := "void fill(int *buf, int n) {\n" +
		"int *p = buf;\n" +
		"for (int i = 0; i < n; i++) p[i] = 0;\n" +
		"}\n"
	require.NoError(t, in.IndexSource(context.Background(), "fill.c", []byte(src)))
	in.Solve()
	return &Result{
		Annotations:  in.Locations().Annotate(bi),
		Session:      bi,
		FilesScanned: 1,
	}
}

func TestTextWriterGroupsByFile(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	require.NoError(t, w.Write(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "HandlERR Scan Results")
	assert.Contains(t, out, "Files scanned: 2")
	assert.Contains(t, out, "File: buf.c")
	assert.Contains(t, out, "File: str.c")
	assert.Contains(t, out, "count(n)")
	assert.Contains(t, out, "allocator")
	assert.Contains(t, out, "impossible")
	assert.Contains(t, out, "unresolved")
	assert.Contains(t, out, "returns-null-on-error")
	assert.Contains(t, out, "s == NULL (null-check)")
	assert.NotContains(t, out, "\x1b[", "buffers are not terminals")
}

func TestTextWriterForcedColor(t *testing.T) {
	color.ForceColor()

	var buf bytes.Buffer
	w := NewTextWriter(&buf, WithColor())
	require.NoError(t, w.Write(sampleResult()))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestTextWriterEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	require.NoError(t, w.Write(&Result{FilesScanned: 3}))

	out := buf.String()
	assert.Contains(t, out, "No array pointers or error conventions found")
	assert.Contains(t, out, "Files scanned: 3")
	assert.NotContains(t, out, "Array Pointer Bounds")
}

func TestTextWriterWithoutStats(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, WithoutStats())
	require.NoError(t, w.Write(sampleResult()))
	assert.NotContains(t, buf.String(), "Summary:")
}

func TestTextWriterVerboseGuardRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, WithVerbose())
	require.NoError(t, w.Write(sampleResult()))
	assert.Contains(t, buf.String(), "Guard: s == NULL at 3:4")
}

func TestTextWriterToFileStaysPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.text")
	w := NewTextWriter(io.Discard)
	require.NoError(t, w.WriteToFile(sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "HandlERR Scan Results")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestJSONWriterReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyJSON())
	require.NoError(t, w.Write(sampleResult()))

	var rep JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))

	_, err := uuid.Parse(rep.RunID)
	assert.NoError(t, err, "run id is a uuid")
	assert.False(t, rep.GeneratedAt.IsZero())
	assert.Equal(t, "HandlERR", rep.Tool.Name)

	assert.Equal(t, 3, rep.Summary.ArrayPointers)
	assert.Equal(t, 1, rep.Summary.Bounded)
	assert.Equal(t, 1, rep.Summary.Impossible)
	assert.Equal(t, 1, rep.Summary.Unresolved)
	assert.Equal(t, map[string]int{"allocator": 1}, rep.Summary.ByPriority)
	assert.Equal(t, map[string]int{"returns-null-on-error": 1}, rep.Summary.ByConvention)

	require.Len(t, rep.Annotations, 3)
	assert.Equal(t, AnnotationReport{
		File:     "buf.c",
		Line:     3,
		Col:      8,
		Name:     "buf",
		Bound:    "count(n)",
		Priority: "allocator",
	}, rep.Annotations[0])
	assert.True(t, rep.Annotations[1].Impossible)

	require.Len(t, rep.Findings, 1)
	assert.Equal(t, detecterr.ReturnsNullOnError, rep.Findings[0].Convention)
	require.Len(t, rep.Findings[0].Guards, 1)
	assert.Equal(t, detecterr.GuardNullCheck, rep.Findings[0].Guards[0].Kind)

	assert.EqualValues(t, 2, rep.Statistics["files_scanned"])
	assert.Equal(t, "42ms", rep.Statistics["scan_duration"])
}

func TestJSONWriterEmptySlicesStayArrays(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.Write(&Result{}))

	out := buf.String()
	assert.Contains(t, out, `"annotations":[]`)
	assert.Contains(t, out, `"findings":[]`)
}

func TestDotWriterNeedsSession(t *testing.T) {
	w := NewDotWriter(io.Discard)
	err := w.Write(&Result{})
	assert.ErrorContains(t, err, "bounds session")
}

func TestDotWriterRendersFlowGraph(t *testing.T) {
	var buf bytes.Buffer
	w := NewDotWriter(&buf)
	require.NoError(t, w.Write(sessionResult(t)))

	out := buf.String()
	assert.Contains(t, out, `digraph "flow"`)
	assert.Contains(t, out, "->", "the p = buf assignment produces a flow edge")
}

func TestManagerGenerateAll(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(WithFormat(FormatAll), WithOutputDir(dir))

	files, err := m.Generate(sessionResult(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "handlerr_report.text"),
		filepath.Join(dir, "handlerr_report.json"),
		filepath.Join(dir, "handlerr_report.dot"),
	}, files)

	for _, f := range files {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}
}

func TestManagerCustomFilename(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(WithFormat(FormatJSON), WithOutputDir(dir), WithFilename("out.json"))

	files, err := m.Generate(sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "out.json"), files[0])

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestManagerTimestampedFilename(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(WithFormat(FormatText), WithOutputDir(dir), WithTimestamp())

	files, err := m.Generate(sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, `handlerr_report_\d{8}_\d{6}\.text$`, files[0])
}

func TestManagerUnsupportedFormat(t *testing.T) {
	m := NewManager(WithFormat(Format("yaml")))
	_, err := m.Generate(sampleResult())
	assert.ErrorContains(t, err, "unsupported format")
}

func TestCreateWriter(t *testing.T) {
	m := NewManager()

	w, err := m.CreateWriter(FormatText, io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &TextWriter{}, w)

	w, err = m.CreateWriter(FormatJSON, io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	w, err = m.CreateWriter(FormatDot, io.Discard)
	require.NoError(t, err)
	assert.IsType(t, &DotWriter{}, w)

	_, err = m.CreateWriter(Format("yaml"), io.Discard)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"dot", FormatDot},
		{"all", FormatAll},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestFormatDescription(t *testing.T) {
	assert.Contains(t, FormatDescription(FormatDot), "Graphviz")
	assert.Equal(t, "Unknown format", FormatDescription(Format("yaml")))
}
