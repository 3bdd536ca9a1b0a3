package detecterr

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-shank/HandlERR/frontend"
)

type srcFile struct {
	name string
	src  string
}

func scan(t *testing.T, files ...srcFile) *Analyzer {
	t.Helper()
	a := New(log.New(io.Discard, "", 0))
	for _, f := range files {
		require.NoError(t, a.AnalyzeSource(context.Background(), f.name, []byte(f.src)))
	}
	return a
}

func TestGuardedNullReturn(t *testing.T) {
	a := scan(t, srcFile{"find.c", `int *find(int *base, int n, int key) {
if (n < 0) {
return NULL;
}
return base;
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	f := fs[0]
	assert.Equal(t, FuncID{Name: "find", File: "find.c"}, f.Func)
	assert.Equal(t, ReturnsNullOnError, f.Convention)
	assert.Equal(t, 3, f.Line)
	assert.Equal(t, 1, f.Col)

	require.Len(t, f.Guards, 1)
	assert.Equal(t, GuardNegativeCheck, f.Guards[0].Kind)
	assert.Equal(t, "n < 0", f.Guards[0].Text)
	assert.Equal(t, 2, f.Guards[0].Line)
	assert.Equal(t, 4, f.Guards[0].Col)
}

func TestUnguardedNullReturnIgnored(t *testing.T) {
	a := scan(t, srcFile{"empty.c", `char *empty(void) {
return NULL;
}
`})
	assert.Empty(t, a.Findings())
}

func TestNegativeReturnUnderNullCheck(t *testing.T) {
	a := scan(t, srcFile{"parse.c", `int parse(char *s) {
if (s == NULL) {
return -1;
}
return 0;
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	f := fs[0]
	assert.Equal(t, ReturnsNegativeOnError, f.Convention)
	assert.Equal(t, 3, f.Line)
	require.Len(t, f.Guards, 1)
	assert.Equal(t, GuardNullCheck, f.Guards[0].Kind)
	assert.Equal(t, "s == NULL", f.Guards[0].Text)
}

func TestBangTestReadsAsNullCheck(t *testing.T) {
	a := scan(t, srcFile{"dup.c", `int *dup_head(int *p, int n) {
if (!p) {
return 0;
}
return p;
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	assert.Equal(t, ReturnsNullOnError, fs[0].Convention)
	require.Len(t, fs[0].Guards, 1)
	assert.Equal(t, GuardNullCheck, fs[0].Guards[0].Kind)
	assert.Equal(t, "!p", fs[0].Guards[0].Text)
}

func TestCastsAreStripped(t *testing.T) {
	a := scan(t, srcFile{"grab.c", `void *grab(int n) {
if (n > 4096) {
return (void *)0;
}
return (void *)1;
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	assert.Equal(t, ReturnsNullOnError, fs[0].Convention)
	assert.Equal(t, 3, fs[0].Line)
	require.Len(t, fs[0].Guards, 1)
	assert.Equal(t, GuardOther, fs[0].Guards[0].Kind)
	assert.Equal(t, "n > 4096", fs[0].Guards[0].Text)
}

func TestNegativeSentinelFromPointerFunction(t *testing.T) {
	a := scan(t, srcFile{"map.c", `void *map_region(int fd) {
if (fd < 0) {
return (void *)-1;
}
return 0;
}
`})

	// Both returns sit under the guard: the early one carries the negative
	// marker, the fall-through one is a null constant in a pointer function.
	fs := a.Findings()
	require.Len(t, fs, 2)
	assert.Equal(t, ReturnsNullOnError, fs[0].Convention)
	assert.Equal(t, 5, fs[0].Line)
	assert.Equal(t, ReturnsNegativeOnError, fs[1].Convention)
	assert.Equal(t, 3, fs[1].Line)
	for _, f := range fs {
		require.Len(t, f.Guards, 1)
		assert.Equal(t, GuardNegativeCheck, f.Guards[0].Kind)
		assert.Equal(t, "fd < 0", f.Guards[0].Text)
	}
}

func TestLoopReturnDependsOnInnerTestOnly(t *testing.T) {
	a := scan(t, srcFile{"scan.c", `int scan(int *a, int n) {
int i = 0;
while (i < n) {
if (a[i] < 0) {
return -1;
}
i = i + 1;
}
return 0;
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	f := fs[0]
	assert.Equal(t, ReturnsNegativeOnError, f.Convention)
	assert.Equal(t, 5, f.Line)
	require.Len(t, f.Guards, 1, "only the test that directly decides the return")
	assert.Equal(t, "a[i] < 0", f.Guards[0].Text)
	assert.Equal(t, GuardNegativeCheck, f.Guards[0].Kind)
	assert.Equal(t, 4, f.Guards[0].Line)
}

func TestSwitchArmGuard(t *testing.T) {
	a := scan(t, srcFile{"status.c", `int status(int code) {
switch (code) {
case 0:
return 0;
default:
return -1;
}
}
`})

	fs := a.Findings()
	require.Len(t, fs, 1)
	f := fs[0]
	assert.Equal(t, ReturnsNegativeOnError, f.Convention)
	assert.Equal(t, 6, f.Line)
	require.Len(t, f.Guards, 1)
	assert.Equal(t, GuardOther, f.Guards[0].Kind)
	assert.Equal(t, "code", f.Guards[0].Text)
	assert.Equal(t, 2, f.Guards[0].Line)
}

func TestBareReturnsCarryNothing(t *testing.T) {
	a := scan(t, srcFile{"reset.c", `void reset(int *p) {
if (!p) {
return;
}
*p = 0;
}
`})
	assert.Empty(t, a.Findings())
}

func TestReportGroupsPerFunction(t *testing.T) {
	a := scan(t,
		srcFile{"a.c", `char *f(char *p) {
if (!p) {
return 0;
}
return p;
}
`},
		srcFile{"b.c", `int f(int x) {
if (x == -1) {
return -2;
}
return x;
}
`})

	rep := a.Report()
	require.Len(t, rep, 2)

	aID := FuncID{Name: "f", File: "a.c"}
	bID := FuncID{Name: "f", File: "b.c"}
	require.Len(t, rep[aID], 1)
	require.Len(t, rep[bID], 1)
	assert.Equal(t, ReturnsNullOnError, rep[aID][0].Convention)
	assert.Equal(t, ReturnsNegativeOnError, rep[bID][0].Convention)
	assert.Equal(t, GuardNegativeCheck, rep[bID][0].Guards[0].Kind)

	assert.Equal(t, []Convention{ReturnsNullOnError}, a.Conventions(aID))
	assert.Empty(t, a.Conventions(FuncID{Name: "f", File: "c.c"}))
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guard.c")
	src := `char *clone_name(char *s) {
if (s == 0) {
return NULL;
}
return s;
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	a := New(log.New(io.Discard, "", 0))
	require.NoError(t, a.AnalyzeFile(context.Background(), path))

	fs := a.Findings()
	require.Len(t, fs, 1)
	assert.Equal(t, path, fs[0].Func.File)
	assert.Equal(t, "clone_name", fs[0].Func.Name)
}

func TestAnalyzeFileRejectsUnknownExtension(t *testing.T) {
	a := New(log.New(io.Discard, "", 0))
	err := a.AnalyzeFile(context.Background(), "prog.rs")
	require.Error(t, err)
	assert.ErrorIs(t, err, frontend.ErrUnsupportedFormat)
}
