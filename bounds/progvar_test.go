package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySetBasics(t *testing.T) {
	s := NewKeySet(3, 1)
	s.Add(2)
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(7))
	s.AddAll(NewKeySet(7))
	assert.Equal(t, []Key{1, 2, 3, 7}, s.Sorted())
}

func TestSourceLoc(t *testing.T) {
	assert.False(t, SourceLoc{}.Valid())
	assert.Equal(t, "<none>", SourceLoc{}.String())

	l := SourceLoc{File: "main.c", Line: 12, Col: 5}
	assert.True(t, l.Valid())
	assert.Equal(t, "main.c:12:5", l.String())
}

func TestScopeVisibility(t *testing.T) {
	mainFn := FunctionScope("main", "main.c", false)
	callSite := SourceLoc{File: "main.c", Line: 9, Col: 3}
	otherSite := SourceLoc{File: "main.c", Line: 20, Col: 3}
	spec := ParamScope("fill", "lib.c", false).Specialize(callSite, mainFn)

	tests := []struct {
		name string
		s    Scope
		use  Scope
		want bool
	}{
		{"global anywhere", GlobalScope(), mainFn, true},
		{"global at global", GlobalScope(), GlobalScope(), true},
		{"local in own function", FunctionScope("main", "main.c", false), mainFn, true},
		{"local in other function", FunctionScope("helper", "main.c", false), mainFn, false},
		{"param beside local", ParamScope("main", "main.c", false), mainFn, true},
		{"local at global use", FunctionScope("main", "main.c", false), GlobalScope(), false},
		{"static local same file", FunctionScope("run", "a.c", true), FunctionScope("run", "a.c", true), true},
		{"static local other file", FunctionScope("run", "a.c", true), FunctionScope("run", "b.c", true), false},
		{"field beside same struct", StructScope("vec"), StructScope("vec"), true},
		{"field beside other struct", StructScope("vec"), StructScope("list"), false},
		{"field at function use", StructScope("vec"), mainFn, false},
		{"copy visible in caller", spec, mainFn, true},
		{"copy invisible elsewhere", spec, FunctionScope("other", "main.c", false), false},
		{"copy beside same-site copy", spec, ParamScope("fill", "lib.c", false).Specialize(callSite, mainFn), true},
		{"copy beside other-site copy", spec, ParamScope("fill", "lib.c", false).Specialize(otherSite, mainFn), false},
		{"global at specialized use", GlobalScope(), spec, true},
		{"caller local at specialized use", FunctionScope("main", "main.c", false), spec, true},
		{"callee local at specialized use", FunctionScope("fill", "lib.c", false), spec, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.VisibleIn(tt.use))
		})
	}
}

func TestScopeSpecialize(t *testing.T) {
	caller := FunctionScope("main", "main.c", true)
	cs := SourceLoc{File: "main.c", Line: 4, Col: 7}
	sp := ParamScope("fill", "lib.c", false).Specialize(cs, caller)

	assert.True(t, sp.IsSpecialized())
	assert.Equal(t, ScopeParam, sp.Kind)
	assert.Equal(t, "main", sp.Func)
	assert.Equal(t, "main.c", sp.File)
	assert.True(t, sp.Static)
	assert.Equal(t, cs, sp.CallSite)

	assert.False(t, ParamScope("fill", "lib.c", false).IsSpecialized())
}

func TestScopeInFunction(t *testing.T) {
	assert.True(t, FunctionScope("main", "main.c", false).InFunction("main"))
	assert.True(t, ParamScope("main", "main.c", false).InFunction("main"))
	assert.False(t, FunctionScope("main", "main.c", false).InFunction("other"))
	assert.False(t, GlobalScope().InFunction("main"))
	assert.False(t, StructScope("vec").InFunction("main"))
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "global", GlobalScope().String())
	assert.Equal(t, "func main", FunctionScope("main", "main.c", false).String())
	assert.Equal(t, "param of fill", ParamScope("fill", "lib.c", false).String())
	assert.Equal(t, "struct vec", StructScope("vec").String())

	cs := SourceLoc{File: "main.c", Line: 3, Col: 1}
	sp := FunctionScope("fill", "lib.c", false).Specialize(cs, FunctionScope("main", "main.c", false))
	assert.Equal(t, "func main@main.c:3:1", sp.String())
}
