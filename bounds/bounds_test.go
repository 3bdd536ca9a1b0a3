package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundConstructorsAndEquality(t *testing.T) {
	assert.Equal(t, Bound{Kind: KindCount, Base: 3}, CountBound(3))
	assert.Equal(t, Bound{Kind: KindCountPlusOne, Base: 3}, CountPlusOneBound(3))
	assert.Equal(t, Bound{Kind: KindByteCount, Base: 3}, ByteCountBound(3))
	assert.Equal(t, Bound{Kind: KindRange, Base: 3, High: 4}, RangeBound(3, 4))

	assert.True(t, CountBound(3) == CountBound(3))
	assert.False(t, CountBound(3) == CountBound(4))
	assert.False(t, CountBound(3) == CountPlusOneBound(3))

	assert.False(t, Bound{}.IsValid())
	assert.True(t, CountBound(1).IsValid())
}

func TestBoundKeys(t *testing.T) {
	assert.Nil(t, Bound{}.Keys())
	assert.Equal(t, []Key{5}, CountBound(5).Keys())
	assert.Equal(t, []Key{5}, ByteCountBound(5).Keys())
	assert.Equal(t, []Key{5, 9}, RangeBound(5, 9).Keys())
}

func TestBoundWithBase(t *testing.T) {
	b := RangeBound(1, 2).WithBase(7)
	assert.Equal(t, RangeBound(7, 2), b)
	assert.Equal(t, CountBound(9), CountBound(1).WithBase(9))
}

func TestBoundString(t *testing.T) {
	assert.Equal(t, "count(#2)", CountBound(2).String())
	assert.Equal(t, "count(#2 + 1)", CountPlusOneBound(2).String())
	assert.Equal(t, "byte_count(#2)", ByteCountBound(2).String())
	assert.Equal(t, "bounds(#2, #3)", RangeBound(2, 3).String())
	assert.Equal(t, "<none>", Bound{}.String())
}

func TestBoundSourceString(t *testing.T) {
	bi := newTestInfo()
	n := bi.InsertVariable(intLocal("n", 1))
	eight := bi.GetConstKey(8)

	assert.Equal(t, "count(n)", CountBound(n).SourceString(bi))
	assert.Equal(t, "count(n + 1)", CountPlusOneBound(n).SourceString(bi))
	assert.Equal(t, "byte_count(8)", ByteCountBound(eight).SourceString(bi))
	assert.Equal(t, "bounds(n, 8)", RangeBound(n, eight).SourceString(bi))
}

func TestKindAndPriorityStrings(t *testing.T) {
	assert.Equal(t, "count", KindCount.String())
	assert.Equal(t, "count+1", KindCountPlusOne.String())
	assert.Equal(t, "byte_count", KindByteCount.String())
	assert.Equal(t, "bounds", KindRange.String())
	assert.Equal(t, "invalid", KindInvalid.String())

	assert.Equal(t, "declared", Declared.String())
	assert.Equal(t, "allocator", Allocator.String())
	assert.Equal(t, "flow-inferred", FlowInferred.String())
	assert.Equal(t, "heuristics", Heuristics.String())
	assert.Equal(t, "invalid", InvalidPriority.String())
}

func TestPriorityOrdering(t *testing.T) {
	assert.Less(t, Declared, Allocator)
	assert.Less(t, Allocator, FlowInferred)
	assert.Less(t, FlowInferred, Heuristics)
	assert.Less(t, Heuristics, InvalidPriority)
}
