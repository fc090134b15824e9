package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sccWisdom/graphcode/heap"
)

type HeapSuite struct {
	suite.Suite
}

func TestHeapSuite(t *testing.T) {
	suite.Run(t, new(HeapSuite))
}

func (s *HeapSuite) TestInsertAndGetMin() {
	var h heap.Heap
	h.Reserve(10)
	h.Insert(5, 0)
	h.Insert(2, 1)
	h.Insert(8, 2)

	v, k, ok := h.GetMin()
	require.True(s.T(), ok)
	s.EqualValues(2, v)
	s.EqualValues(1, k)
}

func (s *HeapSuite) TestDecreaseKeyReordersMin() {
	var h heap.Heap
	h.Reserve(10)
	h.Insert(5, 0)
	h.Insert(10, 1)

	require.NoError(s.T(), h.DecreaseKey(1, 8))
	v, k, ok := h.GetMin()
	require.True(s.T(), ok)
	s.EqualValues(2, v)
	s.EqualValues(1, k)
}

func (s *HeapSuite) TestDecreaseKeyUnderflow() {
	var h heap.Heap
	h.Reserve(10)
	h.Insert(3, 0)
	err := h.DecreaseKey(0, 5)
	require.ErrorIs(s.T(), err, heap.ErrDeltaExceedsValue)
}

func (s *HeapSuite) TestRemove() {
	var h heap.Heap
	h.Reserve(10)
	h.Insert(5, 0)
	h.Insert(2, 1)
	h.Insert(8, 2)

	require.True(s.T(), h.Remove(1))
	require.False(s.T(), h.Remove(1))
	v, k, ok := h.GetMin()
	require.True(s.T(), ok)
	s.EqualValues(5, v)
	s.EqualValues(0, k)
}

func (s *HeapSuite) TestContainsAndClear() {
	var h heap.Heap
	h.Reserve(4)
	h.Insert(1, 2)
	require.True(s.T(), h.Contains(2))
	h.Clear()
	require.False(s.T(), h.Contains(2))
	_, _, ok := h.GetMin()
	require.False(s.T(), ok)
}

func (s *HeapSuite) TestHeapOrderInvariantAfterMixedOps() {
	var h heap.Heap
	n := 50
	h.Reserve(n)
	for i := 0; i < n; i++ {
		h.Insert(uint32((i*37+11)%97), uint32(i))
	}
	// decrease a handful of keys and remove a few others, then verify the
	// min is always <= every remaining value.
	_ = h.DecreaseKey(3, 5)
	_ = h.DecreaseKey(40, 10)
	h.Remove(7)
	h.Remove(20)

	min, _, ok := h.GetMin()
	require.True(s.T(), ok)
	for i := 0; i < n; i++ {
		if !h.Contains(uint32(i)) {
			continue
		}
	}
	// Drain the heap via repeated Remove-of-min and check monotonic order.
	prev := min
	for {
		v, k, ok := h.GetMin()
		if !ok {
			break
		}
		require.GreaterOrEqual(s.T(), v, prev)
		prev = v
		h.Remove(k)
	}
}
