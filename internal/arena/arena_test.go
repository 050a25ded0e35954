package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type node struct {
	Value int
	Next  *node
}

func TestPool_StablePointers(t *testing.T) {
	a := New()
	p := NewPool[node](a, 4)

	var first *node
	var ptrs []*node
	for i := 0; i < 10; i++ {
		n := p.New()
		n.Value = i
		if i == 0 {
			first = n
		}
		ptrs = append(ptrs, n)
	}

	require.Equal(t, 0, first.Value, "earlier pointers must stay valid after later chunks grow")
	for i, n := range ptrs {
		require.Equal(t, i, n.Value)
	}
	require.Greater(t, p.Chunks(), 1, "10 allocations at chunk size 4 should span multiple chunks")
}

func TestPool_NewSlice(t *testing.T) {
	a := New()
	p := NewPool[int](a, 8)

	s := p.NewSlice(5)
	require.Len(t, s, 5)
	for i := range s {
		s[i] = i * i
	}
	require.Equal(t, []int{0, 1, 4, 9, 16}, s)
}

func TestPool_GrowsOversizedChunkOnDemand(t *testing.T) {
	a := New()
	p := NewPool[byte](a, 4)

	small := p.NewSlice(2)
	require.Len(t, small, 2)
	require.Equal(t, 1, p.Chunks())

	big := p.NewSlice(100)
	require.Len(t, big, 100)
	require.Equal(t, 2, p.Chunks())
}

func TestArena_FreeResetsAllPools(t *testing.T) {
	a := New()
	ints := NewPool[int](a, 4)
	strs := NewPool[string](a, 4)

	ints.New()
	ints.New()
	strs.New()

	require.Equal(t, 1, ints.Chunks())
	require.Equal(t, 1, strs.Chunks())

	a.Free()

	require.Equal(t, 0, ints.Chunks())
	require.Equal(t, 0, strs.Chunks())
}

func TestArena_DistinctArenasAreIndependent(t *testing.T) {
	a1 := New()
	a2 := New()

	p1 := NewPool[int](a1, 4)
	p2 := NewPool[int](a2, 4)

	p1.New()
	p1.New()
	p1.New()

	a1.Free()

	// a2's pool is untouched by a1.Free.
	n := p2.New()
	n2 := p2.New()
	require.NotNil(t, n)
	require.NotNil(t, n2)
	require.Equal(t, 1, p2.Chunks())
}
