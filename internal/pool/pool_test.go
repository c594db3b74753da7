package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupyReleaseLIFOReuse(t *testing.T) {
	p := New[int](4)

	a := p.OccupyWith(10)
	b := p.OccupyWith(20)
	c := p.OccupyWith(30)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 3, c)

	require.NoError(t, p.Release(b))
	require.NoError(t, p.Release(a))

	// LIFO: the most recently released slot (a) comes back first.
	reissued := p.OccupyWith(99)
	assert.Equal(t, a, reissued)

	reissued2 := p.OccupyWith(100)
	assert.Equal(t, b, reissued2)
}

func TestReleaseUnoccupiedIsError(t *testing.T) {
	p := New[int](1)
	assert.Error(t, p.Release(1))

	idx := p.OccupyWith(1)
	require.NoError(t, p.Release(idx))
	assert.Error(t, p.Release(idx))
}

func TestReleaseOutOfRangeIsError(t *testing.T) {
	p := New[int](1)
	assert.Error(t, p.Release(42))
	assert.Error(t, p.Release(0))
}

func TestItemPtrNilAfterRelease(t *testing.T) {
	p := New[int](1)
	idx := p.OccupyWith(7)
	assert.Equal(t, 7, *p.ItemPtr(idx))
	require.NoError(t, p.Release(idx))
	assert.Nil(t, p.ItemPtr(idx))
}

func TestMaxIndexTracksDistinctSlotsEverUsed(t *testing.T) {
	p := New[int](1)
	a := p.OccupyWith(1)
	assert.Equal(t, 1, p.MaxIndex())
	require.NoError(t, p.Release(a))
	assert.Equal(t, 1, p.MaxIndex())

	p.OccupyWith(2)
	p.OccupyWith(3)
	assert.Equal(t, 2, p.MaxIndex())
}

func TestIterateVisitsOnlyOccupiedInOrder(t *testing.T) {
	p := New[int](4)
	a := p.OccupyWith(1)
	b := p.OccupyWith(2)
	_ = p.OccupyWith(3)
	require.NoError(t, p.Release(b))

	var seen []int
	err := p.Iterate(func(index int, item *int) error {
		seen = append(seen, *item)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, seen)
	_ = a
}
