package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	require.Equal(t, 10, q.Len())

	for i := 0; i < 10; i++ {
		v, err := q.Pop()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueue_PopEmpty(t *testing.T) {
	var q Queue[string]

	_, err := q.Pop()
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = q.Peek()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQueue_ResetsIndicesWhenDrained(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	_, _ = q.Pop()
	_, _ = q.Pop()

	assert.Equal(t, 0, q.head)
	assert.Empty(t, q.items)

	// Behaves like a fresh queue afterwards.
	q.Push(7)
	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_InterleavedPushPop(t *testing.T) {
	q := New[int]()
	next, want := 0, 0
	for round := 0; round < 500; round++ {
		for i := 0; i < 3; i++ {
			q.Push(next)
			next++
		}
		for i := 0; i < 2; i++ {
			v, err := q.Pop()
			require.NoError(t, err)
			require.Equal(t, want, v)
			want++
		}
	}

	assert.Equal(t, next-want, q.Len())
	assert.True(t, q.head < compactAt || q.head < q.Len(), "consumed prefix should be compacted")

	for !q.IsEmpty() {
		v, err := q.Pop()
		require.NoError(t, err)
		require.Equal(t, want, v)
		want++
	}
	assert.Equal(t, next, want)
}

func TestQueue_ItemsIsACopy(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	_, _ = q.Pop()
	q.Push(3)

	items := q.Items()
	assert.Equal(t, []int{2, 3}, items)

	items[0] = 99
	v, _ := q.Peek()
	assert.Equal(t, 2, v)
}
