package slist

import (
	"testing"

	"github.com/ouyang789987/frr/typesafe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type elem struct {
	val   int
	chain Item[elem]
	other Item[elem]
}

func chainOf(e *elem) *Item[elem] { return &e.chain }
func otherOf(e *elem) *Item[elem] { return &e.other }

func TestListInterface(t *testing.T) {
	var _ typesafe.Unsorted[elem] = (*List[elem])(nil)
}

func makeElems(n int) []*elem {
	out := make([]*elem, n)
	for i := range out {
		out[i] = &elem{val: i}
	}
	return out
}

func vals(l *List[elem]) []int {
	var out []int
	for e := range typesafe.All[elem](l) {
		out = append(out, e.val)
	}
	return out
}

func TestAddHeadPopLIFO(t *testing.T) {
	l := New(chainOf)
	for _, e := range makeElems(5) {
		l.AddHead(e)
	}
	require.Equal(t, 5, l.Count())
	require.Equal(t, []int{4, 3, 2, 1, 0}, vals(l))

	for want := 4; want >= 0; want-- {
		e := l.Pop()
		require.NotNil(t, e)
		assert.Equal(t, want, e.val)
	}
	assert.Nil(t, l.Pop())
	assert.Nil(t, l.Pop())
	assert.Equal(t, 0, l.Count())
	require.NoError(t, l.Fini())
}

func TestAddTailPopFIFO(t *testing.T) {
	l := New(chainOf)
	for _, e := range makeElems(5) {
		l.AddTail(e)
	}
	for want := 0; want < 5; want++ {
		e := l.Pop()
		require.NotNil(t, e)
		assert.Equal(t, want, e.val)
	}
	assert.Nil(t, l.Pop())

	// 清空後 tail 必須重設，否則新元素會接到舊元素後面
	es := makeElems(2)
	l.AddTail(es[0])
	l.AddTail(es[1])
	require.Equal(t, []int{0, 1}, vals(l))
}

func TestAddAfter(t *testing.T) {
	l := New(chainOf)
	es := makeElems(5)
	l.AddAfter(nil, es[1])
	l.AddAfter(nil, es[0])
	l.AddAfter(es[1], es[3])
	l.AddAfter(es[1], es[2])
	require.Equal(t, []int{0, 1, 2, 3}, vals(l))

	// 插在最後一個元素之後要更新 tail
	l.AddTail(es[4])
	require.Equal(t, []int{0, 1, 2, 3, 4}, vals(l))
	require.Equal(t, 5, l.Count())
}

func TestDel(t *testing.T) {
	l := New(chainOf)
	es := makeElems(4)
	for _, e := range es {
		l.AddTail(e)
	}
	require.NoError(t, l.Del(es[1]))
	require.Equal(t, []int{0, 2, 3}, vals(l))

	require.NoError(t, l.Del(es[3]))
	require.Equal(t, []int{0, 2}, vals(l))
	// 刪除最後一個元素後 AddTail 仍接在尾端
	l.AddTail(es[3])
	require.Equal(t, []int{0, 2, 3}, vals(l))

	require.ErrorIs(t, l.Del(es[1]), typesafe.ErrNotMember)
	require.ErrorIs(t, l.Del(nil), typesafe.ErrNotMember)
	require.Equal(t, 3, l.Count())

	err := l.Fini()
	require.ErrorIs(t, err, typesafe.ErrNotEmpty)
	require.Equal(t, 3, l.Count())
}

func TestDoubleAddPanics(t *testing.T) {
	l := New(chainOf)
	e := &elem{}
	l.AddHead(e)
	require.Panics(t, func() { l.AddTail(e) })
	require.Panics(t, func() { l.AddHead(nil) })

	other := New(chainOf)
	require.Panics(t, func() { other.AddHead(e) })
	require.ErrorIs(t, other.Del(e), typesafe.ErrNotMember)
}

func TestMultipleLinks(t *testing.T) {
	a := New(chainOf)
	b := New(otherOf)
	es := makeElems(3)
	for _, e := range es {
		a.AddTail(e)
		b.AddHead(e)
	}
	require.Equal(t, []int{0, 1, 2}, vals(a))
	require.Equal(t, []int{2, 1, 0}, vals(b))

	require.NoError(t, b.Del(es[1]))
	require.Equal(t, []int{0, 1, 2}, vals(a))
	require.Equal(t, []int{2, 0}, vals(b))
}

func TestSafeWalkDelete(t *testing.T) {
	l := New(chainOf)
	for _, e := range makeElems(6) {
		l.AddTail(e)
	}
	for e := range typesafe.Safe[elem](l) {
		if e.val%2 == 0 {
			require.NoError(t, l.Del(e))
		}
	}
	require.Equal(t, []int{1, 3, 5}, vals(l))
	require.Equal(t, 3, l.Count())
}

func TestFromResume(t *testing.T) {
	l := New(chainOf)
	for _, e := range makeElems(5) {
		l.AddTail(e)
	}
	cursor := l.First()
	var seen []int
	for e := range typesafe.From[elem](l, &cursor) {
		seen = append(seen, e.val)
		if e.val == 1 {
			break
		}
	}
	require.Equal(t, []int{0, 1}, seen)
	require.Equal(t, 2, cursor.val)

	for e := range typesafe.From[elem](l, &cursor) {
		seen = append(seen, e.val)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	require.Nil(t, cursor)
	require.Nil(t, l.NextSafe(nil))
}
