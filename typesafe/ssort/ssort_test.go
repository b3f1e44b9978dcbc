package ssort

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/ouyang789987/frr/typesafe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type elem struct {
	val   int
	seq   int
	chain Item[elem]
}

func chainOf(e *elem) *Item[elem] { return &e.chain }

func cmpVal(a, b *elem) int { return a.val - b.val }

// 相同 val 時以 seq 分先後
func cmpValSeq(a, b *elem) int {
	if c := a.val - b.val; c != 0 {
		return c
	}
	return a.seq - b.seq
}

func TestListInterface(t *testing.T) {
	var _ typesafe.Sorted[elem] = (*List[elem])(nil)
}

func vals(l *List[elem]) []int {
	var out []int
	for e := range typesafe.All[elem](l) {
		out = append(out, e.val)
	}
	return out
}

func TestAddRejectsDuplicate(t *testing.T) {
	l := New(chainOf, cmpVal)
	e5, e1, e3a, e3b := &elem{val: 5}, &elem{val: 1}, &elem{val: 3}, &elem{val: 3}

	assert.Nil(t, l.Add(e5))
	assert.Nil(t, l.Add(e1))
	assert.Nil(t, l.Add(e3a))
	assert.Same(t, e3a, l.Add(e3b))

	require.Equal(t, []int{1, 3, 5}, vals(l))
	require.Equal(t, 3, l.Count())
	// 被拒絕的元素沒有被連結，可以再放進別的串列
	require.ErrorIs(t, l.Del(e3b), typesafe.ErrNotMember)
	other := New(chainOf, cmpVal)
	assert.Nil(t, other.Add(e3b))
}

func TestFind(t *testing.T) {
	l := New(chainOf, cmpVal)
	for _, v := range []int{10, 30, 20} {
		l.Add(&elem{val: v})
	}
	got := l.Find(&elem{val: 20})
	require.NotNil(t, got)
	assert.Equal(t, 20, got.val)
	assert.Nil(t, l.Find(&elem{val: 25}))
	assert.Nil(t, l.Find(&elem{val: 40}))
	assert.Nil(t, l.Find(&elem{val: 0}))
}

func TestPriorityQueue(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	l := New(chainOf, cmpValSeq)
	const n = 500
	for i := 0; i < n; i++ {
		assert.Nil(t, l.Add(&elem{val: rng.IntN(50), seq: i}))
	}
	require.Equal(t, n, l.Count())

	prev := l.Pop()
	for i := 1; i < n; i++ {
		e := l.Pop()
		require.NotNil(t, e)
		require.Positive(t, cmpValSeq(e, prev))
		prev = e
	}
	require.Nil(t, l.Pop())
	require.NoError(t, l.Fini())
}

func TestDelAndCount(t *testing.T) {
	l := New(chainOf, cmpVal)
	es := make([]*elem, 10)
	for i := range es {
		es[i] = &elem{val: i}
		l.Add(es[i])
	}
	for i := 0; i < 10; i += 3 {
		require.NoError(t, l.Del(es[i]))
	}
	require.Equal(t, []int{1, 2, 4, 5, 7, 8}, vals(l))
	require.Equal(t, len(slices.Collect(typesafe.All[elem](l))), l.Count())
	require.ErrorIs(t, l.Del(es[0]), typesafe.ErrNotMember)
	require.ErrorIs(t, l.Fini(), typesafe.ErrNotEmpty)
}
