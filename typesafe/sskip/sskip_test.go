package sskip

import (
	"math/rand/v2"
	"testing"

	"github.com/google/btree"
	"github.com/ouyang789987/frr/typesafe"
	"github.com/ouyang789987/frr/typesafe/analyTool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type elem struct {
	val  int
	skip Item[elem]
}

func skipOf(e *elem) *Item[elem] { return &e.skip }

func cmpVal(a, b *elem) int { return a.val - b.val }

func TestSkipListInterface(t *testing.T) {
	var _ typesafe.Leveled[elem] = (*List[elem])(nil)
}

func vals(l *List[elem]) []int {
	var out []int
	for e := range typesafe.All[elem](l) {
		out = append(out, e.val)
	}
	return out
}

func TestBasic(t *testing.T) {
	l := New(skipOf, cmpVal, WithSeed(1))
	e5, e1, e3a, e3b := &elem{val: 5}, &elem{val: 1}, &elem{val: 3}, &elem{val: 3}
	assert.Nil(t, l.Add(e5))
	assert.Nil(t, l.Add(e1))
	assert.Nil(t, l.Add(e3a))
	assert.Same(t, e3a, l.Add(e3b))
	require.Equal(t, []int{1, 3, 5}, vals(l))
	require.Equal(t, 3, l.Count())

	assert.Same(t, e3a, l.Find(&elem{val: 3}))
	assert.Nil(t, l.Find(&elem{val: 4}))
	require.ErrorIs(t, l.Del(e3b), typesafe.ErrNotMember)

	require.NoError(t, l.Del(e3a))
	require.Equal(t, []int{1, 5}, vals(l))
	require.Same(t, e1, l.Pop())
	require.Same(t, e5, l.Pop())
	require.Nil(t, l.Pop())
	require.NoError(t, l.Fini())
}

// 以 google/btree 作為排序的對照組
func TestOrderAgainstBTree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	l := New(skipOf, cmpVal, WithSeed(7))
	oracle := btree.NewOrderedG[int](16)
	members := make(map[int]*elem)

	for i := 0; i < 5000; i++ {
		v := rng.IntN(2000)
		switch rng.IntN(3) {
		case 0, 1:
			e := &elem{val: v}
			dup := l.Add(e)
			_, had := oracle.ReplaceOrInsert(v)
			if had {
				require.Same(t, members[v], dup)
			} else {
				require.Nil(t, dup)
				members[v] = e
			}
		case 2:
			e, ok := members[v]
			if !ok {
				continue
			}
			require.NoError(t, l.Del(e))
			oracle.Delete(v)
			delete(members, v)
		}
	}

	var want []int
	oracle.Ascend(func(v int) bool {
		want = append(want, v)
		return true
	})
	require.Equal(t, want, vals(l))
	require.Equal(t, oracle.Len(), l.Count())
	require.NoError(t, analyTool.CheckStruct[elem](l))
	require.NoError(t, analyTool.CheckCount[elem](l))

	for len(want) > 0 {
		e := l.Pop()
		require.NotNil(t, e)
		require.Equal(t, want[0], e.val)
		want = want[1:]
	}
	require.Nil(t, l.Pop())
}

func TestOverflowReleased(t *testing.T) {
	l := New(skipOf, cmpVal, WithSeed(99))
	es := make([]*elem, 4096)
	for i := range es {
		es[i] = &elem{val: i}
		l.Add(es[i])
	}

	tall := 0
	for _, e := range es {
		if l.LevelOf(e) > Embed {
			tall++
		}
	}
	// 高度超過 Embed 的機率為 1/16
	require.Positive(t, tall)
	require.Equal(t, tall, l.Overflows())

	for i := 0; i < len(es); i += 2 {
		require.NoError(t, l.Del(es[i]))
	}
	require.NoError(t, analyTool.CheckStruct[elem](l))
	for l.Pop() != nil {
	}
	require.Zero(t, l.Overflows())
	for _, e := range es {
		require.Nil(t, e.skip.overflow)
		require.Zero(t, e.skip.level)
	}
}

func TestLevelDistribution(t *testing.T) {
	l := New(skipOf, cmpVal, WithSeed(3))
	for i := 0; i < 10000; i++ {
		l.Add(&elem{val: i})
	}
	counts := analyTool.CountLevel[elem](l)
	require.Equal(t, 10000, counts[0])
	// 每升一層大約減半
	assert.InDelta(t, 5000, counts[1], 300)
	assert.InDelta(t, 2500, counts[2], 250)
	assert.Equal(t, MaxDepth, l.LevelOf(nil))
	assert.Nil(t, l.NextAt(l.First(), MaxDepth))
}

func TestReAddAfterDel(t *testing.T) {
	l := New(skipOf, cmpVal, WithSeed(5))
	e := &elem{val: 10}
	for i := 0; i < 50; i++ {
		require.Nil(t, l.Add(e))
		require.NoError(t, l.Del(e))
	}
	require.Zero(t, l.Count())
	require.Nil(t, l.First())
}
