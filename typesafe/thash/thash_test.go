package thash

import (
	"testing"

	"github.com/ouyang789987/frr/typesafe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type elem struct {
	val   uint64
	hnode Item[elem]
}

func hnodeOf(e *elem) *Item[elem] { return &e.hnode }

func eqVal(a, b *elem) bool { return a.val == b.val }

func hashVal(e *elem) uint32 { return HashUint64(e.val) }

func newHash(t *testing.T, opts ...Option) *Hash[elem] {
	h, err := New(hnodeOf, eqVal, hashVal, opts...)
	require.NoError(t, err)
	return h
}

func TestHashInterface(t *testing.T) {
	var _ typesafe.Sorted[elem] = (*Hash[elem])(nil)
}

// checkBuckets 確認每個 bucket 的鏈依 hash 排序且都落在正確的 bucket
func checkBuckets(t *testing.T, h *Hash[elem]) {
	t.Helper()
	n := 0
	for i, item := range h.entries {
		var prev uint32
		for ; item != nil; item = h.link(item).next {
			hv := h.link(item).hashval
			require.Equal(t, uint32(i), hv&h.mask(), "item %d in wrong bucket", item.val)
			require.GreaterOrEqual(t, hv, prev)
			prev = hv
			n++
		}
	}
	require.Equal(t, h.Count(), n)
}

func TestGrowAtBoundary(t *testing.T) {
	h := newHash(t)
	require.Equal(t, 0, h.TableSize())

	sizes := []int{2, 4, 4, 8, 8, 8, 8}
	es := make([]*elem, 0, 8)
	for i, want := range sizes {
		e := &elem{val: uint64(i)}
		es = append(es, e)
		require.Nil(t, h.Add(e))
		require.Equal(t, want, h.TableSize(), "after %d adds", i+1)
	}

	// 第 8 個元素讓 count 達到 tabsize，剛好成長一次
	e := &elem{val: 7}
	es = append(es, e)
	require.Nil(t, h.Add(e))
	require.Equal(t, 16, h.TableSize())
	checkBuckets(t, h)
	for _, e := range es {
		require.Same(t, e, h.Find(&elem{val: e.val}))
	}
}

func TestShrinkKeepsFindability(t *testing.T) {
	h := newHash(t)
	const n = 1000
	es := make([]*elem, n)
	for i := range es {
		es[i] = &elem{val: uint64(i) * 7919}
		require.Nil(t, h.Add(es[i]))
	}
	require.Equal(t, 1024, h.TableSize())
	checkBuckets(t, h)

	for i := 0; i < n-10; i++ {
		require.NoError(t, h.Del(es[i]))
		if i%97 == 0 {
			checkBuckets(t, h)
		}
	}
	require.Equal(t, 10, h.Count())
	require.Equal(t, 16, h.TableSize())
	checkBuckets(t, h)
	for i := n - 10; i < n; i++ {
		require.Same(t, es[i], h.Find(&elem{val: es[i].val}))
	}
	for i := 0; i < n-10; i++ {
		require.Nil(t, h.Find(&elem{val: es[i].val}))
	}

	for i := n - 10; i < n; i++ {
		require.NoError(t, h.Del(es[i]))
	}
	require.Equal(t, 0, h.TableSize())
	require.NoError(t, h.Fini())
}

func TestMinMaxSize(t *testing.T) {
	h := newHash(t, WithMinSize(64))
	require.Equal(t, 64, h.TableSize())
	for i := 0; i < 10; i++ {
		h.Add(&elem{val: uint64(i)})
	}
	require.Equal(t, 64, h.TableSize())
	for h.Pop() != nil {
	}
	require.Equal(t, 64, h.TableSize())
	require.Equal(t, 0, h.Count())

	h = newHash(t, WithMaxSize(4))
	es := make([]*elem, 100)
	for i := range es {
		es[i] = &elem{val: uint64(i)}
		require.Nil(t, h.Add(es[i]))
	}
	require.Equal(t, 4, h.TableSize())
	checkBuckets(t, h)
	for _, e := range es {
		require.Same(t, e, h.Find(&elem{val: e.val}))
	}
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(hnodeOf, eqVal, hashVal, WithMinSize(3))
	require.Error(t, err)
	_, err = New(hnodeOf, eqVal, hashVal, WithMaxSize(12))
	require.Error(t, err)
	_, err = New(hnodeOf, eqVal, hashVal, WithMinSize(64), WithMaxSize(16))
	require.Error(t, err)
	_, err = New(hnodeOf, eqVal, hashVal, WithMinSize(16), WithMaxSize(16))
	require.NoError(t, err)
}

func TestDuplicateRejected(t *testing.T) {
	h := newHash(t)
	a, b := &elem{val: 42}, &elem{val: 42}
	assert.Nil(t, h.Add(a))
	assert.Same(t, a, h.Add(b))
	assert.Equal(t, 1, h.Count())
	assert.ErrorIs(t, h.Del(b), typesafe.ErrNotMember)
}

// 很差的 hash 函式：大量元素共用同一個 hash 值
func TestCollidingHashes(t *testing.T) {
	h, err := New(hnodeOf, eqVal, func(e *elem) uint32 { return uint32(e.val % 3) })
	require.NoError(t, err)
	es := make([]*elem, 30)
	for i := range es {
		es[i] = &elem{val: uint64(i)}
		require.Nil(t, h.Add(es[i]))
	}
	checkBuckets(t, h)
	for i := 0; i < len(es); i += 2 {
		require.NoError(t, h.Del(es[i]))
	}
	for i, e := range es {
		if i%2 == 0 {
			assert.Nil(t, h.Find(&elem{val: e.val}))
		} else {
			assert.Same(t, e, h.Find(&elem{val: e.val}))
		}
	}
	checkBuckets(t, h)
}

func TestWalkAndPop(t *testing.T) {
	h := newHash(t)
	const n = 300
	for i := 0; i < n; i++ {
		h.Add(&elem{val: uint64(i)})
	}
	seen := make(map[uint64]bool)
	for e := range typesafe.All[elem](h) {
		require.False(t, seen[e.val])
		seen[e.val] = true
	}
	require.Len(t, seen, n)

	popped := make(map[uint64]bool)
	for e := h.Pop(); e != nil; e = h.Pop() {
		require.False(t, popped[e.val])
		popped[e.val] = true
	}
	require.Len(t, popped, n)
	require.Equal(t, 0, h.Count())
	require.Nil(t, h.First())
	require.NoError(t, h.Fini())
}

func TestFiniNotEmpty(t *testing.T) {
	h := newHash(t)
	h.Add(&elem{val: 1})
	require.ErrorIs(t, h.Fini(), typesafe.ErrNotEmpty)
	require.Equal(t, 1, h.Count())
}

func TestHashHelpers(t *testing.T) {
	assert.Equal(t, HashString("zebra"), HashBytes([]byte("zebra")))
	assert.NotEqual(t, HashUint64(1), HashUint64(2))
}
