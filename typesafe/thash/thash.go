// Package thash 實作 intrusive chained hash table。
//
// 每個 bucket 的鏈依快取的 hash 值由小到大排列，查詢與重複檢查遇到較大的
// hash 值即可停止。表格大小永遠是 2 的冪次，元素位於 entries[hash & (size-1)]。
// 走訪期間不可修改表格：resize 可能造成元素被跳過或重複走訪。
package thash

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/typesafe"
)

type Item[T any] struct {
	next    *T
	hashval uint32
	owner   *Hash[T]
}

type LinkFunc[T any] func(*T) *Item[T]

// HashFunc 計算元素的 hash 值，只用於分桶，不用於判斷相等
type HashFunc[T any] func(*T) uint32

type Hash[T any] struct {
	entries []*T
	count   int

	minsize uint32
	maxsize uint32

	link LinkFunc[T]
	eq   typesafe.EqualFunc[T]
	hash HashFunc[T]
}

type options struct {
	minSize uint32
	maxSize uint32
}

type Option func(*options)

// WithMinSize 設定表格最小大小（2 的冪次），初始化時即配置此大小
func WithMinSize(n uint32) Option {
	return func(o *options) { o.minSize = n }
}

// WithMaxSize 設定表格最大大小（2 的冪次），超過後負載因子可以大於 1
func WithMaxSize(n uint32) Option {
	return func(o *options) { o.maxSize = n }
}

func isPow2(n uint32) bool {
	return n&(n-1) == 0
}

func New[T any](
	link LinkFunc[T], eq typesafe.EqualFunc[T], hash HashFunc[T], opts ...Option,
) (*Hash[T], error) {
	h := new(Hash[T])
	if err := h.Init(link, eq, hash, opts...); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hash[T]) Init(
	link LinkFunc[T], eq typesafe.EqualFunc[T], hash HashFunc[T], opts ...Option,
) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !isPow2(o.minSize) {
		return errors.Newf("thash: min size %d is not a power of two", o.minSize)
	}
	if !isPow2(o.maxSize) {
		return errors.Newf("thash: max size %d is not a power of two", o.maxSize)
	}
	if o.maxSize != 0 && o.minSize > o.maxSize {
		return errors.Newf("thash: min size %d exceeds max size %d", o.minSize, o.maxSize)
	}
	*h = Hash[T]{
		minsize: o.minSize,
		maxsize: o.maxSize,
		link:    link,
		eq:      eq,
		hash:    hash,
	}
	if h.minsize > 0 {
		h.entries = make([]*T, h.minsize)
	}
	return nil
}

func (h *Hash[T]) Fini() error {
	if h.count != 0 {
		return typesafe.NotEmpty(h.count)
	}
	*h = Hash[T]{}
	return nil
}

// TableSize 回傳目前 bucket 數量
func (h *Hash[T]) TableSize() int {
	return len(h.entries)
}

func (h *Hash[T]) mask() uint32 {
	return uint32(len(h.entries) - 1)
}

// nextSize 回傳大於 n 的最小 2 的冪次
func nextSize(n int) uint32 {
	return 1 << bits.Len32(uint32(n))
}

func (h *Hash[T]) growThreshold() bool {
	return len(h.entries) == 0 || h.count >= len(h.entries)
}

func (h *Hash[T]) shrinkThreshold() bool {
	return h.count <= (len(h.entries)-1)/2
}

// grow 擴大表格。舊 bucket i 的元素只會移到 i + k*oldsize，
// 留在原位的元素不動，搬移的元素依原順序接到新 bucket，因此鏈仍然有序。
func (h *Hash[T]) grow() {
	newsize := nextSize(h.count)
	if h.maxsize != 0 && newsize > h.maxsize {
		newsize = h.maxsize
	}
	if newsize < h.minsize {
		newsize = h.minsize
	}
	oldsize := uint32(len(h.entries))
	if newsize <= oldsize {
		return
	}

	entries := make([]*T, newsize)
	copy(entries, h.entries)
	tails := make([]**T, newsize-oldsize)
	for j := range tails {
		tails[j] = &entries[oldsize+uint32(j)]
	}
	mask := newsize - 1
	for i := uint32(0); i < oldsize; i++ {
		apos := &entries[i]
		for *apos != nil {
			item := *apos
			li := h.link(item)
			j := li.hashval & mask
			if j == i {
				apos = &li.next
				continue
			}
			*apos = li.next
			li.next = nil
			*tails[j-oldsize] = item
			tails[j-oldsize] = &li.next
		}
	}
	h.entries = entries
}

// shrink 縮小表格，把上半部的 bucket 依 hash 順序合併回下半部
func (h *Hash[T]) shrink() {
	if h.count == 0 && h.minsize == 0 {
		h.entries = nil
		return
	}
	newsize := nextSize(h.count)
	if newsize < h.minsize {
		newsize = h.minsize
	}
	oldsize := uint32(len(h.entries))
	if newsize >= oldsize {
		return
	}
	for i := uint32(0); i < newsize; i++ {
		for j := i + newsize; j < oldsize; j += newsize {
			h.entries[i] = h.merge(h.entries[i], h.entries[j])
		}
	}
	entries := make([]*T, newsize)
	copy(entries, h.entries)
	h.entries = entries
}

func (h *Hash[T]) merge(a, b *T) *T {
	var head *T
	tail := &head
	for a != nil && b != nil {
		if h.link(b).hashval < h.link(a).hashval {
			*tail = b
			tail = &h.link(b).next
			b = *tail
		} else {
			*tail = a
			tail = &h.link(a).next
			a = *tail
		}
	}
	if a != nil {
		*tail = a
	} else {
		*tail = b
	}
	return head
}

func (h *Hash[T]) find(ref *T, hval uint32) *T {
	if len(h.entries) == 0 {
		return nil
	}
	item := h.entries[hval&h.mask()]
	for item != nil && h.link(item).hashval < hval {
		item = h.link(item).next
	}
	for item != nil && h.link(item).hashval == hval {
		if h.eq(item, ref) {
			return item
		}
		item = h.link(item).next
	}
	return nil
}

// Add 插入 item；若已有相等元素則回傳該元素且不插入
func (h *Hash[T]) Add(item *T) *T {
	typesafe.AssertItem(item, "thash.Add")
	li := h.link(item)
	typesafe.AssertUnlinked(li.owner != nil, "thash.Add")

	hval := h.hash(item)
	if dup := h.find(item, hval); dup != nil {
		return dup
	}

	h.count++
	if h.growThreshold() {
		h.grow()
	}

	li.hashval = hval
	li.owner = h
	np := &h.entries[hval&h.mask()]
	for *np != nil && h.link(*np).hashval < hval {
		np = &h.link(*np).next
	}
	li.next = *np
	*np = item
	return nil
}

func (h *Hash[T]) Find(ref *T) *T {
	return h.find(ref, h.hash(ref))
}

func (h *Hash[T]) Del(item *T) error {
	if item == nil || h.link(item).owner != h {
		return typesafe.ErrNotMember
	}
	li := h.link(item)
	hval := li.hashval
	np := &h.entries[hval&h.mask()]
	for *np != nil && h.link(*np).hashval < hval {
		np = &h.link(*np).next
	}
	for *np != nil && *np != item && h.link(*np).hashval == hval {
		np = &h.link(*np).next
	}
	if *np != item {
		return typesafe.ErrNotMember
	}
	*np = li.next
	*li = Item[T]{}
	h.count--
	if h.shrinkThreshold() {
		h.shrink()
	}
	return nil
}

// Pop 移除並回傳任意一個元素（第一個非空 bucket 的第一個元素）
func (h *Hash[T]) Pop() *T {
	for i, item := range h.entries {
		if item == nil {
			continue
		}
		li := h.link(item)
		h.entries[i] = li.next
		*li = Item[T]{}
		h.count--
		if h.shrinkThreshold() {
			h.shrink()
		}
		return item
	}
	return nil
}

func (h *Hash[T]) firstFrom(i uint32) *T {
	for ; i < uint32(len(h.entries)); i++ {
		if h.entries[i] != nil {
			return h.entries[i]
		}
	}
	return nil
}

func (h *Hash[T]) First() *T {
	return h.firstFrom(0)
}

func (h *Hash[T]) Next(item *T) *T {
	li := h.link(item)
	if li.next != nil {
		return li.next
	}
	return h.firstFrom(li.hashval&h.mask() + 1)
}

func (h *Hash[T]) NextSafe(item *T) *T {
	if item == nil {
		return nil
	}
	return h.Next(item)
}

func (h *Hash[T]) Count() int {
	return h.count
}
