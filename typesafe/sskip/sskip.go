// Package sskip 實作 intrusive skip list。
//
// 每個元素的高度為 1..MaxDepth，每升一層機率減半。前 Embed 層的指標直接
// 放在 Item 中，更高的層另外配置 overflow 區塊，在元素離開串列時釋放。
// 搜尋、插入與刪除皆為期望 O(log n)，Pop 取最小值。
package sskip

import (
	"math/bits"
	"math/rand/v2"

	"github.com/ouyang789987/frr/typesafe"
)

const (
	// MaxDepth 最大層數
	MaxDepth = 16
	// Embed 直接存放在 Item 中的層數
	Embed = 4
)

type Item[T any] struct {
	next     [Embed]*T
	overflow []*T // 第 Embed..level-1 層
	level    uint8
	owner    *List[T]
}

type LinkFunc[T any] func(*T) *Item[T]

func (it *Item[T]) get(level int) *T {
	if level < Embed {
		return it.next[level]
	}
	return it.overflow[level-Embed]
}

func (it *Item[T]) set(level int, v *T) {
	if level < Embed {
		it.next[level] = v
		return
	}
	it.overflow[level-Embed] = v
}

type List[T any] struct {
	head      [MaxDepth]*T
	count     int
	overflows int // 帶有 overflow 區塊的元素數
	link      LinkFunc[T]
	cmp       typesafe.CompareFunc[T]
	rand      *rand.Rand
}

type options struct {
	seed    uint64
	hasSeed bool
}

type Option func(*options)

// WithSeed 固定高度亂數的種子，方便重現結構
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

func New[T any](link LinkFunc[T], cmp typesafe.CompareFunc[T], opts ...Option) *List[T] {
	return new(List[T]).Init(link, cmp, opts...)
}

func (l *List[T]) Init(link LinkFunc[T], cmp typesafe.CompareFunc[T], opts ...Option) *List[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSeed {
		o.seed = rand.Uint64()
	}
	*l = List[T]{
		link: link,
		cmp:  cmp,
		rand: rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)),
	}
	return l
}

func (l *List[T]) Fini() error {
	if l.count != 0 {
		return typesafe.NotEmpty(l.count)
	}
	*l = List[T]{}
	return nil
}

func (l *List[T]) randomLevel() int {
	return min(bits.TrailingZeros32(l.rand.Uint32())+1, MaxDepth)
}

// nextAt 回傳 prev 在 level 層的下一個元素，prev 為 nil 代表 head
func (l *List[T]) nextAt(prev *T, level int) *T {
	if prev == nil {
		return l.head[level]
	}
	return l.link(prev).get(level)
}

func (l *List[T]) setAt(prev *T, level int, v *T) {
	if prev == nil {
		l.head[level] = v
		return
	}
	l.link(prev).set(level, v)
}

// search 由最高層往下找，回傳每一層最後一個小於 ref 的元素
func (l *List[T]) search(ref *T, prevs *[MaxDepth]*T) *T {
	var prev *T
	for level := MaxDepth - 1; level >= 0; level-- {
		next := l.nextAt(prev, level)
		for next != nil && l.cmp(next, ref) < 0 {
			prev = next
			next = l.nextAt(prev, level)
		}
		if prevs != nil {
			prevs[level] = prev
		}
	}
	return prev
}

// Add 插入 item。若已有相等元素，item 不會被插入，回傳既有元素
func (l *List[T]) Add(item *T) *T {
	typesafe.AssertItem(item, "sskip.Add")
	li := l.link(item)
	typesafe.AssertUnlinked(li.owner != nil, "sskip.Add")

	var prevs [MaxDepth]*T
	l.search(item, &prevs)
	if next := l.nextAt(prevs[0], 0); next != nil && l.cmp(next, item) == 0 {
		return next
	}

	level := l.randomLevel()
	*li = Item[T]{level: uint8(level), owner: l}
	if level > Embed {
		li.overflow = make([]*T, level-Embed)
		l.overflows++
	}
	for lv := 0; lv < level; lv++ {
		li.set(lv, l.nextAt(prevs[lv], lv))
		l.setAt(prevs[lv], lv, item)
	}
	l.count++
	return nil
}

func (l *List[T]) Find(ref *T) *T {
	prev := l.search(ref, nil)
	if next := l.nextAt(prev, 0); next != nil && l.cmp(next, ref) == 0 {
		return next
	}
	return nil
}

func (l *List[T]) unlink(item *T, li *Item[T]) {
	if li.overflow != nil {
		l.overflows--
	}
	*li = Item[T]{}
	l.count--
}

func (l *List[T]) Del(item *T) error {
	if item == nil || l.link(item).owner != l {
		return typesafe.ErrNotMember
	}
	li := l.link(item)
	var prevs [MaxDepth]*T
	l.search(item, &prevs)
	if l.nextAt(prevs[0], 0) != item {
		return typesafe.ErrNotMember
	}
	for lv := 0; lv < int(li.level); lv++ {
		if l.nextAt(prevs[lv], lv) == item {
			l.setAt(prevs[lv], lv, li.get(lv))
		}
	}
	l.unlink(item, li)
	return nil
}

// Pop 移除並回傳最小的元素；最小元素在它的每一層都緊接在 head 之後
func (l *List[T]) Pop() *T {
	item := l.head[0]
	if item == nil {
		return nil
	}
	li := l.link(item)
	for lv := 0; lv < int(li.level); lv++ {
		l.head[lv] = li.get(lv)
	}
	l.unlink(item, li)
	return item
}

func (l *List[T]) First() *T {
	return l.head[0]
}

func (l *List[T]) Next(item *T) *T {
	return l.link(item).next[0]
}

func (l *List[T]) NextSafe(item *T) *T {
	if item == nil {
		return nil
	}
	return l.link(item).next[0]
}

func (l *List[T]) Count() int {
	return l.count
}

// Overflows 回傳高度超過 Embed、另外配置了 overflow 區塊的元素數
func (l *List[T]) Overflows() int {
	return l.overflows
}

func (l *List[T]) MaxDepth() int {
	return MaxDepth
}

// LevelOf 回傳 item 的高度，nil 代表 head
func (l *List[T]) LevelOf(item *T) int {
	if item == nil {
		return MaxDepth
	}
	return int(l.link(item).level)
}

func (l *List[T]) NextAt(item *T, level int) *T {
	if level < 0 || level >= l.LevelOf(item) {
		return nil
	}
	return l.nextAt(item, level)
}
