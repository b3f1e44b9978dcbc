// Package ssort 實作依比較函式排序的 intrusive 單向鏈結串列。
//
// 第一個元素永遠是最小值，因此可以用 Add / Pop 當作 priority queue。
// 串列不會存放兩個比較結果相等的元素；需要相同優先權時，
// 比較函式應再以穩定的識別欄位（例如序號）分出先後。
package ssort

import (
	"github.com/ouyang789987/frr/typesafe"
)

type Item[T any] struct {
	next  *T
	owner *List[T]
}

type LinkFunc[T any] func(*T) *Item[T]

type List[T any] struct {
	first *T
	count int
	link  LinkFunc[T]
	cmp   typesafe.CompareFunc[T]
}

func New[T any](link LinkFunc[T], cmp typesafe.CompareFunc[T]) *List[T] {
	return new(List[T]).Init(link, cmp)
}

func (l *List[T]) Init(link LinkFunc[T], cmp typesafe.CompareFunc[T]) *List[T] {
	*l = List[T]{link: link, cmp: cmp}
	return l
}

func (l *List[T]) Fini() error {
	if l.count != 0 {
		return typesafe.NotEmpty(l.count)
	}
	*l = List[T]{}
	return nil
}

// Add 插入 item。若已有相等元素，item 不會被插入，回傳既有元素
func (l *List[T]) Add(item *T) *T {
	typesafe.AssertItem(item, "ssort.Add")
	li := l.link(item)
	typesafe.AssertUnlinked(li.owner != nil, "ssort.Add")

	np := &l.first
	for *np != nil {
		c := l.cmp(*np, item)
		if c == 0 {
			return *np
		}
		if c > 0 {
			break
		}
		np = &l.link(*np).next
	}
	li.next = *np
	li.owner = l
	*np = item
	l.count++
	return nil
}

func (l *List[T]) Find(ref *T) *T {
	for cur := l.first; cur != nil; cur = l.link(cur).next {
		c := l.cmp(cur, ref)
		if c == 0 {
			return cur
		}
		if c > 0 {
			break
		}
	}
	return nil
}

func (l *List[T]) Del(item *T) error {
	if item == nil || l.link(item).owner != l {
		return typesafe.ErrNotMember
	}
	li := l.link(item)
	iter := &l.first
	for *iter != nil && *iter != item {
		iter = &l.link(*iter).next
	}
	if *iter == nil {
		return typesafe.ErrNotMember
	}
	*iter = li.next
	l.count--
	*li = Item[T]{}
	return nil
}

// Pop 移除並回傳最小的元素
func (l *List[T]) Pop() *T {
	item := l.first
	if item == nil {
		return nil
	}
	li := l.link(item)
	l.first = li.next
	l.count--
	*li = Item[T]{}
	return item
}

func (l *List[T]) First() *T {
	return l.first
}

func (l *List[T]) Next(item *T) *T {
	return l.link(item).next
}

func (l *List[T]) NextSafe(item *T) *T {
	if item == nil {
		return nil
	}
	return l.link(item).next
}

func (l *List[T]) Count() int {
	return l.count
}
