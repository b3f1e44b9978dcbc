// Package slist 實作未排序的 intrusive 單向鏈結串列。
//
// 可以用 AddTail / Pop 當作 queue，或用 AddHead / Pop 當作 stack。
// 使用方式：在元素 struct 中放一個 Item 欄位，再以取得該欄位的函式建立 List：
//
//	type neigh struct {
//		addr  netip.Addr
//		chain slist.Item[neigh]
//	}
//	l := slist.New(func(n *neigh) *slist.Item[neigh] { return &n.chain })
//
// List 不可複製，也沒有任何同步保護。
package slist

import (
	"github.com/ouyang789987/frr/typesafe"
)

// Item 是嵌入在元素中的連結欄位
type Item[T any] struct {
	next  *T
	owner *List[T]
}

// LinkFunc 由元素取得其 Item 欄位
type LinkFunc[T any] func(*T) *Item[T]

type List[T any] struct {
	first    *T
	lastNext **T // 最後一個元素的 next 欄位位址（空串列時指向 first）
	count    int
	link     LinkFunc[T]
}

func New[T any](link LinkFunc[T]) *List[T] {
	return new(List[T]).Init(link)
}

// Init 就地初始化 l 並回傳 l
func (l *List[T]) Init(link LinkFunc[T]) *List[T] {
	*l = List[T]{link: link}
	l.lastNext = &l.first
	return l
}

// Fini 結束串列，串列必須為空
func (l *List[T]) Fini() error {
	if l.count != 0 {
		return typesafe.NotEmpty(l.count)
	}
	*l = List[T]{}
	return nil
}

func (l *List[T]) claim(item *T, op string) *Item[T] {
	typesafe.AssertItem(item, op)
	li := l.link(item)
	typesafe.AssertUnlinked(li.owner != nil, op)
	li.owner = l
	return li
}

func (l *List[T]) AddHead(item *T) {
	li := l.claim(item, "slist.AddHead")
	li.next = l.first
	l.first = item
	if l.lastNext == &l.first {
		l.lastNext = &li.next
	}
	l.count++
}

func (l *List[T]) AddTail(item *T) {
	li := l.claim(item, "slist.AddTail")
	li.next = nil
	*l.lastNext = item
	l.lastNext = &li.next
	l.count++
}

// AddAfter 將 item 插在 after 之後，after 為 nil 時插在開頭
func (l *List[T]) AddAfter(after, item *T) {
	nextp := &l.first
	if after != nil {
		al := l.link(after)
		typesafe.AssertMember(al.owner == l, "slist.AddAfter")
		nextp = &al.next
	}
	li := l.claim(item, "slist.AddAfter")
	li.next = *nextp
	*nextp = item
	if l.lastNext == nextp {
		l.lastNext = &li.next
	}
	l.count++
}

// Del 線性搜尋 item 的前一個元素後移除 item
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
	if li.next == nil {
		l.lastNext = iter
	}
	l.count--
	*li = Item[T]{}
	return nil
}

func (l *List[T]) Pop() *T {
	item := l.first
	if item == nil {
		return nil
	}
	li := l.link(item)
	l.first = li.next
	if l.first == nil {
		l.lastNext = &l.first
	}
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
