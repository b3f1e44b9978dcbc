// Package atomlist 實作 lock-free 的單向鏈結串列：未排序的 List 與排序的 Sort。
//
// 所有操作都是 lock-free（但不是 wait-free）：整體永遠有進展，個別 goroutine
// 只有在其他 goroutine 持續高頻修改時才可能被延遲。
//
// 每個 next 欄位保存一個不可變的 ref{p, locked}。刪除時先把元素自己的 next
// 標記為 locked（此時刪除即生效），之後任何 goroutine 都可以把 locked 的
// 元素從串列摘除；插入時遇到 locked 元素會先協助摘除再重試。
// ref 每次都重新配置，CAS 比較的是 ref 本身，因此不會發生 ABA。
//
// 元素被移除後，之前開始的操作可能仍持有它的指標。記憶體由 GC 回收；
// 但要把移除的元素再次加入任何容器，必須先等所有在移除時進行中的操作結束，
// 例如所有操作都在 syncutil.RWMutex 的讀鎖內進行，再入前呼叫 Barrier。
package atomlist

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/typesafe"
)

// ref 是 next 指標加上 lock 位元。nil 代表 nil 且未鎖定。
type ref[T any] struct {
	p      *T
	locked bool
}

func mkref[T any](p *T, locked bool) *ref[T] {
	if p == nil && !locked {
		return nil
	}
	return &ref[T]{p: p, locked: locked}
}

func (r *ref[T]) ptr() *T {
	if r == nil {
		return nil
	}
	return r.p
}

func (r *ref[T]) isLocked() bool {
	return r != nil && r.locked
}

type slot[T any] = atomic.Pointer[ref[T]]

// token 識別元素目前屬於哪一個串列
type token struct{ _ int }

// unlinking 表示元素正在被某個 goroutine 移除
var unlinking = new(token)

type Item[T any] struct {
	next  slot[T]
	owner atomic.Pointer[token]
}

type LinkFunc[T any] func(*T) *Item[T]

// head 是 List 與 Sort 共用的部分。Sort 不使用 last。
type head[T any] struct {
	first slot[T]
	last  slot[T]
	count atomic.Int64
	tok   *token
	link  LinkFunc[T]
}

func (h *head[T]) init(link LinkFunc[T]) {
	h.first.Store(nil)
	h.last.Store(nil)
	h.count.Store(0)
	h.tok = new(token)
	h.link = link
}

func (h *head[T]) fini() error {
	if n := h.count.Load(); n != 0 {
		return typesafe.NotEmpty(int(n))
	}
	h.first.Store(nil)
	h.last.Store(nil)
	return nil
}

// claim 把 item 標記為屬於此串列；item 已在任何串列中時 panic
func (h *head[T]) claim(item *T, op string) *Item[T] {
	typesafe.AssertItem(item, op)
	li := h.link(item)
	typesafe.AssertUnlinked(!li.owner.CompareAndSwap(nil, h.tok), op)
	return li
}

// lockNext 鎖定 item 的 next；此後 next 不再改變，刪除即生效
func lockNext[T any](li *Item[T]) {
	for {
		old := li.next.Load()
		if old.isLocked() {
			panic(errors.AssertionFailedf("atomlist: delete race on same item"))
		}
		if li.next.CompareAndSwap(old, mkref(old.ptr(), true)) {
			return
		}
	}
}

// sweep 的結果
type sweepResult int

const (
	sweptEnd   sweepResult = iota // 走到結尾
	sweptItem                     // 由自己摘除了 item
	sweptAbort                    // 起點所在的元素正在刪除，必須從 first 重來
)

// sweep 從 prev 開始往後走，途中遇到已鎖定的元素就把它摘除。
//
// 只會經過 next 未鎖定的元素，因此不會走進已被摘除的元素；
// 從 first 開始而以 sweptEnd 結束時，開始前就已鎖定的元素都已不在串列中。
func (h *head[T]) sweep(prev *slot[T], item *T) sweepResult {
	for {
		prevval := prev.Load()
		if prevval.isLocked() {
			return sweptAbort
		}
		p := prevval.ptr()
		if p == nil {
			return sweptEnd
		}
		pval := h.link(p).next.Load()
		if !pval.isLocked() {
			prev = &h.link(p).next
			continue
		}
		// p 正在刪除，摘除後重新讀取 prev
		if prev.CompareAndSwap(prevval, mkref(pval.ptr(), false)) && p == item {
			return sweptItem
		}
	}
}

// help 摘除串列中所有已鎖定的元素
func (h *head[T]) help() {
	for h.sweep(&h.first, nil) == sweptAbort {
	}
}

// delCore 把已鎖定的 item 從串列摘除，返回時 item 已不在串列中。
// hint 不為 nil 時先從 hint 開始找。
func (h *head[T]) delCore(item *T, hint *slot[T]) {
	// 若 item 還在 last 上就拿掉
	if last := h.last.Load(); last.ptr() == item {
		h.last.CompareAndSwap(last, nil)
	}
	h.count.Add(-1)

	// hint 可能已不在 item 之前，沒找到就從頭再走一次
	if hint != nil && h.sweep(hint, item) == sweptItem {
		return
	}
	for h.sweep(&h.first, item) == sweptAbort {
	}
}

func (h *head[T]) del(item *T, hint *T) error {
	if item == nil {
		return typesafe.ErrNotMember
	}
	li := h.link(item)
	if !li.owner.CompareAndSwap(h.tok, unlinking) {
		return typesafe.ErrNotMember
	}
	var hs *slot[T]
	if hint != nil {
		hs = &h.link(hint).next
	}
	lockNext(li)
	h.delCore(item, hs)
	li.owner.Store(nil)
	return nil
}

// pop 移除第一個能搶到的元素；被其他 goroutine 刪除中的元素會被跳過
func (h *head[T]) pop() *T {
	item := h.first.Load().ptr()
	for item != nil {
		li := h.link(item)
		if li.owner.CompareAndSwap(h.tok, unlinking) {
			lockNext(li)
			h.delCore(item, nil)
			li.owner.Store(nil)
			return item
		}
		item = li.next.Load().ptr()
	}
	return nil
}

func (h *head[T]) First() *T {
	return h.first.Load().ptr()
}

func (h *head[T]) Next(item *T) *T {
	return h.link(item).next.Load().ptr()
}

func (h *head[T]) NextSafe(item *T) *T {
	if item == nil {
		return nil
	}
	return h.Next(item)
}

// Count 回傳元素數量的估計值
func (h *head[T]) Count() int {
	return int(h.count.Load())
}
