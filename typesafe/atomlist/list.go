package atomlist

// List 是 lock-free 的未排序串列，可用 AddTail / Pop 當作 queue
type List[T any] struct {
	head[T]
}

func New[T any](link LinkFunc[T]) *List[T] {
	return new(List[T]).Init(link)
}

func (l *List[T]) Init(link LinkFunc[T]) *List[T] {
	l.init(link)
	return l
}

// Fini 結束串列，呼叫時不可有其他 goroutine 正在操作
func (l *List[T]) Fini() error {
	return l.fini()
}

// AddHead 在開頭插入 item；返回時插入已完成
func (l *List[T]) AddHead(item *T) {
	li := l.claim(item, "atomlist.AddHead")
	l.count.Add(1)
	for {
		first := l.first.Load()
		li.next.Store(mkref(first.ptr(), false))
		if l.first.CompareAndSwap(first, mkref(item, false)) {
			return
		}
	}
}

// AddTail 在結尾插入 item。
//
// 返回時插入不一定已完成：只有在所有比它早開始的 AddTail 都返回後，
// item 才保證出現在串列中。
func (l *List[T]) AddTail(item *T) {
	li := l.claim(item, "atomlist.AddTail")
	li.next.Store(nil)
	l.count.Add(1)

	hint := l.last.Swap(mkref(item, false))
	for {
		prev := &l.first
		if hp := hint.ptr(); hp != nil {
			prev = &l.link(hp).next
		}

		var prevval *ref[T]
		for {
			prevval = prev.Load()
			p := prevval.ptr()
			if p == nil {
				break
			}
			prev = &l.link(p).next
		}

		// 最後一個元素正在刪除，協助摘除後從頭開始
		if prevval.isLocked() {
			l.help()
			hint = nil
			continue
		}

		if !prev.CompareAndSwap(prevval, mkref(item, false)) {
			hint = prev.Load()
			continue
		}
		return
	}
}

// Del 移除 item；item 不在此串列或正被其他 goroutine 移除時回傳 ErrNotMember
func (l *List[T]) Del(item *T) error {
	return l.del(item, nil)
}

// DelHint 與 Del 相同，但從 hint（已知在 item 之前的元素）開始找前一個元素
func (l *List[T]) DelHint(item, hint *T) error {
	return l.del(item, hint)
}

func (l *List[T]) Pop() *T {
	return l.pop()
}
