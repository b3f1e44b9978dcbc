package atomlist

import "github.com/ouyang789987/frr/typesafe"

// Sort 是 lock-free 的排序串列，不存放兩個相等的元素
type Sort[T any] struct {
	head[T]
	cmp typesafe.CompareFunc[T]
}

func NewSort[T any](link LinkFunc[T], cmp typesafe.CompareFunc[T]) *Sort[T] {
	return new(Sort[T]).Init(link, cmp)
}

func (s *Sort[T]) Init(link LinkFunc[T], cmp typesafe.CompareFunc[T]) *Sort[T] {
	s.init(link)
	s.cmp = cmp
	return s
}

func (s *Sort[T]) Fini() error {
	return s.fini()
}

// Add 依序插入 item。若已有相等的元素，item 不會被插入，回傳該元素
func (s *Sort[T]) Add(item *T) *T {
	li := s.claim(item, "atomlist.Sort.Add")
	for {
		prev := &s.first
		var prevval *ref[T]
		for {
			prevval = prev.Load()
			p := prevval.ptr()
			if p == nil {
				break
			}
			c := s.cmp(p, item)
			if c > 0 {
				break
			}
			if c == 0 {
				li.owner.Store(nil)
				return p
			}
			prev = &s.link(p).next
		}

		// 前一個元素正在刪除，不能接在它後面；協助摘除後重試
		if prevval.isLocked() {
			s.help()
			continue
		}

		li.next.Store(mkref(prevval.ptr(), false))
		if prev.CompareAndSwap(prevval, mkref(item, false)) {
			s.count.Add(1)
			return nil
		}
	}
}

func (s *Sort[T]) Find(key *T) *T {
	for cur := s.First(); cur != nil; cur = s.Next(cur) {
		c := s.cmp(cur, key)
		if c == 0 {
			return cur
		}
		if c > 0 {
			break
		}
	}
	return nil
}

func (s *Sort[T]) Del(item *T) error {
	return s.del(item, nil)
}

// DelHint 與 Del 相同，但從 hint（已知在 item 之前的元素）開始找前一個元素
func (s *Sort[T]) DelHint(item, hint *T) error {
	return s.del(item, hint)
}

// Pop 移除最小的元素（最小元素正被刪除時取下一個）
func (s *Sort[T]) Pop() *T {
	return s.pop()
}
