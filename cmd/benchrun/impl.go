package main

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/typesafe"
	"github.com/ouyang789987/frr/typesafe/atomlist"
	"github.com/ouyang789987/frr/typesafe/slist"
	"github.com/ouyang789987/frr/typesafe/sskip"
	"github.com/ouyang789987/frr/typesafe/ssort"
	"github.com/ouyang789987/frr/typesafe/thash"
)

// elem 同時帶有每一種容器的連結欄位
type elem struct {
	key  datastream.Key
	list slist.Item[elem]
	sort ssort.Item[elem]
	hash thash.Item[elem]
	skip sskip.Item[elem]
	atom atomlist.Item[elem]
}

func listOf(e *elem) *slist.Item[elem]    { return &e.list }
func sortOf(e *elem) *ssort.Item[elem]    { return &e.sort }
func hashOf(e *elem) *thash.Item[elem]    { return &e.hash }
func skipOf(e *elem) *sskip.Item[elem]    { return &e.skip }
func atomOf(e *elem) *atomlist.Item[elem] { return &e.atom }

func cmpElem(a, b *elem) int {
	switch {
	case a.key < b.key:
		return -1
	case a.key > b.key:
		return 1
	}
	return 0
}

func eqElem(a, b *elem) bool { return a.key == b.key }

func hashElem(e *elem) uint32 { return thash.HashUint64(uint64(e.key)) }

func lessElem(a, b *elem) bool { return a.key < b.key }

// container 是 replay 使用的統一操作介面
type container interface {
	// add 插入 key，key 已存在時回傳 false
	add(key datastream.Key) bool
	find(key datastream.Key) bool
	del(key datastream.Key) bool
	pop() (datastream.Key, bool)
	count() int
	// ordered 表示 pop 一定回傳最小的 key
	ordered() bool
}

// sortedContainer 把任何 typesafe.Sorted 包成 container
type sortedContainer struct {
	c       typesafe.Sorted[elem]
	isOrder bool
}

func (s *sortedContainer) add(key datastream.Key) bool {
	return s.c.Add(&elem{key: key}) == nil
}

func (s *sortedContainer) find(key datastream.Key) bool {
	return s.c.Find(&elem{key: key}) != nil
}

func (s *sortedContainer) del(key datastream.Key) bool {
	e := s.c.Find(&elem{key: key})
	return e != nil && s.c.Del(e) == nil
}

func (s *sortedContainer) pop() (datastream.Key, bool) {
	if e := s.c.Pop(); e != nil {
		return e.key, true
	}
	return 0, false
}

func (s *sortedContainer) count() int    { return s.c.Count() }
func (s *sortedContainer) ordered() bool { return s.isOrder }

// listContainer 以未排序串列實作，查詢為線性搜尋
type listContainer struct {
	l *slist.List[elem]
}

func (s *listContainer) lookup(key datastream.Key) *elem {
	for e := range typesafe.All[elem](s.l) {
		if e.key == key {
			return e
		}
	}
	return nil
}

func (s *listContainer) add(key datastream.Key) bool {
	if s.lookup(key) != nil {
		return false
	}
	s.l.AddTail(&elem{key: key})
	return true
}

func (s *listContainer) find(key datastream.Key) bool { return s.lookup(key) != nil }

func (s *listContainer) del(key datastream.Key) bool {
	e := s.lookup(key)
	return e != nil && s.l.Del(e) == nil
}

func (s *listContainer) pop() (datastream.Key, bool) {
	if e := s.l.Pop(); e != nil {
		return e.key, true
	}
	return 0, false
}

func (s *listContainer) count() int    { return s.l.Count() }
func (s *listContainer) ordered() bool { return false }

// btreeContainer 是作為對照組的 google/btree
type btreeContainer struct {
	t *btree.BTreeG[*elem]
}

func (b *btreeContainer) add(key datastream.Key) bool {
	e := &elem{key: key}
	if b.t.Has(e) {
		return false
	}
	b.t.ReplaceOrInsert(e)
	return true
}

func (b *btreeContainer) find(key datastream.Key) bool {
	return b.t.Has(&elem{key: key})
}

func (b *btreeContainer) del(key datastream.Key) bool {
	_, ok := b.t.Delete(&elem{key: key})
	return ok
}

func (b *btreeContainer) pop() (datastream.Key, bool) {
	if e, ok := b.t.DeleteMin(); ok {
		return e.key, true
	}
	return 0, false
}

func (b *btreeContainer) count() int    { return b.t.Len() }
func (b *btreeContainer) ordered() bool { return true }

var implNames = []string{"slist", "ssort", "thash", "sskip", "atomsort", "btree"}

// 預設只跑非線性的實作，slist / ssort / atomsort 在大 n 下很慢
var defaultImpls = []string{"thash", "sskip", "btree"}

func newImpl(impl string, seed uint64) (container, error) {
	switch impl {
	case "slist":
		return &listContainer{l: slist.New(listOf)}, nil
	case "ssort":
		return &sortedContainer{c: ssort.New(sortOf, cmpElem), isOrder: true}, nil
	case "thash":
		h, err := thash.New(hashOf, eqElem, hashElem)
		if err != nil {
			return nil, err
		}
		return &sortedContainer{c: h}, nil
	case "sskip":
		return &sortedContainer{c: sskip.New(skipOf, cmpElem, sskip.WithSeed(seed)), isOrder: true}, nil
	case "atomsort":
		return &sortedContainer{c: atomlist.NewSort(atomOf, cmpElem), isOrder: true}, nil
	case "btree":
		return &btreeContainer{t: btree.NewG[*elem](32, lessElem)}, nil
	default:
		return nil, errors.Newf("unknown impl: %s", impl)
	}
}

// parseImpls 解析逗號分隔的實作清單，"all" 代表全部
func parseImpls(s string) ([]string, error) {
	switch s {
	case "":
		return defaultImpls, nil
	case "all":
		return implNames, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] {
			continue
		}
		i := sort.SearchStrings(sortedImplNames, t)
		if i == len(sortedImplNames) || sortedImplNames[i] != t {
			return nil, errors.Newf("unknown impl %q (known: %s)", t, strings.Join(implNames, ","))
		}
		out = append(out, t)
		seen[t] = true
	}
	if len(out) == 0 {
		return defaultImpls, nil
	}
	return out, nil
}

var sortedImplNames = func() []string {
	s := append([]string(nil), implNames...)
	sort.Strings(s)
	return s
}()
