package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/typesafe"
	"github.com/ouyang789987/frr/typesafe/analyTool"
	"github.com/ouyang789987/frr/typesafe/atomlist"
	"github.com/ouyang789987/frr/typesafe/sskip"
	"github.com/ouyang789987/frr/typesafe/ssort"
	"github.com/ouyang789987/frr/typesafe/thash"
)

type node struct {
	key    datastream.Key
	weight float64
	sort   ssort.Item[node]
	skip   sskip.Item[node]
	atom   atomlist.Item[node]
	hash   thash.Item[node]
}

func cmpNode(a, b *node) int {
	switch {
	case a.key < b.key:
		return -1
	case a.key > b.key:
		return 1
	}
	return 0
}

func formatNode(n *node) string { return fmt.Sprintf("%d", n.key) }

// set 是同一批 node 同時放在所有排序容器裡
type set struct {
	nodes []*node
	ssort *ssort.List[node]
	sskip *sskip.List[node]
	atom  *atomlist.Sort[node]
	hash  *thash.Hash[node]
	tree  *btree.BTreeG[*node]
}

func newSet(gen *datastream.ZipfDataGenerator, seed uint64) (*set, error) {
	h, err := thash.New(
		func(n *node) *thash.Item[node] { return &n.hash },
		func(a, b *node) bool { return a.key == b.key },
		func(n *node) uint32 { return thash.HashUint64(uint64(n.key)) },
	)
	if err != nil {
		return nil, err
	}
	s := &set{
		ssort: ssort.New(func(n *node) *ssort.Item[node] { return &n.sort }, cmpNode),
		sskip: sskip.New(func(n *node) *sskip.Item[node] { return &n.skip }, cmpNode, sskip.WithSeed(seed)),
		atom:  atomlist.NewSort(func(n *node) *atomlist.Item[node] { return &n.atom }, cmpNode),
		hash:  h,
		tree:  btree.NewG[*node](16, func(a, b *node) bool { return a.key < b.key }),
	}
	for k, w := range gen.GetKeyMap() {
		s.nodes = append(s.nodes, &node{key: k, weight: w})
	}
	// map 的順序不固定，先排序再以 seed 打亂才能重現
	slices.SortFunc(s.nodes, cmpNode)
	r := rand.New(rand.NewPCG(seed, 1))
	r.Shuffle(len(s.nodes), func(i, j int) { s.nodes[i], s.nodes[j] = s.nodes[j], s.nodes[i] })

	for _, n := range s.nodes {
		for _, c := range s.sorted() {
			if dup := c.Add(n); dup != nil {
				return nil, errors.AssertionFailedf("duplicate key %d", n.key)
			}
		}
		s.tree.ReplaceOrInsert(n)
	}
	return s, nil
}

func (s *set) sorted() []typesafe.Sorted[node] {
	return []typesafe.Sorted[node]{s.ssort, s.sskip, s.atom, s.hash}
}

// checkOrder 確認三種排序容器的走訪順序與 btree 一致
func (s *set) checkOrder() error {
	want := make([]datastream.Key, 0, s.tree.Len())
	s.tree.Ascend(func(n *node) bool {
		want = append(want, n.key)
		return true
	})
	named := map[string]typesafe.Walker[node]{"ssort": s.ssort, "sskip": s.sskip, "atomsort": s.atom}
	for _, name := range []string{"ssort", "sskip", "atomsort"} {
		got := make([]datastream.Key, 0, len(want))
		for n := range typesafe.All(named[name]) {
			got = append(got, n.key)
		}
		if !slices.Equal(got, want) {
			return errors.Newf("%s traversal differs from btree", name)
		}
	}
	// hash 的順序取決於 hash 值，只比較集合
	if err := analyTool.CheckCount[node](s.hash); err != nil {
		return errors.Wrap(err, "thash")
	}
	for n := range typesafe.All[node](s.hash) {
		if !s.tree.Has(n) {
			return errors.Newf("thash holds unknown key %d", n.key)
		}
	}
	return analyTool.CheckStruct[node](s.sskip)
}

// query 以 Zipf 序列查詢所有容器，回傳命中次數
func (s *set) query(gen *datastream.ZipfDataGenerator, times int) (int, error) {
	hits := 0
	for _, idx := range gen.GenerateSequence(times) {
		ref := &node{key: datastream.Key(idx)}
		found := s.tree.Has(ref)
		for i, c := range s.sorted() {
			if (c.Find(ref) != nil) != found {
				return hits, errors.Newf("container %d disagrees on key %d", i, idx)
			}
		}
		if found {
			hits++
		}
	}
	return hits, nil
}

// drain 依序 Pop 排序容器，比較彈出順序後清空 hash 與 btree
func (s *set) drain() error {
	for {
		want, ok := s.tree.DeleteMin()
		a, b, c := s.ssort.Pop(), s.sskip.Pop(), s.atom.Pop()
		if !ok {
			if a != nil || b != nil || c != nil {
				return errors.New("sorted containers hold more items than btree")
			}
			break
		}
		if a != want || b != want || c != want {
			return errors.Newf("pop order differs at key %d", want.key)
		}
		if err := s.hash.Del(want); err != nil {
			return errors.Wrapf(err, "thash del %d", want.key)
		}
	}
	for _, c := range s.sorted() {
		if err := c.Fini(); err != nil {
			return err
		}
	}
	return nil
}

func (s *set) report(w io.Writer, maxLevel, maxNodes int) {
	score := analyTool.AnalyzeStep[node](s.sskip, cmpNode, func(n *node) float64 { return n.weight })
	fmt.Fprintf(w, "=== sskip ===\n")
	fmt.Fprintf(w, "score: %.6f\n", score)
	fmt.Fprintf(w, "overflow blocks: %d of %d items\n\n", s.sskip.Overflows(), s.sskip.Count())
	analyTool.PrintLevelCount(w, analyTool.CountLevel[node](s.sskip))
	fmt.Fprintln(w)
	analyTool.PrintSkipList[node](w, s.sskip, maxLevel, maxNodes, formatNode)
	fmt.Fprintf(w, "\nthash: %d items in %d buckets\n", s.hash.Count(), s.hash.TableSize())
}
