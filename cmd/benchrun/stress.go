package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/syncutil"
	"github.com/ouyang789987/frr/typesafe/atomlist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type stressConfig struct {
	kind    string // list 或 sort
	threads int
	items   int
	rounds  int
	seed    uint64
}

type stressResult struct {
	kind    string
	threads int
	adds    int
	pops    int
	elapsed time.Duration
}

// lockFree 是 stress 需要的 atomlist 操作
type lockFree interface {
	add(e *elem)
	pop() *elem
	count() int
	fini() error
}

type atomList struct{ l *atomlist.List[elem] }

func (a atomList) add(e *elem) { a.l.AddTail(e) }
func (a atomList) pop() *elem  { return a.l.Pop() }
func (a atomList) count() int  { return a.l.Count() }
func (a atomList) fini() error { return a.l.Fini() }

type atomSort struct{ s *atomlist.Sort[elem] }

func (a atomSort) add(e *elem) {
	if a.s.Add(e) != nil {
		panic(errors.AssertionFailedf("duplicate key %d", e.key))
	}
}

func (a atomSort) pop() *elem  { return a.s.Pop() }
func (a atomSort) count() int  { return a.s.Count() }
func (a atomSort) fini() error { return a.s.Fini() }

func newLockFree(kind string) (lockFree, error) {
	switch kind {
	case "list":
		return atomList{l: atomlist.New(atomOf)}, nil
	case "sort":
		return atomSort{s: atomlist.NewSort(atomOf, cmpElem)}, nil
	}
	return nil, errors.Newf("unknown stress kind: %s", kind)
}

// tally 彙整各 goroutine 彈出的數量
type tally struct {
	mu     syncutil.Mutex
	popped []int
}

func (t *tally) add(thread, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addLocked(thread, n)
}

func (t *tally) addLocked(thread, n int) {
	t.mu.AssertHeld()
	t.popped[thread] += n
}

func (t *tally) snapshot() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.popped...)
}

// addAll 加入 es 的所有元素，呼叫者必須持有讀鎖
func addAll(rcu *syncutil.RWMutex, c lockFree, es []elem) {
	rcu.AssertRHeld()
	for i := range es {
		c.add(&es[i])
	}
}

// checkCountLocked 在沒有任何操作進行時比對 Count，呼叫者必須持有寫鎖
func checkCountLocked(rcu *syncutil.RWMutex, c lockFree, round, want int) error {
	rcu.AssertHeld()
	if n := c.count(); n != want {
		return errors.AssertionFailedf("round %d: count %d after adds, want %d", round, n, want)
	}
	return nil
}

// runStress 讓 threads 個 goroutine 同時加入各自的元素，再同時 pop 到空為止。
// 每一輪結束後以 Barrier 等待所有讀鎖釋放，之後才重複使用同一批元素。
func runStress(log *zap.Logger, cfg stressConfig) (stressResult, error) {
	res := stressResult{kind: cfg.kind, threads: cfg.threads}
	if cfg.threads <= 0 || cfg.items <= 0 || cfg.rounds <= 0 {
		return res, errors.New("threads, items and rounds must be positive")
	}
	c, err := newLockFree(cfg.kind)
	if err != nil {
		return res, err
	}
	log.Debug("stress starting",
		zap.String("kind", cfg.kind),
		zap.Int("threads", cfg.threads),
		zap.Bool("deadlock-detector", syncutil.DeadlockEnabled))

	// key 不重複且打亂，排序容器才不會拒絕插入
	perm := rand.New(rand.NewPCG(cfg.seed, 0)).Perm(cfg.items * cfg.threads)
	elems := make([][]elem, cfg.threads)
	for t := range elems {
		elems[t] = make([]elem, cfg.items)
		for i := range elems[t] {
			elems[t][i].key = datastream.Key(perm[t*cfg.items+i])
		}
	}

	var rcu syncutil.RWMutex
	pops := tally{popped: make([]int, cfg.threads)}
	start := time.Now()
	for round := 0; round < cfg.rounds; round++ {
		var adders errgroup.Group
		for t := 0; t < cfg.threads; t++ {
			adders.Go(func() error {
				rcu.RLock()
				defer rcu.RUnlock()
				addAll(&rcu, c, elems[t])
				return nil
			})
		}
		if err := adders.Wait(); err != nil {
			return res, err
		}
		rcu.Lock()
		err := checkCountLocked(&rcu, c, round, cfg.items*cfg.threads)
		rcu.Unlock()
		if err != nil {
			return res, err
		}
		res.adds += cfg.items * cfg.threads

		var poppers errgroup.Group
		for t := 0; t < cfg.threads; t++ {
			poppers.Go(func() error {
				rcu.RLock()
				defer rcu.RUnlock()
				n := 0
				for c.pop() != nil {
					n++
				}
				pops.add(t, n)
				return nil
			})
		}
		if err := poppers.Wait(); err != nil {
			return res, err
		}
		rcu.Barrier()
		log.Debug("stress round done", zap.Int("round", round), zap.Ints("popped", pops.snapshot()))
	}
	res.elapsed = time.Since(start)
	for _, n := range pops.snapshot() {
		res.pops += n
	}
	if res.pops != res.adds {
		return res, errors.AssertionFailedf("popped %d items, added %d", res.pops, res.adds)
	}
	return res, c.fini()
}

func renderStress(w io.Writer, results []stressResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		ms := float64(r.elapsed.Microseconds()) / 1000.0
		rows = append(rows, []string{
			r.kind,
			fmt.Sprintf("%d", r.threads),
			fmt.Sprintf("%d", r.adds),
			fmt.Sprintf("%d", r.pops),
			fmt.Sprintf("%.3f", ms),
			fmt.Sprintf("%.2f", float64(r.adds+r.pops)/(ms/1000.0)),
		})
	}
	renderTable(w, []string{"Kind", "Threads", "Adds", "Pops", "Time(ms)", "Ops/s"}, rows)
}
