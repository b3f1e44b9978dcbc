package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/ouyang789987/frr/datastream"
	"github.com/ouyang789987/frr/typesafe"
	"github.com/ouyang789987/frr/typesafe/analyTool"
	"go.uber.org/zap"
)

type benchStats struct {
	avgMs    float64
	minMs    float64
	maxMs    float64
	avgSteps float64 // 只有 skiplist 能分析，其餘為 NaN
	// mismatch 是結果與序列記錄不一致的操作數
	mismatch int
}

// replayResult 是單次重播的結果
type replayResult struct {
	elapsed  time.Duration
	mismatch int
}

// replay 從序列起點依序執行所有操作並計時。
// 對排序容器，Pop 的結果必須等於序列記錄的最小 key；
// 其他容器彈出的元素不固定，之後序列中對該 key 的操作可能與記錄不同。
func replay(c container, seq *datastream.SequenceModel) replayResult {
	var res replayResult
	seq.Reset()
	start := time.Now()
	for op, ok := seq.Next(); ok; op, ok = seq.Next() {
		switch op.Type {
		case datastream.OpFind:
			if !c.find(op.Key) {
				res.mismatch++
			}
		case datastream.OpAdd:
			if !c.add(op.Key) {
				res.mismatch++
			}
		case datastream.OpDel:
			if !c.del(op.Key) {
				res.mismatch++
			}
		case datastream.OpPop:
			k, popped := c.pop()
			if !popped || (c.ordered() && k != op.Key) {
				res.mismatch++
			}
		}
	}
	res.elapsed = time.Since(start)
	return res
}

func benchmarkImpl(bf *datastream.BenchFile, impl string, runs int, seed uint64) (benchStats, error) {
	durations := make([]float64, 0, runs)
	stats := benchStats{avgSteps: math.NaN()}
	seq := bf.ToSequenceModel()
	for i := 0; i < runs; i++ {
		c, err := newImpl(impl, seed+uint64(i))
		if err != nil {
			return stats, err
		}
		res := replay(c, seq)
		durations = append(durations, float64(res.elapsed.Microseconds())/1000.0)
		if i == 0 {
			stats.mismatch = res.mismatch
			stats.avgSteps = sampleSteps(c, bf.Dist)
		}
	}
	slices.Sort(durations)
	stats.avgMs = average(durations)
	stats.minMs = durations[0]
	stats.maxMs = durations[len(durations)-1]
	return stats, nil
}

// sampleSteps 以重播結束時的結構計算依分布加權的平均搜尋步數
func sampleSteps(c container, dist map[datastream.Key]float64) float64 {
	sc, ok := c.(*sortedContainer)
	if !ok {
		return math.NaN()
	}
	l, ok := sc.c.(typesafe.Leveled[elem])
	if !ok || l.Count() == 0 {
		return math.NaN()
	}
	return analyTool.AnalyzeStep(l, cmpElem, func(e *elem) float64 { return dist[e.key] })
}

// collectBenchFilesFromDir 收集指定目錄下所有 .bin 檔案
func collectBenchFilesFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}
	// 排序檔案名稱以確保順序一致
	slices.Sort(files)
	return files, nil
}

func formatSteps(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.6f", v)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// runBenchmark 執行單一 benchmark 檔案的測試
func runBenchmark(w io.Writer, log *zap.Logger, benchPath string, impls []string, runs int, seed uint64) error {
	bf, err := datastream.ReadBenchFile(benchPath)
	if err != nil {
		return err
	}
	counts := bf.CountOps()
	log.Info("loaded bench file",
		zap.String("file", benchPath),
		zap.Int("ops", len(bf.Ops)),
		zap.Int("keys", len(bf.Dist)),
		zap.Int("pops", counts[datastream.OpPop]),
		zap.Float64("entropy", datastream.EntropyFromDist(bf.Dist)))

	rows := make([][]string, 0, len(impls))
	for _, impl := range impls {
		log.Debug("benchmarking", zap.String("impl", impl))
		stats, err := benchmarkImpl(bf, impl, runs, seed)
		if err != nil {
			return err
		}
		thr := float64(len(bf.Ops)) / (stats.avgMs / 1000.0)
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", runs),
			fmt.Sprintf("%.3f", stats.avgMs),
			fmt.Sprintf("%.3f", stats.minMs),
			fmt.Sprintf("%.3f", stats.maxMs),
			fmt.Sprintf("%.2f", thr),
			formatSteps(stats.avgSteps),
			fmt.Sprintf("%d", stats.mismatch),
		})
	}
	renderTable(w, []string{"Impl", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps", "Mismatch"}, rows)
	return nil
}

// runBatchBenchmark 對多個 benchmark 檔案執行測試並匯總統計
func runBatchBenchmark(w io.Writer, log *zap.Logger, benchPaths []string, impls []string, runs int, seed uint64) error {
	type implStats struct {
		avgMsList []float64
		minMs     float64
		maxMs     float64
		opsList   []int
		stepsList []float64
		mismatch  int
		totalRuns int
	}

	allStats := make(map[string]*implStats, len(impls))
	for _, impl := range impls {
		allStats[impl] = &implStats{minMs: math.Inf(1), maxMs: math.Inf(-1)}
	}

	for idx, benchPath := range benchPaths {
		log.Info("testing",
			zap.Int("index", idx+1),
			zap.Int("total", len(benchPaths)),
			zap.String("file", filepath.Base(benchPath)))

		bf, err := datastream.ReadBenchFile(benchPath)
		if err != nil {
			log.Warn("skipping unreadable bench file", zap.Error(err))
			continue
		}

		for _, impl := range impls {
			stats, err := benchmarkImpl(bf, impl, runs, seed)
			if err != nil {
				return err
			}
			s := allStats[impl]
			s.avgMsList = append(s.avgMsList, stats.avgMs)
			s.minMs = min(s.minMs, stats.minMs)
			s.maxMs = max(s.maxMs, stats.maxMs)
			s.opsList = append(s.opsList, len(bf.Ops))
			if !math.IsNaN(stats.avgSteps) {
				s.stepsList = append(s.stepsList, stats.avgSteps)
			}
			s.mismatch += stats.mismatch
			s.totalRuns += runs
		}
	}

	rows := make([][]string, 0, len(impls))
	for _, impl := range impls {
		s := allStats[impl]
		if len(s.avgMsList) == 0 {
			continue
		}
		totalOps := 0
		totalSec := 0.0
		for i, ops := range s.opsList {
			totalOps += ops
			totalSec += s.avgMsList[i] / 1000.0
		}
		steps := math.NaN()
		if len(s.stepsList) > 0 {
			steps = average(s.stepsList)
		}
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", s.totalRuns),
			fmt.Sprintf("%.3f", average(s.avgMsList)),
			fmt.Sprintf("%.3f", s.minMs),
			fmt.Sprintf("%.3f", s.maxMs),
			fmt.Sprintf("%.2f", float64(totalOps)/totalSec),
			formatSteps(steps),
			fmt.Sprintf("%d", s.mismatch),
		})
	}
	renderTable(w, []string{"Impl", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Avg Ops/s", "AvgSteps", "Mismatch"}, rows)
	return nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
