// Package analyTool 檢查容器結構並輸出 skip list 的層級分布，
// 供測試與 cmd/compare 使用。
package analyTool

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/ouyang789987/frr/typesafe"
)

// CheckCount 確認 Count 與實際走訪的元素數量一致
func CheckCount[T any](c typesafe.Container[T]) error {
	n := 0
	for range typesafe.All(typesafe.Walker[T](c)) {
		n++
	}
	if n != c.Count() {
		return errors.Newf("count mismatch: Count()=%d, walked %d", c.Count(), n)
	}
	return nil
}

// CheckOrder 確認走訪順序嚴格遞增（沒有相等的相鄰元素）
func CheckOrder[T any](c typesafe.Walker[T], cmp typesafe.CompareFunc[T]) error {
	var prev *T
	i := 0
	for item := range typesafe.All(c) {
		if prev != nil && cmp(prev, item) >= 0 {
			return errors.Newf("order violated at position %d", i)
		}
		prev = item
		i++
	}
	return nil
}

// topLevel 回傳 head 上最高的非空層（0 起算），空串列回傳 -1
func topLevel[T any](l typesafe.Leveled[T]) int {
	for lv := l.MaxDepth() - 1; lv >= 0; lv-- {
		if l.NextAt(nil, lv) != nil {
			return lv
		}
	}
	return -1
}

// CheckStruct 檢查 skip list 的結構：每一層都是下一層的子序列，
// 且元素出現在它高度以下的每一層
func CheckStruct[T any](l typesafe.Leveled[T]) error {
	maxLevel := l.MaxDepth()
	// last[i] 為第 i 層目前最後一個元素，nil 代表 head
	last := make([]*T, maxLevel)

	for node := l.NextAt(nil, 0); node != nil; node = l.NextAt(node, 0) {
		nodelv := l.LevelOf(node)
		if nodelv < 1 || nodelv > maxLevel {
			return errors.Newf("node level %d out of range [1, %d]", nodelv, maxLevel)
		}
		for i := 1; i < nodelv; i++ {
			if l.NextAt(last[i], i) != node {
				return errors.Newf("level %d skips a node of height %d", i, nodelv)
			}
			last[i] = node
		}
	}
	for i := 1; i < maxLevel; i++ {
		if l.NextAt(last[i], i) != nil {
			return errors.Newf("level %d links a node missing from level 0", i)
		}
	}
	return nil
}

// FindStep 計算找到 ref 的總步數和各層步數，向下移動也算一步
func FindStep[T any](l typesafe.Leveled[T], ref *T, cmp typesafe.CompareFunc[T]) (step int, level []int) {
	top := topLevel(l)
	if top < 0 {
		return 0, []int{}
	}
	stepsPerLevel := make([]int, top+1)
	var cur *T

	// 從最高層開始搜尋
	for h := top; h >= 0; h-- {
		levelSteps := 0
		for {
			next := l.NextAt(cur, h)
			if next == nil || cmp(next, ref) >= 0 {
				break
			}
			cur = next
			levelSteps++
		}

		if next := l.NextAt(cur, h); next != nil && cmp(next, ref) == 0 {
			levelSteps++ // 加上最後一步
			stepsPerLevel[h] = levelSteps
			return step + levelSteps, stepsPerLevel
		}

		stepsPerLevel[h] = levelSteps
		step += levelSteps + 1
	}
	return step, stepsPerLevel
}

// AnalyzeStep 依 weight 給的存取機率計算平均搜尋步數
func AnalyzeStep[T any](l typesafe.Leveled[T], cmp typesafe.CompareFunc[T], weight func(*T) float64) float64 {
	var total, prob float64
	for item := range typesafe.All(typesafe.Walker[T](l)) {
		w := weight(item)
		if w <= 0 {
			continue
		}
		step, _ := FindStep(l, item, cmp)
		total += float64(step) * w
		prob += w
	}
	if prob == 0 {
		return 0
	}
	return total / prob
}

// CountLevel 回傳每一層的節點數量
func CountLevel[T any](l typesafe.Leveled[T]) []int {
	levelCounts := make([]int, l.MaxDepth())
	for node := l.NextAt(nil, 0); node != nil; node = l.NextAt(node, 0) {
		for i := 0; i < l.LevelOf(node); i++ {
			levelCounts[i]++
		}
	}
	return levelCounts
}

// PrintLevelCount 印出 CountLevel 的結果，略過空的層
func PrintLevelCount(w io.Writer, levelCounts []int) {
	total := 0
	if len(levelCounts) > 0 {
		total = levelCounts[0]
	}
	fmt.Fprintf(w, "層級節點統計 (總節點數: %d):\n", total)
	for i := len(levelCounts) - 1; i >= 0; i-- {
		if levelCounts[i] == 0 {
			continue
		}
		fmt.Fprintf(w, "Level %2d: %d 個節點\n", i, levelCounts[i])
	}
}

// PrintSkipList 打印 skip list 的結構
func PrintSkipList[T any](
	w io.Writer, l typesafe.Leveled[T], maxLevel, maxNodes int, format func(*T) string,
) {
	maxLevel = min(maxLevel, topLevel(l))
	if maxLevel < 0 {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}
	output := make([]string, maxLevel+1)
	for i := maxLevel; i >= 0; i-- {
		output[i] = fmt.Sprintf("level %d : ", i)
	}

	count := 0
	for node := l.NextAt(nil, 0); node != nil && count < maxNodes; node = l.NextAt(node, 0) {
		lv := l.LevelOf(node)
		for i := range output {
			if i < lv {
				output[i] += fmt.Sprintf("%3s ->", format(node))
			} else {
				output[i] += "    ->"
			}
		}
		count++
	}

	for i := maxLevel; i >= 0; i-- {
		fmt.Fprintln(w, output[i])
	}
}

// PrintSkipListToCSV 將 skip list 的結構輸出到 CSV，每一層一列
func PrintSkipListToCSV[T any](
	writer *csv.Writer, l typesafe.Leveled[T], maxLevel, maxNodes int, format func(*T) string,
) error {
	maxLevel = min(maxLevel, topLevel(l))
	for i := maxLevel; i >= 0; i-- {
		row := []string{fmt.Sprintf("level %d", i)}
		count := 0
		for node := l.NextAt(nil, 0); node != nil && count < maxNodes; node = l.NextAt(node, 0) {
			if l.LevelOf(node) > i {
				row = append(row, format(node))
			} else {
				row = append(row, "")
			}
			count++
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	writer.Flush()
	return writer.Error()
}
