package analyTool

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/ouyang789987/frr/typesafe/sskip"
	"github.com/ouyang789987/frr/typesafe/ssort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	key  int64
	skip sskip.Item[node]
	sort ssort.Item[node]
}

func skipOf(n *node) *sskip.Item[node] { return &n.skip }
func sortOf(n *node) *ssort.Item[node] { return &n.sort }

func cmpKey(a, b *node) int {
	switch {
	case a.key < b.key:
		return -1
	case a.key > b.key:
		return 1
	}
	return 0
}

func fmtKey(n *node) string { return strconv.FormatInt(n.key, 10) }

func buildSkip(n int) *sskip.List[node] {
	sl := sskip.New(skipOf, cmpKey, sskip.WithSeed(42))
	for i := 0; i < n; i++ {
		sl.Add(&node{key: int64(i * 3)})
	}
	return sl
}

func TestCheckStruct(t *testing.T) {
	sl := buildSkip(2000)
	require.NoError(t, CheckStruct[node](sl))
	require.NoError(t, CheckCount[node](sl))
	require.NoError(t, CheckOrder[node](sl, cmpKey))

	counts := CountLevel[node](sl)
	require.Equal(t, 2000, counts[0])
	for i := 1; i < len(counts); i++ {
		require.LessOrEqual(t, counts[i], counts[i-1])
	}
	require.Greater(t, counts[1], 0)
}

func TestCheckOrderDetectsReverse(t *testing.T) {
	l := ssort.New(sortOf, cmpKey)
	for i := 0; i < 10; i++ {
		l.Add(&node{key: int64(i)})
	}
	require.NoError(t, CheckOrder[node](l, cmpKey))
	reverse := func(a, b *node) int { return cmpKey(b, a) }
	require.Error(t, CheckOrder[node](l, reverse))
}

func TestFindStep(t *testing.T) {
	sl := buildSkip(500)
	var sum int
	for i := 0; i < 500; i++ {
		step, levels := FindStep[node](sl, &node{key: int64(i * 3)}, cmpKey)
		require.Positive(t, step)
		require.NotEmpty(t, levels)
		sum += step
	}
	// 期望 O(log n)，平均步數遠小於線性搜尋
	assert.Less(t, sum/500, 100)

	avg := AnalyzeStep[node](sl, cmpKey, func(*node) float64 { return 1 })
	assert.InDelta(t, float64(sum)/500, avg, 1e-9)

	empty := sskip.New(skipOf, cmpKey)
	step, levels := FindStep[node](empty, &node{key: 1}, cmpKey)
	assert.Zero(t, step)
	assert.Empty(t, levels)
}

func TestPrintSkipList(t *testing.T) {
	sl := buildSkip(8)
	var buf bytes.Buffer
	PrintSkipList[node](&buf, sl, 5, 10, fmtKey)
	out := buf.String()
	assert.Contains(t, out, "level 0 : ")
	assert.Contains(t, out, " 21 ->")

	buf.Reset()
	PrintSkipList[node](&buf, sskip.New(skipOf, cmpKey), 5, 10, fmtKey)
	assert.Equal(t, "Skip list 為空\n", buf.String())

	buf.Reset()
	PrintLevelCount(&buf, CountLevel[node](sl))
	assert.True(t, strings.HasPrefix(buf.String(), "層級節點統計 (總節點數: 8)"))
}

func TestPrintSkipListToCSV(t *testing.T) {
	sl := buildSkip(20)
	var buf bytes.Buffer
	require.NoError(t, PrintSkipListToCSV[node](csv.NewWriter(&buf), sl, 3, 20, fmtKey))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	last := rows[len(rows)-1]
	require.Equal(t, "level 0", last[0])
	require.Len(t, last, 21)
	assert.Equal(t, "57", last[20])
}
