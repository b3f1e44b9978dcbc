package datastream

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "TSBENCH1"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次（key 升冪）：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Find,1=Add,2=Del,3=Pop)
//   int64   Key

var (
	benchMagic   = [8]byte{'T', 'S', 'B', 'E', 'N', 'C', 'H', '1'}
	benchVersion = uint16(1)
)

// ErrBadBenchFile 表示檔頭不正確
var ErrBadBenchFile = errors.New("not a bench file")

type BenchFile struct {
	Dist map[Key]float64
	Ops  []Operation
}

// WorkloadConfig 描述要產生的操作序列
type WorkloadConfig struct {
	// Ops 操作總數，需 >= key 數量以保證每個 key 至少出現一次
	Ops int
	// Phase1Ratio 第一階段佔比，第一階段涵蓋所有 key 後打亂
	Phase1Ratio float64
	// DelRatio 對已存在 key 產生 Del 的機率
	DelRatio float64
	// PopRatio 對已存在 key 產生 Pop 的機率
	PopRatio float64
	// RandomKeys 為 true 時以不重複的隨機 uint32 作為 key，否則 key 為索引
	RandomKeys bool
	Seed       uint64
}

func (c WorkloadConfig) Validate(n int) error {
	phase1Size := int(float64(c.Ops) * c.Phase1Ratio)
	switch {
	case n <= 0:
		return errors.Newf("invalid key count: %d", n)
	case c.Ops < n:
		return errors.Newf("ops (%d) must be >= n (%d) to ensure each key appears at least once", c.Ops, n)
	case phase1Size < n || phase1Size > c.Ops:
		return errors.Newf("phase1 size (%d) must satisfy n <= phase1 size <= ops", phase1Size)
	case c.DelRatio < 0 || c.PopRatio < 0 || c.DelRatio+c.PopRatio > 1:
		return errors.Newf("del ratio (%v) + pop ratio (%v) must be within [0, 1]", c.DelRatio, c.PopRatio)
	}
	return nil
}

// workload 追蹤產生過程中哪些 key 存在，Pop 需要知道目前最小的 key
type workload struct {
	cfg     WorkloadConfig
	rng     *rand.Rand
	present *btree.BTreeG[Key]
	ops     []Operation
}

func (w *workload) step(key Key) {
	if !w.present.Has(key) {
		w.present.ReplaceOrInsert(key)
		w.ops = append(w.ops, Operation{Type: OpAdd, Key: key})
		return
	}
	r := w.rng.Float64()
	switch {
	case r < w.cfg.DelRatio:
		w.present.Delete(key)
		w.ops = append(w.ops, Operation{Type: OpDel, Key: key})
	case r < w.cfg.DelRatio+w.cfg.PopRatio:
		minKey, _ := w.present.DeleteMin()
		w.ops = append(w.ops, Operation{Type: OpPop, Key: minKey})
	default:
		w.ops = append(w.ops, Operation{Type: OpFind, Key: key})
	}
}

// GenerateWorkload 依 gen 的分布產生操作序列。
// 規則：
//   - key 不存在時輸出 Add
//   - key 已存在時依 DelRatio / PopRatio 輸出 Del / Pop，其餘為 Find
//   - Pop 一律彈出目前最小的 key，並記錄在 Key 欄位
func GenerateWorkload(gen DataStream, cfg WorkloadConfig) (*BenchFile, error) {
	n := gen.Len()
	if err := cfg.Validate(n); err != nil {
		return nil, err
	}
	r := rand.New(rand.NewPCG(cfg.Seed, 0))

	// 1) 建立 index -> key 的對應（不重複）
	indexToKey := make([]Key, n)
	if cfg.RandomKeys {
		check := make(map[Key]struct{}, n)
		for i := range indexToKey {
			genKey := Key(r.Uint32())
			for _, ok := check[genKey]; ok; _, ok = check[genKey] {
				genKey = Key(r.Uint32())
			}
			indexToKey[i] = genKey
			check[genKey] = struct{}{}
		}
	} else {
		for i := range indexToKey {
			indexToKey[i] = Key(i)
		}
	}

	weights := gen.GetPDF()
	dist := make(map[Key]float64, n)
	for i, k := range indexToKey {
		dist[k] = weights[i]
	}

	w := &workload{
		cfg:     cfg,
		rng:     r,
		present: btree.NewOrderedG[Key](32),
		ops:     make([]Operation, 0, cfg.Ops),
	}

	// 2) 第一階段：前 n 個覆蓋所有 key，其餘依分布補齊，最後打亂
	phase1Size := int(float64(cfg.Ops) * cfg.Phase1Ratio)
	phase1 := make([]Key, phase1Size)
	copy(phase1, indexToKey)
	for i := n; i < phase1Size; i++ {
		phase1[i] = indexToKey[gen.Next()]
	}
	r.Shuffle(len(phase1), func(i, j int) { phase1[i], phase1[j] = phase1[j], phase1[i] })
	for _, key := range phase1 {
		w.step(key)
	}

	// 3) 第二階段：剩餘操作直接依分布取 key
	for i := phase1Size; i < cfg.Ops; i++ {
		w.step(indexToKey[gen.Next()])
	}

	return &BenchFile{Dist: dist, Ops: w.ops}, nil
}

// Encode 以上述格式寫出 bf
func (bf *BenchFile) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	hdr := make([]byte, 0, 16)
	hdr = append(hdr, benchMagic[:]...)
	hdr = le.AppendUint16(hdr, benchVersion)
	hdr = le.AppendUint16(hdr, 0) // reserved
	hdr = le.AppendUint32(hdr, uint32(len(bf.Dist)))
	if _, err := bw.Write(hdr); err != nil {
		return errors.Wrap(err, "writing header")
	}

	// 依 key 升冪輸出，確保可重現
	keys := make([]Key, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var rec [16]byte
	for _, k := range keys {
		le.PutUint64(rec[0:8], uint64(k))
		le.PutUint64(rec[8:16], math.Float64bits(bf.Dist[k]))
		if _, err := bw.Write(rec[:]); err != nil {
			return errors.Wrap(err, "writing distribution")
		}
	}

	le.PutUint64(rec[0:8], uint64(len(bf.Ops)))
	if _, err := bw.Write(rec[0:8]); err != nil {
		return errors.Wrap(err, "writing op count")
	}
	for _, op := range bf.Ops {
		rec[0] = uint8(op.Type)
		le.PutUint64(rec[1:9], uint64(op.Key))
		if _, err := bw.Write(rec[0:9]); err != nil {
			return errors.Wrap(err, "writing operations")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing bench file")
}

// DecodeBenchFile 讀取 Encode 寫出的內容
func DecodeBenchFile(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var hdr [16]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if [8]byte(hdr[0:8]) != benchMagic {
		return nil, errors.Wrapf(ErrBadBenchFile, "invalid magic %q", hdr[0:8])
	}
	if ver := le.Uint16(hdr[8:10]); ver != benchVersion {
		return nil, errors.Newf("unsupported version: %d", ver)
	}

	distCount := le.Uint32(hdr[12:16])
	// 計數來自檔案，只當作上限有限的容量提示
	dist := make(map[Key]float64, min(distCount, 1<<20))
	var rec [16]byte
	for i := uint32(0); i < distCount; i++ {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, errors.Wrapf(err, "reading distribution entry %d", i)
		}
		dist[Key(le.Uint64(rec[0:8]))] = math.Float64frombits(le.Uint64(rec[8:16]))
	}

	if _, err := io.ReadFull(br, rec[0:8]); err != nil {
		return nil, errors.Wrap(err, "reading op count")
	}
	opCount := le.Uint64(rec[0:8])
	ops := make([]Operation, 0, min(opCount, 1<<20))
	for i := uint64(0); i < opCount; i++ {
		if _, err := io.ReadFull(br, rec[0:9]); err != nil {
			return nil, errors.Wrapf(err, "reading operation %d", i)
		}
		t := OperationType(rec[0])
		if t > OpPop {
			return nil, errors.Newf("operation %d: unknown type %d", i, t)
		}
		ops = append(ops, Operation{Type: t, Key: Key(le.Uint64(rec[1:9]))})
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// WriteBenchFile 將 bf 寫入檔案
func WriteBenchFile(filename string, bf *BenchFile) (err error) {
	fd, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating bench file")
	}
	defer func() {
		err = errors.CombineErrors(err, fd.Close())
	}()
	return bf.Encode(fd)
}

// ReadBenchFile 讀取 bin 檔案，回傳分布與操作序列。
func ReadBenchFile(filename string) (*BenchFile, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening bench file")
	}
	defer fd.Close()
	bf, err := DecodeBenchFile(fd)
	return bf, errors.Wrapf(err, "%s", filename)
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModelFromOps(nil)
	}
	return NewSequenceModelFromOps(bf.Ops)
}

// Keys 回傳分布中所有 key（升冪）
func (bf *BenchFile) Keys() []Key {
	keys := make([]Key, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CountOps 統計各種操作的數量
func (bf *BenchFile) CountOps() map[OperationType]int {
	out := make(map[OperationType]int, 4)
	for _, op := range bf.Ops {
		out[op.Type]++
	}
	return out
}

// DistributeToCSV 輸出檔案中記錄的 key 分布
func (bf *BenchFile) DistributeToCSV(writer *csv.Writer) error {
	return distributeToCSV(writer, bf.Dist)
}

// EntropyFromDist 計算分布的熵（單位：bit）。
// dist 的 value 應為已正規化的機率；會自動忽略 <= 0 的值。
func EntropyFromDist(dist map[Key]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// distributeToCSV 輸出兩列：key 與對應機率（依 key 升冪）
func distributeToCSV(writer *csv.Writer, dist map[Key]float64) error {
	keys := make([]Key, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	keyRow := make([]string, 0, len(keys)+1)
	probRow := make([]string, 0, len(keys)+1)
	keyRow = append(keyRow, "key")
	probRow = append(probRow, "prob")
	for _, k := range keys {
		keyRow = append(keyRow, strconv.FormatInt(k, 10))
		probRow = append(probRow, strconv.FormatFloat(dist[k], 'f', 6, 64))
	}
	if err := writer.Write(keyRow); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	if err := writer.Write(probRow); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	writer.Flush()
	return writer.Error()
}
