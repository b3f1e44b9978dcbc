// Package datastream 產生容器基準測試用的 key 分布與操作序列。
package datastream

// Key 為基準測試中元素的 key
type Key = int64

// DataStream 定義資料流的介面，Next 回傳 0..n-1 的索引
type DataStream interface {
	Close() error
	Next() int
	Len() int
	GetKeyMap() map[Key]float64
	GetCDF() []float64
	GetPDF() []float64
	Entropy() float64
}

// OperationType 表示操作種類
type OperationType uint8

const (
	OpFind OperationType = iota
	OpAdd
	OpDel
	OpPop
)

func (t OperationType) String() string {
	switch t {
	case OpFind:
		return "Find"
	case OpAdd:
		return "Add"
	case OpDel:
		return "Del"
	case OpPop:
		return "Pop"
	default:
		return "Unknown"
	}
}

// Operation 表示一筆操作；OpPop 的 Key 為預期彈出的最小 key
type Operation struct {
	Type OperationType
	Key  Key
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModelFromOps 由外部供給的操作序列建立模型
func NewSequenceModelFromOps(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }
