package typesafe

// CompareFunc 三向比較：a < b 回傳負值，相等回傳 0，a > b 回傳正值
type CompareFunc[T any] func(a, b *T) int

// EqualFunc 判斷兩個元素是否相等（hash table 使用，hash 值只負責分桶）
type EqualFunc[T any] func(a, b *T) bool

// Walker 提供走訪所需的最小介面
type Walker[T any] interface {
	First() *T
	Next(item *T) *T
	// NextSafe 與 Next 相同，但 item 為 nil 時回傳 nil
	NextSafe(item *T) *T
}

// Container 為所有容器種類共用的操作集合
type Container[T any] interface {
	Walker[T]
	// Count 回傳目前元素數量；lock-free 容器僅為估計值
	Count() int
	// Pop 移除並回傳第一個元素，空容器回傳 nil
	Pop() *T
	// Del 移除指定元素，元素不在此容器中時回傳 ErrNotMember
	Del(item *T) error
	// Fini 結束容器，容器非空時回傳 ErrNotEmpty
	Fini() error
}

// Unsorted 未排序容器，可作為 queue / stack 使用
type Unsorted[T any] interface {
	Container[T]
	AddHead(item *T)
	AddTail(item *T)
	// AddAfter 將 item 插在 after 之後；after 為 nil 時等同 AddHead
	AddAfter(after, item *T)
}

// Sorted 依比較函式（或 hash）組織的容器，不會存放兩個相等的元素
type Sorted[T any] interface {
	Container[T]
	// Add 插入 item；若已有相等元素則不插入並回傳該元素，否則回傳 nil
	Add(item *T) *T
	// Find 回傳與 ref 相等的元素，找不到回傳 nil
	Find(ref *T) *T
}

// Leveled 提供 skip list 結構分析所需的介面
type Leveled[T any] interface {
	Sorted[T]
	// MaxDepth 回傳最大層數
	MaxDepth() int
	// LevelOf 回傳 item 的高度（1 起算），item 為 nil 時回傳 head 的高度
	LevelOf(item *T) int
	// NextAt 回傳 item 在第 level 層（0 起算）的下一個元素，item 為 nil 代表 head
	NextAt(item *T, level int) *T
}
