package typesafe

import "iter"

// All 依序走訪所有元素，走訪期間容器不可被修改
func All[T any](c Walker[T]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for item := c.First(); item != nil; item = c.Next(item) {
			if !yield(item) {
				return
			}
		}
	}
}

// Safe 在處理目前元素前先取得下一個元素，因此迴圈內可以刪除目前元素
func Safe[T any](c Walker[T]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		item := c.First()
		next := c.NextSafe(item)
		for item != nil {
			if !yield(item) {
				return
			}
			item, next = next, c.NextSafe(next)
		}
	}
}

// From 從 *cursor 開始走訪，並持續把下一個待處理的元素寫回 *cursor。
// 中途 break 後以同一個 cursor 再呼叫 From 即可從中斷處繼續；
// 初始時應設為 c.First()。
func From[T any](c Walker[T], cursor **T) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for *cursor != nil {
			item := *cursor
			*cursor = c.NextSafe(item)
			if !yield(item) {
				return
			}
		}
	}
}

