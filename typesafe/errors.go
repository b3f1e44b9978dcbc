package typesafe

import "github.com/cockroachdb/errors"

var (
	// ErrNotMember 表示要刪除的元素不在該容器中
	ErrNotMember = errors.New("item is not a member of this container")
	// ErrNotEmpty 表示對非空容器呼叫 Fini
	ErrNotEmpty = errors.New("container is not empty")
)

// AssertItem 檢查插入操作的前置條件，違反時 panic
func AssertItem[T any](item *T, op string) {
	if item == nil {
		panic(errors.AssertionFailedf("%s: nil item", op))
	}
}

// AssertUnlinked 在 item 已屬於某個容器時 panic
func AssertUnlinked(linked bool, op string) {
	if linked {
		panic(errors.AssertionFailedf("%s: item is already linked into a container", op))
	}
}

// AssertMember 在 anchor 不屬於該容器時 panic
func AssertMember(member bool, op string) {
	if !member {
		panic(errors.AssertionFailedf("%s: anchor is not a member of this container", op))
	}
}

// NotEmpty 以目前數量包裝 ErrNotEmpty
func NotEmpty(count int) error {
	return errors.Wrapf(ErrNotEmpty, "%d items left", count)
}
