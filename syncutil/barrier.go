package syncutil

// Barrier 等待所有在呼叫前取得讀鎖的操作結束。
//
// lock-free 容器的每個操作都在讀鎖內進行；元素被移除後，呼叫 Barrier
// 之後才可以把它再放進任何容器。
func (rw *RWMutex) Barrier() {
	rw.Lock()
	//lint:ignore SA2001 empty critical section
	rw.Unlock()
}
