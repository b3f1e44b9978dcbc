package syncutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrierWaitsForReaders(t *testing.T) {
	var rw RWMutex
	var done atomic.Bool

	rw.RLock()
	go func() {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
		rw.RUnlock()
	}()

	rw.Barrier()
	require.True(t, done.Load())

	// 沒有讀者時立即返回
	rw.Barrier()
	rw.RLock()
	rw.AssertRHeld()
	rw.RUnlock()
}

func TestMutexAssertHeld(t *testing.T) {
	var mu Mutex
	var rw RWMutex
	mu.Lock()
	mu.AssertHeld()
	mu.Unlock()
	rw.Lock()
	rw.AssertHeld()
	rw.Unlock()
	t.Logf("deadlock detector enabled: %t", DeadlockEnabled)
}
