package logbuf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndSnapshotOrder(t *testing.T) {
	b := New(10)
	for i := 0; i < 5; i++ {
		b.Append("1", "bot", ChannelStdout, fmt.Sprintf("msg-%d", i))
	}
	snap := b.Snapshot()
	require.Len(t, snap, 5)
	for i, e := range snap {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), e.Message)
		if i > 0 {
			assert.Greater(t, e.ID, snap[i-1].ID)
		}
	}
}

func TestEvictionKeepsNewestInOrder(t *testing.T) {
	const capacity = 300
	const extra = 25
	b := New(capacity)
	for i := 0; i < capacity+extra; i++ {
		b.Append("1", "bot", ChannelStdout, fmt.Sprintf("msg-%d", i))
	}
	snap := b.Snapshot()
	require.Len(t, snap, capacity)
	// oldest `extra` entries evicted, survivors in insertion order
	assert.Equal(t, fmt.Sprintf("msg-%d", extra), snap[0].Message)
	assert.Equal(t, fmt.Sprintf("msg-%d", capacity+extra-1), snap[capacity-1].Message)
	for i := 1; i < len(snap); i++ {
		assert.Greater(t, snap[i].ID, snap[i-1].ID)
	}
}

func TestNeverExceedsCapacity(t *testing.T) {
	b := New(8)
	for i := 0; i < 100; i++ {
		b.Append("", "SYSTEM", ChannelSystem, "x")
		assert.LessOrEqual(t, b.Len(), 8)
	}
}

func TestConcurrentProducers(t *testing.T) {
	b := New(50)
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Append(fmt.Sprintf("%d", p), "bot", ChannelStderr, "line")
			}
		}(p)
	}
	wg.Wait()
	snap := b.Snapshot()
	require.Len(t, snap, 50)
	for i := 1; i < len(snap); i++ {
		assert.Greater(t, snap[i].ID, snap[i-1].ID)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New(4)
	b.Append("1", "bot", ChannelStdout, "a")
	snap := b.Snapshot()
	b.Append("1", "bot", ChannelStdout, "b")
	require.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].Message)
}

func TestClear(t *testing.T) {
	b := New(4)
	b.Append("1", "bot", ChannelStdout, "a")
	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Snapshot())
}

func TestDefaultCapacityFallback(t *testing.T) {
	b := New(0)
	assert.Equal(t, DefaultCapacity, b.cap)
}
