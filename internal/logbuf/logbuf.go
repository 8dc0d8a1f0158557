package logbuf

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nexuscloud/nexus/internal/metrics"
)

// DefaultCapacity bounds the shared console buffer. Oldest entries are
// evicted first once the bound is exceeded.
const DefaultCapacity = 300

// Channel identifies the origin stream of an entry.
type Channel string

const (
	ChannelSystem Channel = "system"
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// Entry is one line of captured output or a system message.
// BotID is empty for panel-level messages; BotName is a display-name
// snapshot taken at append time so renames and deletions do not rewrite
// history.
type Entry struct {
	ID        int64   `json:"id"`
	BotID     string  `json:"serverId"`
	BotName   string  `json:"serverName"`
	Channel   Channel `json:"type"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
}

// Buffer is a bounded FIFO of log entries safe for many concurrent
// producers (one pump goroutine per live process) and readers.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int // index of oldest entry
	count   int
	cap     int
	lastID  atomic.Int64
}

// New returns a buffer retaining at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{entries: make([]Entry, capacity), cap: capacity}
	b.lastID.Store(time.Now().UnixMilli())
	return b
}

// Append stores an entry, evicting the oldest one when full. The entry ID
// is assigned here and is strictly increasing across the buffer lifetime.
func (b *Buffer) Append(botID, botName string, ch Channel, msg string) Entry {
	e := Entry{
		ID:        b.lastID.Add(1),
		BotID:     botID,
		BotName:   botName,
		Channel:   ch,
		Message:   msg,
		Timestamp: time.Now().Format("15:04:05"),
	}
	b.mu.Lock()
	if b.count == b.cap {
		// overwrite oldest
		b.entries[b.start] = e
		b.start = (b.start + 1) % b.cap
	} else {
		b.entries[(b.start+b.count)%b.cap] = e
		b.count++
	}
	b.mu.Unlock()
	metrics.IncLogEntry(string(ch))
	return e
}

// Snapshot returns the retained entries oldest first. The returned slice is
// a copy; concurrent appends never mutate it.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.start+i)%b.cap]
	}
	return out
}

// Len reports the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Clear empties the buffer. The HTTP surface deliberately does not expose
// this: the dashboard's "clear" only truncates the client view while the
// server keeps its window.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.start = 0
	b.count = 0
	b.mu.Unlock()
}
