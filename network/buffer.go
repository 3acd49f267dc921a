package network

import (
	"github.com/automoto/mirra-netsync/shared/netcomponents"
)

const defaultBufferCapacity = 32

// SnapshotBuffer is a ring buffer of decoded snapshots in arrival order.
// Timestamps are strictly increasing from oldest to newest; anything that
// would break that order is dropped on Push.
type SnapshotBuffer struct {
	history     []*netcomponents.Snapshot
	head        int // next write slot
	size        int
	retentionMs int64 // 0 disables age eviction
	dropped     int
}

// NewSnapshotBuffer creates a buffer holding at most capacity snapshots. When
// retentionMs is positive, snapshots older than the newest by more than that
// are evicted as well.
func NewSnapshotBuffer(capacity int, retentionMs int64) *SnapshotBuffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	return &SnapshotBuffer{
		history:     make([]*netcomponents.Snapshot, capacity),
		retentionMs: retentionMs,
	}
}

// Push stores s as the newest snapshot. It returns false and leaves the buffer
// untouched when s is not newer than the current latest.
func (b *SnapshotBuffer) Push(s *netcomponents.Snapshot) bool {
	if s == nil {
		return false
	}
	if latest, ok := b.Latest(); ok && s.Timestamp() <= latest.Timestamp() {
		b.dropped++
		return false
	}

	b.history[b.head] = s
	b.head = (b.head + 1) % len(b.history)
	if b.size < len(b.history) {
		b.size++
	}
	b.evictExpired(s.Timestamp())
	return true
}

func (b *SnapshotBuffer) evictExpired(newest int64) {
	if b.retentionMs <= 0 {
		return
	}
	for b.size > 1 && newest-b.at(0).Timestamp() > b.retentionMs {
		b.history[b.index(0)] = nil
		b.size--
	}
}

// index maps a position counted from the oldest entry to a slot.
func (b *SnapshotBuffer) index(i int) int {
	n := len(b.history)
	return (b.head - b.size + i + n) % n
}

func (b *SnapshotBuffer) at(i int) *netcomponents.Snapshot {
	return b.history[b.index(i)]
}

// Latest returns the most recently pushed snapshot.
func (b *SnapshotBuffer) Latest() (*netcomponents.Snapshot, bool) {
	if b.size == 0 {
		return nil, false
	}
	return b.at(b.size - 1), true
}

// Oldest returns the oldest snapshot still retained.
func (b *SnapshotBuffer) Oldest() (*netcomponents.Snapshot, bool) {
	if b.size == 0 {
		return nil, false
	}
	return b.at(0), true
}

// Around returns the pair of stored snapshots that bracket renderTime, so that
// older.Timestamp() <= renderTime <= newer.Timestamp(). Past the newest
// snapshot both results are the newest; before the oldest both are the oldest.
func (b *SnapshotBuffer) Around(renderTime int64) (older, newer *netcomponents.Snapshot, ok bool) {
	if b.size == 0 {
		return nil, nil, false
	}

	latest := b.at(b.size - 1)
	if renderTime >= latest.Timestamp() {
		return latest, latest, true
	}
	oldest := b.at(0)
	if renderTime <= oldest.Timestamp() {
		return oldest, oldest, true
	}

	// Search backwards from most recent
	for i := b.size - 2; i >= 0; i-- {
		s := b.at(i)
		if s.Timestamp() <= renderTime {
			return s, b.at(i + 1), true
		}
	}
	return oldest, oldest, true
}

// Len returns the number of stored snapshots.
func (b *SnapshotBuffer) Len() int {
	return b.size
}

// Capacity returns the maximum number of snapshots retained.
func (b *SnapshotBuffer) Capacity() int {
	return len(b.history)
}

// Dropped counts snapshots rejected for arriving out of order.
func (b *SnapshotBuffer) Dropped() int {
	return b.dropped
}

// Clear removes every snapshot.
func (b *SnapshotBuffer) Clear() {
	for i := range b.history {
		b.history[i] = nil
	}
	b.head = 0
	b.size = 0
}
