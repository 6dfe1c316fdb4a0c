package workflow

import (
	"sync"
	"time"
)

// BusySet tracks accounts with a request in flight. An account stays busy
// until Release, plus an optional cooldown.
type BusySet struct {
	mu   sync.Mutex
	busy map[int64]uint64
	seq  uint64
}

func NewBusySet() *BusySet {
	return &BusySet{busy: make(map[int64]uint64)}
}

// TryAcquire marks id busy. It returns false if it already was.
func (b *BusySet) TryAcquire(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.busy[id]; ok {
		return false
	}
	b.seq++
	b.busy[id] = b.seq
	return true
}

// Release frees id after cooldown. A zero cooldown frees it immediately.
func (b *BusySet) Release(id int64, cooldown time.Duration) {
	if cooldown <= 0 {
		b.mu.Lock()
		delete(b.busy, id)
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	token := b.busy[id]
	b.mu.Unlock()

	time.AfterFunc(cooldown, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.busy[id] == token {
			delete(b.busy, id)
		}
	})
}

func (b *BusySet) IsBusy(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.busy[id]
	return ok
}
