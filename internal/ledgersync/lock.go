package ledgersync

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// keyedLock hands out one exclusive slot per ledger. Entries are reference
// counted and dropped once nobody holds or waits on them.
type keyedLock struct {
	mu sync.Mutex
	m  map[uuid.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{m: make(map[uuid.UUID]*slot)}
}

// lock blocks until id is free or ctx is done. The returned func releases it.
func (k *keyedLock) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	k.mu.Lock()

	sl, ok := k.m[id]
	if !ok {
		sl = &slot{ch: make(chan struct{}, 1)}
		k.m[id] = sl
	}

	sl.refs++
	k.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
		return func() {
			<-sl.ch
			k.drop(id, sl)
		}, nil
	case <-ctx.Done():
		k.drop(id, sl)
		return nil, ctx.Err()
	}
}

func (k *keyedLock) drop(id uuid.UUID, sl *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()

	sl.refs--
	if sl.refs == 0 {
		delete(k.m, id)
	}
}

func (k *keyedLock) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.m)
}
