package storage

import (
	"context"
	"sync"
)

// Store is a durable keyed record store. Values are opaque bytes; each key
// holds a single atomic record overwritten wholesale (last writer wins).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Subscribe registers fn to be called with the key of every write or
	// delete that goes through this store instance. Cross-process writers
	// are not observable this way; callers that need convergence with them
	// must also poll. The returned func cancels the subscription.
	Subscribe(fn func(key string)) (cancel func())
}

// notifier fans out change notifications to subscribers. Embedded by the
// store implementations.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(key string)
}

func (n *notifier) Subscribe(fn func(key string)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = map[int]func(string){}
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(key string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}
