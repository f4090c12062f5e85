// Package dedupe tracks client request ids so a retried submission maps to
// the run it already started.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records request ids against the run they created.
type Deduper interface {
	// Claim atomically binds requestID to runID unless it is already bound.
	// It returns the bound run id and whether the request was a duplicate.
	Claim(ctx context.Context, requestID, runID string) (string, bool)

	// Release forgets requestID so it can be submitted again, e.g. when the
	// job could not be queued.
	Release(ctx context.Context, requestID string)

	Size() int
}

type claim struct {
	requestID string
	runID     string
}

// inMemoryDeduper keeps claims in insertion order and evicts the oldest
// once maxSize is reached. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.claims = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, requestID, runID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[requestID]; ok {
		return el.Value.(claim).runID, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.claims[requestID] = d.order.PushBack(claim{requestID: requestID, runID: runID})
	return runID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[requestID]; ok {
		d.order.Remove(el)
		delete(d.claims, requestID)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.claims, el.Value.(claim).requestID)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
