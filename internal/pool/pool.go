// Package pool implements the gene pool: the in-memory working tier of
// genetic code records sitting above the genomic library. It caches by
// signature, deduplicates concurrent loads, and evicts the least recently
// touched fraction of its population when full, writing dirty records down
// to the library first.
package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"genovault/internal/lineage"
	"genovault/internal/model"
	"genovault/internal/storage"
)

const (
	// DefaultCapacity is the record count at which eviction starts.
	DefaultCapacity = 4096
	// DefaultPurgeFraction is the share of the pool evicted per purge.
	DefaultPurgeFraction = 0.25
)

// Options tune the pool.
type Options struct {
	Capacity      int
	PurgeFraction float64
	Logger        *log.Logger
}

type entry struct {
	gc    *model.GC
	seq   uint64
	dirty bool
}

// Pool is the cached tier. All exported methods are safe for concurrent
// use. No store I/O ever happens while the pool lock is held.
type Pool struct {
	store    storage.Store
	logger   *log.Logger
	capacity int
	fraction float64

	seq   atomic.Uint64
	group singleflight.Group

	mu      sync.Mutex
	entries map[model.Signature]*entry
	// writing marks signatures whose dirty state is mid write-down to the
	// library. Library reads for a marked signature wait for the write so
	// they never observe the stale copy.
	writing map[model.Signature]chan struct{}
}

// New builds a pool over the given library store.
func New(store storage.Store, opts Options) *Pool {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.PurgeFraction <= 0 || opts.PurgeFraction > 1 {
		opts.PurgeFraction = DefaultPurgeFraction
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Pool{
		store:    store,
		logger:   opts.Logger.WithPrefix("pool"),
		capacity: opts.Capacity,
		fraction: opts.PurgeFraction,
		entries:  make(map[model.Signature]*entry),
		writing:  make(map[model.Signature]chan struct{}),
	}
}

// Len reports the number of cached records.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Get returns the record for sig, loading it from the library on a cache
// miss. Concurrent misses for the same signature share a single library
// read. The returned record is a copy.
func (p *Pool) Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	if gc, ok := p.hit(sig); ok {
		return gc, true, nil
	}

	v, err, shared := p.group.Do(sig.Hex(), func() (any, error) {
		if gc, ok := p.hit(sig); ok {
			return gc, nil
		}
		if err := p.awaitWriteback(ctx, sig); err != nil {
			return nil, err
		}
		gc, ok, err := p.store.Get(ctx, sig)
		if err != nil {
			return nil, err
		}
		if !ok {
			return (*model.GC)(nil), nil
		}
		p.admit(gc, false)
		return gc.Clone(), nil
	})
	if err != nil {
		return nil, false, err
	}
	gc := v.(*model.GC)
	if gc == nil {
		return nil, false, nil
	}
	if shared {
		// Every caller of the shared load gets its own copy.
		gc = gc.Clone()
	}
	if err := p.maybePurge(ctx); err != nil {
		return nil, false, err
	}
	return gc, true, nil
}

// Resolve satisfies the sub-code lookup needed to recompute derived
// structure.
func (p *Pool) Resolve(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	return p.Get(ctx, sig)
}

// Insert adds a record to the pool. A record with a signature already
// present, in cache or library, is not inserted again: its bookkeeping
// counters are merged into the existing record instead. The bool reports
// whether the record was new.
func (p *Pool) Insert(ctx context.Context, gc *model.GC) (*model.GC, bool, error) {
	if merged, ok, err := p.mergeExisting(gc); err != nil || ok {
		return merged, false, err
	}

	// Not cached. The library may still know the signature.
	if err := p.awaitWriteback(ctx, gc.Signature); err != nil {
		return nil, false, err
	}
	existing, ok, err := p.store.Get(ctx, gc.Signature)
	if err != nil {
		return nil, false, err
	}
	if ok {
		p.admit(existing, false)
		merged, found, err := p.mergeExisting(gc)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, fmt.Errorf("pool: record %s vanished during insert", gc.Signature)
		}
		return merged, false, nil
	}

	if inserted := p.admit(gc, true); !inserted {
		// Another insert won the race between our checks.
		merged, found, err := p.mergeExisting(gc)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, fmt.Errorf("pool: record %s vanished during insert", gc.Signature)
		}
		return merged, false, nil
	}
	if err := p.maybePurge(ctx); err != nil {
		return nil, false, err
	}
	return gc.Clone(), true, nil
}

// Admit caches a record loaded from the library without touching its
// bookkeeping. If the signature is already pooled the pooled record wins
// and is returned; admitting is never a merge.
func (p *Pool) Admit(ctx context.Context, gc *model.GC) (*model.GC, error) {
	if p.admit(gc, false) {
		if err := p.maybePurge(ctx); err != nil {
			return nil, err
		}
		return gc.Clone(), nil
	}
	cached, ok := p.hit(gc.Signature)
	if !ok {
		return nil, fmt.Errorf("pool: record %s vanished during admit", gc.Signature)
	}
	return cached, nil
}

// Update replaces a cached record's bookkeeping in place and marks it
// dirty. The record must already be pooled.
func (p *Pool) Update(ctx context.Context, gc *model.GC) error {
	p.mu.Lock()
	e, ok := p.entries[gc.Signature]
	if ok {
		e.gc = gc.Clone()
		e.dirty = true
		e.seq = p.seq.Add(1)
	}
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("pool: update of unpooled record %s", gc.Signature)
	}
	return nil
}

// Flush writes every dirty record down to the library.
func (p *Pool) Flush(ctx context.Context) error {
	p.mu.Lock()
	dirty := make([]*model.GC, 0)
	for _, e := range p.entries {
		if e.dirty {
			dirty = append(dirty, e.gc.Clone())
		}
	}
	p.mu.Unlock()

	for _, gc := range dirty {
		if err := p.store.Put(ctx, gc); err != nil {
			return err
		}
		p.mu.Lock()
		if e, ok := p.entries[gc.Signature]; ok && e.gc.Updated.Equal(gc.Updated) {
			e.dirty = false
		}
		p.mu.Unlock()
	}
	if len(dirty) > 0 {
		p.logger.Debug("flushed dirty records", "count", humanize.Comma(int64(len(dirty))))
	}
	return nil
}

// Evict writes the record down to the library if dirty and drops it from
// the cache. Evicting an unpooled signature is a no-op.
func (p *Pool) Evict(ctx context.Context, sig model.Signature) error {
	p.mu.Lock()
	e, ok := p.entries[sig]
	var gc *model.GC
	if ok {
		if e.dirty {
			gc = e.gc.Clone()
			p.markWriting(sig)
		}
		delete(p.entries, sig)
	}
	p.mu.Unlock()
	if gc == nil {
		return nil
	}
	err := p.store.Put(ctx, gc)
	p.doneWriting(sig)
	return err
}

// Remove drops a record from the cache without writing it anywhere.
func (p *Pool) Remove(sig model.Signature) {
	p.mu.Lock()
	delete(p.entries, sig)
	p.mu.Unlock()
}

// Peek returns the cached record without falling back to the library. It
// is the lookup for operations that only make sense on pooled records.
func (p *Pool) Peek(sig model.Signature) (*model.GC, bool) {
	return p.hit(sig)
}

// Signatures lists every signature currently cached.
func (p *Pool) Signatures() []model.Signature {
	p.mu.Lock()
	defer p.mu.Unlock()
	sigs := make([]model.Signature, 0, len(p.entries))
	for sig := range p.entries {
		sigs = append(sigs, sig)
	}
	return sigs
}

// hit returns a copy of the cached record and bumps its access sequence.
func (p *Pool) hit(sig model.Signature) (*model.GC, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[sig]
	if !ok {
		return nil, false
	}
	e.seq = p.seq.Add(1)
	return e.gc.Clone(), true
}

// admit caches a record if its signature is not already present. It
// reports whether the record was admitted.
func (p *Pool) admit(gc *model.GC, dirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[gc.Signature]; ok {
		return false
	}
	p.entries[gc.Signature] = &entry{gc: gc.Clone(), seq: p.seq.Add(1), dirty: dirty}
	return true
}

// awaitWriteback blocks until no write-down of sig is in flight. A record
// evicted between its removal from the cache and its library write would
// otherwise be readable in its stale library state.
func (p *Pool) awaitWriteback(ctx context.Context, sig model.Signature) error {
	for {
		p.mu.Lock()
		ch, ok := p.writing[sig]
		p.mu.Unlock()
		if !ok {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// markWriting registers an in-flight write-down for sig. The caller must
// hold the pool lock.
func (p *Pool) markWriting(sig model.Signature) {
	p.writing[sig] = make(chan struct{})
}

// doneWriting releases the in-flight marker for sig.
func (p *Pool) doneWriting(sig model.Signature) {
	p.mu.Lock()
	if ch, ok := p.writing[sig]; ok {
		close(ch)
		delete(p.writing, sig)
	}
	p.mu.Unlock()
}

// mergeExisting folds gc's counters into a cached record with the same
// signature, if one exists.
func (p *Pool) mergeExisting(gc *model.GC) (*model.GC, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[gc.Signature]
	if !ok {
		return nil, false, nil
	}
	if err := lineage.Merge(e.gc, gc); err != nil {
		return nil, false, err
	}
	e.dirty = true
	e.seq = p.seq.Add(1)
	return e.gc.Clone(), true, nil
}

// maybePurge evicts the least recently touched fraction of the pool when
// over capacity. Victims are selected and removed under the lock; dirty
// victims are written to the library after the lock is released so store
// I/O never blocks the pool. Each dirty victim is marked in-flight until
// its write lands, keeping its stale library state unreadable.
func (p *Pool) maybePurge(ctx context.Context) error {
	p.mu.Lock()
	if len(p.entries) <= p.capacity {
		p.mu.Unlock()
		return nil
	}

	type victim struct {
		sig model.Signature
		seq uint64
	}
	order := make([]victim, 0, len(p.entries))
	for sig, e := range p.entries {
		order = append(order, victim{sig, e.seq})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].seq < order[j].seq })

	n := int(float64(len(order)) * p.fraction)
	if n < 1 {
		n = 1
	}
	evicted := make([]*model.GC, 0, n)
	for _, v := range order[:n] {
		e := p.entries[v.sig]
		if e.dirty {
			evicted = append(evicted, e.gc)
			p.markWriting(v.sig)
		}
		delete(p.entries, v.sig)
	}
	remaining := len(p.entries)
	p.mu.Unlock()

	var writeErr error
	for _, gc := range evicted {
		if writeErr == nil {
			if err := p.store.Put(ctx, gc); err != nil {
				writeErr = fmt.Errorf("pool: writing evicted record %s: %w", gc.Signature, err)
			}
		}
		p.doneWriting(gc.Signature)
	}
	if writeErr != nil {
		return writeErr
	}
	p.logger.Info("purged pool",
		"evicted", humanize.Comma(int64(n)),
		"written", humanize.Comma(int64(len(evicted))),
		"remaining", humanize.Comma(int64(remaining)))
	return nil
}
