// Package lineage maintains the ancestry bookkeeping of genetic codes:
// reference counts, lost descendants and the missing-link chains that
// survive purging. It owns the invariants that reference counts never go
// negative and that loss counters only ever grow.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"genovault/internal/model"
)

// ErrReferenceIntegrity reports a violated reference invariant: a decrement
// below zero or a purge of a record that is still referenced.
var ErrReferenceIntegrity = errors.New("lineage: reference integrity violation")

// Store is the record access the tracker needs. Implementations must return
// independent copies from Get so tracker mutations stay transactional.
// Signatures must cover every live record; purge sweeps it for dependents
// the in-memory index never saw.
type Store interface {
	Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error)
	Put(ctx context.Context, gc *model.GC) error
	Delete(ctx context.Context, sig model.Signature) error
	Signatures(ctx context.Context) ([]model.Signature, error)
}

// Tracker walks and repairs ancestry chains over a store. It keeps a
// reverse index from ancestors to their dependents so purging can repair
// the chains that ran through the purged record.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	logger *log.Logger

	// ancestor signature -> records whose surviving chain currently ends
	// at that ancestor.
	dependents map[model.Signature]map[model.Signature]struct{}
}

// NewTracker builds a tracker over the given store.
func NewTracker(store Store, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		store:      store,
		logger:     logger.WithPrefix("lineage"),
		dependents: make(map[model.Signature]map[model.Signature]struct{}),
	}
}

// Track registers a record's surviving ancestor links in the reverse index.
// Call it for every record entering the tracked population.
func (t *Tracker) Track(gc *model.GC) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, anc := range []*model.Signature{t.survivorA(gc), t.survivorB(gc)} {
		if anc == nil {
			continue
		}
		t.addDependent(*anc, gc.Signature)
	}
}

func (t *Tracker) addDependent(anc, dep model.Signature) {
	set, ok := t.dependents[anc]
	if !ok {
		set = make(map[model.Signature]struct{})
		t.dependents[anc] = set
	}
	set[dep] = struct{}{}
}

func (t *Tracker) removeDependent(anc, dep model.Signature) {
	if set, ok := t.dependents[anc]; ok {
		delete(set, dep)
		if len(set) == 0 {
			delete(t.dependents, anc)
		}
	}
}

// survivorA returns the end of the A-side surviving chain: the recorded
// closest survivor when links have been lost, otherwise the direct
// ancestor. Nil means the record is a root on that side.
func (t *Tracker) survivorA(gc *model.GC) *model.Signature {
	if gc.MissingLinksA > 0 {
		return gc.ClosestSurvivingAncestorA
	}
	return gc.AncestorA
}

func (t *Tracker) survivorB(gc *model.GC) *model.Signature {
	if gc.MissingLinksB > 0 {
		return gc.ClosestSurvivingAncestorB
	}
	return gc.AncestorB
}

// IncrementRef raises the structural reference count of sig by one and
// returns the new count.
func (t *Tracker) IncrementRef(ctx context.Context, sig model.Signature) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	gc, err := t.fetch(ctx, sig)
	if err != nil {
		return 0, err
	}
	gc.ReferenceCount++
	gc.Updated = time.Now().UTC()
	if err := t.store.Put(ctx, gc); err != nil {
		return 0, err
	}
	return gc.ReferenceCount, nil
}

// DecrementRef lowers the structural reference count of sig by one. A
// decrement below zero indicates corrupted bookkeeping and fails with
// ErrReferenceIntegrity without modifying the record.
func (t *Tracker) DecrementRef(ctx context.Context, sig model.Signature) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	gc, err := t.fetch(ctx, sig)
	if err != nil {
		return 0, err
	}
	if gc.ReferenceCount == 0 {
		return 0, fmt.Errorf("%w: decrement of %s below zero", ErrReferenceIntegrity, sig)
	}
	gc.ReferenceCount--
	gc.Updated = time.Now().UTC()
	if err := t.store.Put(ctx, gc); err != nil {
		return 0, err
	}
	return gc.ReferenceCount, nil
}

// Purge removes a record with a zero reference count and repairs the
// ancestry chains that ran through it: every dependent's missing-link count
// grows by the purged record plus whatever was already missing behind it,
// its closest survivor is rewired past the purged record, and the purged
// record's own survivors inherit its lost-descendant count plus one. The
// references the record held on its own sub-codes are released with it.
func (t *Tracker) Purge(ctx context.Context, sig model.Signature) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	gc, err := t.fetch(ctx, sig)
	if err != nil {
		return err
	}
	if gc.ReferenceCount != 0 {
		return fmt.Errorf("%w: purge of %s with reference count %d", ErrReferenceIntegrity, sig, gc.ReferenceCount)
	}

	// The purged record's own surviving chain continues through its A side.
	heir := t.survivorA(gc)
	heirMissing := gc.MissingLinksA

	rewired := make(map[model.Signature]struct{}, len(t.dependents[sig]))
	for dep := range t.dependents[sig] {
		if err := t.rewire(ctx, dep, sig, heir, heirMissing); err != nil {
			return err
		}
		rewired[dep] = struct{}{}
	}
	delete(t.dependents, sig)

	// The index only knows records tracked this session. Dependents written
	// by an earlier session live in the store alone; sweep for them so no
	// chain is left pointing at a ghost.
	if err := t.sweepDependents(ctx, sig, heir, heirMissing, rewired); err != nil {
		return err
	}

	for _, anc := range []*model.Signature{t.survivorA(gc), t.survivorB(gc)} {
		if anc == nil {
			continue
		}
		t.removeDependent(*anc, sig)
		if err := t.recordLoss(ctx, *anc, 1+gc.LostDescendants); err != nil {
			return err
		}
	}

	// Purging the container removes its structural embeddings with it.
	if err := t.releaseEmbeddings(ctx, gc); err != nil {
		return err
	}

	if err := t.store.Delete(ctx, sig); err != nil {
		return err
	}
	t.logger.Debug("purged record", "signature", sig, "heir", heir)
	return nil
}

// sweepDependents scans the store for records whose surviving chain ends
// at purged but were never tracked, and rewires them like any other
// dependent.
func (t *Tracker) sweepDependents(ctx context.Context, purged model.Signature, heir *model.Signature, heirMissing int64, rewired map[model.Signature]struct{}) error {
	sigs, err := t.store.Signatures(ctx)
	if err != nil {
		return err
	}
	for _, s := range sigs {
		if s == purged {
			continue
		}
		if _, done := rewired[s]; done {
			continue
		}
		dep, ok, err := t.store.Get(ctx, s)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		sa, sb := t.survivorA(dep), t.survivorB(dep)
		if (sa == nil || *sa != purged) && (sb == nil || *sb != purged) {
			continue
		}
		if err := t.rewire(ctx, s, purged, heir, heirMissing); err != nil {
			return err
		}
	}
	return nil
}

// releaseEmbeddings drops the references the purged container held on its
// sub-codes, one per embedding side. Every release is checked before any
// record is written so an undercounted sub-code fails cleanly.
func (t *Tracker) releaseEmbeddings(ctx context.Context, gc *model.GC) error {
	needed := map[model.Signature]int64{}
	for _, sub := range []*model.Signature{gc.GCA, gc.GCB} {
		if sub != nil {
			needed[*sub]++
		}
	}
	released := make([]*model.GC, 0, len(needed))
	for sig, n := range needed {
		sub, ok, err := t.store.Get(ctx, sig)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if sub.ReferenceCount < n {
			return fmt.Errorf("%w: embedding release of %s below zero", ErrReferenceIntegrity, sig)
		}
		sub.ReferenceCount -= n
		sub.Updated = time.Now().UTC()
		released = append(released, sub)
	}
	for _, sub := range released {
		if err := t.store.Put(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// rewire repairs one dependent's chain after purged disappeared from it.
func (t *Tracker) rewire(ctx context.Context, dep, purged model.Signature, heir *model.Signature, heirMissing int64) error {
	gc, err := t.fetch(ctx, dep)
	if err != nil {
		return err
	}
	if s := t.survivorA(gc); s != nil && *s == purged {
		gc.MissingLinksA += 1 + heirMissing
		gc.ClosestSurvivingAncestorA = heir
	}
	if s := t.survivorB(gc); s != nil && *s == purged {
		gc.MissingLinksB += 1 + heirMissing
		gc.ClosestSurvivingAncestorB = heir
	}
	if err := t.store.Put(ctx, gc); err != nil {
		return err
	}
	if heir != nil {
		t.addDependent(*heir, dep)
	}
	return nil
}

// recordLoss adds n to the lost-descendant counter of sig. An unresolvable
// ancestor is not an error: the loss simply has nowhere left to land.
func (t *Tracker) recordLoss(ctx context.Context, sig model.Signature, n int64) error {
	gc, ok, err := t.store.Get(ctx, sig)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	gc.LostDescendants += n
	return t.store.Put(ctx, gc)
}

// ClosestSurvivingAncestorA resolves the A-side surviving chain end of gc,
// following rewired links until a live record is found. A fully lost chain
// yields a nil signature: the record is treated as a root, not an error.
func (t *Tracker) ClosestSurvivingAncestorA(ctx context.Context, gc *model.GC) (*model.Signature, error) {
	return t.resolveChain(ctx, t.survivorA(gc))
}

// ClosestSurvivingAncestorB is the B-side counterpart of
// ClosestSurvivingAncestorA.
func (t *Tracker) ClosestSurvivingAncestorB(ctx context.Context, gc *model.GC) (*model.Signature, error) {
	return t.resolveChain(ctx, t.survivorB(gc))
}

func (t *Tracker) resolveChain(ctx context.Context, sig *model.Signature) (*model.Signature, error) {
	if sig == nil {
		return nil, nil
	}
	_, ok, err := t.store.Get(ctx, *sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The link was purged without this record being rewired yet.
		// Surrender to the root rather than inventing ancestry.
		return nil, nil
	}
	return sig, nil
}

func (t *Tracker) fetch(ctx context.Context, sig model.Signature) (*model.GC, error) {
	gc, ok, err := t.store.Get(ctx, sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lineage: record %s not found", sig)
	}
	return gc, nil
}
