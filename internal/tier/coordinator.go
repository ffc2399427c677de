// Package tier coordinates movement of genetic code records between the
// gene pool cache and the genomic library. Every record crossing a tier
// boundary is treated as untrusted: its signature is re-derived and its
// graph re-validated before it is allowed through.
package tier

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"genovault/internal/genetics"
	"genovault/internal/lineage"
	"genovault/internal/model"
	"genovault/internal/pool"
	"genovault/internal/storage"
)

// DefaultPromoteConcurrency bounds parallel library reads during batch
// promotion.
const DefaultPromoteConcurrency = 8

// Coordinator owns the two tiers and the lineage bookkeeping spanning
// them.
type Coordinator struct {
	pool    *pool.Pool
	library storage.Store
	tracker *lineage.Tracker
	logger  *log.Logger
}

// NewCoordinator wires a coordinator over an initialised library store.
func NewCoordinator(p *pool.Pool, library storage.Store, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	c := &Coordinator{
		pool:    p,
		library: library,
		logger:  logger.WithPrefix("tier"),
	}
	c.tracker = lineage.NewTracker(&view{c}, logger)
	return c
}

// Tracker exposes the lineage bookkeeping spanning both tiers.
func (c *Coordinator) Tracker() *lineage.Tracker {
	return c.tracker
}

// Promote lifts a record from the library into the pool. The stored
// signature and graph are never trusted: both are re-checked, and the
// derived structural metrics are recomputed from the sub-codes. A record
// failing any check is refused, not repaired.
func (c *Coordinator) Promote(ctx context.Context, sig model.Signature) (*model.GC, error) {
	gc, ok, err := c.library.Get(ctx, sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tier: record %s not in library", sig)
	}
	if err := c.guard(ctx, gc); err != nil {
		return nil, err
	}
	admitted, err := c.pool.Admit(ctx, gc)
	if err != nil {
		return nil, err
	}
	c.tracker.Track(admitted)
	return admitted, nil
}

// PromoteBatch promotes several records concurrently. Validation and
// signature checks run in parallel; the first failure cancels the rest.
func (c *Coordinator) PromoteBatch(ctx context.Context, sigs []model.Signature) ([]*model.GC, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultPromoteConcurrency)

	out := make([]*model.GC, len(sigs))
	for i, sig := range sigs {
		g.Go(func() error {
			gc, err := c.Promote(ctx, sig)
			if err != nil {
				return err
			}
			out[i] = gc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Demote writes a pooled record down to the library and drops it from the
// pool. The record is guarded on the way out just as on the way in. A
// record not currently pooled has nothing to demote and is an error.
func (c *Coordinator) Demote(ctx context.Context, sig model.Signature) error {
	gc, ok := c.pool.Peek(sig)
	if !ok {
		return fmt.Errorf("tier: record %s not pooled", sig)
	}
	if err := c.guard(ctx, gc); err != nil {
		return err
	}
	if err := c.library.Put(ctx, gc); err != nil {
		return err
	}
	c.pool.Remove(sig)
	return nil
}

// Insert places a new record into the pool, registering its lineage. A
// duplicate signature merges bookkeeping counters instead of inserting.
// A new record's sub-codes gain one reference per embedding; a duplicate
// adds no embedding and leaves them untouched.
func (c *Coordinator) Insert(ctx context.Context, gc *model.GC) (*model.GC, bool, error) {
	if err := c.guard(ctx, gc); err != nil {
		return nil, false, err
	}
	merged, inserted, err := c.pool.Insert(ctx, gc)
	if err != nil {
		return nil, false, err
	}
	c.tracker.Track(merged)
	if inserted {
		for _, sub := range []*model.Signature{merged.GCA, merged.GCB} {
			if sub == nil {
				continue
			}
			if _, err := c.tracker.IncrementRef(ctx, *sub); err != nil {
				return nil, false, err
			}
		}
		c.logger.Debug("inserted record", "signature", merged.Signature, "generation", merged.Generation)
	}
	return merged, inserted, nil
}

// Get reads a record through the pool, falling back to the library.
func (c *Coordinator) Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	return c.pool.Get(ctx, sig)
}

// Flush writes all dirty pooled records down to the library.
func (c *Coordinator) Flush(ctx context.Context) error {
	return c.pool.Flush(ctx)
}

// guard re-validates a record crossing a tier boundary: graph schema and
// connectivity, signature derivation, the structural metrics, which are
// recomputed from the sub-codes and must match what the record claims,
// and the row A/B interfaces against the embedded sub-codes.
func (c *Coordinator) guard(ctx context.Context, gc *model.GC) error {
	if err := gc.Validate(); err != nil {
		return err
	}
	if err := genetics.Verify(gc); err != nil {
		return err
	}
	claimed := [...]int64{
		gc.CodeDepth, gc.CodonDepth, gc.Generation,
		gc.NumCodes, gc.NumUniqueCodes, gc.NumCodons, gc.NumUniqueCodons,
	}
	check := gc.Clone()
	if err := genetics.RecomputeDerived(ctx, c.pool, check); err != nil {
		return err
	}
	derived := [...]int64{
		check.CodeDepth, check.CodonDepth, check.Generation,
		check.NumCodes, check.NumUniqueCodes, check.NumCodons, check.NumUniqueCodons,
	}
	if claimed != derived {
		return fmt.Errorf("tier: record %s carries stale derived metrics: claimed %v derived %v",
			gc.Signature, claimed, derived)
	}
	return genetics.VerifyInterfaces(ctx, c.pool, gc)
}

// view is the lineage tracker's window onto both tiers: reads go through
// the pool, writes go to the pool and through to the library, deletes
// remove from both.
type view struct {
	c *Coordinator
}

func (v *view) Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	return v.c.pool.Get(ctx, sig)
}

func (v *view) Put(ctx context.Context, gc *model.GC) error {
	if err := v.c.pool.Update(ctx, gc); err != nil {
		// Not pooled: the record lives only in the library.
		return v.c.library.Put(ctx, gc)
	}
	return nil
}

func (v *view) Delete(ctx context.Context, sig model.Signature) error {
	v.c.pool.Remove(sig)
	return v.c.library.Delete(ctx, sig)
}

func (v *view) Signatures(ctx context.Context) ([]model.Signature, error) {
	sigs, err := v.c.library.Signatures(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[model.Signature]struct{}, len(sigs))
	for _, s := range sigs {
		seen[s] = struct{}{}
	}
	for _, s := range v.c.pool.Signatures() {
		if _, ok := seen[s]; !ok {
			sigs = append(sigs, s)
		}
	}
	return sigs, nil
}
