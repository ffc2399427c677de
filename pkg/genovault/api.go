// Package genovault is the public surface of the genetic code store: a
// tiered, content-addressed library of recursively composed computation
// graphs with full ancestry bookkeeping.
package genovault

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"genovault/internal/config"
	"genovault/internal/genetics"
	"genovault/internal/graph"
	"genovault/internal/lineage"
	"genovault/internal/model"
	"genovault/internal/pool"
	"genovault/internal/storage"
	"genovault/internal/tier"
)

// Options configure a Client. Zero values fall back to the defaults in the
// config package.
type Options struct {
	// ConfigPath points at a TOML configuration file. Explicit fields
	// below override whatever the file says.
	ConfigPath string

	StoreKind     string
	StorePath     string
	PoolCapacity  int
	PurgeFraction float64
	Logger        *log.Logger
}

// Client owns a gene pool over a genomic library and exposes the genetic
// code lifecycle: build, insert, fetch, promote, demote, purge.
type Client struct {
	store  storage.Store
	pool   *pool.Pool
	coord  *tier.Coordinator
	logger *log.Logger
}

// New builds a client from options, loading the config file when given.
func New(opts Options) (*Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.StoreKind != "" {
		cfg.Store.Backend = opts.StoreKind
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if opts.PoolCapacity > 0 {
		cfg.Pool.Capacity = opts.PoolCapacity
	}
	if opts.PurgeFraction > 0 {
		cfg.Pool.PurgeFraction = opts.PurgeFraction
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	store, err := storage.NewStore(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	p := pool.New(store, pool.Options{
		Capacity:      cfg.Pool.Capacity,
		PurgeFraction: cfg.Pool.PurgeFraction,
		Logger:        logger,
	})

	return &Client{
		store:  store,
		pool:   p,
		coord:  tier.NewCoordinator(p, store, logger),
		logger: logger,
	}, nil
}

// Init prepares the underlying store.
func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Close flushes dirty pooled records and releases the store.
func (c *Client) Close(ctx context.Context) error {
	if err := c.pool.Flush(ctx); err != nil {
		return err
	}
	return storage.CloseIfSupported(c.store)
}

// BuildRequest describes a genetic code to assemble and insert.
type BuildRequest struct {
	Graph   *graph.ConnectionGraph
	GCA     *model.Signature
	GCB     *model.Signature
	Creator uuid.UUID

	AncestorA  *model.Signature
	AncestorB  *model.Signature
	PGC        *model.Signature
	SMS        *model.Signature
	Properties int64
}

// Build runs the full representation pipeline: the graph becomes an
// embryonic record, develops into the dynamic form, is sealed into the
// library form and inserted into the pool. A duplicate signature merges
// bookkeeping instead of inserting; the bool reports whether the record
// was new.
func (c *Client) Build(ctx context.Context, req BuildRequest) (*model.GC, bool, error) {
	e := genetics.NewEmbryonic(req.Graph, req.Creator)
	e.GCA = req.GCA
	e.GCB = req.GCB

	d, err := e.Develop()
	if err != nil {
		return nil, false, err
	}
	d.AncestorA = req.AncestorA
	d.AncestorB = req.AncestorB
	d.PGC = req.PGC
	d.SMS = req.SMS
	d.Properties = req.Properties

	gc, err := d.Seal(ctx, c.pool, time.Now())
	if err != nil {
		return nil, false, err
	}
	return c.coord.Insert(ctx, gc)
}

// Validate checks a connection graph and reports its shape.
func (c *Client) Validate(cg *graph.ConnectionGraph) (graph.Shape, error) {
	return graph.Validate(cg)
}

// Signature derives the content address a graph and sub-codes would get.
func (c *Client) Signature(gca, gcb *model.Signature, cg *graph.ConnectionGraph) model.Signature {
	return genetics.Derive(gca, gcb, cg)
}

// Get fetches a record by signature, reading through to the library on a
// pool miss.
func (c *Client) Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error) {
	return c.coord.Get(ctx, sig)
}

// Promote lifts a library record into the pool with full corruption
// checks.
func (c *Client) Promote(ctx context.Context, sig model.Signature) (*model.GC, error) {
	return c.coord.Promote(ctx, sig)
}

// PromoteBatch promotes several records concurrently.
func (c *Client) PromoteBatch(ctx context.Context, sigs []model.Signature) ([]*model.GC, error) {
	return c.coord.PromoteBatch(ctx, sigs)
}

// Demote writes a pooled record to the library and drops it from the
// pool.
func (c *Client) Demote(ctx context.Context, sig model.Signature) error {
	return c.coord.Demote(ctx, sig)
}

// Flush writes every dirty pooled record down to the library.
func (c *Client) Flush(ctx context.Context) error {
	return c.coord.Flush(ctx)
}

// IncrementRef raises the structural reference count of sig.
func (c *Client) IncrementRef(ctx context.Context, sig model.Signature) (int64, error) {
	return c.coord.Tracker().IncrementRef(ctx, sig)
}

// DecrementRef lowers the structural reference count of sig. Lowering
// below zero fails with lineage.ErrReferenceIntegrity.
func (c *Client) DecrementRef(ctx context.Context, sig model.Signature) (int64, error) {
	return c.coord.Tracker().DecrementRef(ctx, sig)
}

// Purge removes an unreferenced record and repairs the ancestry chains
// running through it.
func (c *Client) Purge(ctx context.Context, sig model.Signature) error {
	return c.coord.Tracker().Purge(ctx, sig)
}

// ClosestSurvivingAncestors resolves both surviving chain ends of a
// record. A nil signature means the record is a root on that side.
func (c *Client) ClosestSurvivingAncestors(ctx context.Context, gc *model.GC) (a, b *model.Signature, err error) {
	tr := c.coord.Tracker()
	a, err = tr.ClosestSurvivingAncestorA(ctx, gc)
	if err != nil {
		return nil, nil, err
	}
	b, err = tr.ClosestSurvivingAncestorB(ctx, gc)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Merge folds duplicate-record bookkeeping; exported for callers holding
// two copies of the same code.
func (c *Client) Merge(existing, incoming *model.GC) error {
	return lineage.Merge(existing, incoming)
}
