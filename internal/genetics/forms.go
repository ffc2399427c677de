package genetics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"genovault/internal/graph"
	"genovault/internal/model"
)

// Resolver looks up a genetic code record by signature. The second return
// is false when no record exists for the signature.
type Resolver interface {
	Resolve(ctx context.Context, sig model.Signature) (*model.GC, bool, error)
}

// Embryonic is the first representation form of a genetic code: a
// connection graph plus optional sub-codes, carrying no derived state at
// all. It exists so construction sites can assemble structure without
// committing to an identity.
type Embryonic struct {
	Graph   *graph.ConnectionGraph
	GCA     *model.Signature
	GCB     *model.Signature
	Creator uuid.UUID
}

// Dynamic is the mutable working form. Its structural fields are fixed at
// development time; lineage and bookkeeping fields may be set freely before
// the record is sealed into its library form.
type Dynamic struct {
	Graph *graph.ConnectionGraph
	Shape graph.Shape

	GCA *model.Signature
	GCB *model.Signature

	AncestorA *model.Signature
	AncestorB *model.Signature
	PGC       *model.Signature
	SMS       *model.Signature

	Creator    uuid.UUID
	Properties int64

	Evolvability float64
	ECount       int64
	Fitness      float64
	FCount       int64
}

// NewEmbryonic starts a genetic code from a connection graph.
func NewEmbryonic(cg *graph.ConnectionGraph, creator uuid.UUID) *Embryonic {
	return &Embryonic{Graph: cg, Creator: creator}
}

// Develop converts the embryonic form into the dynamic working form. The
// graph is validated here; a dynamic record therefore always carries a
// schema-valid graph.
func (e *Embryonic) Develop() (*Dynamic, error) {
	if e.Graph == nil {
		return nil, fmt.Errorf("%w: embryonic record has no connection graph", graph.ErrSchema)
	}
	shape, err := graph.Validate(e.Graph)
	if err != nil {
		return nil, err
	}
	if shape == graph.ShapeCodon && (e.GCA != nil || e.GCB != nil) {
		return nil, fmt.Errorf("%w: codon shape with sub-codes", graph.ErrSchema)
	}
	if shape != graph.ShapeCodon && e.GCA == nil {
		return nil, fmt.Errorf("%w: %s shape requires gca", graph.ErrSchema, shape)
	}
	return &Dynamic{
		Graph:   e.Graph.Clone(),
		Shape:   shape,
		GCA:     e.GCA,
		GCB:     e.GCB,
		Creator: e.Creator,
	}, nil
}

// Seal converts the dynamic form into the library form: the signature is
// derived, the structural metrics are recomputed from the sub-codes, the
// interface projections are taken from the graph and the timestamps are
// stamped. Derived values already present anywhere are never copied.
func (d *Dynamic) Seal(ctx context.Context, r Resolver, now time.Time) (*model.GC, error) {
	if d.GCA == nil && d.GCB != nil {
		return nil, fmt.Errorf("%w: gcb set without gca", graph.ErrSchema)
	}
	gc := &model.GC{
		VersionedRecord: model.CurrentVersion(),
		GCA:             d.GCA,
		GCB:             d.GCB,
		Graph:           d.Graph.Clone(),
		AncestorA:       d.AncestorA,
		AncestorB:       d.AncestorB,
		PGC:             d.PGC,
		SMS:             d.SMS,
		Creator:         d.Creator,
		Properties:      d.Properties,
		Evolvability:    d.Evolvability,
		ECount:          d.ECount,
		Fitness:         d.Fitness,
		FCount:          d.FCount,
		Created:         now.UTC(),
		Updated:         now.UTC(),
	}
	gc.Signature = Derive(d.GCA, d.GCB, d.Graph)

	gc.InputTypes = d.Graph.InputTypes()
	gc.OutputTypes = d.Graph.OutputTypes()
	gc.NumInputs = int64(len(gc.InputTypes))
	gc.NumOutputs = int64(len(gc.OutputTypes))
	if d.Shape == graph.ShapeConditional {
		gc.Properties |= model.PropertyConditional
	}

	if err := RecomputeDerived(ctx, r, gc); err != nil {
		return nil, err
	}
	if err := VerifyInterfaces(ctx, r, gc); err != nil {
		return nil, err
	}
	if err := gc.Validate(); err != nil {
		return nil, err
	}
	return gc, nil
}
