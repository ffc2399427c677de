// Package storage persists genetic code records keyed by signature. It is
// the genomic library tier: durable, append-heavy and indifferent to the
// cache discipline layered above it.
package storage

import (
	"context"

	"genovault/internal/model"
)

// Store defines persistence operations for genetic code records. Get must
// return an independent copy; callers mutate freely.
type Store interface {
	Init(ctx context.Context) error
	Put(ctx context.Context, gc *model.GC) error
	Get(ctx context.Context, sig model.Signature) (*model.GC, bool, error)
	Delete(ctx context.Context, sig model.Signature) error
	Has(ctx context.Context, sig model.Signature) (bool, error)
	Count(ctx context.Context) (int64, error)
	Signatures(ctx context.Context) ([]model.Signature, error)
}
