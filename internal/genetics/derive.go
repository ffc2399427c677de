package genetics

import (
	"context"
	"fmt"

	"genovault/internal/model"
)

// RecomputeDerived recalculates the structural metrics of a record from its
// sub-codes and writes them into the record, replacing whatever was there.
// Sub-codes are resolved through r; a missing sub-code is an error because
// structural references keep sub-codes alive.
func RecomputeDerived(ctx context.Context, r Resolver, gc *model.GC) error {
	if gc.IsCodon() {
		gc.CodeDepth = 1
		gc.CodonDepth = 1
		gc.NumCodes = 1
		gc.NumUniqueCodes = 1
		gc.NumCodons = 1
		gc.NumUniqueCodons = 1
		gc.Generation = 0
		return nil
	}

	gca, err := resolveSub(ctx, r, gc.GCA)
	if err != nil {
		return err
	}
	gcb, err := resolveSub(ctx, r, gc.GCB)
	if err != nil {
		return err
	}

	gc.CodeDepth = 1 + maxSub(gca, gcb, func(s *model.GC) int64 { return s.CodeDepth })
	gc.CodonDepth = 1 + maxSub(gca, gcb, func(s *model.GC) int64 { return s.CodonDepth })
	gc.Generation = 1 + maxSub(gca, gcb, func(s *model.GC) int64 { return s.Generation })
	gc.NumCodes = 1 + sumSub(gca, gcb, func(s *model.GC) int64 { return s.NumCodes })
	gc.NumCodons = sumSub(gca, gcb, func(s *model.GC) int64 { return s.NumCodons })

	// When both sub-codes are the same code the subtrees are identical and
	// counting both would double every unique code below this record.
	if gcb != nil && gca.Signature == gcb.Signature {
		gc.NumUniqueCodes = 1 + gca.NumUniqueCodes
		gc.NumUniqueCodons = gca.NumUniqueCodons
	} else {
		gc.NumUniqueCodes = 1 + sumSub(gca, gcb, func(s *model.GC) int64 { return s.NumUniqueCodes })
		gc.NumUniqueCodons = sumSub(gca, gcb, func(s *model.GC) int64 { return s.NumUniqueCodons })
	}
	return nil
}

func resolveSub(ctx context.Context, r Resolver, sig *model.Signature) (*model.GC, error) {
	if sig == nil {
		return nil, nil
	}
	sub, ok, err := r.Resolve(ctx, *sig)
	if err != nil {
		return nil, fmt.Errorf("genetics: resolving sub-code %s: %w", sig, err)
	}
	if !ok {
		return nil, fmt.Errorf("genetics: sub-code %s not found", sig)
	}
	return sub, nil
}

func maxSub(a, b *model.GC, f func(*model.GC) int64) int64 {
	var m int64
	if a != nil && f(a) > m {
		m = f(a)
	}
	if b != nil && f(b) > m {
		m = f(b)
	}
	return m
}

func sumSub(a, b *model.GC, f func(*model.GC) int64) int64 {
	var s int64
	if a != nil {
		s += f(a)
	}
	if b != nil {
		s += f(b)
	}
	return s
}
