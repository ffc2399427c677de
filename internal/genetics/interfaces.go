package genetics

import (
	"context"
	"fmt"

	"genovault/internal/graph"
	"genovault/internal/model"
)

// VerifyInterfaces checks the embedding contract between a record's graph
// and the interfaces of its sub-codes. Row A's destinations are gca's
// inputs in order; every reference to row A as a source must name an
// existing gca output with the exact type. Row B mirrors this for gcb.
// The graph validator alone cannot catch these: it takes the row A/B
// source types from the referencing connections themselves.
func VerifyInterfaces(ctx context.Context, r Resolver, gc *model.GC) error {
	cg := gc.Graph
	if gc.GCA == nil && len(cg.A) > 0 {
		return fmt.Errorf("%w: row A populated without gca", graph.ErrConnectivity)
	}
	if gc.GCB == nil && len(cg.B) > 0 {
		return fmt.Errorf("%w: row B populated without gcb", graph.ErrConnectivity)
	}
	if gc.GCA != nil {
		sub, err := resolveInterface(ctx, r, *gc.GCA)
		if err != nil {
			return err
		}
		if err := matchEmbedding(cg, graph.RowA, cg.A, sub); err != nil {
			return err
		}
	}
	if gc.GCB != nil {
		sub, err := resolveInterface(ctx, r, *gc.GCB)
		if err != nil {
			return err
		}
		if err := matchEmbedding(cg, graph.RowB, cg.B, sub); err != nil {
			return err
		}
	}
	return nil
}

func resolveInterface(ctx context.Context, r Resolver, sig model.Signature) (*model.GC, error) {
	sub, ok, err := r.Resolve(ctx, sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("genetics: sub-code %s not found", sig)
	}
	return sub, nil
}

// matchEmbedding reconciles one embedded sub-code with its row: the row's
// destination list against the sub-code inputs, and every source reference
// into the row against the sub-code outputs.
func matchEmbedding(cg *graph.ConnectionGraph, row graph.Row, dests []graph.Connection, sub *model.GC) error {
	if int64(len(dests)) != sub.NumInputs {
		return fmt.Errorf("%w: row %s carries %d inputs, sub-code %s takes %d",
			graph.ErrConnectivity, row, len(dests), sub.Signature, sub.NumInputs)
	}
	for i, conn := range dests {
		if conn.Typ != sub.InputTypes[i] {
			return fmt.Errorf("%w: row %s input %d is %s, sub-code %s takes %s",
				graph.ErrConnectivity, row, i, conn.Typ, sub.Signature, sub.InputTypes[i])
		}
	}
	for _, dr := range []struct {
		row   graph.Row
		conns []graph.Connection
	}{
		{graph.RowF, cg.F}, {graph.RowA, cg.A}, {graph.RowB, cg.B},
		{graph.RowO, cg.O}, {graph.RowP, cg.P}, {graph.RowU, cg.U},
	} {
		for i, conn := range dr.conns {
			if conn.Row != row {
				continue
			}
			if int64(conn.Idx) >= sub.NumOutputs {
				return fmt.Errorf("%w: %s%03d references output %d of sub-code %s, which has %d",
					graph.ErrConnectivity, dr.row, i, conn.Idx, sub.Signature, sub.NumOutputs)
			}
			if conn.Typ != sub.OutputTypes[conn.Idx] {
				return fmt.Errorf("%w: %s%03d claims %s output %d as %s, it is %s",
					graph.ErrConnectivity, dr.row, i, row, conn.Idx, conn.Typ, sub.OutputTypes[conn.Idx])
			}
		}
	}
	return nil
}
