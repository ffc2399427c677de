package model

import (
	"fmt"

	"genovault/internal/graph"
)

// Validate checks the record-level schema: field bounds, cross-field
// consistency and the embedded connection graph. Structural derivation
// (signatures, depths) is checked elsewhere; this is the gate every record
// passes before entering a store.
func (gc *GC) Validate() error {
	if gc.Graph == nil {
		return fmt.Errorf("%w: record has no connection graph", graph.ErrSchema)
	}
	if _, err := graph.Validate(gc.Graph); err != nil {
		return err
	}
	if gc.GCA == nil && gc.GCB != nil {
		return fmt.Errorf("%w: gcb set without gca", graph.ErrSchema)
	}
	if gc.Signature.IsNull() {
		return fmt.Errorf("%w: record has null signature", graph.ErrSchema)
	}
	if gc.MissingLinksA < 0 || gc.MissingLinksB < 0 {
		return fmt.Errorf("%w: negative missing links", graph.ErrSchema)
	}
	if gc.LostDescendants < 0 {
		return fmt.Errorf("%w: negative lost descendants", graph.ErrSchema)
	}
	if gc.ReferenceCount < 0 {
		return fmt.Errorf("%w: negative reference count", graph.ErrSchema)
	}
	if gc.Generation < 0 {
		return fmt.Errorf("%w: negative generation", graph.ErrSchema)
	}
	// Missing links with no survivor is a legal state: a record whose
	// entire chain was purged is a root. The converse is not: a recorded
	// survivor implies at least one lost link.
	if gc.ClosestSurvivingAncestorA != nil && gc.MissingLinksA == 0 {
		return fmt.Errorf("%w: surviving ancestor A without missing links", graph.ErrSchema)
	}
	if gc.ClosestSurvivingAncestorB != nil && gc.MissingLinksB == 0 {
		return fmt.Errorf("%w: surviving ancestor B without missing links", graph.ErrSchema)
	}
	if gc.AncestorA == nil && gc.AncestorB != nil {
		return fmt.Errorf("%w: ancestor B set without ancestor A", graph.ErrSchema)
	}
	if gc.Evolvability < 0 || gc.Evolvability > 1 {
		return fmt.Errorf("%w: evolvability %v out of [0,1]", graph.ErrSchema, gc.Evolvability)
	}
	if gc.Fitness < 0 || gc.Fitness > 1 {
		return fmt.Errorf("%w: fitness %v out of [0,1]", graph.ErrSchema, gc.Fitness)
	}
	if gc.ECount < 0 || gc.FCount < 0 {
		return fmt.Errorf("%w: negative evaluation count", graph.ErrSchema)
	}
	if !ValidProperties(gc.Properties) {
		return fmt.Errorf("%w: undefined property bits %#x", graph.ErrSchema, gc.Properties&^ValidPropertyMask)
	}
	if gc.CodeDepth < 1 || gc.CodonDepth < 1 || gc.NumCodes < 1 || gc.NumCodons < 1 {
		return fmt.Errorf("%w: structural counts must be at least 1", graph.ErrSchema)
	}
	if gc.NumUniqueCodes > gc.NumCodes || gc.NumUniqueCodons > gc.NumCodons {
		return fmt.Errorf("%w: unique counts exceed totals", graph.ErrSchema)
	}
	if !gc.Created.IsZero() && !gc.Updated.IsZero() && gc.Updated.Before(gc.Created) {
		return fmt.Errorf("%w: updated precedes created", graph.ErrSchema)
	}
	if err := gc.validateInterface(); err != nil {
		return err
	}
	return nil
}

func (gc *GC) validateInterface() error {
	if int64(len(gc.InputTypes)) != gc.NumInputs {
		return fmt.Errorf("%w: input types and count disagree", graph.ErrSchema)
	}
	if int64(len(gc.OutputTypes)) != gc.NumOutputs {
		return fmt.Errorf("%w: output types and count disagree", graph.ErrSchema)
	}
	for _, t := range gc.InputTypes {
		if !graph.ValidEndPointType(t) {
			return fmt.Errorf("%w: invalid input type %d", graph.ErrSchema, t)
		}
	}
	for _, t := range gc.OutputTypes {
		if !graph.ValidEndPointType(t) {
			return fmt.Errorf("%w: invalid output type %d", graph.ErrSchema, t)
		}
	}
	return nil
}
