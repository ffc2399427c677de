package lineage

import (
	"fmt"

	"genovault/internal/model"
)

// Merge folds a duplicate insert into an existing record with the same
// signature. Only bookkeeping moves: reference counts add, monotonic loss
// counters keep their maximum, timestamps widen. Structural fields must
// already agree because the signature commits to them; a disagreement means
// one of the records is corrupt.
func Merge(existing, incoming *model.GC) error {
	if existing.Signature != incoming.Signature {
		return fmt.Errorf("%w: merge of %s into %s", ErrReferenceIntegrity, incoming.Signature, existing.Signature)
	}

	existing.ReferenceCount += incoming.ReferenceCount
	existing.LostDescendants = maxInt64(existing.LostDescendants, incoming.LostDescendants)
	existing.MissingLinksA = maxInt64(existing.MissingLinksA, incoming.MissingLinksA)
	existing.MissingLinksB = maxInt64(existing.MissingLinksB, incoming.MissingLinksB)

	eBetter := incoming.ECount > existing.ECount
	fBetter := incoming.FCount > existing.FCount
	if eBetter {
		existing.Evolvability = incoming.Evolvability
		existing.ECount = incoming.ECount
	}
	if fBetter {
		existing.Fitness = incoming.Fitness
		existing.FCount = incoming.FCount
	}

	// The layered history windows follow the same attestation rule as
	// their scalar counterparts, and fill in wherever the existing record
	// carries none.
	adoptHistF(&existing.PGCEvolvability, incoming.PGCEvolvability, eBetter)
	adoptHistI(&existing.PGCECount, incoming.PGCECount, eBetter)
	adoptHistF(&existing.PGCFitness, incoming.PGCFitness, fBetter)
	adoptHistI(&existing.PGCFCount, incoming.PGCFCount, fBetter)

	if !incoming.Created.IsZero() && (existing.Created.IsZero() || incoming.Created.Before(existing.Created)) {
		existing.Created = incoming.Created
	}
	if incoming.Updated.After(existing.Updated) {
		existing.Updated = incoming.Updated
	}
	return nil
}

func adoptHistF(dst **model.History16F, src *model.History16F, better bool) {
	if src == nil {
		return
	}
	if *dst == nil || better {
		w := *src
		*dst = &w
	}
}

func adoptHistI(dst **model.History16I, src *model.History16I, better bool) {
	if src == nil {
		return
	}
	if *dst == nil || better {
		w := *src
		*dst = &w
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
