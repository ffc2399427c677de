// Package genetics derives content addresses for genetic codes and converts
// records between their representation forms. A signature commits to the
// structural identity of a code: its two sub-codes and its connection graph.
// Everything else on a record is bookkeeping and does not participate.
package genetics

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"genovault/internal/graph"
	"genovault/internal/model"
)

// ErrSignatureMismatch is returned when a stored signature does not match
// the one re-derived from the record's structural fields.
var ErrSignatureMismatch = errors.New("genetics: signature mismatch")

// Derive computes the content address of a genetic code from its structural
// identity. A nil sub-code hashes as the null signature, so codons and
// asexual codes derive distinct, stable addresses. The encoding of the
// graph is canonical: equal graphs always produce equal bytes.
func Derive(gca, gcb *model.Signature, cg *graph.ConnectionGraph) model.Signature {
	h := sha256.New()
	a := model.SigOrNull(gca)
	b := model.SigOrNull(gcb)
	h.Write(a[:])
	h.Write(b[:])
	h.Write(cg.CanonicalBytes())

	var sig model.Signature
	copy(sig[:], h.Sum(nil))
	return sig
}

// Verify re-derives the signature from the record's structural fields and
// compares it against the stored one. Stored signatures are never trusted
// across a tier boundary.
func Verify(gc *model.GC) error {
	if gc.Graph == nil {
		return fmt.Errorf("%w: record has no connection graph", graph.ErrSchema)
	}
	want := Derive(gc.GCA, gc.GCB, gc.Graph)
	if want != gc.Signature {
		return fmt.Errorf("%w: stored %s derived %s", ErrSignatureMismatch, gc.Signature, want)
	}
	return nil
}
