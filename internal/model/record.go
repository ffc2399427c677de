package model

import (
	"time"

	"github.com/google/uuid"

	"genovault/internal/graph"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Current schema and codec versions for newly created records.
const (
	SchemaVersion = 1
	CodecVersion  = 1
)

// CurrentVersion returns the version stamp for newly created records.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: SchemaVersion, CodecVersion: CodecVersion}
}

// HistoryLength is the fixed length of the layered bookkeeping arrays.
const HistoryLength = 16

// History16F and History16I are the rolling windows copied down from the
// persistent tier on promotion. A nil pointer means "no layered history".
type (
	History16F [HistoryLength]float64
	History16I [HistoryLength]int64
)

// GC is the genetic code record: the library form persisted in the genomic
// library and exchanged with the gene pool cache. Structural fields
// (Signature, GCA, GCB, Graph) are immutable once set; only lineage and
// bookkeeping fields may change afterwards.
type GC struct {
	VersionedRecord

	// Content address, derived from GCA, GCB and Graph. Primary key in
	// every tier.
	Signature Signature `json:"signature"`

	// Embedded sub-codes by signature. Both nil makes this a codon.
	GCA *Signature `json:"gca"`
	GCB *Signature `json:"gcb"`

	// Connectivity map. Required, validates against the graph schema.
	Graph *graph.ConnectionGraph `json:"graph"`

	// Closest still-existing ancestors by parent. AncestorB is nil for
	// asexual origin; both are nil for codons and roots.
	AncestorA *Signature `json:"ancestor_a"`
	AncestorB *Signature `json:"ancestor_b"`

	// Purged ancestors between this record and the closest survivor.
	// Monotonically non-decreasing.
	MissingLinksA int64 `json:"missing_links_a"`
	MissingLinksB int64 `json:"missing_links_b"`

	// Populated only when the matching missing links count is positive.
	ClosestSurvivingAncestorA *Signature `json:"closest_surviving_ancestor_a"`
	ClosestSurvivingAncestorB *Signature `json:"closest_surviving_ancestor_b"`

	// Descendants purged from the store. Monotonically non-decreasing.
	LostDescendants int64 `json:"lost_descendants"`

	// Structural references from containing genetic codes. Purge is legal
	// only at exactly zero.
	ReferenceCount int64 `json:"reference_count"`

	Creator    uuid.UUID  `json:"creator"`
	PGC        *Signature `json:"pgc"`
	SMS        *Signature `json:"sms"`
	Generation int64      `json:"generation"`

	// Derived structure metrics, recomputed on conversion, never copied.
	CodeDepth       int64 `json:"code_depth"`
	CodonDepth      int64 `json:"codon_depth"`
	NumCodes        int64 `json:"num_codes"`
	NumUniqueCodes  int64 `json:"num_unique_codes"`
	NumCodons       int64 `json:"num_codons"`
	NumUniqueCodons int64 `json:"num_unique_codons"`

	// Interface projections derived from Graph.
	InputTypes  []graph.EndPointType `json:"input_types"`
	OutputTypes []graph.EndPointType `json:"output_types"`
	NumInputs   int64                `json:"num_inputs"`
	NumOutputs  int64                `json:"num_outputs"`

	Properties int64 `json:"properties"`

	// Evolvability and fitness bookkeeping with the layered rolling
	// windows. A nil window means the record has never carried layered
	// state.
	Evolvability    float64     `json:"evolvability"`
	ECount          int64       `json:"e_count"`
	Fitness         float64     `json:"fitness"`
	FCount          int64       `json:"f_count"`
	PGCEvolvability *History16F `json:"pgc_evolvability"`
	PGCECount       *History16I `json:"pgc_e_count"`
	PGCFitness      *History16F `json:"pgc_fitness"`
	PGCFCount       *History16I `json:"pgc_f_count"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// IsCodon reports whether the record is a structural primitive with no
// embedded sub-codes.
func (gc *GC) IsCodon() bool {
	return gc.GCA == nil && gc.GCB == nil
}

// Clone returns a deep copy of the record.
func (gc *GC) Clone() *GC {
	cp := *gc
	cp.GCA = cloneSig(gc.GCA)
	cp.GCB = cloneSig(gc.GCB)
	cp.AncestorA = cloneSig(gc.AncestorA)
	cp.AncestorB = cloneSig(gc.AncestorB)
	cp.ClosestSurvivingAncestorA = cloneSig(gc.ClosestSurvivingAncestorA)
	cp.ClosestSurvivingAncestorB = cloneSig(gc.ClosestSurvivingAncestorB)
	cp.PGC = cloneSig(gc.PGC)
	cp.SMS = cloneSig(gc.SMS)
	if gc.Graph != nil {
		cp.Graph = gc.Graph.Clone()
	}
	cp.InputTypes = append([]graph.EndPointType(nil), gc.InputTypes...)
	cp.OutputTypes = append([]graph.EndPointType(nil), gc.OutputTypes...)
	cp.PGCEvolvability = cloneHistF(gc.PGCEvolvability)
	cp.PGCFitness = cloneHistF(gc.PGCFitness)
	cp.PGCECount = cloneHistI(gc.PGCECount)
	cp.PGCFCount = cloneHistI(gc.PGCFCount)
	return &cp
}

func cloneSig(s *Signature) *Signature {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneHistF(h *History16F) *History16F {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}

func cloneHistI(h *History16I) *History16I {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}

// SigOrNull folds a nullable signature reference to hashable material.
func SigOrNull(s *Signature) Signature {
	if s == nil {
		return NullSignature
	}
	return *s
}
