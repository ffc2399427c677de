package model

import (
	"errors"
	"testing"
	"time"

	"genovault/internal/graph"
)

func validCodonRecord() *GC {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gc := &GC{
		VersionedRecord: CurrentVersion(),
		Graph: &graph.ConnectionGraph{
			O: []graph.Connection{{Row: graph.RowI, Idx: 0, Typ: graph.TypeInt}},
		},
		CodeDepth:       1,
		CodonDepth:      1,
		NumCodes:        1,
		NumUniqueCodes:  1,
		NumCodons:       1,
		NumUniqueCodons: 1,
		InputTypes:      []graph.EndPointType{graph.TypeInt},
		OutputTypes:     []graph.EndPointType{graph.TypeInt},
		NumInputs:       1,
		NumOutputs:      1,
		Created:         now,
		Updated:         now,
	}
	gc.Signature[0] = 0x01
	return gc
}

func TestValidateAcceptsCodonRecord(t *testing.T) {
	if err := validCodonRecord().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GC)
	}{
		{"missing graph", func(gc *GC) { gc.Graph = nil }},
		{"null signature", func(gc *GC) { gc.Signature = NullSignature }},
		{"gcb without gca", func(gc *GC) { gc.GCB = &Signature{0x02} }},
		{"negative missing links", func(gc *GC) { gc.MissingLinksA = -1 }},
		{"negative lost descendants", func(gc *GC) { gc.LostDescendants = -1 }},
		{"negative reference count", func(gc *GC) { gc.ReferenceCount = -1 }},
		{"negative generation", func(gc *GC) { gc.Generation = -1 }},
		{"survivor without missing links", func(gc *GC) { gc.ClosestSurvivingAncestorA = &Signature{0x04} }},
		{"ancestor B without ancestor A", func(gc *GC) { gc.AncestorB = &Signature{0x03} }},
		{"evolvability above one", func(gc *GC) { gc.Evolvability = 1.5 }},
		{"fitness below zero", func(gc *GC) { gc.Fitness = -0.1 }},
		{"undefined property bits", func(gc *GC) { gc.Properties = 1 << 40 }},
		{"zero code depth", func(gc *GC) { gc.CodeDepth = 0 }},
		{"unique exceeds total", func(gc *GC) { gc.NumUniqueCodes = 2 }},
		{"updated before created", func(gc *GC) { gc.Updated = gc.Created.Add(-time.Hour) }},
		{"input count drift", func(gc *GC) { gc.NumInputs = 2 }},
		{"invalid output type", func(gc *GC) { gc.OutputTypes = []graph.EndPointType{graph.TypeInvalid} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := validCodonRecord()
			tt.mutate(gc)
			err := gc.Validate()
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !errors.Is(err, graph.ErrSchema) {
				t.Fatalf("error %v does not unwrap to a schema violation", err)
			}
		})
	}
}

func TestValidateAcceptsOrphanedRecord(t *testing.T) {
	// A record whose whole ancestry chain was purged carries missing
	// links and no survivor. It is a root, not a schema violation.
	gc := validCodonRecord()
	gc.AncestorA = &Signature{0x02}
	gc.MissingLinksA = 3
	if err := gc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	gc := validCodonRecord()
	gca := Signature{0x0a}
	gc.GCA = &gca
	hist := History16F{0: 0.5}
	gc.PGCFitness = &hist

	cp := gc.Clone()
	cp.GCA[0] = 0xff
	cp.Graph.O[0].Typ = graph.TypeFloat
	cp.PGCFitness[0] = 0.9
	cp.InputTypes[0] = graph.TypeBool

	if gc.GCA[0] != 0x0a || gc.Graph.O[0].Typ != graph.TypeInt {
		t.Fatal("clone aliased structural fields")
	}
	if gc.PGCFitness[0] != 0.5 || gc.InputTypes[0] != graph.TypeInt {
		t.Fatal("clone aliased bookkeeping fields")
	}
}

func TestPropertiesMask(t *testing.T) {
	if !ValidProperties(PropertyDeterministic | PropertyArithmetic) {
		t.Fatal("defined bits rejected")
	}
	if ValidProperties(1 << 50) {
		t.Fatal("undefined bit accepted")
	}
}
